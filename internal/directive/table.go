package directive

import "regexp"

// leadingSpace matches the Unicode White_Space property: the Z categories plus
// the C0 controls \t \n \v \f \r and NEL.
const leadingSpace = `[\t\n\v\f\r\x{85}\p{Z}]*`

// Entry is one row of the catalog.
type Entry struct {
	Kind    Kind
	Name    string
	Display string
	Class   Class
	Pattern string
}

// table is indexed by Kind. The keyed literal ties every row to its kind, so
// reordering the constants cannot silently shift patterns onto other kinds.
var table = [kindCount]Entry{
	Define:    directiveRow("Define", "define"),
	Include:   directiveRow("Include", "include"),
	Undef:     directiveRow("Undef", "undef"),
	Ifdef:     directiveRow("Ifdef", "ifdef"),
	Ifndef:    directiveRow("Ifndef", "ifndef"),
	If:        directiveRow("If", "if"),
	Else:      directiveRow("Else", "else"),
	Elif:      directiveRow("Elif", "elif"),
	Endif:     directiveRow("Endif", "endif"),
	Error:     directiveRow("Error", "error"),
	Pragma:    directiveRow("Pragma", "pragma"),
	Date:      macroRow("Date", "__DATE__"),
	Time:      macroRow("Time", "__TIME__"),
	Timestamp: macroRow("Timestamp", "__TIMESTAMP__"),
	File:      macroRow("File", "__FILE__"),
	Line:      macroRow("Line", "__LINE__"),
	Stdc:      macroRow("Stdc", "__STDC__"),
}

func directiveRow(name, keyword string) Entry {
	display := "#" + keyword
	return Entry{
		Name:    name,
		Display: display,
		Class:   ClassDirective,
		Pattern: "^" + leadingSpace + regexp.QuoteMeta(display),
	}
}

func macroRow(name, token string) Entry {
	return Entry{
		Name:    name,
		Display: token,
		Class:   ClassMacro,
		Pattern: regexp.QuoteMeta(token),
	}
}
