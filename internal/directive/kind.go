package directive

import (
	"fmt"
	"strings"
)

// Kind identifies a recognised directive or predefined macro.
// The numeric value is the row of the catalog table describing it.
type Kind uint8

const (
	Define Kind = iota
	Include
	Undef
	Ifdef
	Ifndef
	If
	Else
	Elif
	Endif
	Error
	Pragma
	Date
	Time
	Timestamp
	File
	Line
	Stdc

	kindCount
)

// Class groups kinds by how they are detected.
type Class uint8

const (
	// ClassDirective kinds start a line with `#keyword`.
	ClassDirective Class = iota
	// ClassMacro kinds are tokens that may appear anywhere on a line.
	ClassMacro
)

func (c Class) String() string {
	switch c {
	case ClassDirective:
		return "directive"
	case ClassMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// Kinds returns every kind in identity order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Valid reports whether k names a catalog row.
func (k Kind) Valid() bool {
	return k < kindCount
}

// String returns the canonical display form, e.g. "#define" or "__LINE__".
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return table[k].Display
}

// Name returns the identifier name of the kind, e.g. "Define" or "Line".
func (k Kind) Name() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return table[k].Name
}

// Class returns the detection class of the kind.
func (k Kind) Class() Class {
	if !k.Valid() {
		return ClassDirective
	}
	return table[k].Class
}

func (k Kind) GoString() string {
	return fmt.Sprintf("directive.Kind(%s)", k.Name())
}

// MarshalText encodes the kind by name so JSON output stays readable.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("directive: invalid kind %d", uint8(k))
	}
	return []byte(k.Name()), nil
}

// UnmarshalText accepts anything ParseKind accepts.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a kind from its name ("Define", case-insensitive) or its
// display form ("#define", "__LINE__").
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for i := range table {
		row := &table[i]
		if s == row.Display || strings.EqualFold(s, row.Name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown directive kind %q", s)
}
