package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Guard: directive and predefined-macro findings.
	GuardInfo      Code = 1000
	GuardDirective Code = 1001
	GuardMacro     Code = 1002

	// Downstream C grammar parser.
	ParseInfo    Code = 2000
	ParseSyntax  Code = 2001
	ParseMissing Code = 2002

	// I/O
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:     "Unknown error",
	GuardInfo:       "Guard information",
	GuardDirective:  "Preprocessor directive is not allowed",
	GuardMacro:      "Predefined macro is not allowed",
	ParseInfo:       "Parser information",
	ParseSyntax:     "C syntax error",
	ParseMissing:    "Missing C syntax element",
	IOInfo:          "I/O information",
	IOLoadFileError: "I/O load file error",
	IOCacheError:    "Verdict cache error",
	ObsInfo:         "Observability information",
	ObsTimings:      "Pipeline timings",
}

// ID returns the stable identifier printed in diagnostics, e.g. G1001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("G%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("P%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Codes lists every known code in ascending order.
func Codes() []Code {
	return []Code{
		UnknownCode,
		GuardInfo, GuardDirective, GuardMacro,
		ParseInfo, ParseSyntax, ParseMissing,
		IOInfo, IOLoadFileError, IOCacheError,
		ObsInfo, ObsTimings,
	}
}
