package directive

import (
	"fmt"
	"regexp"
	"strings"

	re2 "github.com/wasilibs/go-re2"
)

// Engine selects the regular-expression implementation backing a Catalog.
type Engine uint8

const (
	// EngineStd uses the standard library regexp package.
	EngineStd Engine = iota
	// EngineRE2 uses RE2 through github.com/wasilibs/go-re2.
	EngineRE2
)

func (e Engine) String() string {
	switch e {
	case EngineStd:
		return "std"
	case EngineRE2:
		return "re2"
	default:
		return "unknown"
	}
}

// ParseEngine converts a flag or config value to an Engine.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "std", "go":
		return EngineStd, nil
	case "re2":
		return EngineRE2, nil
	default:
		return EngineStd, fmt.Errorf("invalid regex engine %q (expected std|re2)", s)
	}
}

// matcher is the subset of the regexp API both engines provide.
type matcher interface {
	MatchString(s string) bool
	FindStringIndex(s string) []int
}

func (e Engine) compile(expr string) (matcher, error) {
	switch e {
	case EngineStd:
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, err
		}
		return re, nil
	case EngineRE2:
		re, err := re2.Compile(expr)
		if err != nil {
			return nil, err
		}
		return re, nil
	default:
		return nil, fmt.Errorf("unknown regex engine %d", uint8(e))
	}
}
