package version

import "github.com/fatih/color"

// Version information for the cguard CLI.
// These variables can be overridden at build time via -ldflags, e.g.
//
//	-X cguard/internal/version.GitCommit=$(git rev-parse HEAD)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders v with each numeric component in its own color. Anything
// that is not "major.minor.patch[-suffix]" is returned unchanged. Colors
// follow color.NoColor.
func Colored(v string) string {
	core, suffix := v, ""
	for i, r := range v {
		if r == '-' || r == '+' {
			core, suffix = v[:i], v[i:]
			break
		}
	}
	parts := splitDots(core)
	if len(parts) != 3 {
		return v
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2]) + suffix
}

func splitDots(s string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			if i == start {
				return nil
			}
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return parts
}
