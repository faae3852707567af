package guard

import (
	"iter"
	"strings"

	"cguard/internal/directive"
)

// Finding locates a directive or macro in the scanned text.
type Finding struct {
	Line   int            // 0-based physical line
	Text   string         // the whole line, terminator removed
	Kind   directive.Kind // lowest-identity kind matching the line
	Offset int            // byte offset of the line start in the input
	Start  int            // byte range of the keyword or token within Text
	End    int
}

// Err converts the finding into the error returned by Scan.
func (f Finding) Err() *DirectiveError {
	return &DirectiveError{Finding: f}
}

// Scanner checks text against a directive catalog.
// It holds no mutable state and may be shared across goroutines.
type Scanner struct {
	catalog *directive.Catalog
}

// NewScanner binds a scanner to c. A nil catalog selects directive.Default().
func NewScanner(c *directive.Catalog) *Scanner {
	if c == nil {
		c = directive.Default()
	}
	return &Scanner{catalog: c}
}

// Catalog returns the catalog the scanner matches against.
func (s *Scanner) Catalog() *directive.Catalog {
	return s.catalog
}

// Scan returns nil when no line of text holds a directive or predefined
// macro, and a *DirectiveError for the first line that does.
func (s *Scanner) Scan(text string) error {
	f, ok := s.Find(text)
	if !ok {
		return nil
	}
	return f.Err()
}

// Find returns the first offending line.
func (s *Scanner) Find(text string) (f Finding, found bool) {
	for f = range s.Findings(text) {
		found = true
		break
	}
	return f, found
}

// FindAll returns one finding per offending line, in line order.
func (s *Scanner) FindAll(text string) []Finding {
	var out []Finding
	for f := range s.Findings(text) {
		out = append(out, f)
	}
	return out
}

// Findings yields a finding for every offending line, in line order.
// Stopping the iteration stops the scan.
func (s *Scanner) Findings(text string) iter.Seq[Finding] {
	return func(yield func(Finding) bool) {
		lineNo, offset := 0, 0
		for raw := range strings.Lines(text) {
			line := trimTerminator(raw)
			if kind, ok := s.catalog.First(line); ok {
				f := Finding{Line: lineNo, Text: line, Kind: kind, Offset: offset}
				f.Start, f.End, _ = s.catalog.Locate(kind, line)
				if !yield(f) {
					return
				}
			}
			lineNo++
			offset += len(raw)
		}
	}
}

// trimTerminator drops a trailing "\n" or "\r\n". A lone "\r" is kept.
func trimTerminator(raw string) string {
	line, ok := strings.CutSuffix(raw, "\n")
	if !ok {
		return raw
	}
	return strings.TrimSuffix(line, "\r")
}

// Scan checks text with the default catalog.
func Scan(text string) error {
	return defaultScanner().Scan(text)
}

func defaultScanner() *Scanner {
	return &Scanner{catalog: directive.Default()}
}
