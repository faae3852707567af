// Package testkit holds invariant checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"cguard/internal/cparse"
	"cguard/internal/guard"
	"cguard/internal/source"
)

// CheckFindings verifies that findings describe real lines of file:
//  1. each finding's text is the file content at its offset, and equals the
//     file's line Line+1 with any trailing '\r' of a CRLF pair removed
//  2. the keyword range lies inside the text
//  3. line numbers strictly increase
func CheckFindings(file *source.File, findings []guard.Finding) error {
	if file == nil {
		return fmt.Errorf("nil file")
	}
	content := file.Content
	prev := -1
	for i, f := range findings {
		if !f.Kind.Valid() {
			return fmt.Errorf("finding %d: invalid kind %d", i, f.Kind)
		}
		if f.Line <= prev {
			return fmt.Errorf("finding %d: line %d not after %d", i, f.Line, prev)
		}
		prev = f.Line

		end := f.Offset + len(f.Text)
		if f.Offset < 0 || end > len(content) {
			return fmt.Errorf("finding %d: text [%d,%d) outside content of %d bytes", i, f.Offset, end, len(content))
		}
		if got := string(content[f.Offset:end]); got != f.Text {
			return fmt.Errorf("finding %d: text %q, content at offset is %q", i, f.Text, got)
		}
		lineNo, err := safecast.Conv[uint32](f.Line + 1)
		if err != nil {
			return fmt.Errorf("finding %d: line %d: %w", i, f.Line, err)
		}
		line := file.GetLine(lineNo)
		if line != f.Text && strings.TrimSuffix(line, "\r") != f.Text {
			return fmt.Errorf("finding %d: text %q, line %d is %q", i, f.Text, f.Line+1, line)
		}
		if f.Start < 0 || f.Start > f.End || f.End > len(f.Text) {
			return fmt.Errorf("finding %d: keyword range [%d,%d) outside %q", i, f.Start, f.End, f.Text)
		}
	}
	return nil
}

// CheckIssues verifies that syntax issue spans lie inside content.
func CheckIssues(content []byte, issues []cparse.SyntaxIssue) error {
	for i, is := range issues {
		if is.Start > is.End || int(is.End) > len(content) {
			return fmt.Errorf("issue %d: span [%d,%d) outside content of %d bytes", i, is.Start, is.End, len(content))
		}
		if is.Missing && is.Node == "" {
			return fmt.Errorf("issue %d: missing node without a name", i)
		}
	}
	return nil
}

// CheckDecls verifies that top-level declarations are ordered, disjoint and
// inside content, with 1-based lines.
func CheckDecls(content []byte, decls []cparse.Decl) error {
	var prevEnd uint32
	for i, d := range decls {
		if d.Start > d.End || int(d.End) > len(content) {
			return fmt.Errorf("decl %d (%s): span [%d,%d) outside content of %d bytes", i, d.Kind, d.Start, d.End, len(content))
		}
		if d.Start < prevEnd {
			return fmt.Errorf("decl %d (%s): starts at %d before previous end %d", i, d.Kind, d.Start, prevEnd)
		}
		if d.Line == 0 {
			return fmt.Errorf("decl %d (%s): line must be 1-based", i, d.Kind)
		}
		if d.Kind == "" {
			return fmt.Errorf("decl %d: empty kind", i)
		}
		prevEnd = d.End
	}
	return nil
}
