package cparse

import (
	"fmt"
	"strings"
)

// SyntaxIssue is one ERROR or MISSING node reported by the grammar.
type SyntaxIssue struct {
	Start   uint32 // byte offsets in the parsed content
	End     uint32
	Row     uint32 // 0-based
	Column  uint32 // 0-based, in bytes
	Missing bool
	Node    string // node type; "ERROR" for unparsable input
}

func (i SyntaxIssue) String() string {
	if i.Missing {
		return fmt.Sprintf("%d:%d: missing %q", i.Row+1, i.Column+1, i.Node)
	}
	return fmt.Sprintf("%d:%d: unexpected input", i.Row+1, i.Column+1)
}

// SyntaxError reports that content is not valid C.
type SyntaxError struct {
	Issues []SyntaxIssue
}

func (e *SyntaxError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "invalid C"
	case 1:
		return e.Issues[0].String()
	}
	var b strings.Builder
	b.WriteString(e.Issues[0].String())
	fmt.Fprintf(&b, " (and %d more)", len(e.Issues)-1)
	return b.String()
}
