package cparse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// Parser parses C translation units.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a parser bound to the C grammar.
func NewParser() *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())
	return &Parser{parser: parser}
}

// Close releases the underlying parser.
func (p *Parser) Close() {
	p.parser.Close()
}

// Parse parses content. Invalid C yields a *SyntaxError listing every
// ERROR and MISSING node in source order; other errors come from the
// parser itself (for example a cancelled context).
func (p *Parser) Parse(ctx context.Context, content []byte) (*Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter: %w", err)
	}
	root := tree.RootNode()
	if root.HasError() {
		var issues []SyntaxIssue
		collectIssues(root, &issues)
		tree.Close()
		return nil, &SyntaxError{Issues: issues}
	}
	return &Tree{tree: tree, src: content}, nil
}

func collectIssues(n *sitter.Node, out *[]SyntaxIssue) {
	switch {
	case n.IsMissing():
		*out = append(*out, issueAt(n, true))
		return
	case n.Type() == "ERROR":
		*out = append(*out, issueAt(n, false))
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() || child.IsMissing() {
			collectIssues(child, out)
		}
	}
}

func issueAt(n *sitter.Node, missing bool) SyntaxIssue {
	pt := n.StartPoint()
	return SyntaxIssue{
		Start:   n.StartByte(),
		End:     n.EndByte(),
		Row:     pt.Row,
		Column:  pt.Column,
		Missing: missing,
		Node:    n.Type(),
	}
}
