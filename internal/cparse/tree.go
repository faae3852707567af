package cparse

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Tree is a successfully parsed translation unit.
type Tree struct {
	tree *sitter.Tree
	src  []byte
}

// Decl is a named top-level node of a translation unit.
type Decl struct {
	Kind  string // grammar node type, e.g. function_definition
	Name  string // declared identifier, "" when the node declares none
	Start uint32
	End   uint32
	Line  uint32 // 1-based
}

// Root returns the translation_unit node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Close frees the tree. The tree must not be used afterwards.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// TopLevel lists the named children of the translation unit.
func (t *Tree) TopLevel() []Decl {
	root := t.Root()
	n := int(root.NamedChildCount())
	out := make([]Decl, 0, n)
	for i := range n {
		child := root.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, Decl{
			Kind:  child.Type(),
			Name:  declName(child, t.src),
			Start: child.StartByte(),
			End:   child.EndByte(),
			Line:  child.StartPoint().Row + 1,
		})
	}
	return out
}

// declName follows declarator fields down to the declared identifier.
func declName(n *sitter.Node, src []byte) string {
	for depth := 0; n != nil && depth < 16; depth++ {
		switch n.Type() {
		case "identifier", "type_identifier", "field_identifier":
			return n.Content(src)
		case "struct_specifier", "union_specifier", "enum_specifier":
			if name := n.ChildByFieldName("name"); name != nil {
				return name.Content(src)
			}
			return ""
		}
		n = n.ChildByFieldName("declarator")
	}
	return ""
}
