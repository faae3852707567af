// Package cparse runs the tree-sitter C grammar over source that already
// passed the directive guard.
//
// A Parser wraps one tree-sitter parser and is not safe for concurrent use;
// create one per goroutine. Trees own C memory and must be closed.
package cparse
