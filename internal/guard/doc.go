// Package guard rejects C source that uses the preprocessor.
//
// A Scanner walks the text one physical line at a time, asks the directive
// catalog which kinds match each line and stops at the first line that has
// any match. The result is either nil (safe to hand to a grammar parser) or
// a *DirectiveError naming the line, its text and the kind found. When a
// line matches several kinds the lowest catalog identity is reported.
//
// The scanner never logs and never fails on its own: every input is
// scannable, and a DirectiveError is its designed output rather than an
// internal fault. ParseError is the second error variant of the package; it
// is produced by callers that go on to parse text the scanner accepted.
package guard
