// Package fuzztests houses Go fuzz harnesses for the guard and the C parser
// wrapper. They check that arbitrary input never panics and that the
// scanner's results hold their invariants under both regex engines.
//
// Seeds come from testdata/*.c at the repository root plus a fixed list of
// edge cases.
package fuzztests
