// Package directive holds the catalog of C preprocessor directives and
// predefined macros that cguard refuses to let through.
//
// The catalog is a single ordered table. Row i describes Kind(i): its
// canonical display form, its class and the pattern that detects it. Two
// classes exist:
//
//   - ClassDirective: `#define`, `#include`, ... They must start a line, so the
//     pattern is anchored at line start and only allows Unicode White_Space
//     before the `#`.
//   - ClassMacro: `__LINE__`, `__FILE__`, ... They may appear anywhere in an
//     expression, so the pattern is an unanchored literal.
//
// Detection is purely lexical. A string literal or comment that contains
// `#include` at line start or `__LINE__` anywhere is reported just like real
// usage; callers are expected to fail closed.
//
// A Catalog is immutable once built and may be shared by any number of
// goroutines.
package directive
