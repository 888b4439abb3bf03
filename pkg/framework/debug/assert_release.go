//go:build !debug

package debug

// Assert is compiled out without the 'debug' build tag; callers must handle
// the failing condition themselves.
func Assert(cond bool, format string, args ...interface{}) {}

// Asserts reports whether assertions are compiled in.
const Asserts = false
