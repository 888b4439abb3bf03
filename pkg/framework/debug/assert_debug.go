//go:build debug

package debug

import "fmt"

// Assert panics when cond is false. Only compiled with the 'debug' build tag.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}

// Asserts reports whether assertions are compiled in.
const Asserts = true
