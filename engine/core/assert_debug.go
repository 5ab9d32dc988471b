//go:build debug

package core

import "fmt"

// AssertionsEnabled reports whether Assert checks its condition.
const AssertionsEnabled = true

// Assert panics with the formatted message when cond is false. It only checks
// with the debug build tag. Release builds still evaluate the arguments, so
// hot paths guard the call with AssertionsEnabled.
func Assert(cond bool, msg string, args ...interface{}) {
	if !cond {
		m := fmt.Sprintf(msg, args...)
		LogError("assertion failed: %s", m)
		panic("assertion failed: " + m)
	}
}
