//go:build !debug

package core

// AssertionsEnabled reports whether Assert checks its condition.
const AssertionsEnabled = false

// Assert is a no-op without the debug build tag. Its arguments are still
// evaluated at the call site.
func Assert(cond bool, msg string, args ...interface{}) {}
