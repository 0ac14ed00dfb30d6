//go:build !debug

package debug

func Assert(cond bool, args ...interface{}) {}

func Assertf(cond bool, format string, args ...interface{}) {}
