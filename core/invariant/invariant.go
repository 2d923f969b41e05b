// Package invariant provides contract assertions for the color pass.
//
// Assertions guard programming errors inside the compiler: a violated
// precondition means a caller broke the contract, not that the stylesheet is
// invalid. Stylesheet problems are always reported as returned errors.
//
// Every helper panics with a "<KIND> VIOLATION" message that names the file
// and line of the failing check.
package invariant

import (
	"fmt"
	"reflect"
	"runtime"
)

// Precondition checks an input contract at function entry.
//
//	func (c *Cache) Insert(name string, b *types.Binding) {
//	    invariant.Precondition(name != "", "cache key must not be empty")
//	    // ...
//	}
func Precondition(condition bool, format string, args ...any) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks a result contract before returning.
func Postcondition(condition bool, format string, args ...any) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks internal consistency while a function runs, for example
// that a render loop made progress or that the cache was not rebound.
func Invariant(condition bool, format string, args ...any) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil, including typed nils such as (*Binding)(nil)
// stored in an interface.
func NotNil(value any, name string) {
	if isNil(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}

// fail panics with the formatted message and the location of the failed check.
func fail(kind, format string, args ...any) {
	msg := kind + " VIOLATION: " + fmt.Sprintf(format, args...)

	// Skip runtime.Callers, fail and the exported helper.
	pc := make([]uintptr, 1)
	if runtime.Callers(3, pc) > 0 {
		frame, _ := runtime.CallersFrames(pc).Next()
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}

	panic(msg)
}
