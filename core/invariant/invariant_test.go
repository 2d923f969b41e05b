package invariant_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/opal-lang/colorprop/core/invariant"
)

// expectViolation runs fn and checks that it panics with the given kind and text.
func expectViolation(t *testing.T, kind, text string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected %s panic", kind)
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, kind+" VIOLATION") {
			t.Errorf("expected %s VIOLATION, got: %s", kind, msg)
		}
		if !strings.Contains(msg, text) {
			t.Errorf("expected message to contain %q, got: %s", text, msg)
		}
		if !strings.Contains(msg, "invariant_test.go") {
			t.Errorf("expected caller location in message, got: %s", msg)
		}
	}()
	fn()
}

func TestPassingChecksDoNotPanic(t *testing.T) {
	name := "@primary"
	invariant.Precondition(name != "", "name set")
	invariant.Postcondition(len(name) > 1, "name has content")
	invariant.Invariant(name[0] == '@', "sigil present")
	invariant.NotNil(&name, "name")
	invariant.NotNil([]string{}, "names")
}

func TestPreconditionFail(t *testing.T) {
	expectViolation(t, "PRECONDITION", "cache key must not be empty", func() {
		invariant.Precondition(false, "cache key must not be empty")
	})
}

func TestPostconditionFail(t *testing.T) {
	expectViolation(t, "POSTCONDITION", "closers must be >= 0, got -1", func() {
		invariant.Postcondition(false, "closers must be >= 0, got %d", -1)
	})
}

func TestInvariantFail(t *testing.T) {
	expectViolation(t, "INVARIANT", "cache entry @a rebound", func() {
		invariant.Invariant(false, "cache entry %s rebound", "@a")
	})
}

func TestNotNilTypedNil(t *testing.T) {
	var p *strings.Builder
	expectViolation(t, "PRECONDITION", "sink must not be nil", func() {
		invariant.NotNil(p, "sink")
	})
}

func TestNotNilUntypedNil(t *testing.T) {
	expectViolation(t, "PRECONDITION", "context must not be nil", func() {
		invariant.NotNil(nil, "context")
	})
}
