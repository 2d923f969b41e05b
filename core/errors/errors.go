// Package errors defines the structured errors reported by the color pass.
//
// Every error carries a Kind so callers (the traversal, the CLI) can decide
// whether to skip the offending declaration or abort the run.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	// Variable linking
	UnsupportedIndirection Kind = "UNSUPPORTED_INDIRECTION"
	UnresolvedReference    Kind = "UNRESOLVED_REFERENCE"
	MissingFrameBinding    Kind = "MISSING_FRAME_BINDING"
	RecursiveVariable      Kind = "RECURSIVE_VARIABLE"

	// Code generation
	CyclicAlias Kind = "CYCLIC_ALIAS"

	// Input
	ParseError  Kind = "PARSE_ERROR"
	ConfigError Kind = "CONFIG_ERROR"
)

// Error is a structured error with a kind and optional context values.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if s, ok := e.Context["suggestion"].(string); ok && s != "" {
		b.WriteString(" (did you mean ")
		b.WriteString(s)
		b.WriteString("?)")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same kind, so errors.Is(err, &Error{Kind: k})
// works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithContext adds a context value and returns the error for chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Value returns a context value by key.
func (e *Error) Value(key string) (any, bool) {
	v, ok := e.Context[key]
	return v, ok
}

// Keys returns the context keys in sorted order.
func (e *Error) Keys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Context: make(map[string]any),
	}
}

// Wrap creates an Error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	e := New(kind, format, args...)
	e.Cause = cause
	return e
}

// NewUnsupportedIndirection reports a dynamic variable name that needs more
// than one resolution hop.
func NewUnsupportedIndirection(name, reason string) *Error {
	return New(UnsupportedIndirection, "variable %s: %s", name, reason).
		WithContext("variable", name)
}

// NewUnresolvedReference reports a cache lookup for a name that was never
// materialized.
func NewUnresolvedReference(name string) *Error {
	return New(UnresolvedReference, "trying to access unresolved variable reference for %q", name).
		WithContext("variable", name)
}

// NewMissingFrameBinding reports a variable absent from every visible scope.
// suggestion may be empty.
func NewMissingFrameBinding(name, suggestion string) *Error {
	e := New(MissingFrameBinding, "variable %s is undefined", name).
		WithContext("variable", name)
	if suggestion != "" {
		e.WithContext("suggestion", suggestion)
	}
	return e
}

// NewRecursiveVariable reports an alias cycle found while evaluating name.
func NewRecursiveVariable(name string, path []string) *Error {
	return New(RecursiveVariable, "recursive variable definition for %s (%s)", name, strings.Join(path, " -> ")).
		WithContext("variable", name).
		WithContext("path", path)
}

// NewCyclicAlias reports a cache entry that refers back to a binding that is
// still being rendered.
func NewCyclicAlias(name string) *Error {
	return New(CyclicAlias, "alias chain for %s refers back to itself", name).
		WithContext("variable", name)
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Kind == kind {
		return true
	}
	return errors.Is(err, &Error{Kind: kind})
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
