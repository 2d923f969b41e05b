package parser

import (
	"fmt"
	"strings"

	cperrors "github.com/opal-lang/colorprop/core/errors"
	"github.com/opal-lang/colorprop/runtime/lexer"
)

// ParseError represents a parse error with location and context information
type ParseError struct {
	// Location
	Filename string         // Source filename (empty for stdin/string)
	Position lexer.Position // Line, column, offset

	// Core error info
	Message string // Clear, specific: "expected '}'"
	Context string // What we were parsing: "rule .nav"

	// What went wrong
	Got lexer.TokenType // What we found instead

	// How to fix it
	Suggestion string // Actionable fix: "close the block opened at 3:7"
}

// Error implements the error interface
func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Filename != "" {
		b.WriteString(e.Filename)
		b.WriteByte(':')
	}
	fmt.Fprintf(&b, "%d:%d: %s", e.Position.Line, e.Position.Column, e.Message)
	if e.Context != "" {
		b.WriteString(" in ")
		b.WriteString(e.Context)
	}
	if e.Suggestion != "" {
		b.WriteString(" (")
		b.WriteString(e.Suggestion)
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap exposes the error kind so callers can use cperrors.IsKind.
func (e *ParseError) Unwrap() error {
	return cperrors.New(cperrors.ParseError, "%s", e.Message).
		WithContext("line", e.Position.Line).
		WithContext("column", e.Position.Column)
}
