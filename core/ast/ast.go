// Package ast holds the syntax tree of a parsed stylesheet.
package ast

import (
	"strings"
)

// Position represents source location information
type Position struct {
	Line   int
	Column int
	Offset int // Byte offset in source
}

// Node represents any node in the AST
type Node interface {
	Pos() Position
}

// Statement is anything that can appear in a block.
type Statement interface {
	Node
	statement()
}

// Stylesheet is the root of a parsed file.
type Stylesheet struct {
	Name string // file name, empty for stdin
	Body []Statement
}

func (s *Stylesheet) Pos() Position {
	return Position{Line: 1, Column: 1}
}

// VarDecl is "@name: value;".
type VarDecl struct {
	Name     string // with sigil
	Value    Expr
	Position Position
}

// Rule is "selector { body }". At-rules with a block ("@media ...") are
// rules whose selector starts with "@".
type Rule struct {
	Selector string
	Body     []Statement
	Position Position
}

// IsAtRule reports whether r is an at-rule block such as @media.
func (r *Rule) IsAtRule() bool {
	return strings.HasPrefix(r.Selector, "@")
}

// Declaration is "property: value;".
type Declaration struct {
	Property string
	Value    Expr
	Position Position
}

// AtStatement is a bodiless at-rule such as @import, kept verbatim.
type AtStatement struct {
	Text     string
	Position Position
}

func (d *VarDecl) Pos() Position     { return d.Position }
func (r *Rule) Pos() Position        { return r.Position }
func (d *Declaration) Pos() Position { return d.Position }
func (a *AtStatement) Pos() Position { return a.Position }

func (*VarDecl) statement()     {}
func (*Rule) statement()        {}
func (*Declaration) statement() {}
func (*AtStatement) statement() {}

// TermKind classifies a value term.
type TermKind int

const (
	TermText     TermKind = iota // keywords, numbers, strings, functions
	TermVariable                 // @name or @@name
	TermColor                    // a literal color
	TermComma                    // ,
)

func (k TermKind) String() string {
	switch k {
	case TermText:
		return "text"
	case TermVariable:
		return "variable"
	case TermColor:
		return "color"
	case TermComma:
		return "comma"
	default:
		return "unknown"
	}
}

// Term is one token of a value.
type Term struct {
	Kind        TermKind
	Text        string
	SpaceBefore bool
	Position    Position
}

// Expr is a property or variable value: the terms between ':' and ';'.
type Expr struct {
	Terms []Term
}

// Single returns the only term of e.
func (e Expr) Single() (Term, bool) {
	if len(e.Terms) != 1 {
		return Term{}, false
	}
	return e.Terms[0], true
}

// HasVariables reports whether any term is a variable reference.
func (e Expr) HasVariables() bool {
	for _, t := range e.Terms {
		if t.Kind == TermVariable {
			return true
		}
	}
	return false
}

// String renders the terms with their original spacing collapsed to single
// spaces.
func (e Expr) String() string {
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = t.Text
	}
	return e.Join(parts)
}

// Join renders replacement text for each term with the spacing of e.
// len(parts) must equal len(e.Terms).
func (e Expr) Join(parts []string) string {
	var b strings.Builder
	for i, t := range e.Terms {
		if i > 0 && t.SpaceBefore {
			b.WriteByte(' ')
		}
		b.WriteString(parts[i])
	}
	return b.String()
}

// Walk calls fn for every statement in body, depth first in document order.
// Returning false from fn skips the children of a rule.
func Walk(body []Statement, fn func(Statement) bool) {
	for _, st := range body {
		if !fn(st) {
			continue
		}
		if r, ok := st.(*Rule); ok {
			Walk(r.Body, fn)
		}
	}
}
