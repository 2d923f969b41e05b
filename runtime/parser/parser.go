// Package parser builds an ast.Stylesheet from Less source.
//
// A statement is the run of tokens up to the next ';', '{' or '}'. Runs
// ending in '{' are rules; the rest are variable declarations, property
// declarations or bodiless at-rules.
package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/opal-lang/colorprop/core/ast"
	"github.com/opal-lang/colorprop/core/types"
	"github.com/opal-lang/colorprop/runtime/lexer"
)

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// ParserConfig holds parser configuration
type ParserConfig struct {
	filename string
	logger   *slog.Logger
}

// WithFilename sets the name reported in errors and on the stylesheet
func WithFilename(name string) ParserOpt {
	return func(c *ParserConfig) {
		c.filename = name
	}
}

// WithLogger routes lexer and parser tracing to logger
func WithLogger(logger *slog.Logger) ParserOpt {
	return func(c *ParserConfig) {
		c.logger = logger
	}
}

// parser is the internal parser state
type parser struct {
	filename string
	tokens   []lexer.Token
	pos      int
	logger   *slog.Logger
}

// Parse parses source into a stylesheet. The first syntax error stops the
// parse and is returned as a *ParseError.
func Parse(source []byte, opts ...ParserOpt) (*ast.Stylesheet, error) {
	config := &ParserConfig{}
	for _, opt := range opts {
		opt(config)
	}

	tokens := lexer.NewLexer(string(source), lexer.WithLogger(config.logger)).GetTokens()
	p := &parser{
		filename: config.filename,
		tokens:   tokens,
		logger:   config.logger,
	}

	body, err := p.block(nil)
	if err != nil {
		return nil, err
	}
	return &ast.Stylesheet{Name: config.filename, Body: body}, nil
}

// ParseString is a convenience wrapper for tests
func ParseString(input string, opts ...ParserOpt) (*ast.Stylesheet, error) {
	return Parse([]byte(input), opts...)
}

// ParseValue parses value text such as "1px solid @border" into an
// expression.
func ParseValue(text string) (ast.Expr, error) {
	tokens := lexer.NewLexer(text, lexer.WithLogger(discard)).GetTokens()
	p := &parser{tokens: tokens}

	for _, tok := range tokens[:len(tokens)-1] {
		switch tok.Type {
		case lexer.ILLEGAL:
			return ast.Expr{}, p.illegal(tok, "value")
		case lexer.SEMICOLON, lexer.LBRACE, lexer.RBRACE:
			return ast.Expr{}, p.errorAt(tok, "value", fmt.Sprintf("unexpected '%s'", tok.String()), "")
		}
	}
	return expr(tokens[:len(tokens)-1]), nil
}

var discard = slog.New(slog.DiscardHandler)

func (p *parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

// block parses statements until the closing brace of open, or EOF at the
// top level.
func (p *parser) block(open *lexer.Token) ([]ast.Statement, error) {
	var body []ast.Statement

	for {
		tok := p.peek()
		switch tok.Type {
		case lexer.EOF:
			if open != nil {
				return nil, p.errorAt(tok, "block", "expected '}'",
					fmt.Sprintf("close the block opened at %d:%d", open.Position.Line, open.Position.Column))
			}
			return body, nil

		case lexer.RBRACE:
			if open == nil {
				return nil, p.errorAt(tok, "stylesheet", "unexpected '}'", "no block is open")
			}
			p.advance()
			return body, nil

		case lexer.SEMICOLON:
			p.advance()
			continue
		}

		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, st)
	}
}

// statement parses one rule or declaration.
func (p *parser) statement() (ast.Statement, error) {
	start := p.pos
	for {
		tok := p.peek()
		if tok.Type == lexer.ILLEGAL {
			return nil, p.illegal(tok, "statement")
		}
		if isTerminator(tok.Type) {
			break
		}
		p.advance()
	}
	toks := p.tokens[start:p.pos]
	end := p.peek()

	if end.Type == lexer.LBRACE {
		if len(toks) == 0 {
			return nil, p.errorAt(end, "rule", "missing selector", "")
		}
		selector := joinTokens(toks)
		p.advance()
		if p.logger != nil {
			p.logger.Debug("enter rule", "selector", selector, "line", toks[0].Position.Line)
		}
		body, err := p.block(&end)
		if err != nil {
			return nil, err
		}
		return &ast.Rule{Selector: selector, Body: body, Position: position(toks[0])}, nil
	}

	if end.Type == lexer.SEMICOLON {
		p.advance()
	}

	first := toks[0]
	if first.Type == lexer.VARIABLE {
		if len(toks) < 2 || toks[1].Type != lexer.COLON {
			return &ast.AtStatement{Text: joinTokens(toks), Position: position(first)}, nil
		}
		if len(toks) == 2 {
			return nil, p.errorAt(toks[1], "variable "+first.String(), "missing value", "")
		}
		return &ast.VarDecl{Name: first.String(), Value: expr(toks[2:]), Position: position(first)}, nil
	}

	colon := -1
	for i, t := range toks {
		if t.Type == lexer.COLON {
			colon = i
			break
		}
	}
	switch {
	case colon < 0:
		return nil, p.errorAt(end, "declaration "+joinTokens(toks), "expected ':'", "")
	case colon == 0:
		return nil, p.errorAt(first, "declaration", "missing property name", "")
	case colon == len(toks)-1:
		return nil, p.errorAt(toks[colon], "declaration "+joinTokens(toks[:colon]), "missing value", "")
	}

	return &ast.Declaration{
		Property: joinTokens(toks[:colon]),
		Value:    expr(toks[colon+1:]),
		Position: position(first),
	}, nil
}

func isTerminator(t lexer.TokenType) bool {
	return t == lexer.SEMICOLON || t == lexer.LBRACE || t == lexer.RBRACE || t == lexer.EOF
}

func (p *parser) errorAt(tok lexer.Token, context, message, suggestion string) *ParseError {
	return &ParseError{
		Filename:   p.filename,
		Position:   tok.Position,
		Message:    message,
		Context:    context,
		Got:        tok.Type,
		Suggestion: suggestion,
	}
}

func (p *parser) illegal(tok lexer.Token, context string) *ParseError {
	text := tok.String()
	message := fmt.Sprintf("unexpected %q", text)
	switch {
	case strings.HasPrefix(text, "/*"):
		message = "unterminated comment"
	case strings.HasPrefix(text, `"`), strings.HasPrefix(text, "'"):
		message = "unterminated string"
	case strings.HasSuffix(text, "@"):
		message = "variable name expected after '@'"
	case strings.Contains(text, "("):
		message = "missing ')'"
	}
	return p.errorAt(tok, context, message, "")
}

// joinTokens rebuilds source text, collapsing whitespace to single spaces.
func joinTokens(toks []lexer.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && t.HasSpaceBefore {
			b.WriteByte(' ')
		}
		b.Write(t.Text)
	}
	return b.String()
}

func expr(toks []lexer.Token) ast.Expr {
	terms := make([]ast.Term, 0, len(toks))
	for _, t := range toks {
		terms = append(terms, ast.Term{
			Kind:        termKind(t),
			Text:        t.String(),
			SpaceBefore: t.HasSpaceBefore,
			Position:    position(t),
		})
	}
	return ast.Expr{Terms: terms}
}

func termKind(t lexer.Token) ast.TermKind {
	switch t.Type {
	case lexer.VARIABLE:
		return ast.TermVariable
	case lexer.COMMA:
		return ast.TermComma
	case lexer.HASH, lexer.IDENT, lexer.FUNCTION:
		if _, ok := types.ParseColor(t.String()); ok {
			return ast.TermColor
		}
	}
	return ast.TermText
}

func position(t lexer.Token) ast.Position {
	return ast.Position{Line: t.Position.Line, Column: t.Position.Column, Offset: t.Position.Offset}
}
