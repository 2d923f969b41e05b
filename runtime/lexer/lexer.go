// Package lexer tokenizes the Less subset understood by the compiler:
// variables, rule blocks, property declarations and comments. Function
// calls and parenthesized groups are kept whole so the parser never has to
// balance parentheses.
package lexer

import (
	"log/slog"
	"os"
)

// LexerOpt represents a lexer configuration option
type LexerOpt func(*LexerConfig)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	logger *slog.Logger
}

// WithLogger routes token tracing to logger
func WithLogger(logger *slog.Logger) LexerOpt {
	return func(c *LexerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Lexer converts stylesheet source into tokens
type Lexer struct {
	input    []byte
	position int
	line     int
	column   int

	consumed []Token // Tokens already handed out by NextToken
	done     bool

	logger *slog.Logger
}

// NewLexer creates a new lexer instance with optional configuration
func NewLexer(input string, opts ...LexerOpt) *Lexer {
	config := &LexerConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.logger == nil {
		config.logger = defaultLogger()
	}

	l := &Lexer{logger: config.logger}
	l.Init([]byte(input))
	return l
}

// defaultLogger traces to stderr when COLORPROP_DEBUG_LEXER is set
func defaultLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("COLORPROP_DEBUG_LEXER") != "" {
		logLevel = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove timestamp and level for cleaner output
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Init resets the lexer with new input (following Go scanner pattern)
func (l *Lexer) Init(input []byte) {
	l.input = input
	l.position = 0
	l.line = 1
	l.column = 1
	l.consumed = l.consumed[:0]
	l.done = false
}

// NextToken returns the next token using streaming interface.
// Once EOF is returned every further call returns EOF again.
func (l *Lexer) NextToken() Token {
	if l.done {
		return Token{Type: EOF, Position: l.pos()}
	}

	token := l.lexToken()
	l.done = token.Type == EOF
	l.consumed = append(l.consumed, token)

	l.logger.Debug("token",
		"type", token.Type.String(),
		"text", token.String(),
		"line", token.Position.Line,
		"column", token.Position.Column)
	return token
}

// GetTokens returns all tokens using batch interface, including those
// already consumed via NextToken(). The last token is always EOF.
func (l *Lexer) GetTokens() []Token {
	for !l.done {
		l.NextToken()
	}
	tokens := make([]Token, len(l.consumed))
	copy(tokens, l.consumed)
	return tokens
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.position}
}

func (l *Lexer) peek(n int) byte {
	if l.position+n >= len(l.input) {
		return 0
	}
	return l.input[l.position+n]
}

func (l *Lexer) advance() {
	if l.position >= len(l.input) {
		return
	}
	if l.input[l.position] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.position++
}

// lexToken does the actual lexing work
func (l *Lexer) lexToken() Token {
	hasSpace, illegal := l.skipWhitespaceAndComments()
	if illegal != nil {
		return *illegal
	}

	start := l.pos()
	if l.position >= len(l.input) {
		return Token{Type: EOF, Position: start, HasSpaceBefore: hasSpace}
	}

	ch := l.input[l.position]
	var typ TokenType

	switch {
	case isPunct(ch):
		l.advance()
		typ = singleCharTokens[ch]
	case ch == '@':
		typ = l.lexVariable()
	case ch == '"' || ch == '\'':
		typ = l.lexString(ch)
	case ch == '(':
		typ = l.lexGroup()
	case ch == ')':
		l.advance()
		typ = ILLEGAL
	default:
		l.lexWord()
		typ = IDENT
		if ch == '#' {
			typ = HASH
		}
		if l.peek(0) == '(' {
			typ = l.lexGroup()
		}
	}

	return Token{
		Type:           typ,
		Text:           l.input[start.Offset:l.position],
		Position:       start,
		HasSpaceBefore: hasSpace,
	}
}

// skipWhitespaceAndComments reports whether anything was skipped. An
// unterminated block comment comes back as an ILLEGAL token.
func (l *Lexer) skipWhitespaceAndComments() (bool, *Token) {
	skipped := false
	for l.position < len(l.input) {
		ch := l.input[l.position]
		switch {
		case isWhitespace(ch):
			l.advance()
		case ch == '/' && l.peek(1) == '/':
			for l.position < len(l.input) && l.input[l.position] != '\n' {
				l.advance()
			}
		case ch == '/' && l.peek(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()
			for {
				if l.position >= len(l.input) {
					return skipped, &Token{
						Type:     ILLEGAL,
						Text:     l.input[start.Offset:],
						Position: start,
					}
				}
				if l.input[l.position] == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return skipped, nil
		}
		skipped = true
	}
	return skipped, nil
}

// lexVariable reads @name or @@name. A bare sigil is ILLEGAL.
func (l *Lexer) lexVariable() TokenType {
	for l.peek(0) == '@' {
		l.advance()
	}
	n := 0
	for isNameChar(l.peek(0)) {
		l.advance()
		n++
	}
	if n == 0 {
		return ILLEGAL
	}
	return VARIABLE
}

// lexString reads a quoted string including its quotes. Strings may not
// span lines.
func (l *Lexer) lexString(quote byte) TokenType {
	l.advance()
	for l.position < len(l.input) {
		ch := l.input[l.position]
		switch ch {
		case '\\':
			l.advance()
			if l.position < len(l.input) && l.input[l.position] != '\n' {
				l.advance()
			}
		case '\n':
			return ILLEGAL
		case quote:
			l.advance()
			return STRING
		default:
			l.advance()
		}
	}
	return ILLEGAL
}

// lexGroup reads a balanced parenthesized group starting at '(' so that
// commas, colons and semicolons inside stay part of one token.
func (l *Lexer) lexGroup() TokenType {
	depth := 0
	for l.position < len(l.input) {
		ch := l.input[l.position]
		switch ch {
		case '(':
			depth++
			l.advance()
		case ')':
			depth--
			l.advance()
			if depth == 0 {
				return FUNCTION
			}
		case '"', '\'':
			if l.lexString(ch) == ILLEGAL {
				return ILLEGAL
			}
		default:
			l.advance()
		}
	}
	return ILLEGAL
}

// lexWord reads a run of characters up to the next delimiter.
func (l *Lexer) lexWord() {
	for l.position < len(l.input) {
		ch := l.input[l.position]
		if isWhitespace(ch) || isPunct(ch) || ch == '(' || ch == ')' || ch == '"' || ch == '\'' {
			return
		}
		if ch == '/' && (l.peek(1) == '/' || l.peek(1) == '*') {
			return
		}
		l.advance()
	}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isNameChar(ch byte) bool {
	return ch == '-' || ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch >= 0x80
}
