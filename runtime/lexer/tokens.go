package lexer

// TokenType represents lexical tokens of the stylesheet subset
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Variables
	VARIABLE // @name, @@name

	// Content
	IDENT    // selectors, property names, keywords, numbers with units
	HASH     // #fff, #header
	FUNCTION // rgb(0, 0, 0), url(a.png), (max-width: 600px)
	STRING   // "..." or '...'

	// Punctuation
	COLON     // :
	SEMICOLON // ;
	COMMA     // ,
	LBRACE    // {
	RBRACE    // }
)

// Token represents a lexical token
type Token struct {
	Type           TokenType
	Text           []byte
	Position       Position
	HasSpaceBefore bool // True if whitespace or a comment preceded this token
}

// String returns the token text as a string (for testing and debugging)
func (t Token) String() string {
	return string(t.Text)
}

// Position represents a position in the source code
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// String returns the token type name
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case ILLEGAL:
		return "ILLEGAL"
	case VARIABLE:
		return "VARIABLE"
	case IDENT:
		return "IDENT"
	case HASH:
		return "HASH"
	case FUNCTION:
		return "FUNCTION"
	case STRING:
		return "STRING"
	case COLON:
		return "COLON"
	case SEMICOLON:
		return "SEMICOLON"
	case COMMA:
		return "COMMA"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	default:
		return "UNKNOWN"
	}
}

// singleCharTokens maps punctuation bytes to their token type
var singleCharTokens = [128]TokenType{
	':': COLON,
	';': SEMICOLON,
	',': COMMA,
	'{': LBRACE,
	'}': RBRACE,
}

// isPunct reports whether ch terminates a word
func isPunct(ch byte) bool {
	return ch < 128 && singleCharTokens[ch] != EOF
}
