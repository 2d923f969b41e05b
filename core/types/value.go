package types

import (
	"strings"

	"github.com/opal-lang/colorprop/core/invariant"
)

// VarName normalizes a variable name to its sigil form ("primary" -> "@primary").
// Names that already carry a sigil, including "@@indirect", are kept.
func VarName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name[0] == '@' {
		return name
	}
	return "@" + name
}

// PropName strips one sigil for custom-property output ("@primary" -> "primary").
func PropName(name string) string {
	name = strings.TrimSpace(name)
	return strings.TrimPrefix(name, "@")
}

// Kind tags the variant held by a Value.
type Kind int

const (
	KindKeyword Kind = iota // opaque non-color text
	KindLiteral             // literal color
	KindBound               // linked color variable
	KindAlias               // reference to another variable (frame store only)
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindLiteral:
		return "literal"
	case KindBound:
		return "bound"
	case KindAlias:
		return "alias"
	default:
		return "unknown"
	}
}

// Value is the tagged union passed between the evaluator, the linker and the
// code generator. Consumers switch on Kind instead of relying on the bound
// variant looking like a literal.
type Value struct {
	Kind    Kind
	Color   Color    // KindLiteral
	Binding *Binding // KindBound
	Text    string   // KindKeyword text, KindAlias variable name
}

// Literal wraps a literal color.
func Literal(c Color) Value {
	return Value{Kind: KindLiteral, Color: c}
}

// Bound wraps a linked color variable.
func Bound(b *Binding) Value {
	invariant.NotNil(b, "binding")
	return Value{Kind: KindBound, Binding: b}
}

// Keyword wraps opaque text.
func Keyword(text string) Value {
	return Value{Kind: KindKeyword, Text: text}
}

// Alias returns a value that refers to another variable.
func Alias(name string) Value {
	return Value{Kind: KindAlias, Text: VarName(name)}
}

// IsColor reports whether v is a literal or bound color.
func (v Value) IsColor() bool {
	return v.Kind == KindLiteral || v.Kind == KindBound
}

// LiteralColor returns the literal color behind v, looking through bindings.
func (v Value) LiteralColor() (Color, bool) {
	switch v.Kind {
	case KindLiteral:
		return v.Color, true
	case KindBound:
		return v.Binding.Color(), true
	}
	return Color{}, false
}

// String renders v without any custom-property wrapping.
func (v Value) String() string {
	switch v.Kind {
	case KindLiteral:
		return v.Color.String()
	case KindBound:
		return v.Binding.Color().String()
	default:
		return v.Text
	}
}

// Binding is a color variable linked during one compilation run. It wraps a
// literal color or another binding.
type Binding struct {
	name  string
	index int
	inner Value

	// Set only while the code generator is inside this binding.
	emitting bool
}

// NewBinding creates a binding named name around a color-valued inner value.
func NewBinding(name string, index int, inner Value) *Binding {
	invariant.Precondition(name != "", "binding name must not be empty")
	invariant.Precondition(inner.IsColor(), "binding for %s must wrap a color, got %s", name, inner.Kind)
	return &Binding{
		name:  VarName(name),
		index: index,
		inner: inner,
	}
}

// Name returns the sigil form of the variable name.
func (b *Binding) Name() string {
	return b.name
}

// PropName returns the custom-property name without the leading dashes.
func (b *Binding) PropName() string {
	return PropName(b.name)
}

// Index returns the source position of the reference that produced b.
func (b *Binding) Index() int {
	return b.index
}

// Inner returns the wrapped value.
func (b *Binding) Inner() Value {
	return b.inner
}

// Color returns the literal at the bottom of the binding.
func (b *Binding) Color() Color {
	c, _ := b.inner.LiteralColor()
	return c
}

// SourceName returns the name the wrapped value carries: the provenance of a
// literal or the name of a wrapped binding. Empty for anonymous literals.
func (b *Binding) SourceName() string {
	switch b.inner.Kind {
	case KindBound:
		return b.inner.Binding.name
	case KindLiteral:
		return b.inner.Color.Name()
	}
	return ""
}

// BeginEmit marks b as being rendered. It returns false if b is already
// being rendered further up the stack.
func (b *Binding) BeginEmit() bool {
	if b.emitting {
		return false
	}
	b.emitting = true
	return true
}

// EndEmit clears the emission mark so b can be rendered for another site.
func (b *Binding) EndEmit() {
	b.emitting = false
}

// Emitting reports whether b is currently being rendered.
func (b *Binding) Emitting() bool {
	return b.emitting
}
