package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		r, g, b uint8
		alpha   float64
	}{
		{"#fff", 255, 255, 255, 1},
		{"#0088cc", 0, 136, 204, 1},
		{"#00000080", 0, 0, 0, 128.0 / 255},
		{"#f008", 255, 0, 0, 136.0 / 255},
		{"rgb(10, 20, 30)", 10, 20, 30, 1},
		{"rgba(0, 0, 0, .5)", 0, 0, 0, 0.5},
		{"rgb(100%, 0%, 50%)", 255, 0, 128, 1},
		{"red", 255, 0, 0, 1},
		{"Navy", 0, 0, 128, 1},
		{"transparent", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, ok := ParseColor(tt.input)
			require.True(t, ok)
			r, g, b, a := c.RGBA()
			assert.Equal(t, tt.r, r)
			assert.Equal(t, tt.g, g)
			assert.Equal(t, tt.b, b)
			assert.InDelta(t, tt.alpha, a, 0.0001)
			assert.Equal(t, tt.input, c.String(), "source lexeme is rendered back verbatim")
		})
	}
}

func TestParseColorRejects(t *testing.T) {
	for _, input := range []string{"", "#ff", "#ggg", "#fffff", "rgb(1, 2)", "rgba(a, b, c, d)", "solid", "10px"} {
		_, ok := ParseColor(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestColorStringWithoutSource(t *testing.T) {
	assert.Equal(t, "#0a141e", NewColor(10, 20, 30, 1).String())
	assert.Equal(t, "rgba(10, 20, 30, 0.25)", NewColor(10, 20, 30, 0.25).String())
}

func TestColorWithNameCopies(t *testing.T) {
	c, _ := ParseColor("#fff")
	named := c.WithName("base")

	assert.Equal(t, "", c.Name(), "original is unchanged")
	assert.Equal(t, "@base", named.Name())
	assert.True(t, c.Equal(named))
	assert.Equal(t, "", named.WithName("").Name())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "@a", VarName("a"))
	assert.Equal(t, "@a", VarName("@a"))
	assert.Equal(t, "@@a", VarName("@@a"))
	assert.Equal(t, "a", PropName("@a"))
	assert.Equal(t, "a", PropName("a"))
}

func TestBinding(t *testing.T) {
	c, _ := ParseColor("#fff")
	root := NewBinding("b", 0, Literal(c.WithName("@b")))
	outer := NewBinding("@a", 7, Bound(root))

	assert.Equal(t, "@a", outer.Name())
	assert.Equal(t, "a", outer.PropName())
	assert.Equal(t, 7, outer.Index())
	assert.Equal(t, "@b", outer.SourceName())
	assert.Equal(t, "@b", root.SourceName())
	assert.Equal(t, "#fff", outer.Color().String())

	v := Bound(outer)
	assert.True(t, v.IsColor())
	assert.Equal(t, "#fff", v.String())
	lit, ok := v.LiteralColor()
	require.True(t, ok)
	assert.True(t, lit.Equal(c))
}

func TestBindingEmitGuard(t *testing.T) {
	c, _ := ParseColor("#000")
	b := NewBinding("@x", 0, Literal(c))

	require.True(t, b.BeginEmit())
	assert.True(t, b.Emitting())
	assert.False(t, b.BeginEmit(), "re-entry is refused")
	b.EndEmit()
	assert.False(t, b.Emitting())
	assert.True(t, b.BeginEmit())
}

func TestNewBindingRejectsNonColor(t *testing.T) {
	assert.Panics(t, func() {
		NewBinding("@x", 0, Keyword("solid"))
	})
}

func TestValueKinds(t *testing.T) {
	assert.Equal(t, "alias", Alias("x").Kind.String())
	assert.Equal(t, "@x", Alias("x").Text)
	assert.False(t, Keyword("1px").IsColor())
	assert.Equal(t, "1px", Keyword("1px").String())
	_, ok := Keyword("1px").LiteralColor()
	assert.False(t, ok)
}
