package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cperrors "github.com/opal-lang/colorprop/core/errors"
	"github.com/opal-lang/colorprop/core/types"
)

func mustColor(t *testing.T, s string) types.Color {
	t.Helper()
	c, ok := types.ParseColor(s)
	require.True(t, ok, "parse %q", s)
	return c
}

func TestTrailOrder(t *testing.T) {
	tr := NewTrail()
	assert.True(t, tr.Record("b", "c"))
	assert.True(t, tr.Record("@a", "@b"))
	assert.False(t, tr.Record("a", "b"), "duplicate pair is ignored")

	want := []Edge{{"@b", "@c"}, {"@a", "@b"}}
	if diff := cmp.Diff(want, tr.Edges()); diff != "" {
		t.Errorf("Edges() mismatch (-want +got):\n%s", diff)
	}
	wantRev := []Edge{{"@a", "@b"}, {"@b", "@c"}}
	if diff := cmp.Diff(wantRev, tr.Reverse()); diff != "" {
		t.Errorf("Reverse() mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, tr.IsSource("a"))
	assert.True(t, tr.IsSource("@b"))
	assert.False(t, tr.IsSource("@c"))
	assert.Equal(t, 2, tr.Len())
}

func TestTrailEdgesIsACopy(t *testing.T) {
	tr := NewTrail()
	tr.Record("a", "b")
	edges := tr.Edges()
	edges[0].Source = "@mutated"
	assert.Equal(t, "@a", tr.Edges()[0].Source)
}

func TestCacheNormalization(t *testing.T) {
	c := NewCache()
	b := types.NewBinding("a", 0, types.Literal(mustColor(t, "#fff")))
	c.Insert("a", b)

	assert.True(t, c.Has("@a"))
	assert.True(t, c.Has("a"))
	got, ok := c.Lookup("@a")
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestCacheResolveUnknown(t *testing.T) {
	c := NewCache()
	_, err := c.Resolve("missing")
	require.Error(t, err)
	assert.True(t, cperrors.IsKind(err, cperrors.UnresolvedReference))
	assert.Contains(t, err.Error(), `"@missing"`)
}

func TestCacheMonotonic(t *testing.T) {
	c := NewCache()
	first := types.NewBinding("a", 0, types.Literal(mustColor(t, "#fff")))
	same := types.NewBinding("a", 3, types.Literal(mustColor(t, "white")))
	other := types.NewBinding("a", 0, types.Literal(mustColor(t, "#000")))

	assert.Same(t, first, c.Insert("a", first))
	assert.Same(t, first, c.Insert("@a", same), "equal color keeps the first entry")
	assert.Panics(t, func() { c.Insert("a", other) }, "different color must not rebind")

	got, _ := c.Lookup("a")
	assert.Same(t, first, got)
	assert.Equal(t, []string{"@a"}, c.Names())
}

func TestContextIsolation(t *testing.T) {
	a := NewContext()
	b := NewContext()

	a.Trail.Record("x", "y")
	a.Cache.Insert("x", types.NewBinding("x", 0, types.Literal(mustColor(t, "#fff"))))

	assert.Equal(t, 0, b.Trail.Len())
	assert.Equal(t, 0, b.Cache.Len())
	assert.True(t, b.Themeable)
	assert.NotNil(t, b.Logger)
}

func TestContextLiteralOutput(t *testing.T) {
	rc := NewContext(WithLiteralOutput(), WithLogger(nil))
	assert.False(t, rc.Themeable)
	assert.NotNil(t, rc.Logger)
}
