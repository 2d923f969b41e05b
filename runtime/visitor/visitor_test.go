package visitor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/colorprop/core/ast"
	"github.com/opal-lang/colorprop/runtime/parser"
	"github.com/opal-lang/colorprop/runtime/resolve"
)

func TestVisitRecordsAliasesInDocumentOrder(t *testing.T) {
	sheet, err := parser.ParseString(`
@c: #fff;
@b: @c;
.x {
  @a: @b;
  @width: 1px;
  @border: 1px solid @a;
  .y { @d: @@which; }
}
@e: @a;
@b: @c;
`)
	require.NoError(t, err)

	rc := resolve.NewContext()
	v := New(rc)
	v.Visit(sheet.Body)

	want := []resolve.Edge{
		{Source: "@b", Referenced: "@c"},
		{Source: "@a", Referenced: "@b"},
		{Source: "@e", Referenced: "@a"},
	}
	if diff := cmp.Diff(want, rc.Trail.Edges()); diff != "" {
		t.Errorf("trail mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 8, v.Declarations())
	assert.Equal(t, 3, v.Recorded(), "repeated edges are recorded once")
}

func TestAliasOf(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"@a: @b;", "@b", true},
		{"@a: @@b;", "", false},
		{"@a: @b @c;", "", false},
		{"@a: red;", "", false},
		{"@a: darken(@b, 10%);", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sheet, err := parser.ParseString(tt.input)
			require.NoError(t, err)

			got, ok := AliasOf(sheet.Body[0].(*ast.VarDecl))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
