package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/colorprop/core/ast"
	cperrors "github.com/opal-lang/colorprop/core/errors"
)

// ignorePositions keeps the structural comparisons readable
var ignorePositions = cmpopts.IgnoreTypes(ast.Position{})

func TestParseVariablesAndRules(t *testing.T) {
	input := `
@base: #fff;
@text: @base;

.nav {
  @link: blue;
  a:hover { color: @link }
  border: 1px solid @text;
}
`
	sheet, err := ParseString(input, WithFilename("site.less"))
	require.NoError(t, err)

	want := &ast.Stylesheet{
		Name: "site.less",
		Body: []ast.Statement{
			&ast.VarDecl{Name: "@base", Value: ast.Expr{Terms: []ast.Term{
				{Kind: ast.TermColor, Text: "#fff", SpaceBefore: true},
			}}},
			&ast.VarDecl{Name: "@text", Value: ast.Expr{Terms: []ast.Term{
				{Kind: ast.TermVariable, Text: "@base", SpaceBefore: true},
			}}},
			&ast.Rule{Selector: ".nav", Body: []ast.Statement{
				&ast.VarDecl{Name: "@link", Value: ast.Expr{Terms: []ast.Term{
					{Kind: ast.TermColor, Text: "blue", SpaceBefore: true},
				}}},
				&ast.Rule{Selector: "a:hover", Body: []ast.Statement{
					&ast.Declaration{Property: "color", Value: ast.Expr{Terms: []ast.Term{
						{Kind: ast.TermVariable, Text: "@link", SpaceBefore: true},
					}}},
				}},
				&ast.Declaration{Property: "border", Value: ast.Expr{Terms: []ast.Term{
					{Kind: ast.TermText, Text: "1px", SpaceBefore: true},
					{Kind: ast.TermText, Text: "solid", SpaceBefore: true},
					{Kind: ast.TermVariable, Text: "@text", SpaceBefore: true},
				}}},
			}},
		},
	}

	if diff := cmp.Diff(want, sheet, ignorePositions); diff != "" {
		t.Errorf("stylesheet mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePositions(t *testing.T) {
	sheet, err := ParseString("\n  @a: red;\n.x {\n  color: @a;\n}")
	require.NoError(t, err)

	decl := sheet.Body[0].(*ast.VarDecl)
	assert.Equal(t, ast.Position{Line: 2, Column: 3, Offset: 3}, decl.Pos())

	rule := sheet.Body[1].(*ast.Rule)
	assert.Equal(t, 3, rule.Pos().Line)
	prop := rule.Body[0].(*ast.Declaration)
	assert.Equal(t, 4, prop.Pos().Line)
	assert.Equal(t, 10, prop.Value.Terms[0].Position.Column)
}

func TestParseAtRules(t *testing.T) {
	sheet, err := ParseString(`@import "base.less";
@media (max-width: 600px) { .a { color: red; } }`)
	require.NoError(t, err)
	require.Len(t, sheet.Body, 2)

	imp, ok := sheet.Body[0].(*ast.AtStatement)
	require.True(t, ok)
	assert.Equal(t, `@import "base.less"`, imp.Text)

	media, ok := sheet.Body[1].(*ast.Rule)
	require.True(t, ok)
	assert.True(t, media.IsAtRule())
	assert.Equal(t, "@media (max-width: 600px)", media.Selector)
}

func TestParseValueSpacing(t *testing.T) {
	sheet, err := ParseString(`.a { font: 12px/1.5 "Open Sans",serif; background: rgba(0, 0, 0, .5) url(x.png); }`)
	require.NoError(t, err)

	rule := sheet.Body[0].(*ast.Rule)
	font := rule.Body[0].(*ast.Declaration)
	assert.Equal(t, `12px/1.5 "Open Sans",serif`, font.Value.String())

	bg := rule.Body[1].(*ast.Declaration)
	require.Len(t, bg.Value.Terms, 2)
	assert.Equal(t, ast.TermColor, bg.Value.Terms[0].Kind)
	assert.Equal(t, ast.TermText, bg.Value.Terms[1].Kind)
}

func TestParseSelectorWhitespace(t *testing.T) {
	sheet, err := ParseString(".a,\n  .b   >  li { x: y }")
	require.NoError(t, err)
	assert.Equal(t, ".a, .b > li", sheet.Body[0].(*ast.Rule).Selector)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		errContains string
		line        int
	}{
		{"missing closing brace", ".a {\n  color: red;\n", "expected '}'", 3},
		{"unexpected closing brace", "}\n", "unexpected '}'", 1},
		{"missing colon", ".a { color red; }", "expected ':'", 1},
		{"missing value", ".a { color: ; }", "missing value", 1},
		{"missing variable value", "@a: ;", "missing value", 1},
		{"missing selector", "{ color: red }", "missing selector", 1},
		{"unterminated comment", "/* oops", "unterminated comment", 1},
		{"unterminated function", ".a { color: rgb(0, 0 }", "missing ')'", 1},
		{"bare sigil", ".a { color: @; }", "variable name expected", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input, WithFilename("bad.less"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Contains(t, err.Error(), "bad.less:")
			assert.True(t, cperrors.IsKind(err, cperrors.ParseError))

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Position.Line)
		})
	}
}

func TestParseValue(t *testing.T) {
	e, err := ParseValue("1px solid @border")
	require.NoError(t, err)
	require.Len(t, e.Terms, 3)
	assert.Equal(t, ast.TermVariable, e.Terms[2].Kind)
	assert.True(t, e.HasVariables())

	_, err = ParseValue("a; b")
	assert.Error(t, err)
}

func TestWalkDocumentOrder(t *testing.T) {
	sheet, err := ParseString("@a: red; .x { @b: @a; .y { @c: @b; } } @d: @c;")
	require.NoError(t, err)

	var names []string
	ast.Walk(sheet.Body, func(st ast.Statement) bool {
		if d, ok := st.(*ast.VarDecl); ok {
			names = append(names, d.Name)
		}
		return true
	})
	assert.Equal(t, []string{"@a", "@b", "@c", "@d"}, names)
}
