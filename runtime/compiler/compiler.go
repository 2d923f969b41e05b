// Package compiler runs the color pass over a stylesheet: parse, record
// alias edges, evaluate variables per block, link every color reference and
// render flattened CSS.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/opal-lang/colorprop/core/ast"
	cperrors "github.com/opal-lang/colorprop/core/errors"
	"github.com/opal-lang/colorprop/core/manifest"
	"github.com/opal-lang/colorprop/core/types"
	"github.com/opal-lang/colorprop/runtime/codegen"
	"github.com/opal-lang/colorprop/runtime/frame"
	"github.com/opal-lang/colorprop/runtime/linker"
	"github.com/opal-lang/colorprop/runtime/parser"
	"github.com/opal-lang/colorprop/runtime/resolve"
	"github.com/opal-lang/colorprop/runtime/visitor"
)

// Options configures a compilation.
type Options struct {
	Logger *slog.Logger // nil discards

	// Strict aborts on the first reference error instead of skipping the
	// declaration and reporting a diagnostic.
	Strict bool

	// Literal renders plain colors instead of var() references.
	Literal bool

	// Variables overrides root variables after the stylesheet's own
	// declarations, e.g. {"@brand": "#08c"}.
	Variables map[string]string

	Indent string // default two spaces
}

// Diagnostic is a declaration skipped because of an error.
type Diagnostic struct {
	Position ast.Position
	Context  string // property or variable name
	Err      error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %v", d.Position.Line, d.Position.Column, d.Context, d.Err)
}

// Stats counts what a compilation touched.
type Stats struct {
	Rules        int
	Declarations int
	References   int
	AliasEdges   int
}

// Result holds the compiled CSS and the run's observability data.
type Result struct {
	Name        string
	CSS         string
	Diagnostics []Diagnostic
	Context     *resolve.Context // the run's trail and cache
	Stats       Stats
	CompileTime time.Duration
}

// Manifest snapshots the run's cache and trail.
func (r *Result) Manifest() *manifest.Manifest {
	m := &manifest.Manifest{
		Source: r.Name,
		Digest: manifest.Digest([]byte(r.CSS)),
	}
	for _, name := range r.Context.Cache.Names() {
		b, _ := r.Context.Cache.Lookup(name)
		m.Entries = append(m.Entries, manifest.Entry{
			Name:  name,
			Next:  types.VarName(b.SourceName()),
			Color: b.Color().String(),
			Index: b.Index(),
		})
	}
	for _, e := range r.Context.Trail.Edges() {
		m.Trail = append(m.Trail, manifest.Edge{Source: e.Source, Referenced: e.Referenced})
	}
	return m
}

// Compile compiles one stylesheet with its own run context. name is used in
// errors and the manifest.
func Compile(ctx context.Context, name string, src []byte, opts Options) (*Result, error) {
	start := time.Now()

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Indent == "" {
		opts.Indent = "  "
	}

	sheet, err := parser.Parse(src, parser.WithFilename(name), parser.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	overrides, err := overrideDecls(opts.Variables)
	if err != nil {
		return nil, err
	}
	sheet.Body = append(sheet.Body, overrides...)

	rcOpts := []resolve.Option{resolve.WithLogger(logger)}
	if opts.Literal {
		rcOpts = append(rcOpts, resolve.WithLiteralOutput())
	}
	rc := resolve.NewContext(rcOpts...)

	v := visitor.New(rc)
	v.Visit(sheet.Body)

	c := &compilation{
		ctx:   ctx,
		name:  name,
		opts:  opts,
		rc:    rc,
		store: frame.NewStore(),
		gen:   codegen.New(rc),
		out:   &codegen.Buffer{},
		result: &Result{
			Name:    name,
			Context: rc,
		},
	}
	c.result.Stats.AliasEdges = v.Recorded()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.block(sheet.Body, nil); err != nil {
		return nil, err
	}

	c.result.CSS = c.out.String()
	c.result.CompileTime = time.Since(start)
	logger.Debug("compiled stylesheet",
		"name", name,
		"rules", c.result.Stats.Rules,
		"references", c.result.Stats.References,
		"cached", rc.Cache.Len(),
		"diagnostics", len(c.result.Diagnostics),
		"duration", c.result.CompileTime)
	return c.result, nil
}

// overrideDecls turns Options.Variables into root declarations, sorted by
// name so the output does not depend on map order.
func overrideDecls(vars map[string]string) ([]ast.Statement, error) {
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)

	decls := make([]ast.Statement, 0, len(names))
	for _, n := range names {
		value, err := parser.ParseValue(vars[n])
		if err != nil {
			return nil, fmt.Errorf("variable override %s: %w", types.VarName(n), err)
		}
		if len(value.Terms) == 0 {
			return nil, cperrors.New(cperrors.ConfigError, "variable override %s is empty", types.VarName(n))
		}
		decls = append(decls, &ast.VarDecl{Name: types.VarName(n), Value: value})
	}
	return decls, nil
}

// compilation is the state of one Compile call
type compilation struct {
	ctx    context.Context
	name   string
	opts   Options
	rc     *resolve.Context
	store  *frame.Store
	gen    *codegen.Generator
	out    *codegen.Buffer
	depth  int      // at-rule nesting of the output
	expand []expansion // composite values being expanded, outermost first
	result *Result
}

// expansion is one composite value being expanded: the names the reference
// went through, ending at the variable that holds the value.
type expansion struct {
	hops []string
}

func (e expansion) holder() string {
	return e.hops[len(e.hops)-1]
}

// block compiles one block: its variables first, so later declarations in
// the block are visible everywhere in it, then its declarations as a rule
// for selectors, then nested rules in document order.
func (c *compilation) block(body []ast.Statement, selectors []string) error {
	scope := c.store.Current()

	for _, st := range body {
		if d, ok := st.(*ast.VarDecl); ok {
			scope.Define(d.Name, valueOf(d.Value))
		}
	}

	var lines []string
	for _, st := range body {
		d, ok := st.(*ast.Declaration)
		if !ok {
			continue
		}
		c.result.Stats.Declarations++

		if len(selectors) == 0 {
			err := cperrors.New(cperrors.ParseError, "property %s is outside of any rule", d.Property)
			if err := c.report(d.Position, d.Property, err); err != nil {
				return err
			}
			continue
		}

		value, err := c.expr(scope, d.Value)
		if err != nil {
			if err := c.report(d.Position, d.Property, err); err != nil {
				return err
			}
			continue
		}
		lines = append(lines, d.Property+": "+value+";")
	}
	if len(lines) > 0 {
		c.writeRule(selectors, lines)
	}

	for _, st := range body {
		switch n := st.(type) {
		case *ast.Rule:
			if err := c.rule(n, selectors); err != nil {
				return err
			}
		case *ast.AtStatement:
			c.writeLine(n.Text + ";")
		}
	}
	return nil
}

func (c *compilation) rule(r *ast.Rule, parents []string) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	c.result.Stats.Rules++

	c.store.Enter(r.Selector)
	defer c.store.Exit()

	if !r.IsAtRule() {
		selectors := joinSelectors(parents, r.Selector)
		if len(selectors) == 0 {
			err := cperrors.New(cperrors.ParseError, "selector %q has no parent to refer to", r.Selector)
			return c.report(r.Position, r.Selector, err)
		}
		return c.block(r.Body, selectors)
	}

	// At-rule blocks wrap whatever their body produces and are dropped when
	// it produces nothing.
	outer := c.out
	c.out = &codegen.Buffer{}
	c.depth++
	err := c.block(r.Body, parents)
	inner := c.out
	c.depth--
	c.out = outer
	if err != nil {
		return err
	}
	if inner.Len() > 0 {
		c.writeLine(r.Selector + " {")
		c.out.Add(inner.String())
		c.writeLine("}")
	}
	return nil
}

// expr renders a value, linking and rendering each variable reference.
func (c *compilation) expr(scope *frame.Scope, e ast.Expr) (string, error) {
	parts := make([]string, len(e.Terms))
	for i, term := range e.Terms {
		if term.Kind != ast.TermVariable {
			parts[i] = term.Text
			continue
		}
		text, err := c.reference(scope, term)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return e.Join(parts), nil
}

func (c *compilation) reference(scope *frame.Scope, term ast.Term) (string, error) {
	c.result.Stats.References++

	v, err := linker.Link(linker.Reference{Name: term.Text, Index: term.Position.Offset}, scope, c.rc)
	if err != nil {
		return "", err
	}
	if v.Kind == types.KindKeyword && strings.Contains(v.Text, "@") {
		return c.expandValue(scope, term.Text, v.Text)
	}
	return c.gen.RenderString(v)
}

// expandValue renders a composite variable value such as "1px solid @b"
// in the referencing scope.
func (c *compilation) expandValue(scope *frame.Scope, name, text string) (string, error) {
	cur := expansion{hops: aliasHops(scope, name)}
	for i, e := range c.expand {
		if e.holder() != cur.holder() {
			continue
		}
		// The cycle starts at the earlier expansion of the same variable.
		path := []string{e.holder()}
		for _, later := range c.expand[i+1:] {
			path = append(path, later.hops...)
		}
		path = append(path, cur.hops...)
		return "", cperrors.NewRecursiveVariable(cur.holder(), path)
	}

	e, err := parser.ParseValue(text)
	if err != nil {
		return "", err
	}
	if !e.HasVariables() {
		return text, nil
	}

	c.expand = append(c.expand, cur)
	defer func() { c.expand = c.expand[:len(c.expand)-1] }()
	return c.expr(scope, e)
}

// aliasHops lists name and the aliases it passes through in scope, ending
// at the variable that holds a value of its own.
func aliasHops(scope *frame.Scope, name string) []string {
	key := types.VarName(name)
	hops := []string{key}
	for {
		v, _, err := scope.Lookup(key)
		if err != nil || v.Kind != types.KindAlias {
			return hops
		}
		key = types.VarName(v.Text)
		if slices.Contains(hops, key) {
			return hops
		}
		hops = append(hops, key)
	}
}

// report records err as a diagnostic, or returns it in strict mode.
func (c *compilation) report(pos ast.Position, where string, err error) error {
	if c.opts.Strict {
		return fmt.Errorf("%s:%d:%d: %s: %w", c.name, pos.Line, pos.Column, where, err)
	}
	d := Diagnostic{Position: pos, Context: where, Err: err}
	c.result.Diagnostics = append(c.result.Diagnostics, d)
	c.rc.Logger.Warn("skipped declaration",
		"name", c.name,
		"line", pos.Line,
		"column", pos.Column,
		"context", where,
		"kind", string(cperrors.KindOf(err)),
		"error", err)
	return nil
}

func (c *compilation) writeLine(line string) {
	c.out.Add(strings.Repeat(c.opts.Indent, c.depth) + line + "\n")
}

func (c *compilation) writeRule(selectors, lines []string) {
	for i, sel := range selectors {
		if i < len(selectors)-1 {
			c.writeLine(sel + ",")
		} else {
			c.writeLine(sel + " {")
		}
	}
	for _, line := range lines {
		c.writeLine(c.opts.Indent + line)
	}
	c.writeLine("}")
}

// valueOf converts a declared value for the frame store: a lone variable is
// an alias, a lone color a literal, anything else opaque text evaluated on
// use. "@@name" is resolved on use because its target may be declared
// later in the block.
func valueOf(e ast.Expr) types.Value {
	if term, ok := e.Single(); ok {
		switch term.Kind {
		case ast.TermVariable:
			if !strings.HasPrefix(term.Text, "@@") {
				return types.Alias(term.Text)
			}
		case ast.TermColor:
			if col, ok := types.ParseColor(term.Text); ok {
				return types.Literal(col)
			}
		}
	}
	return types.Keyword(e.String())
}
