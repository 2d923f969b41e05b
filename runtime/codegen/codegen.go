// Package codegen renders linked color variables as CSS custom-property
// references with literal fallbacks:
//
//	var(--a, #fff)
//	var(--a, var(--b, var(--c, #fff)))
//
// One var() is opened per hop of the alias chain found in the run's
// resolution cache. The chain ends at the literal.
package codegen

import (
	"strings"

	cperrors "github.com/opal-lang/colorprop/core/errors"
	"github.com/opal-lang/colorprop/core/invariant"
	"github.com/opal-lang/colorprop/core/types"
	"github.com/opal-lang/colorprop/runtime/resolve"
)

// Sink receives generated CSS text.
type Sink interface {
	Add(chunk string)
}

// Buffer is a Sink backed by a strings.Builder.
type Buffer struct {
	b strings.Builder
}

// Add appends chunk.
func (b *Buffer) Add(chunk string) {
	b.b.WriteString(chunk)
}

// String returns everything added so far.
func (b *Buffer) String() string {
	return b.b.String()
}

// Len returns the number of bytes added.
func (b *Buffer) Len() int {
	return b.b.Len()
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.b.Reset()
}

// emitState is the per-binding render state.
type emitState int

const (
	stateInit emitState = iota
	stateMaybeChained
	stateEmitted
)

// Generator renders values using one run's resolution cache. It only reads
// the cache.
type Generator struct {
	rc *resolve.Context
}

// New creates a generator bound to rc.
func New(rc *resolve.Context) *Generator {
	invariant.NotNil(rc, "resolve context")
	return &Generator{rc: rc}
}

// Render appends the CSS for v to sink. Output is written only if the whole
// value renders, so an error never leaves a half-open var() behind.
func (g *Generator) Render(v types.Value, sink Sink) error {
	invariant.NotNil(sink, "sink")

	if v.Kind != types.KindBound {
		sink.Add(v.String())
		return nil
	}
	if !g.rc.Themeable {
		sink.Add(v.Binding.Color().String())
		return nil
	}

	var out Buffer
	closers, err := g.emit(v.Binding, &out)
	if err != nil {
		return err
	}
	invariant.Postcondition(closers >= 0, "pending closers must not be negative, got %d", closers)
	out.Add(strings.Repeat(")", closers))

	sink.Add(out.String())
	return nil
}

// RenderString renders v and returns the text.
func (g *Generator) RenderString(v types.Value) (string, error) {
	var out Buffer
	if err := g.Render(v, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

// emit writes b and returns how many closing parentheses the caller still
// has to append for the var() calls opened along the chain.
func (g *Generator) emit(b *types.Binding, sink Sink) (int, error) {
	if !b.BeginEmit() {
		return 0, cperrors.NewCyclicAlias(b.Name())
	}
	defer b.EndEmit()

	var (
		state     = stateInit
		candidate string
		closers   int
	)

	for state != stateEmitted {
		switch state {
		case stateInit:
			candidate = g.canonicalName(b)
			state = stateMaybeChained

		case stateMaybeChained:
			if candidate != "" && candidate != b.Name() && g.rc.Cache.Has(candidate) {
				next, err := g.rc.Cache.Resolve(candidate)
				if err != nil {
					return 0, err
				}
				sink.Add("var(--" + b.PropName() + ", ")
				n, err := g.emit(next, sink)
				if err != nil {
					return 0, err
				}
				closers = n + 1
				g.rc.Logger.Debug("chained reference", "name", b.Name(), "next", candidate, "depth", closers)
			} else {
				n, err := g.emitSingle(b, sink)
				if err != nil {
					return 0, err
				}
				closers = n
			}
			state = stateEmitted
		}
	}

	return closers, nil
}

// canonicalName picks the alias b should chain to: the name its value came
// through, unless the cache already linked b's own name to another target.
func (g *Generator) canonicalName(b *types.Binding) string {
	source := b.SourceName()
	if source == "" {
		return ""
	}
	candidate := types.VarName(source)

	if cached, ok := g.rc.Cache.Lookup(b.Name()); ok {
		if name := cached.SourceName(); name != "" && types.VarName(name) != candidate {
			candidate = types.VarName(name)
		}
	}
	return candidate
}

// emitSingle writes var(--name, fallback). A wrapped binding is rendered as
// the fallback; a wrapped binding of the same name is rendered on its own.
func (g *Generator) emitSingle(b *types.Binding, sink Sink) (int, error) {
	inner := b.Inner()
	if inner.Kind == types.KindBound {
		if inner.Binding.Name() == b.Name() {
			return g.emit(inner.Binding, sink)
		}
		sink.Add("var(--" + b.PropName() + ", ")
		n, err := g.emit(inner.Binding, sink)
		if err != nil {
			return 0, err
		}
		return n + 1, nil
	}

	sink.Add("var(--" + b.PropName() + ", " + inner.Color.String() + ")")
	return 0, nil
}
