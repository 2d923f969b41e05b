// Package linker turns color-valued variable references into bindings that
// remember their alias chain, materializing the intermediate aliases in the
// run's resolution cache so the code generator can reference them by name.
package linker

import (
	"strings"

	cperrors "github.com/opal-lang/colorprop/core/errors"
	"github.com/opal-lang/colorprop/core/invariant"
	"github.com/opal-lang/colorprop/core/types"
	"github.com/opal-lang/colorprop/runtime/frame"
	"github.com/opal-lang/colorprop/runtime/resolve"
)

// MaterializedIndex is the source index of bindings created from alias
// edges rather than from a reference in the stylesheet.
const MaterializedIndex = -1

// Reference is a variable use being compiled.
type Reference struct {
	Name  string // "@name" or "@@name"
	Index int    // source position

	// Synthetic marks lookups made by the compiler itself. They never start
	// alias-chain materialization.
	Synthetic bool
}

// Link resolves ref in scope. Color values come back as bound variables;
// everything else is returned unchanged.
func Link(ref Reference, scope *frame.Scope, rc *resolve.Context) (types.Value, error) {
	invariant.NotNil(scope, "scope")
	invariant.NotNil(rc, "resolve context")

	name, err := resolveName(ref.Name, scope)
	if err != nil {
		return types.Value{}, err
	}

	v, err := scope.Evaluate(name)
	if err != nil {
		return types.Value{}, err
	}

	switch v.Kind {
	case types.KindBound:
		// Already linked, e.g. a value passed through a reusable block.
		return v, nil

	case types.KindLiteral:
		root := rootOf(scope)
		if !definedAtRoot(name, scope, root) {
			// A chain through a block's own variables is not shared with the
			// rest of the run, so it renders as a single reference.
			return types.Bound(types.NewBinding(name, ref.Index, types.Literal(v.Color.WithName("")))), nil
		}
		if !ref.Synthetic && v.Color.Name() != name {
			materialize(name, root, rc)
		}
		return types.Bound(types.NewBinding(name, ref.Index, types.Literal(v.Color))), nil
	}

	return v, nil
}

// resolveName handles one level of variable-named variables ("@@name").
func resolveName(raw string, scope *frame.Scope) (string, error) {
	name := types.VarName(raw)
	sigils := len(name) - len(strings.TrimLeft(name, "@"))

	switch {
	case sigils <= 1:
		return name, nil
	case sigils > 2:
		return "", cperrors.NewUnsupportedIndirection(name, "more than one level of variable indirection")
	}

	inner, err := scope.Evaluate(name[1:])
	if err != nil {
		return "", err
	}
	if inner.Kind != types.KindKeyword {
		return "", cperrors.NewUnsupportedIndirection(name,
			"indirect name must evaluate to a name, got "+inner.Kind.String())
	}

	text := strings.Trim(strings.TrimSpace(inner.Text), `"'`)
	if text == "" || strings.HasPrefix(text, "@") {
		return "", cperrors.NewUnsupportedIndirection(name,
			"indirect name "+inner.Text+" would need another resolution hop")
	}
	return types.VarName(text), nil
}

func rootOf(scope *frame.Scope) *frame.Scope {
	for scope.Parent() != nil {
		scope = scope.Parent()
	}
	return scope
}

// definedAtRoot reports whether every hop of name's alias chain, as seen
// from scope, is bound in the root frame. The chain has already been
// evaluated, so it ends.
func definedAtRoot(name string, scope, root *frame.Scope) bool {
	key := types.VarName(name)
	for {
		v, def, err := scope.Lookup(key)
		if err != nil || def != root {
			return false
		}
		if v.Kind != types.KindAlias {
			return true
		}
		key = types.VarName(v.Text)
	}
}

// materialize follows name's chain through the root frame, caching a binding
// for each hop that the alias trail recorded. Only edges the root frame still
// binds count, since cache entries are shared by every scope of the run. It
// stops at the first cached ancestor and at the root literal definition.
func materialize(name string, root *frame.Scope, rc *resolve.Context) {
	active := name

	for !rc.Cache.Has(active) {
		next, ok := recordedAlias(rc.Trail, root, active)
		if !ok {
			return
		}
		v, err := root.Evaluate(active)
		if err != nil {
			return
		}
		c, ok := v.LiteralColor()
		if !ok {
			return
		}

		rc.Cache.Insert(active, types.NewBinding(active, MaterializedIndex, types.Literal(c.WithName(next))))
		rc.Logger.Debug("linked alias", "source", active, "next", next, "color", c.String())

		lit, _, err := root.Lookup(next)
		if err != nil {
			return
		}
		if lit.Kind == types.KindAlias {
			active = next
			continue
		}

		// next holds the literal definition that starts the chain.
		if lit.Kind == types.KindLiteral && !rc.Cache.Has(next) {
			rc.Cache.Insert(next, types.NewBinding(next, MaterializedIndex, lit))
			rc.Logger.Debug("linked root", "name", next, "color", lit.Color.String())
		}
		return
	}
}

// recordedAlias returns the target of the newest edge from source that the
// root frame still binds.
func recordedAlias(trail *resolve.Trail, root *frame.Scope, source string) (string, bool) {
	if !trail.IsSource(source) {
		return "", false
	}
	for _, e := range trail.Reverse() {
		if e.Source == source && bindsAlias(root, e.Source, e.Referenced) {
			return types.VarName(e.Referenced), true
		}
	}
	return "", false
}

// bindsAlias reports whether root binds source to an alias of referenced.
// Edges recorded in nested blocks fail this check.
func bindsAlias(root *frame.Scope, source, referenced string) bool {
	v, _, err := root.Lookup(source)
	return err == nil && v.Kind == types.KindAlias &&
		types.VarName(v.Text) == types.VarName(referenced)
}
