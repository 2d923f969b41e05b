// Package frame is the variable frame store: a chain of lexical scopes, one
// per rule block, mapping variable names to the values bound in them.
package frame

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	cperrors "github.com/opal-lang/colorprop/core/errors"
	"github.com/opal-lang/colorprop/core/types"
)

// Scope holds the variables declared in one block. Lookups walk up the
// parent chain.
type Scope struct {
	label  string
	vars   map[string]types.Value
	order  []string
	parent *Scope
	depth  int
}

// Store tracks the scope chain while a stylesheet is evaluated.
type Store struct {
	root    *Scope
	current *Scope
}

// NewStore creates a store with an empty root scope.
func NewStore() *Store {
	root := newScope("root", nil)
	return &Store{root: root, current: root}
}

func newScope(label string, parent *Scope) *Scope {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	return &Scope{
		label:  label,
		vars:   make(map[string]types.Value),
		parent: parent,
		depth:  depth,
	}
}

// Root returns the stylesheet-level scope.
func (s *Store) Root() *Scope {
	return s.root
}

// Current returns the innermost scope.
func (s *Store) Current() *Scope {
	return s.current
}

// Enter creates a child of the current scope and makes it current.
func (s *Store) Enter(label string) *Scope {
	s.current = newScope(label, s.current)
	return s.current
}

// Exit returns to the parent scope.
func (s *Store) Exit() error {
	if s.current.parent == nil {
		return fmt.Errorf("cannot exit root scope")
	}
	s.current = s.current.parent
	return nil
}

// Label returns the scope label (the selector for rule scopes).
func (sc *Scope) Label() string {
	return sc.label
}

// Depth returns the distance from the root scope.
func (sc *Scope) Depth() int {
	return sc.depth
}

// Parent returns the enclosing scope, or nil for the root.
func (sc *Scope) Parent() *Scope {
	return sc.parent
}

// Define binds name in this scope. A later definition of the same name
// replaces the earlier one (last definition wins, as in Less). Literal colors
// without a provenance name take the variable's name.
func (sc *Scope) Define(name string, v types.Value) {
	key := types.VarName(name)
	if v.Kind == types.KindLiteral && v.Color.Name() == "" {
		v.Color = v.Color.WithName(key)
	}
	if _, exists := sc.vars[key]; !exists {
		sc.order = append(sc.order, key)
	}
	sc.vars[key] = v
}

// Has reports whether name is visible from this scope.
func (sc *Scope) Has(name string) bool {
	_, _, ok := sc.find(types.VarName(name))
	return ok
}

func (sc *Scope) find(key string) (types.Value, *Scope, bool) {
	for scope := sc; scope != nil; scope = scope.parent {
		if v, ok := scope.vars[key]; ok {
			return v, scope, true
		}
	}
	return types.Value{}, nil, false
}

// Lookup returns the value bound to name and the scope that defines it.
func (sc *Scope) Lookup(name string) (types.Value, *Scope, error) {
	key := types.VarName(name)
	if v, scope, ok := sc.find(key); ok {
		return v, scope, nil
	}
	return types.Value{}, nil, cperrors.NewMissingFrameBinding(key, sc.suggest(key))
}

// Names returns every visible variable name, innermost scope first.
func (sc *Scope) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for scope := sc; scope != nil; scope = scope.parent {
		for _, n := range scope.order {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

// Bindings returns the visible name -> value mapping, inner definitions
// shadowing outer ones.
func (sc *Scope) Bindings() map[string]types.Value {
	out := make(map[string]types.Value)
	for _, n := range sc.Names() {
		v, _, _ := sc.find(n)
		out[n] = v
	}
	return out
}

// Evaluate returns the current value of name, following alias values to the
// variable they refer to. Aliases are resolved from this scope, so an inner
// block may override the target of an outer alias.
func (sc *Scope) Evaluate(name string) (types.Value, error) {
	key := types.VarName(name)
	path := []string{key}
	visited := map[string]bool{key: true}

	for {
		v, _, err := sc.Lookup(key)
		if err != nil {
			return types.Value{}, err
		}
		if v.Kind != types.KindAlias {
			return v, nil
		}

		key = v.Text
		path = append(path, key)
		if visited[key] {
			return types.Value{}, cperrors.NewRecursiveVariable(path[0], path)
		}
		visited[key] = true
	}
}

// suggest returns the closest visible name to key, or "".
func (sc *Scope) suggest(key string) string {
	candidates := sc.Names()
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(key, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
