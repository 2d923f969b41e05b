package resolve

import (
	"github.com/opal-lang/colorprop/core/invariant"
	"github.com/opal-lang/colorprop/core/types"
)

// Edge records that Source was bound by looking through Referenced.
type Edge struct {
	Source     string
	Referenced string
}

// Trail is the append-only log of alias edges in the order the traversal
// first observed them.
type Trail struct {
	edges   []Edge
	seen    map[Edge]bool
	sources map[string]int // edge count per source name
}

// NewTrail creates an empty trail.
func NewTrail() *Trail {
	return &Trail{
		seen:    make(map[Edge]bool),
		sources: make(map[string]int),
	}
}

// Record appends source -> referenced unless the same pair was already
// recorded. Both names are normalized. It reports whether an edge was added.
func (t *Trail) Record(source, referenced string) bool {
	e := Edge{Source: types.VarName(source), Referenced: types.VarName(referenced)}
	invariant.Precondition(e.Source != "" && e.Referenced != "", "alias edge names must not be empty")

	if t.seen[e] {
		return false
	}
	t.seen[e] = true
	t.sources[e.Source]++
	t.edges = append(t.edges, e)
	return true
}

// Len returns the number of recorded edges.
func (t *Trail) Len() int {
	return len(t.edges)
}

// Edges returns a copy of the edges in discovery order.
func (t *Trail) Edges() []Edge {
	out := make([]Edge, len(t.edges))
	copy(out, t.edges)
	return out
}

// Reverse returns a copy of the edges, newest first.
func (t *Trail) Reverse() []Edge {
	out := make([]Edge, len(t.edges))
	for i, e := range t.edges {
		out[len(t.edges)-1-i] = e
	}
	return out
}

// IsSource reports whether any edge starts at name. A referenced name that is
// not a source is the root literal definition of its chain.
func (t *Trail) IsSource(name string) bool {
	return t.sources[types.VarName(name)] > 0
}
