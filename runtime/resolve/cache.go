package resolve

import (
	cperrors "github.com/opal-lang/colorprop/core/errors"
	"github.com/opal-lang/colorprop/core/invariant"
	"github.com/opal-lang/colorprop/core/types"
)

// Cache maps normalized variable names to materialized bindings. Presence
// means the name's alias chain is linked and may be referenced by name in
// output. Entries are never replaced.
type Cache struct {
	entries map[string]*types.Binding
	order   []string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*types.Binding)}
}

// Has reports whether name has been materialized.
func (c *Cache) Has(name string) bool {
	_, ok := c.entries[types.VarName(name)]
	return ok
}

// Lookup returns the binding for name, if any.
func (c *Cache) Lookup(name string) (*types.Binding, bool) {
	b, ok := c.entries[types.VarName(name)]
	return b, ok
}

// Resolve returns the binding for name or an UnresolvedReference error.
func (c *Cache) Resolve(name string) (*types.Binding, error) {
	key := types.VarName(name)
	b, ok := c.entries[key]
	if !ok {
		return nil, cperrors.NewUnresolvedReference(key)
	}
	return b, nil
}

// Insert caches b under name. The first insert wins: inserting again with an
// equal color is a no-op that returns the existing entry, inserting a
// different color is a programming error.
func (c *Cache) Insert(name string, b *types.Binding) *types.Binding {
	invariant.NotNil(b, "binding")
	key := types.VarName(name)
	invariant.Precondition(key != "", "cache key must not be empty")

	if existing, ok := c.entries[key]; ok {
		invariant.Invariant(existing.Color().Equal(b.Color()),
			"cache entry %s rebound from %s to %s", key, existing.Color(), b.Color())
		return existing
	}

	c.entries[key] = b
	c.order = append(c.order, key)
	return b
}

// Len returns the number of cached names.
func (c *Cache) Len() int {
	return len(c.order)
}

// Names returns the cached names in insertion order.
func (c *Cache) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
