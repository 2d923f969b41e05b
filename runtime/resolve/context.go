// Package resolve holds the state owned by a single compilation run: the
// alias trail discovered by the traversal and the resolution cache filled by
// the linker.
//
// A Context is created per run and passed explicitly; nothing here is global,
// so independent or re-entrant compilations never see each other's aliases.
package resolve

import (
	"io"
	"log/slog"
)

// Context is the isolated resolution state of one compilation run.
type Context struct {
	Trail  *Trail
	Cache  *Cache
	Logger *slog.Logger

	// Themeable selects custom-property output. When false, bound colors
	// render as plain literals.
	Themeable bool
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for linker and generator tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithLiteralOutput disables custom-property output.
func WithLiteralOutput() Option {
	return func(c *Context) {
		c.Themeable = false
	}
}

// NewContext creates a fresh run context.
func NewContext(opts ...Option) *Context {
	c := &Context{
		Trail:     NewTrail(),
		Cache:     NewCache(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Themeable: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
