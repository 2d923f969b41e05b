package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/opal-lang/colorprop/core/manifest"
)

// DisplayManifest renders a manifest: one chain per entry, then the trail.
func DisplayManifest(w io.Writer, m *manifest.Manifest, hash [32]byte, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Colorize("source:", ColorBlue, useColor), m.Source)
	_, _ = fmt.Fprintf(w, "%s %s\n", Colorize("digest:", ColorBlue, useColor), m.Digest)
	_, _ = fmt.Fprintf(w, "%s %x\n", Colorize("hash:  ", ColorBlue, useColor), hash[:8])

	_, _ = fmt.Fprintf(w, "\n%s (%d)\n", Colorize("entries", ColorCyan, useColor), len(m.Entries))
	for _, e := range m.Entries {
		chain := strings.Join(m.Chain(e.Name), " -> ")
		_, _ = fmt.Fprintf(w, "  %s  %s\n", chain, Colorize(e.Color, ColorGreen, useColor))
	}

	if len(m.Trail) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s (%d)\n", Colorize("trail", ColorCyan, useColor), len(m.Trail))
	for _, e := range m.Trail {
		_, _ = fmt.Fprintf(w, "  %s %s %s\n", e.Source, Colorize("->", ColorGray, useColor), e.Referenced)
	}
}
