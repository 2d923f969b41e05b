package types

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an immutable literal color: channel data, the lexeme it was parsed
// from, and the variable it was last bound through (its provenance name).
type Color struct {
	rgb    colorful.Color
	alpha  float64
	source string
	name   string
}

// namedColors maps the CSS color keywords the front end recognizes.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"navy":    "#000080",
	"teal":    "#008080",
	"olive":   "#808000",
	"lime":    "#00ff00",
	"aqua":    "#00ffff",
	"cyan":    "#00ffff",
	"fuchsia": "#ff00ff",
	"magenta": "#ff00ff",
}

// NewColor builds a color from 8-bit channels and an alpha in [0, 1].
func NewColor(r, g, b uint8, alpha float64) Color {
	return Color{
		rgb:   colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255},
		alpha: clampAlpha(alpha),
	}
}

// ParseColor parses a CSS color lexeme: #rgb, #rgba, #rrggbb, #rrggbbaa,
// rgb(), rgba() or a color keyword. The lexeme is kept as the color's source.
func ParseColor(lexeme string) (Color, bool) {
	s := strings.TrimSpace(lexeme)
	if s == "" {
		return Color{}, false
	}

	var (
		c  Color
		ok bool
	)
	switch {
	case s[0] == '#':
		c, ok = parseHex(s)
	case hasFunc(s, "rgba"), hasFunc(s, "rgb"):
		c, ok = parseRGBFunc(s)
	case s == "transparent":
		c, ok = NewColor(0, 0, 0, 0), true
	default:
		hex, found := namedColors[strings.ToLower(s)]
		if found {
			c, ok = parseHex(hex)
		}
	}
	if !ok {
		return Color{}, false
	}
	c.source = s
	return c, true
}

func parseHex(s string) (Color, bool) {
	digits := s[1:]
	for _, r := range digits {
		if !isHexDigit(r) {
			return Color{}, false
		}
	}

	alpha := 1.0
	switch len(digits) {
	case 3, 6:
	case 4:
		a, _ := strconv.ParseUint(strings.Repeat(digits[3:], 2), 16, 8)
		alpha = float64(a) / 255
		digits = digits[:3]
	case 8:
		a, _ := strconv.ParseUint(digits[6:], 16, 8)
		alpha = float64(a) / 255
		digits = digits[:6]
	default:
		return Color{}, false
	}

	rgb, err := colorful.Hex("#" + strings.ToLower(digits))
	if err != nil {
		return Color{}, false
	}
	return Color{rgb: rgb, alpha: alpha}, true
}

func parseRGBFunc(s string) (Color, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Color{}, false
	}
	args := strings.Split(s[open+1:len(s)-1], ",")
	if len(args) != 3 && len(args) != 4 {
		return Color{}, false
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(strings.TrimSpace(args[i]))
		if !ok {
			return Color{}, false
		}
		ch[i] = v
	}

	alpha := 1.0
	if len(args) == 4 {
		a, ok := parseAlpha(strings.TrimSpace(args[3]))
		if !ok {
			return Color{}, false
		}
		alpha = a
	}
	return NewColor(ch[0], ch[1], ch[2], alpha), true
}

func parseChannel(s string) (uint8, bool) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return uint8(clamp(f, 0, 100)*255/100 + 0.5), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return uint8(clamp(f, 0, 255) + 0.5), true
}

func parseAlpha(s string) (float64, bool) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clampAlpha(f / 100), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clampAlpha(f), true
}

func hasFunc(s, fn string) bool {
	return strings.HasPrefix(strings.ToLower(s), fn+"(")
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampAlpha(a float64) float64 {
	return clamp(a, 0, 1)
}

// Name returns the provenance name ("@var") or "" for an anonymous literal.
func (c Color) Name() string {
	return c.name
}

// WithName returns a copy of c bound through the given variable.
func (c Color) WithName(name string) Color {
	c.name = ""
	if name != "" {
		c.name = VarName(name)
	}
	return c
}

// Source returns the lexeme the color was parsed from, if any.
func (c Color) Source() string {
	return c.source
}

// RGBA returns 8-bit channels and alpha.
func (c Color) RGBA() (r, g, b uint8, alpha float64) {
	r, g, b = c.rgb.Clamped().RGB255()
	return r, g, b, c.alpha
}

// Alpha returns the alpha channel in [0, 1].
func (c Color) Alpha() float64 {
	return c.alpha
}

// Equal compares channel data only; source and provenance are ignored.
func (c Color) Equal(other Color) bool {
	r1, g1, b1, a1 := c.RGBA()
	r2, g2, b2, a2 := other.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

// Hex returns the #rrggbb form, dropping alpha.
func (c Color) Hex() string {
	return c.rgb.Clamped().Hex()
}

// String renders the color in native CSS syntax. The parsed lexeme wins so
// output stays byte-compatible with the input stylesheet.
func (c Color) String() string {
	if c.source != "" {
		return c.source
	}
	if c.alpha < 1 {
		r, g, b, a := c.RGBA()
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(a, 'f', -1, 64))
	}
	return c.Hex()
}
