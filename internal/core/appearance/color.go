// Package appearance models the optional, inheritable colors of tasks,
// categories and notes.
package appearance

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an optional RGB color. The zero value is "unset", which means the
// owner inherits its color from categories or its parent.
type Color struct {
	c   colorful.Color
	set bool
}

// None is the unset color.
var None = Color{}

// Hex parses "#rrggbb". An empty string yields None.
func Hex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return None, err
	}
	return Color{c: c, set: true}, nil
}

// MustHex is Hex for constants and tests.
func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// RGB builds a color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return Color{
		c:   colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0},
		set: true,
	}
}

// IsSet reports whether the color holds a value.
func (c Color) IsSet() bool { return c.set }

// RGB255 returns the 8-bit components.
func (c Color) RGB255() (r, g, b uint8) {
	return c.c.RGB255()
}

// Hex formats the color as "#rrggbb", or "" when unset.
func (c Color) Hex() string {
	if !c.set {
		return ""
	}
	return c.c.Hex()
}

// String implements fmt.Stringer.
func (c Color) String() string {
	if !c.set {
		return "none"
	}
	return c.Hex()
}

// Equal compares two colors at 8-bit precision.
func (c Color) Equal(o Color) bool {
	if c.set != o.set {
		return false
	}
	if !c.set {
		return true
	}
	r1, g1, b1 := c.RGB255()
	r2, g2, b2 := o.RGB255()
	return r1 == r2 && g1 == g2 && b1 == b2
}

// Blend averages the set colors component-wise in 8-bit space. Integer sums
// make the result independent of argument order. Returns None when no color
// is set.
func Blend(colors ...Color) Color {
	var r, g, b, n int
	for _, c := range colors {
		if !c.set {
			continue
		}
		cr, cg, cb := c.RGB255()
		r += int(cr)
		g += int(cg)
		b += int(cb)
		n++
	}
	if n == 0 {
		return None
	}
	return RGB(uint8(r/n), uint8(g/n), uint8(b/n))
}
