package draw

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a packed 24-bit color with a "set" bit.
// The zero value means "no pixel" and is never rendered.
type RGB uint32

const rgbSet RGB = 1 << 24

// Common colors.
var (
	White   = NewRGB(0xff, 0xff, 0xff)
	Black   = NewRGB(0, 0, 0)
	Crimson = MustHex("#DC143C")
)

// NewRGB packs the given components into a set color.
func NewRGB(r, g, b uint8) RGB {
	return rgbSet | RGB(r)<<16 | RGB(g)<<8 | RGB(b)
}

// Hex parses a "#rrggbb" or "#rgb" color.
func Hex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return 0, fmt.Errorf("parse color %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// MustHex is like Hex but panics on malformed input.
// Intended for package-level color tables.
func MustHex(s string) RGB {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsSet reports whether the color represents a drawn pixel.
func (c RGB) IsSet() bool {
	return c&rgbSet != 0
}

// Components returns the 8-bit red, green and blue channels.
func (c RGB) Components() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Fade blends the color toward black. opacity 1 keeps the color,
// opacity <= 0 returns the unset color.
func (c RGB) Fade(opacity float64) RGB {
	if !c.IsSet() || opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return c
	}
	return fromColorful(c.colorful().BlendRgb(colorful.Color{}, 1-opacity))
}

// String formats the color as "#rrggbb".
func (c RGB) String() string {
	if !c.IsSet() {
		return "unset"
	}
	return c.colorful().Hex()
}

func (c RGB) colorful() colorful.Color {
	r, g, b := c.Components()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return NewRGB(r, g, b)
}
