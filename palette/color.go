// Package palette extracts, scores and assigns roles to the colors of a user's
// profile picture and banner.
package palette

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is one 8-bit sRGB color sample.
type RGB struct {
	R, G, B uint8
}

var (
	black = RGB{0, 0, 0}
	white = RGB{255, 255, 255}
)

// Distance is the Euclidean distance between two colors in RGB space.
func Distance(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Hex formats the color as lowercase "#rrggbb".
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

// ParseHex parses "#rrggbb" (or "#rgb").
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("parse hex %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}, nil
}

// HexAll formats every color in order.
func HexAll(colors []RGB) []string {
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = c.Hex()
	}
	return out
}

// Saturation is (max-min)/max of the channels, 0 for black.
func Saturation(c RGB) float64 {
	_, s, _ := c.colorful().Hsv()
	return s
}

// RelativeLuminance follows the WCAG 2.0 definition over gamma-corrected sRGB.
func RelativeLuminance(c RGB) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

func linearize(channel uint8) float64 {
	v := float64(channel) / 255
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio is (L1+0.05)/(L2+0.05) with L1 the lighter of the two.
func ContrastRatio(a, b RGB) float64 {
	la, lb := RelativeLuminance(a), RelativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}
