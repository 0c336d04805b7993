package palette

import (
	"math"
	"slices"
)

// MinContrast is the ratio secondary and background colors must reach.
const MinContrast = 2.5

// NamedColor is one of the twelve coarse color names used for image search.
type NamedColor string

const (
	Black  NamedColor = "black"
	Blue   NamedColor = "blue"
	Brown  NamedColor = "brown"
	Gray   NamedColor = "gray"
	Green  NamedColor = "green"
	Orange NamedColor = "orange"
	Pink   NamedColor = "pink"
	Purple NamedColor = "purple"
	Red    NamedColor = "red"
	Teal   NamedColor = "teal"
	White  NamedColor = "white"
	Yellow NamedColor = "yellow"
)

// namedColors is ordered; the earlier entry wins a distance tie.
var namedColors = []struct {
	name NamedColor
	rgb  RGB
}{
	{Black, RGB{0x00, 0x00, 0x00}},
	{Blue, RGB{0x00, 0x00, 0xFF}},
	{Brown, RGB{0xA5, 0x2A, 0x2A}},
	{Gray, RGB{0x80, 0x80, 0x80}},
	{Green, RGB{0x00, 0x80, 0x00}},
	{Orange, RGB{0xFF, 0xA5, 0x00}},
	{Pink, RGB{0xFF, 0xC0, 0xCB}},
	{Purple, RGB{0x80, 0x00, 0x80}},
	{Red, RGB{0xFF, 0x00, 0x00}},
	{Teal, RGB{0x00, 0x80, 0x80}},
	{White, RGB{0xFF, 0xFF, 0xFF}},
	{Yellow, RGB{0xFF, 0xFF, 0x00}},
}

// NamedColors lists the enumeration in its fixed order.
func NamedColors() []NamedColor {
	out := make([]NamedColor, len(namedColors))
	for i, nc := range namedColors {
		out[i] = nc.name
	}
	return out
}

// ClosestNamedColor returns the named color nearest to c.
func ClosestNamedColor(c RGB) NamedColor {
	closest, minDistance := Black, math.Inf(1)
	for _, nc := range namedColors {
		if d := Distance(c, nc.rgb); d < minDistance {
			closest, minDistance = nc.name, d
		}
	}
	return closest
}

// Roles names the functional colors of a site.
type Roles struct {
	Primary    RGB
	Secondary  RGB
	Background RGB
	Named      NamedColor
}

// AssignRoles picks primary (most saturated), secondary (first readable against
// primary, else white) and background (least saturated readable against both,
// else black or white).
func AssignRoles(colors []RGB) Roles {
	sorted := bySaturation(colors)

	primary := black
	if len(sorted) > 0 {
		primary = sorted[0]
	}

	secondary := white
	for _, c := range sorted {
		if ContrastRatio(primary, c) >= MinContrast {
			secondary = c
			break
		}
	}

	background, found := RGB{}, false
	for i := len(sorted) - 1; i >= 0; i-- {
		c := sorted[i]
		if ContrastRatio(c, primary) >= MinContrast && ContrastRatio(c, secondary) >= MinContrast {
			background, found = c, true
			break
		}
	}
	if !found {
		background = black
		if ContrastRatio(white, primary) > ContrastRatio(black, primary) {
			background = white
		}
	}

	return Roles{
		Primary:    primary,
		Secondary:  secondary,
		Background: background,
		Named:      ClosestNamedColor(primary),
	}
}

// bySaturation returns a copy of colors, most saturated first. Equal
// saturations keep their input order.
func bySaturation(colors []RGB) []RGB {
	sorted := slices.Clone(colors)
	slices.SortStableFunc(sorted, func(a, b RGB) int {
		sa, sb := Saturation(a), Saturation(b)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})
	return sorted
}
