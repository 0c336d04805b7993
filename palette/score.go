package palette

import "math"

const (
	// DedupThreshold is the minimum RGB distance between two kept colors.
	DedupThreshold = 30.0
	// SelectionSize is how many colors survive MostDifferent.
	SelectionSize = 5

	idealCountMin    = 3.0
	idealCountMax    = 6.0
	idealDistanceMin = 70.0
	idealDistanceMax = 180.0
)

// Dedup keeps each color only if it is at least threshold away from every color
// kept before it. The result depends on input order.
func Dedup(colors []RGB, threshold float64) []RGB {
	kept := make([]RGB, 0, len(colors))
	for _, c := range colors {
		similar := false
		for _, k := range kept {
			if Distance(c, k) < threshold {
				similar = true
				break
			}
		}
		if !similar {
			kept = append(kept, c)
		}
	}
	return kept
}

// HarmonyScore rates a deduplicated palette from 1 to 10 (one decimal) by color
// count and mean pairwise distance.
func HarmonyScore(colors []RGB) float64 {
	var total float64
	var pairs int
	for i := range colors {
		for j := i + 1; j < len(colors); j++ {
			total += Distance(colors[i], colors[j])
			pairs++
		}
	}

	avgDistance := (idealDistanceMin + idealDistanceMax) / 2
	if pairs > 0 {
		avgDistance = total / float64(pairs)
	}

	countScore := calculateScore(float64(len(colors)), idealCountMin, idealCountMax)
	distanceScore := calculateScore(avgDistance, idealDistanceMin, idealDistanceMax)

	final := math.Floor((countScore+distanceScore)/2*10+0.5) / 10
	return math.Max(1, math.Min(10, final))
}

// calculateScore is 0..5 below min, 5..10 inside [min,max] and decays from 10
// past max (below 5 once value exceeds 2*max).
func calculateScore(value, lo, hi float64) float64 {
	switch {
	case value < lo:
		return 5 * (value / lo)
	case value > hi:
		return 10 - 5*((value-hi)/hi)
	default:
		return 5 + 5*((value-lo)/(hi-lo))
	}
}

// MostDifferent greedily picks up to count colors, starting from the first, each
// maximising its minimum distance to those already picked.
func MostDifferent(colors []RGB, count int) []RGB {
	if len(colors) <= count {
		return colors
	}

	picked := make([]bool, len(colors))
	picked[0] = true
	result := []RGB{colors[0]}

	for len(result) < count {
		best, bestDistance := -1, -1.0
		for i, c := range colors {
			if picked[i] {
				continue
			}
			nearest := math.Inf(1)
			for _, r := range result {
				nearest = math.Min(nearest, Distance(c, r))
			}
			if nearest > bestDistance {
				best, bestDistance = i, nearest
			}
		}
		if best < 0 {
			break
		}
		picked[best] = true
		result = append(result, colors[best])
	}
	return result
}
