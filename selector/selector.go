// Package selector turns strings into stable indexes. It is the only source of
// "randomness" in the generator: every style choice and probability gate is a
// hash of the seed plus a salt, so the same handle always yields the same site.
package selector

import (
	"unicode/utf16"

	domainerrors "github.com/aura-site/api/errors"
)

// Hash computes the 32-bit rolling polynomial hash (h = h*31 + unit) over the
// UTF-16 code units of key, wrapping to int32 at every step.
func Hash(key string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(key)) {
		h = h*31 + int32(unit)
	}
	return h
}

// Select maps key onto [0, modulus).
func Select(key string, modulus int) (int, error) {
	if modulus < 1 {
		return 0, domainerrors.InvalidArgumentf("modulus must be 1 or greater, got %d", modulus)
	}

	// abs in 64 bits: -MinInt32 does not fit in an int32.
	h := int64(Hash(key))
	if h < 0 {
		h = -h
	}
	return int(h % int64(modulus)), nil
}

// MustSelect is like Select but panics on an invalid modulus. Use it only with
// non-empty constant tables, where a failure is a programming error.
func MustSelect(key string, modulus int) int {
	idx, err := Select(key, modulus)
	if err != nil {
		panic(err)
	}
	return idx
}

// Chance returns Select(key, 100) / 100, a value in [0, 0.99] that call sites
// compare against a probability threshold.
func Chance(key string) float64 {
	return float64(MustSelect(key, 100)) / 100
}

// Pick returns the element of options chosen by key. options must not be empty.
func Pick[T any](key string, options []T) T {
	return options[MustSelect(key, len(options))]
}
