// Package layout arranges a site's stored blocks into rendered rows. Every
// choice is a hash of the seed, so a site always renders the same way and no
// arrangement is ever persisted.
package layout

import (
	"slices"
	"strconv"

	"github.com/aura-site/api/models"
	"github.com/aura-site/api/selector"
)

const (
	maxColumns = 2

	bannerProbability    = 0.4
	secondaryProbability = 0.99
	moodboardIDModulus   = 1_000_000
	shuffleModulus       = 1000
)

// moodboardProbability is the chance a moodboard is added, per site variant.
var moodboardProbability = map[models.Variant]float64{
	models.VariantMinimalist: 0.2,
	models.VariantPlayful:    0.6,
	models.VariantBold:       0.4,
	models.VariantRetro:      0.5,
	models.VariantNature:     0.3,
	models.VariantFuturistic: 0.7,
	models.VariantElegant:    0.3,
	models.VariantIndustrial: 0.4,
	models.VariantBohemian:   0.5,
	models.VariantCyberpunk:  0.8,
	models.VariantVintage:    0.4,
	models.VariantTropical:   0.5,
	models.VariantZen:        0.3,
	models.VariantNeon:       0.7,
	models.VariantRustic:     0.3,
}

// Row is one horizontal strip of the page holding one or two blocks.
type Row []models.Block

// Input is everything the composer needs.
type Input struct {
	Seed    string
	Blocks  []models.Block
	Variant models.Variant
	// Palette holds the site's hex colors, used to synthesise the moodboard.
	Palette []string
}

// Compose shuffles, filters and packs the blocks into rows. A site without
// blocks renders no rows.
func Compose(in Input) []Row {
	if len(in.Blocks) == 0 {
		return nil
	}

	shuffled := shuffle(in.Seed, in.Blocks)

	var images, sequence []models.Block
	for _, b := range shuffled {
		if b.Type == models.BlockImage {
			images = append(images, b)
		} else {
			sequence = append(sequence, b)
		}
	}

	if len(images) > 0 && selector.Chance(in.Seed+"banner") < bannerProbability {
		sequence = append(sequence, images[0])
	}
	if len(images) > 1 && selector.Chance(in.Seed+"pfp") < secondaryProbability {
		sequence = append(sequence, images[1])
	}

	variant := moodboardVariant(in)
	if selector.Chance(in.Seed+"moodboard") < probabilityFor(variant) {
		sequence = append(sequence, Moodboard(in.Seed, variant, in.Palette))
	}

	return pack(sequence)
}

func shuffle(seed string, blocks []models.Block) []models.Block {
	keys := make(map[models.BlockType]int)
	for _, b := range blocks {
		if _, ok := keys[b.Type]; !ok {
			keys[b.Type] = selector.MustSelect(seed+string(b.Type), shuffleModulus)
		}
	}

	shuffled := slices.Clone(blocks)
	slices.SortStableFunc(shuffled, func(a, b models.Block) int {
		return keys[a.Type] - keys[b.Type]
	})
	return shuffled
}

// moodboardVariant is the variant of the first stored block, then the site
// variant, then minimalist.
func moodboardVariant(in Input) models.Variant {
	if len(in.Blocks) > 0 && in.Blocks[0].Variant != "" {
		return in.Blocks[0].Variant
	}
	if in.Variant != "" {
		return in.Variant
	}
	return models.VariantMinimalist
}

func probabilityFor(v models.Variant) float64 {
	if p, ok := moodboardProbability[v]; ok {
		return p
	}
	return moodboardProbability[models.VariantMinimalist]
}

// Moodboard synthesises the moodboard block for a palette.
func Moodboard(seed string, variant models.Variant, palette []string) models.Block {
	return models.Block{
		ID:      selector.MustSelect(seed+"moodboard_id", moodboardIDModulus),
		Type:    models.BlockMoodboard,
		Variant: variant,
		Content: models.MustEncodeContent(models.MoodboardContent{Tiles: Tiles(palette)}),
	}
}

// pack walks the sequence once. Hero, quote and list blocks always sit alone,
// an image never joins a row opened by another image, and no row exceeds two
// blocks.
func pack(sequence []models.Block) []Row {
	var rows []Row
	var current Row
	var lastType models.BlockType

	flush := func() {
		if len(current) > 0 {
			rows = append(rows, current)
			current = nil
		}
		lastType = ""
	}

	for _, b := range sequence {
		switch {
		case b.Type.SoloRow():
			flush()
		case b.Type == models.BlockImage:
			if len(current) == maxColumns || (lastType == models.BlockImage && len(current) == 1) {
				flush()
			}
		}

		current = append(current, b)
		lastType = b.Type

		if len(current) == maxColumns || b.Type.SoloRow() {
			flush()
		}
	}
	flush()

	return rows
}

// BlockIDs flattens rows into block ids, mostly for logging.
func BlockIDs(rows []Row) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, b := range row {
			out[i][j] = string(b.Type) + ":" + strconv.Itoa(b.ID)
		}
	}
	return out
}
