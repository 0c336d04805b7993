package models

import "encoding/json"

// BlockType tags the kind of content a block carries.
type BlockType string

const (
	BlockHero      BlockType = "hero"
	BlockQuote     BlockType = "quote"
	BlockList      BlockType = "list"
	BlockVoting    BlockType = "voting"
	BlockImage     BlockType = "image"
	BlockMoodboard BlockType = "moodboard"
)

// SoloRow reports whether blocks of this type always occupy a row alone.
func (t BlockType) SoloRow() bool {
	return t == BlockHero || t == BlockQuote || t == BlockList
}

// Generated reports whether the language model may produce this type.
func (t BlockType) Generated() bool {
	return t.SoloRow() || t == BlockVoting
}

// Variant is one of the aesthetic presets a site is styled with.
type Variant string

const (
	VariantMinimalist Variant = "minimalist"
	VariantPlayful    Variant = "playful"
	VariantBold       Variant = "bold"
	VariantRetro      Variant = "retro"
	VariantNature     Variant = "nature"
	VariantFuturistic Variant = "futuristic"
	VariantElegant    Variant = "elegant"
	VariantIndustrial Variant = "industrial"
	VariantBohemian   Variant = "bohemian"
	VariantCyberpunk  Variant = "cyberpunk"
	VariantVintage    Variant = "vintage"
	VariantTropical   Variant = "tropical"
	VariantZen        Variant = "zen"
	VariantNeon       Variant = "neon"
	VariantRustic     Variant = "rustic"
)

var variants = []Variant{
	VariantMinimalist, VariantPlayful, VariantBold, VariantRetro, VariantNature,
	VariantFuturistic, VariantElegant, VariantIndustrial, VariantBohemian, VariantCyberpunk,
	VariantVintage, VariantTropical, VariantZen, VariantNeon, VariantRustic,
}

// Variants lists every preset in a fixed order.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	copy(out, variants)
	return out
}

// Valid reports whether v is a known preset.
func (v Variant) Valid() bool {
	for _, known := range variants {
		if v == known {
			return true
		}
	}
	return false
}

// Block is one independently renderable unit of a site. Content is kept raw so
// that a malformed payload never breaks layout.
type Block struct {
	ID      int             `json:"id"`
	Type    BlockType       `json:"type"`
	Variant Variant         `json:"variant"`
	Content json.RawMessage `json:"content"`
	Voting  []int           `json:"voting,omitempty"`
}

type HeroContent struct {
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
}

type QuoteContent struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

type ListContent struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type VotingContent struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type ImageContent struct {
	Description   string   `json:"description"`
	SimilarImages []string `json:"similarImages"`
	BaseImageURL  string   `json:"baseImageUrl"`
}

// MoodboardTile is one animated shape of a moodboard.
type MoodboardTile struct {
	Color     string  `json:"color"`
	Shape     string  `json:"shape"`
	Scale     float64 `json:"scale"`
	Stiffness int     `json:"stiffness"`
}

type MoodboardContent struct {
	Tiles []MoodboardTile `json:"tiles"`
}

// DecodeContent unmarshals raw block content into T. Missing or malformed
// content yields the zero value of T.
func DecodeContent[T any](raw json.RawMessage) T {
	var content T
	if len(raw) == 0 {
		return content
	}
	if err := json.Unmarshal(raw, &content); err != nil {
		var zero T
		return zero
	}
	return content
}

// EncodeContent marshals content for storage.
func EncodeContent(content any) (json.RawMessage, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// MustEncodeContent is EncodeContent for content built in-process from
// strings and finite numbers, where a marshal error is a programming error.
func MustEncodeContent(content any) json.RawMessage {
	raw, err := EncodeContent(content)
	if err != nil {
		panic(err)
	}
	return raw
}
