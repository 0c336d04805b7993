package layout

import (
	"github.com/aura-site/api/models"
	"github.com/aura-site/api/selector"
)

// componentTables maps a block type and variant to the components a renderer
// may use. Repeated entries weight the pick.
var componentTables = map[models.BlockType]map[models.Variant][]string{
	models.BlockHero: {
		models.VariantMinimalist: {"HeroMinimalist"},
		models.VariantPlayful:    {"HeroPlayful"},
		models.VariantBold:       {"HeroBold"},
		models.VariantRetro:      {"HeroRetro"},
		models.VariantNature:     {"HeroMinimalist", "HeroPlayful"},
		models.VariantFuturistic: {"HeroGradient", "HeroBold"},
		models.VariantElegant:    {"HeroMinimalist", "HeroGradient"},
		models.VariantIndustrial: {"HeroBold", "HeroRetro"},
		models.VariantBohemian:   {"HeroPlayful", "HeroRetro"},
		models.VariantCyberpunk:  {"HeroGradient", "HeroBold"},
		models.VariantVintage:    {"HeroRetro"},
		models.VariantTropical:   {"HeroPlayful", "HeroGradient"},
		models.VariantZen:        {"HeroMinimalist"},
		models.VariantNeon:       {"HeroGradient", "HeroPlayful"},
		models.VariantRustic:     {"HeroRetro", "HeroMinimalist"},
	},
	models.BlockQuote: {
		models.VariantMinimalist: {"QuoteMinimalist"},
		models.VariantPlayful:    {"QuoteHandwrittenNote"},
		models.VariantBold:       {"QuoteModernDropShadow"},
		models.VariantRetro:      {"QuoteRetroTypography"},
		models.VariantNature:     {"QuoteMinimalist", "QuoteHandwrittenNote"},
		models.VariantFuturistic: {"QuoteModernDropShadow", "QuoteMinimalist"},
		models.VariantElegant:    {"QuoteElegantScript", "QuoteMinimalist"},
		models.VariantIndustrial: {"QuoteModernDropShadow", "QuoteRetroTypography"},
		models.VariantBohemian:   {"QuoteHandwrittenNote", "QuoteRetroTypography"},
		models.VariantCyberpunk:  {"QuoteModernDropShadow", "QuoteRetroTypography"},
		models.VariantVintage:    {"QuoteRetroTypography"},
		models.VariantTropical:   {"QuoteHandwrittenNote", "QuoteElegantScript"},
		models.VariantZen:        {"QuoteMinimalist"},
		models.VariantNeon:       {"QuoteModernDropShadow", "QuoteHandwrittenNote"},
		models.VariantRustic:     {"QuoteRetroTypography", "QuoteMinimalist"},
	},
	models.BlockList: {
		models.VariantMinimalist: {"MinimalList"},
		models.VariantPlayful:    {"ModernChecklist"},
		models.VariantBold:       {"GradientCardsList"},
		models.VariantRetro:      {"RetroPixelList"},
		models.VariantNature:     {"NatureInspiredList", "MinimalList"},
		models.VariantFuturistic: {"GradientCardsList", "ModernChecklist"},
		models.VariantElegant:    {"ElegantNumberedList", "MinimalList"},
		models.VariantIndustrial: {"GradientCardsList", "RetroPixelList"},
		models.VariantBohemian:   {"NatureInspiredList", "ModernChecklist"},
		models.VariantCyberpunk:  {"GradientCardsList", "RetroPixelList"},
		models.VariantVintage:    {"RetroPixelList"},
		models.VariantTropical:   {"NatureInspiredList", "ModernChecklist"},
		models.VariantZen:        {"MinimalList"},
		models.VariantNeon:       {"GradientCardsList", "ModernChecklist"},
		models.VariantRustic:     {"RetroPixelList", "NatureInspiredList"},
	},
	// bold and retro have no voting components of their own.
	models.BlockVoting: {
		models.VariantMinimalist: {"VotingMinimalist"},
		models.VariantPlayful:    {"VotingPlayful"},
		models.VariantNature:     {"VotingMinimalist", "VotingPlayful"},
		models.VariantFuturistic: {"VotingCyberpunk", "VotingElegant"},
		models.VariantElegant:    {"VotingElegant"},
		models.VariantIndustrial: {"VotingMinimalist", "VotingCyberpunk"},
		models.VariantBohemian:   {"VotingPlayful", "VotingElegant"},
		models.VariantCyberpunk:  {"VotingCyberpunk"},
		models.VariantVintage:    {"VotingElegant"},
		models.VariantTropical:   {"VotingPlayful", "VotingMinimalist"},
		models.VariantZen:        {"VotingMinimalist"},
		models.VariantNeon:       {"VotingCyberpunk", "VotingPlayful"},
		models.VariantRustic:     {"VotingElegant", "VotingMinimalist"},
	},
	models.BlockImage: {
		models.VariantMinimalist: {"ImageSimple"},
		models.VariantPlayful:    {"ImageMessy", "ImageCarousel"},
		models.VariantBold:       {"ImageCollage", "ImageHexGrid"},
		models.VariantRetro:      {"ImageMessy", "ImageMasonry"},
		models.VariantNature:     {"ImageSimple", "ImageMessy", "ImageMasonry"},
		models.VariantFuturistic: {"ImageCollage", "ImageHexGrid", "ImageMasonry"},
		models.VariantElegant:    {"ImageSimple", "ImageCarousel", "ImageMasonry"},
		models.VariantIndustrial: {"ImageCollage", "ImageMessy", "ImageHexGrid"},
		models.VariantBohemian:   {"ImageMessy", "ImageMasonry"},
		models.VariantCyberpunk:  {"ImageCollage", "ImageHexGrid"},
		models.VariantVintage:    {"ImageMasonry", "ImageSimple", "ImageMasonry"},
		models.VariantTropical:   {"ImageCollage", "ImageSimple", "ImageCarousel"},
		models.VariantZen:        {"ImageSimple", "ImageMasonry"},
		models.VariantNeon:       {"ImageCollage", "ImageMessy", "ImageHexGrid"},
		models.VariantRustic:     {"ImageMessy", "ImageSimple", "ImageMasonry"},
	},
}

var fallbackComponents = map[models.BlockType]string{
	models.BlockHero:      "HeroMinimalist",
	models.BlockQuote:     "QuoteMinimalist",
	models.BlockList:      "MinimalList",
	models.BlockVoting:    "VotingMinimalist",
	models.BlockImage:     "ImageSimple",
	models.BlockMoodboard: "Moodboard",
}

// Resolve names the component that renders b on the site seeded by seed. An
// unknown variant falls back to the type's default and an unknown type to "".
func Resolve(seed string, b models.Block) string {
	options := componentTables[b.Type][b.Variant]
	if len(options) == 0 {
		return fallbackComponents[b.Type]
	}
	return selector.Pick(seed+string(b.Type), options)
}

var (
	headerComponents = []string{"Header1", "Header2", "Header3", "Header4"}
	headerLayouts    = []string{"start", "center", "between"}
	headerBorders    = []string{"thin", "medium", "accent", "none", "dark"}
	textLayouts      = []string{"left", "center", "right"}
	quoteBorders     = []string{"thin", "medium", "accent", "none"}
	imageWidths      = []string{"none", "thin", "medium", "thick"}
	imageColors      = []string{"black", "gray", "accent"}
	imagePaddings    = []string{"none", "small", "medium"}
	imageHovers      = []string{"scale", "brighten", "rotate", "shadow"}
	imageFilters     = []string{"none", "grayscale", "sepia", "brighten"}
)

// Decorations are the site-wide style picks shared by every block of a type.
type Decorations struct {
	Header       string `json:"header"`
	HeaderLayout string `json:"headerLayout"`
	HeaderBorder string `json:"headerBorder"`
	HeroLayout   string `json:"heroLayout"`
	QuoteLayout  string `json:"quoteLayout"`
	QuoteBorder  string `json:"quoteBorder"`
	ListLayout   string `json:"listLayout"`
	ImageBorder  struct {
		Width   string `json:"width"`
		Color   string `json:"color"`
		Padding string `json:"padding"`
	} `json:"imageBorder"`
	ImageHover  string `json:"imageHover"`
	ImageFilter string `json:"imageFilter"`
}

// Decorate resolves the decorations for seed.
func Decorate(seed string) Decorations {
	d := Decorations{
		Header:       selector.Pick(seed, headerComponents),
		HeaderLayout: selector.Pick(seed+"layout", headerLayouts),
		HeaderBorder: selector.Pick(seed+"border", headerBorders),
		HeroLayout:   selector.Pick(seed+"herolayout", textLayouts),
		QuoteLayout:  selector.Pick(seed+"quotelayout", textLayouts),
		QuoteBorder:  selector.Pick(seed+"quoteborder", quoteBorders),
		ListLayout:   selector.Pick(seed+"listlayout", textLayouts),
		ImageHover:   selector.Pick(seed+"imagehover", imageHovers),
		ImageFilter:  selector.Pick(seed+"imagefilter", imageFilters),
	}
	d.ImageBorder.Width = selector.Pick(seed+"imageborderwidth", imageWidths)
	d.ImageBorder.Color = selector.Pick(seed+"imagebordercolor", imageColors)
	d.ImageBorder.Padding = selector.Pick(seed+"imageborderpadding", imagePaddings)
	return d
}
