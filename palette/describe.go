package palette

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	domainerrors "github.com/aura-site/api/errors"
)

// Fetcher loads raw image bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Analysis is what one image contributes to a site.
type Analysis struct {
	Colors   []RGB
	BlurHash string
}

// Analyze decodes data once and derives both its palette and its placeholder.
func Analyze(data []byte, opts Options) (Analysis, error) {
	img, err := Decode(data)
	if err != nil {
		return Analysis{}, err
	}
	opts = opts.normalized()

	analysis := Analysis{Colors: Quantize(SamplePixels(img, opts.Quality), opts.ColorCount)}
	if hash, err := BlurHash(img); err == nil {
		analysis.BlurHash = hash
	}
	return analysis, nil
}

// Extractor fetches and analyzes images, turning every failure into an empty
// result so one broken image never aborts a site.
type Extractor struct {
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(fetcher Fetcher, opts Options, logger *slog.Logger) *Extractor {
	return &Extractor{fetcher: fetcher, opts: opts, logger: logger}
}

// ExtractURL returns the analysis of the image at url, or an empty one.
func (e *Extractor) ExtractURL(ctx context.Context, url string) Analysis {
	if url == "" {
		return Analysis{}
	}

	data, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		if domainerrors.CodeOf(err) == domainerrors.CodeInternal {
			err = domainerrors.Wrap(err, domainerrors.CodeFetchFailure, "fetch image")
		}
		e.logger.Warn("image fetch failed, using empty palette",
			"url", url,
			"code", domainerrors.CodeOf(err),
			"error", err,
		)
		return Analysis{}
	}

	analysis, err := Analyze(data, e.opts)
	if err != nil {
		e.logger.Warn("image analysis failed, using empty palette",
			"url", url,
			"code", domainerrors.CodeOf(err),
			"error", err,
		)
		return Analysis{}
	}

	e.logger.Debug("extracted image palette",
		"url", url,
		"colors", len(analysis.Colors),
	)
	return analysis
}

// Descriptor is the persisted color summary of a site.
type Descriptor struct {
	Colors            []string   `json:"colors"`
	Score             float64    `json:"score"`
	ProfileColors     []string   `json:"profileColors"`
	BannerColors      []string   `json:"bannerColors"`
	PrimaryColor      string     `json:"primaryColor"`
	SecondaryColor    string     `json:"secondaryColor"`
	BackgroundColor   string     `json:"backgroundColor"`
	ClosestNamedColor NamedColor `json:"closestNamedColor"`
	ProfileBlurHash   string     `json:"profileBlurHash,omitempty"`
	BannerBlurHash    string     `json:"bannerBlurHash,omitempty"`
}

// Summarize runs dedup, scoring, selection and role assignment over the profile
// colors followed by the banner colors. The selected colors are stored least
// saturated first, the reverse of the order roles are picked in.
func Summarize(profile, banner []RGB) Descriptor {
	all := make([]RGB, 0, len(profile)+len(banner))
	all = append(all, profile...)
	all = append(all, banner...)

	unique := Dedup(all, DedupThreshold)
	selected := MostDifferent(unique, SelectionSize)
	roles := AssignRoles(selected)

	stored := bySaturation(selected)
	slices.Reverse(stored)

	return Descriptor{
		Colors:            HexAll(stored),
		Score:             HarmonyScore(unique),
		ProfileColors:     HexAll(profile),
		BannerColors:      HexAll(banner),
		PrimaryColor:      roles.Primary.Hex(),
		SecondaryColor:    roles.Secondary.Hex(),
		BackgroundColor:   roles.Background.Hex(),
		ClosestNamedColor: roles.Named,
	}
}

// Describer runs the whole color pipeline for a profile.
type Describer struct {
	extractor *Extractor
}

// NewDescriber creates a Describer.
func NewDescriber(extractor *Extractor) *Describer {
	return &Describer{extractor: extractor}
}

// Describe analyzes the profile picture and the banner concurrently. An empty
// bannerURL contributes no colors.
func (d *Describer) Describe(ctx context.Context, profileURL, bannerURL string) Descriptor {
	var profile, banner Analysis

	var g errgroup.Group
	g.Go(func() error {
		profile = d.extractor.ExtractURL(ctx, profileURL)
		return nil
	})
	g.Go(func() error {
		banner = d.extractor.ExtractURL(ctx, bannerURL)
		return nil
	})
	_ = g.Wait()

	desc := Summarize(profile.Colors, banner.Colors)
	desc.ProfileBlurHash = profile.BlurHash
	desc.BannerBlurHash = banner.BlurHash
	return desc
}

// DescribeImage summarizes a single uploaded image. Unlike Describe it reports
// unsupported or undecodable input to the caller.
func (d *Describer) DescribeImage(data []byte) (Descriptor, error) {
	analysis, err := Analyze(data, d.extractor.opts)
	if err != nil {
		return Descriptor{}, err
	}
	desc := Summarize(analysis.Colors, nil)
	desc.ProfileBlurHash = analysis.BlurHash
	return desc, nil
}
