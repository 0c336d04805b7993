// Package sitegen builds a new aura site from a social handle: it reads the
// profile, derives the palette, asks the language model for content blocks and
// stores the result. Layout is not decided here; rows are recomputed on every
// read from the stored blocks.
package sitegen

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aura-site/api/clients"
	domainerrors "github.com/aura-site/api/errors"
	"github.com/aura-site/api/models"
	"github.com/aura-site/api/palette"
	"github.com/aura-site/api/validation"
)

// SocialSource reads a profile and its recent posts.
type SocialSource interface {
	Profile(ctx context.Context, username string) (clients.Profile, error)
	RecentTweets(ctx context.Context, userID string) ([]string, error)
}

// PaletteDescriber derives the color descriptor of a profile.
type PaletteDescriber interface {
	Describe(ctx context.Context, profileURL, bannerURL string) palette.Descriptor
}

// OutlineSource plans the content blocks of a site.
type OutlineSource interface {
	Outline(ctx context.Context, colors []string, tweets []string) (clients.Outline, error)
}

// ImageDescriber turns an image into a short search phrase.
type ImageDescriber interface {
	DescribeImage(ctx context.Context, url string) (string, error)
}

// ImageSearcher finds images similar to a phrase in a color.
type ImageSearcher interface {
	Search(ctx context.Context, description, color string) ([]string, error)
}

// SiteStore persists sites.
type SiteStore interface {
	GetByUsername(username string) (models.Site, error)
	Create(site models.Site, components []models.Component) (models.Site, []models.Component, error)
}

// Deps are the collaborators of a Generator.
type Deps struct {
	Social   SocialSource
	Palette  PaletteDescriber
	Outlines OutlineSource
	Vision   ImageDescriber
	Search   ImageSearcher
	Sites    SiteStore
	Logger   *slog.Logger
}

// Result is a stored site and whether this call generated it.
type Result struct {
	Site       models.Site
	Components []models.Component
	Created    bool
}

type Generator struct {
	social   SocialSource
	palette  PaletteDescriber
	outlines OutlineSource
	vision   ImageDescriber
	search   ImageSearcher
	sites    SiteStore
	validate *validation.Validator
	logger   *slog.Logger
	now      func() time.Time
}

func New(deps Deps) *Generator {
	return &Generator{
		social:   deps.Social,
		palette:  deps.Palette,
		outlines: deps.Outlines,
		vision:   deps.Vision,
		search:   deps.Search,
		sites:    deps.Sites,
		validate: validation.New(),
		logger:   deps.Logger,
		now:      time.Now,
	}
}

// NormalizeHandle is the stored form of a handle. Handles are case
// insensitive, so the lower case form is also the layout seed.
func NormalizeHandle(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

// Generate returns the site for username, building it first if none exists.
func (g *Generator) Generate(ctx context.Context, username string) (Result, error) {
	username = NormalizeHandle(username)
	if err := g.validate.Validate(models.CreateSiteRequest{Username: username}); err != nil {
		return Result{}, err
	}

	if existing, ok, err := g.existing(username); err != nil || ok {
		return existing, err
	}

	profile, err := g.social.Profile(ctx, username)
	if err != nil {
		return Result{}, err
	}
	tweets, err := g.social.RecentTweets(ctx, profile.IDStr)
	if err != nil {
		return Result{}, err
	}

	desc := g.palette.Describe(ctx, profile.ProfileImageURL, profile.ProfileBannerURL)

	outline, err := g.outlines.Outline(ctx, desc.Colors, tweets)
	if err != nil {
		return Result{}, err
	}

	variant := outline.GlobalVariant
	if !variant.Valid() {
		g.logger.Warn("outline returned unknown variant, using minimalist",
			"username", username,
			"variant", variant,
		)
		variant = models.VariantMinimalist
	}

	components, err := g.components(ctx, outline, profile, string(desc.ClosestNamedColor), variant)
	if err != nil {
		return Result{}, err
	}

	site := newSite(username, profile, desc, outline.Aura, variant, g.now().UTC())

	stored, storedComponents, err := g.sites.Create(site, components)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrConflict) {
			// Another request generated the same handle first.
			if existing, ok, lookupErr := g.existing(username); lookupErr == nil && ok {
				return existing, nil
			}
		}
		return Result{}, err
	}

	g.logger.Info("site generated",
		"username", username,
		"site_id", stored.ID,
		"components", len(storedComponents),
		"variant", variant,
		"score", stored.Score,
	)

	return Result{Site: stored, Components: storedComponents, Created: true}, nil
}

func (g *Generator) existing(username string) (Result, bool, error) {
	site, err := g.sites.GetByUsername(username)
	switch {
	case err == nil:
		return Result{Site: site}, true, nil
	case domainerrors.Is(err, domainerrors.ErrNotFound):
		return Result{}, false, nil
	default:
		return Result{}, false, err
	}
}

// components turns the outline into storable blocks followed by the profile
// and banner image blocks.
func (g *Generator) components(ctx context.Context, outline clients.Outline, profile clients.Profile, color string, variant models.Variant) ([]models.Component, error) {
	var out []models.Component
	for _, oc := range outline.SelectedComponents {
		if !oc.Type.Generated() || len(oc.Content) == 0 {
			g.logger.Debug("skipping outline component", "type", oc.Type)
			continue
		}

		c := models.Component{Type: oc.Type, Content: oc.Content, Variant: variant}
		if oc.Type == models.BlockVoting {
			options := models.DecodeContent[models.VotingContent](oc.Content).Options
			c.Voting = make([]int, len(options))
		}
		out = append(out, c)
	}

	images := []string{profile.ProfileImageURL}
	if profile.ProfileBannerURL != "" {
		images = append(images, profile.ProfileBannerURL)
	}

	contents := make([]models.ImageContent, len(images))
	grp, gctx := errgroup.WithContext(ctx)
	for i, url := range images {
		grp.Go(func() error {
			contents[i] = g.imageContent(gctx, url, color)
			return nil
		})
	}
	_ = grp.Wait()

	for _, content := range contents {
		raw, err := models.EncodeContent(content)
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "encode image content")
		}
		out = append(out, models.Component{Type: models.BlockImage, Content: raw, Variant: variant})
	}

	for i := range out {
		out[i].Position = i
	}
	return out, nil
}

// imageContent describes url and searches similar images. Both steps degrade
// to empty values on failure.
func (g *Generator) imageContent(ctx context.Context, url, color string) models.ImageContent {
	content := models.ImageContent{BaseImageURL: url, SimilarImages: []string{}}
	if url == "" {
		return content
	}

	description, err := g.vision.DescribeImage(ctx, url)
	if err != nil {
		g.logger.Warn("image description failed",
			"url", url,
			"code", domainerrors.CodeOf(err),
			"error", err,
		)
		return content
	}
	content.Description = description

	similar, err := g.search.Search(ctx, description, color)
	if err != nil {
		g.logger.Warn("similar image search failed",
			"url", url,
			"code", domainerrors.CodeOf(err),
			"error", err,
		)
		return content
	}
	content.SimilarImages = similar
	return content
}

func newSite(username string, profile clients.Profile, desc palette.Descriptor, aura string, variant models.Variant, now time.Time) models.Site {
	return models.Site{
		Username:          username,
		Name:              profile.Name,
		Bio:               profile.Description,
		PfpURL:            profile.ProfileImageURL,
		BannerURL:         profile.ProfileBannerURL,
		TwitterID:         profile.IDStr,
		Aura:              aura,
		GlobalVariant:     variant,
		Score:             desc.Score,
		Colors:            desc.Colors,
		PfpColors:         desc.ProfileColors,
		BannerColors:      desc.BannerColors,
		PrimaryColor:      desc.PrimaryColor,
		SecondaryColor:    desc.SecondaryColor,
		BackgroundColor:   desc.BackgroundColor,
		ClosestNamedColor: string(desc.ClosestNamedColor),
		PfpBlurHash:       desc.ProfileBlurHash,
		BannerBlurHash:    desc.BannerBlurHash,
		CreatedAt:         now,
	}
}
