package api

import (
	"context"
	"log/slog"

	"github.com/aura-site/api/datastore"
	"github.com/aura-site/api/models"
	"github.com/aura-site/api/palette"
	"github.com/aura-site/api/ratelimit"
	"github.com/aura-site/api/sitegen"
	"github.com/aura-site/api/validation"
)

type Config struct {
	HTTPPort            string
	DatabaseType        string
	DatabaseHost        string
	DatabasePort        string
	DatabaseUser        string
	DatabasePassword    string
	DatabaseName        string
	SSLMode             string
	JwtSecret           string
	JwtAccessDuration   int // seconds
	JwtDomain           string
	AllowedOrigins      []string
	DevMode             bool
	CreateRatePerMinute int
	TrustProxyHeaders   bool // read client IPs from X-Forwarded-For / X-Real-IP
	MaxUploadBytes      int64
}

// SiteGenerator builds or returns the site of a handle.
type SiteGenerator interface {
	Generate(ctx context.Context, username string) (sitegen.Result, error)
}

// PaletteAnalyzer describes a single uploaded image.
type PaletteAnalyzer interface {
	DescribeImage(data []byte) (palette.Descriptor, error)
}

// FeaturedPicker chooses today's featured site on demand.
type FeaturedPicker interface {
	GenerateFeaturedSite() (models.FeaturedSite, error)
}

type Application struct {
	Config        Config
	Logger        *slog.Logger
	SiteRepo      datastore.SiteRepository
	ComponentRepo datastore.ComponentRepository
	FeaturedRepo  datastore.FeaturedRepository
	OperatorRepo  datastore.OperatorRepository
	Generator     SiteGenerator
	Palette       PaletteAnalyzer
	Featured      FeaturedPicker
	Validator     *validation.Validator
	CreateLimiter *ratelimit.KeyedRateLimiter
}
