package clients

import (
	"context"
	"log/slog"
	"net/http"

	domainerrors "github.com/aura-site/api/errors"
)

const (
	// MaxImageBytes caps downloaded profile and banner images.
	MaxImageBytes = 10 << 20

	imageRPS   = 10.0
	imageBurst = 10
)

// ImageFetcher downloads raw image bytes. It satisfies palette.Fetcher.
type ImageFetcher struct {
	base
	maxBytes int64
}

// NewImageFetcher creates an ImageFetcher. maxBytes <= 0 uses MaxImageBytes.
func NewImageFetcher(maxBytes int64, logger *slog.Logger) *ImageFetcher {
	if maxBytes <= 0 {
		maxBytes = MaxImageBytes
	}
	return &ImageFetcher{
		base:     newBase("images", imageRPS, imageBurst, logger),
		maxBytes: maxBytes,
	}
}

// Fetch downloads url.
func (f *ImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeFetchFailure, "invalid image url %q", url)
	}
	req.Header.Set("Accept", "image/png, image/jpeg")

	return f.do(ctx, req, f.maxBytes)
}
