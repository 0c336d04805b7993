package clients

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	domainerrors "github.com/aura-site/api/errors"
)

const (
	DefaultImageSearchBaseURL = "https://www.googleapis.com/customsearch/v1"

	imageSearchRPS   = 1.0
	imageSearchBurst = 2
)

type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

// ImageSearchClient finds images similar to a description through the Google
// Custom Search API.
type ImageSearchClient struct {
	base
	baseURL string
	apiKey  string
	cx      string
}

// NewImageSearchClient creates a Custom Search client for the engine cx.
func NewImageSearchClient(baseURL, apiKey, cx string, logger *slog.Logger) *ImageSearchClient {
	if baseURL == "" {
		baseURL = DefaultImageSearchBaseURL
	}
	return &ImageSearchClient{
		base:    newBase("imagesearch", imageSearchRPS, imageSearchBurst, logger),
		baseURL: baseURL,
		apiKey:  apiKey,
		cx:      cx,
	}
}

// SearchQuery is the query sent for a description and a named color.
func SearchQuery(description, color string) string {
	return description + ", aesthetic, vibe, " + color
}

// Search returns the links of images matching description in color. No
// results is an empty slice.
func (c *ImageSearchClient) Search(ctx context.Context, description, color string) ([]string, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cx)
	params.Set("searchType", "image")
	params.Set("q", SearchQuery(description, color))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "create request")
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(ctx, req, maxResponseBytes)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeDecodeFailure, "decode search results")
	}

	links := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}
	return links, nil
}
