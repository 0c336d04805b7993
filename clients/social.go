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
	DefaultSocialBaseURL = "https://api.socialdata.tools"

	socialRPS   = 2.0
	socialBurst = 4
)

// Profile is the subset of a social profile a site is built from.
type Profile struct {
	IDStr            string `json:"id_str"`
	ScreenName       string `json:"screen_name"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ProfileImageURL  string `json:"profile_image_url_https"`
	ProfileBannerURL string `json:"profile_banner_url"`
}

type tweetsResponse struct {
	Tweets []struct {
		FullText string `json:"full_text"`
	} `json:"tweets"`
}

// SocialClient reads profiles and tweets from the SocialData API.
type SocialClient struct {
	base
	baseURL string
	apiKey  string
}

// NewSocialClient creates a SocialData client. An empty baseURL uses the
// public endpoint.
func NewSocialClient(baseURL, apiKey string, logger *slog.Logger) *SocialClient {
	if baseURL == "" {
		baseURL = DefaultSocialBaseURL
	}
	return &SocialClient{
		base:    newBase("socialdata", socialRPS, socialBurst, logger),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Profile fetches the profile of username.
func (c *SocialClient) Profile(ctx context.Context, username string) (Profile, error) {
	body, err := c.get(ctx, "/twitter/user/"+url.PathEscape(username))
	if err != nil {
		return Profile{}, err
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return Profile{}, domainerrors.Wrap(err, domainerrors.CodeDecodeFailure, "decode profile")
	}
	if profile.IDStr == "" {
		return Profile{}, domainerrors.NotFoundf("profile %q has no id", username)
	}
	return profile, nil
}

// RecentTweets returns the full text of the user's latest tweets.
func (c *SocialClient) RecentTweets(ctx context.Context, userID string) ([]string, error) {
	body, err := c.get(ctx, "/twitter/user/"+url.PathEscape(userID)+"/tweets")
	if err != nil {
		return nil, err
	}

	var resp tweetsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeDecodeFailure, "decode tweets")
	}

	texts := make([]string, 0, len(resp.Tweets))
	for _, t := range resp.Tweets {
		if t.FullText != "" {
			texts = append(texts, t.FullText)
		}
	}
	return texts, nil
}

func (c *SocialClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	return c.do(ctx, req, maxResponseBytes)
}
