package models

import (
	"encoding/json"
	"time"
)

// Site is one generated aura site. Colors are hex strings as produced by the
// palette pipeline and never change after creation.
type Site struct {
	ID                int       `json:"id" db:"id"`
	Username          string    `json:"username" db:"username"`
	Name              string    `json:"name" db:"name"`
	Bio               string    `json:"bio" db:"bio"`
	PfpURL            string    `json:"pfpUrl" db:"pfp_url"`
	BannerURL         string    `json:"bannerUrl" db:"banner_url"`
	TwitterID         string    `json:"twitterId" db:"twitter_id"`
	Aura              string    `json:"aura" db:"aura"`
	GlobalVariant     Variant   `json:"globalVariant" db:"global_variant"`
	Score             float64   `json:"score" db:"score"`
	Colors            []string  `json:"colors" db:"colors"`
	PfpColors         []string  `json:"pfpColors" db:"pfp_colors"`
	BannerColors      []string  `json:"bannerColors" db:"banner_colors"`
	PrimaryColor      string    `json:"primaryColor" db:"primary_color"`
	SecondaryColor    string    `json:"secondaryColor" db:"secondary_color"`
	BackgroundColor   string    `json:"backgroundColor" db:"background_color"`
	ClosestNamedColor string    `json:"closestNamedColor" db:"closest_named_color"`
	PfpBlurHash       string    `json:"pfpBlurHash,omitempty" db:"pfp_blurhash"`
	BannerBlurHash    string    `json:"bannerBlurHash,omitempty" db:"banner_blurhash"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// Component is a stored content block of a site.
type Component struct {
	ID        int             `json:"id" db:"id"`
	SiteID    int             `json:"siteId" db:"site_id"`
	Type      BlockType       `json:"type" db:"component_type"`
	Content   json.RawMessage `json:"content" db:"content"`
	Voting    []int           `json:"voting,omitempty" db:"voting"`
	Variant   Variant         `json:"variant" db:"variant"`
	Position  int             `json:"position" db:"position"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// Block converts the stored component into its layout form.
func (c Component) Block() Block {
	return Block{
		ID:      c.ID,
		Type:    c.Type,
		Variant: c.Variant,
		Content: c.Content,
		Voting:  c.Voting,
	}
}

// SiteCard is the short form of a site used in listings.
type SiteCard struct {
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PfpURL       string    `json:"pfpUrl"`
	Aura         string    `json:"aura"`
	Score        float64   `json:"score"`
	Colors       []string  `json:"colors"`
	PrimaryColor string    `json:"primaryColor"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s Site) Card() SiteCard {
	return SiteCard{
		Username:     s.Username,
		Name:         s.Name,
		PfpURL:       s.PfpURL,
		Aura:         s.Aura,
		Score:        s.Score,
		Colors:       s.Colors,
		PrimaryColor: s.PrimaryColor,
		CreatedAt:    s.CreatedAt,
	}
}

// CreateSiteRequest asks for a site to be generated for a handle.
type CreateSiteRequest struct {
	Username string `json:"username" validate:"required,handle"`
}

// CreateSiteResponse reports whether the site was generated by this call.
type CreateSiteResponse struct {
	Created bool     `json:"created"`
	Site    SiteCard `json:"site"`
}

// LeaderboardEntry ranks a site by harmony score.
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	SiteCard
}

// VoteRequest casts one vote for an option of a voting component.
type VoteRequest struct {
	Option *int `json:"option" validate:"required,gte=0"`
}

// VoteTally pairs every option of a voting component with its count.
type VoteTally struct {
	ComponentID int      `json:"componentId"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Votes       []int    `json:"votes"`
	Total       int      `json:"total"`
}

// NewVoteTally builds the tally for a voting component.
func NewVoteTally(c Component) VoteTally {
	content := DecodeContent[VotingContent](c.Content)
	tally := VoteTally{
		ComponentID: c.ID,
		Question:    content.Question,
		Options:     content.Options,
		Votes:       make([]int, len(content.Options)),
	}
	if tally.Options == nil {
		tally.Options = []string{}
	}
	for i := range tally.Votes {
		if i < len(c.Voting) {
			tally.Votes[i] = c.Voting[i]
		}
		tally.Total += tally.Votes[i]
	}
	return tally
}
