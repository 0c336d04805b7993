package models

import "time"

// FeaturedSite is the site of the day.
type FeaturedSite struct {
	ID        int       `json:"id"`
	Date      time.Time `json:"date"`
	SiteID    int       `json:"siteId"`
	CreatedAt time.Time `json:"createdAt"`
}

// FeaturedSiteResponse is the simplified response for API endpoints
type FeaturedSiteResponse struct {
	Date string   `json:"date"`
	Site SiteCard `json:"site"`
}
