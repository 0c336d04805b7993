package api

import (
	"github.com/aura-site/api/layout"
	"github.com/aura-site/api/models"
)

// PageBlock is a block together with the component that renders it.
type PageBlock struct {
	models.Block
	Component string `json:"component"`
}

// SitePage is everything a renderer needs to draw a site. Rows are derived on
// every request and never stored.
type SitePage struct {
	Site        models.Site        `json:"site"`
	Decorations layout.Decorations `json:"decorations"`
	Rows        [][]PageBlock      `json:"rows"`
}

func buildSitePage(site models.Site, components []models.Component) SitePage {
	blocks := make([]models.Block, len(components))
	for i, c := range components {
		blocks[i] = c.Block()
	}

	rows := layout.Compose(layout.Input{
		Seed:    site.Username,
		Blocks:  blocks,
		Variant: site.GlobalVariant,
		Palette: site.Colors,
	})

	page := SitePage{
		Site:        site,
		Decorations: layout.Decorate(site.Username),
		Rows:        make([][]PageBlock, len(rows)),
	}
	for i, row := range rows {
		page.Rows[i] = make([]PageBlock, len(row))
		for j, b := range row {
			page.Rows[i][j] = PageBlock{Block: b, Component: layout.Resolve(site.Username, b)}
		}
	}
	return page
}
