package layout

import (
	"fmt"

	"github.com/aura-site/api/models"
	"github.com/aura-site/api/selector"
)

const tilesPerColor = 3

var shapes = []string{
	"circle", "square", "triangle", "rectangle", "oval",
	"parallelogram", "trapezoid", "pentagon", "hexagon", "octagon",
}

// Tiles derives three tiles per palette color. Keys are "<color>-<i>-<j>-<salt>".
func Tiles(palette []string) []models.MoodboardTile {
	tiles := make([]models.MoodboardTile, 0, len(palette)*tilesPerColor)
	for i, color := range palette {
		for j := 0; j < tilesPerColor; j++ {
			key := fmt.Sprintf("%s-%d-%d", color, i, j)
			tiles = append(tiles, models.MoodboardTile{
				Color:     color,
				Shape:     selector.Pick(key+"-shape", shapes),
				Scale:     1 + float64(selector.MustSelect(key+"-scale", 20))/100,
				Stiffness: 200 + selector.MustSelect(key+"-stiffness", 300),
			})
		}
	}
	return tiles
}
