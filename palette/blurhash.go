package palette

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// blurHashSize bounds the thumbnail the hash is computed from. A placeholder
// does not need more resolution.
const blurHashSize = 64

// BlurHash encodes a 4x3 component placeholder for img.
func BlurHash(img image.Image) (string, error) {
	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

func thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= blurHashSize && h <= blurHashSize {
		return img
	}

	var dw, dh int
	if w > h {
		dw, dh = blurHashSize, max(1, h*blurHashSize/w)
	} else {
		dw, dh = max(1, w*blurHashSize/h), blurHashSize
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
