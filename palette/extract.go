package palette

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"slices"

	"golang.org/x/image/draw"

	domainerrors "github.com/aura-site/api/errors"
)

const (
	// DefaultQuality samples every 10th pixel.
	DefaultQuality = 10
	// DefaultColorCount is the number of median-cut buckets.
	DefaultColorCount = 10

	// MaxDimension bounds each side of a decoded image. The byte caps on
	// downloads and uploads do not bound decoded memory.
	MaxDimension = 4096

	minAlpha     = 125
	nearWhiteMin = 250
)

// Options tunes sampling and clustering. Zero values fall back to defaults.
type Options struct {
	Quality    int
	ColorCount int
}

func (o Options) normalized() Options {
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	if o.ColorCount <= 0 {
		o.ColorCount = DefaultColorCount
	}
	return o
}

// Format is a supported image container.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// SniffFormat identifies the image container from its magic bytes.
func SniffFormat(data []byte) (Format, error) {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return FormatJPEG, nil
	case len(data) >= 2 && data[0] == 0x89 && data[1] == 0x50:
		return FormatPNG, nil
	default:
		return "", domainerrors.UnsupportedFormat("image is neither PNG nor JPEG")
	}
}

// Decode sniffs and decodes data into a tightly packed NRGBA buffer. Images
// wider or taller than MaxDimension are rejected before any pixel is decoded.
func Decode(data []byte) (*image.NRGBA, error) {
	format, err := SniffFormat(data)
	if err != nil {
		return nil, err
	}

	var cfg image.Config
	switch format {
	case FormatJPEG:
		cfg, err = jpeg.DecodeConfig(bytes.NewReader(data))
	case FormatPNG:
		cfg, err = png.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeDecodeFailure, "decode %s header", format)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, domainerrors.Newf(domainerrors.CodeDecodeFailure,
			"image is %dx%d, larger than %dpx per side", cfg.Width, cfg.Height, MaxDimension)
	}

	var img image.Image
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case FormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeDecodeFailure, "decode %s", format)
	}

	return toNRGBA(img), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) && nrgba.Stride == 4*nrgba.Rect.Dx() {
		return nrgba
	}
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// Extract decodes an image and reduces it to at most opts.ColorCount colors.
// An image with no usable pixels yields an empty palette.
func Extract(data []byte, opts Options) ([]RGB, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	opts = opts.normalized()
	return Quantize(SamplePixels(img, opts.Quality), opts.ColorCount), nil
}

// SamplePixels walks every quality-th pixel, skipping mostly transparent and
// near-white samples.
func SamplePixels(img *image.NRGBA, quality int) []RGB {
	if quality <= 0 {
		quality = DefaultQuality
	}

	count := img.Rect.Dx() * img.Rect.Dy()
	samples := make([]RGB, 0, count/quality+1)
	for i := 0; i < count; i += quality {
		offset := i * 4
		r, g, b, a := img.Pix[offset], img.Pix[offset+1], img.Pix[offset+2], img.Pix[offset+3]
		if a < minAlpha {
			continue
		}
		if r > nearWhiteMin && g > nearWhiteMin && b > nearWhiteMin {
			continue
		}
		samples = append(samples, RGB{r, g, b})
	}
	return samples
}

// Quantize runs median cut over pixels. The bucket with the widest channel range
// is split at its median along that channel until count buckets exist or no
// bucket holds more than one pixel. Buckets are never mutated after creation.
func Quantize(pixels []RGB, count int) []RGB {
	if len(pixels) == 0 || count < 1 {
		return nil
	}

	buckets := [][]RGB{pixels}
	for len(buckets) < count {
		idx := widestBucket(buckets)
		if idx < 0 {
			break
		}
		left, right := splitBucket(buckets[idx])
		buckets = slices.Replace(buckets, idx, idx+1, left, right)
	}

	colors := make([]RGB, len(buckets))
	for i, bucket := range buckets {
		colors[i] = averageColor(bucket)
	}
	return colors
}

// widestBucket returns the index of the splittable bucket with the widest
// single-channel range, or -1. Ties keep the earliest bucket.
func widestBucket(buckets [][]RGB) int {
	best, bestRange := -1, -1
	for i, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}
		if r, _ := widestChannel(bucket); r > bestRange {
			best, bestRange = i, r
		}
	}
	return best
}

// widestChannel reports the range and index (0=R, 1=G, 2=B) of the channel with
// the widest spread. Ties keep the lower channel.
func widestChannel(bucket []RGB) (int, int) {
	maxRange, channel := 0, 0
	for ch := 0; ch < 3; ch++ {
		lo, hi := 255, 0
		for _, p := range bucket {
			v := int(component(p, ch))
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if hi-lo > maxRange {
			maxRange, channel = hi-lo, ch
		}
	}
	return maxRange, channel
}

func splitBucket(bucket []RGB) ([]RGB, []RGB) {
	_, ch := widestChannel(bucket)
	sorted := slices.Clone(bucket)
	slices.SortStableFunc(sorted, func(a, b RGB) int {
		return int(component(a, ch)) - int(component(b, ch))
	})
	mid := len(sorted) / 2
	return sorted[:mid:mid], sorted[mid:]
}

func component(p RGB, ch int) uint8 {
	switch ch {
	case 0:
		return p.R
	case 1:
		return p.G
	default:
		return p.B
	}
}

func averageColor(bucket []RGB) RGB {
	var r, g, b int
	for _, p := range bucket {
		r += int(p.R)
		g += int(p.G)
		b += int(p.B)
	}
	n := float64(len(bucket))
	return RGB{roundChannel(float64(r) / n), roundChannel(float64(g) / n), roundChannel(float64(b) / n)}
}

// roundChannel rounds half up.
func roundChannel(v float64) uint8 {
	return uint8(math.Floor(v + 0.5))
}
