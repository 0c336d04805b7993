package palette

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/aura-site/api/errors"
	"github.com/aura-site/api/logger"
)

var (
	red    = RGB{255, 0, 0}
	green  = RGB{0, 255, 0}
	blue   = RGB{0, 0, 255}
	navy   = RGB{0, 0, 128}
	yellow = RGB{255, 255, 0}
	gray   = RGB{128, 128, 128}
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}))
	return buf.Bytes()
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Format
		wantErr bool
	}{
		{name: "jpeg", data: []byte{0xFF, 0xD8, 0xFF, 0xE0}, want: FormatJPEG},
		{name: "png", data: []byte{0x89, 0x50, 0x4E, 0x47}, want: FormatPNG},
		{name: "gif", data: []byte("GIF89a"), wantErr: true},
		{name: "single byte", data: []byte{0xFF}, wantErr: true},
		{name: "empty", data: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SniffFormat(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domainerrors.ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_CorruptPNG(t *testing.T) {
	_, err := Decode([]byte{0x89, 0x50, 0x4E, 0x47, 0x00, 0x01})

	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeDecodeFailure, domainerrors.CodeOf(err))
}

func TestExtract_SolidPNG(t *testing.T) {
	data := encodePNG(t, solidImage(20, 20, color.NRGBA{R: 255, A: 255}))

	colors, err := Extract(data, Options{})

	require.NoError(t, err)
	require.NotEmpty(t, colors)
	assert.LessOrEqual(t, len(colors), DefaultColorCount)
	for _, c := range colors {
		assert.Equal(t, red, c)
	}
}

func TestExtract_JPEG(t *testing.T) {
	data := encodeJPEG(t, solidImage(32, 32, color.NRGBA{R: 40, G: 90, B: 160, A: 255}))

	colors, err := Extract(data, Options{Quality: 1, ColorCount: 4})

	require.NoError(t, err)
	require.NotEmpty(t, colors)
	assert.LessOrEqual(t, len(colors), 4)
	assert.Less(t, Distance(colors[0], RGB{40, 90, 160}), 10.0)
}

func TestExtract_TransparentImageIsEmpty(t *testing.T) {
	data := encodePNG(t, solidImage(10, 10, color.NRGBA{R: 255, G: 0, B: 0, A: 0}))

	colors, err := Extract(data, Options{})

	require.NoError(t, err)
	assert.Empty(t, colors)
}

func TestExtract_OpaqueBlackKeepsEveryBucket(t *testing.T) {
	data := encodePNG(t, solidImage(20, 20, color.NRGBA{A: 255}))

	colors, err := Extract(data, Options{})

	require.NoError(t, err)
	require.Len(t, colors, DefaultColorCount)
	for _, c := range colors {
		assert.Equal(t, black, c)
	}
}

func TestDecode_RejectsOversizedImages(t *testing.T) {
	tests := []struct {
		name   string
		encode func(*testing.T, image.Image) []byte
		bounds image.Rectangle
	}{
		{"wide png", encodePNG, image.Rect(0, 0, MaxDimension+1, 1)},
		{"tall png", encodePNG, image.Rect(0, 0, 1, MaxDimension+1)},
		{"wide jpeg", encodeJPEG, image.Rect(0, 0, MaxDimension+1, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.encode(t, image.NewGray(tt.bounds))

			_, err := Decode(data)
			assert.Equal(t, domainerrors.CodeDecodeFailure, domainerrors.CodeOf(err))

			_, err = Extract(data, Options{})
			assert.Equal(t, domainerrors.CodeDecodeFailure, domainerrors.CodeOf(err))
		})
	}
}

func TestDecode_AcceptsMaxDimension(t *testing.T) {
	img, err := Decode(encodePNG(t, image.NewGray(image.Rect(0, 0, MaxDimension, 2))))

	require.NoError(t, err)
	assert.Equal(t, MaxDimension, img.Rect.Dx())
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := Extract([]byte("GIF89a...."), Options{})

	assert.Equal(t, domainerrors.CodeUnsupportedFormat, domainerrors.CodeOf(err))
}

func TestSamplePixels_Filters(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 100})
	img.SetNRGBA(0, 1, color.NRGBA{R: 251, G: 251, B: 251, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 250, G: 250, B: 250, A: 255})

	samples := SamplePixels(img, 1)

	assert.Equal(t, []RGB{red, {250, 250, 250}}, samples)
}

func TestSamplePixels_Stride(t *testing.T) {
	img := solidImage(10, 10, color.NRGBA{B: 200, A: 255})

	assert.Len(t, SamplePixels(img, 10), 10)
	assert.Len(t, SamplePixels(img, 1), 100)
}

func TestQuantize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Quantize(nil, 10))
	})

	t.Run("single pixel", func(t *testing.T) {
		assert.Equal(t, []RGB{{10, 20, 30}}, Quantize([]RGB{{10, 20, 30}}, 10))
	})

	t.Run("two clusters split on red", func(t *testing.T) {
		pixels := []RGB{red, blue, red, blue, red, blue, red, blue}

		assert.Equal(t, []RGB{blue, red}, Quantize(pixels, 2))
	})

	t.Run("never exceeds count", func(t *testing.T) {
		var pixels []RGB
		for i := 0; i < 200; i++ {
			pixels = append(pixels, RGB{uint8(i), uint8(255 - i), uint8(i * 7)})
		}

		colors := Quantize(pixels, DefaultColorCount)

		assert.Len(t, colors, DefaultColorCount)
	})

	t.Run("input untouched", func(t *testing.T) {
		pixels := []RGB{red, blue, green}
		original := append([]RGB(nil), pixels...)

		Quantize(pixels, 3)

		assert.Equal(t, original, pixels)
	})

	t.Run("uniform image collapses under dedup", func(t *testing.T) {
		pixels := make([]RGB, 50)

		colors := Quantize(pixels, DefaultColorCount)

		require.NotEmpty(t, colors)
		assert.Equal(t, []RGB{black}, Dedup(colors, DedupThreshold))
	})
}

func TestDedup(t *testing.T) {
	assert.Equal(t, []RGB{red, green}, Dedup([]RGB{red, green}, DedupThreshold))
	assert.Equal(t, []RGB{red, blue}, Dedup([]RGB{red, {250, 0, 0}, blue}, DedupThreshold))
	assert.Empty(t, Dedup(nil, DedupThreshold))

	in := []RGB{red, {240, 10, 0}, {200, 0, 0}, blue, {0, 0, 230}, gray}
	once := Dedup(in, DedupThreshold)
	assert.Equal(t, once, Dedup(once, DedupThreshold))
	for i := range once {
		for j := i + 1; j < len(once); j++ {
			assert.GreaterOrEqual(t, Distance(once[i], once[j]), DedupThreshold)
		}
	}
}

func TestHarmonyScore(t *testing.T) {
	tests := []struct {
		name   string
		colors []RGB
		want   float64
	}{
		{name: "empty", colors: nil, want: 3.8},
		{name: "single", colors: []RGB{{1, 2, 3}}, want: 4.6},
		{name: "primaries and black", colors: []RGB{red, green, blue, black}, want: 6.6},
		{name: "close triad", colors: []RGB{{100, 100, 100}, {200, 100, 100}, {100, 200, 100}}, want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, HarmonyScore(tt.colors), 1e-9)
		})
	}
}

func TestHarmonyScore_Bounds(t *testing.T) {
	var many []RGB
	for i := 0; i < 40; i++ {
		many = append(many, RGB{uint8(i * 6), uint8(255 - i*6), uint8(i * 3)})
	}

	score := HarmonyScore(many)

	assert.GreaterOrEqual(t, score, 1.0)
	assert.LessOrEqual(t, score, 10.0)
}

func TestMostDifferent(t *testing.T) {
	colors := []RGB{black, {10, 10, 10}, white, gray}

	assert.Equal(t, []RGB{black, white}, MostDifferent(colors, 2))
	assert.Equal(t, []RGB{black, white, gray}, MostDifferent(colors, 3))
	assert.Equal(t, colors, MostDifferent(colors, 5))
}

func TestAssignRoles(t *testing.T) {
	t.Run("readable secondary and background", func(t *testing.T) {
		roles := AssignRoles([]RGB{navy, yellow, gray})

		assert.Equal(t, navy, roles.Primary)
		assert.Equal(t, yellow, roles.Secondary)
		assert.Equal(t, gray, roles.Background)
		assert.Equal(t, Blue, roles.Named)
		assert.GreaterOrEqual(t, ContrastRatio(roles.Primary, roles.Secondary), MinContrast)
		assert.GreaterOrEqual(t, ContrastRatio(roles.Background, roles.Primary), MinContrast)
		assert.GreaterOrEqual(t, ContrastRatio(roles.Background, roles.Secondary), MinContrast)
	})

	t.Run("secondary falls back to white", func(t *testing.T) {
		roles := AssignRoles([]RGB{red})

		assert.Equal(t, red, roles.Primary)
		assert.Equal(t, white, roles.Secondary)
		assert.Equal(t, black, roles.Background)
		assert.Equal(t, Red, roles.Named)
	})

	t.Run("empty palette", func(t *testing.T) {
		roles := AssignRoles(nil)

		assert.Equal(t, black, roles.Primary)
		assert.Equal(t, white, roles.Secondary)
		assert.Equal(t, white, roles.Background)
		assert.Equal(t, Black, roles.Named)
	})

	t.Run("input order preserved", func(t *testing.T) {
		in := []RGB{gray, navy}
		AssignRoles(in)
		assert.Equal(t, []RGB{gray, navy}, in)
	})
}

func TestClosestNamedColor(t *testing.T) {
	assert.Equal(t, Black, ClosestNamedColor(RGB{5, 5, 5}))
	assert.Equal(t, Orange, ClosestNamedColor(RGB{250, 160, 10}))
	assert.Equal(t, Gray, ClosestNamedColor(RGB{130, 130, 130}))
	assert.Len(t, NamedColors(), 12)
}

func TestColorHelpers(t *testing.T) {
	assert.Equal(t, "#ff0000", red.Hex())
	assert.Equal(t, "#00ff80", RGB{0, 255, 128}.Hex())

	parsed, err := ParseHex("#0A141E")
	require.NoError(t, err)
	assert.Equal(t, RGB{10, 20, 30}, parsed)

	_, err = ParseHex("nope")
	assert.Error(t, err)

	assert.Zero(t, Saturation(black))
	assert.InDelta(t, 1.0, Saturation(red), 1e-9)
	assert.InDelta(t, 21.0, ContrastRatio(black, white), 1e-9)
	assert.InDelta(t, 1.0, ContrastRatio(gray, gray), 1e-9)
}

func TestSummarize(t *testing.T) {
	desc := Summarize([]RGB{red, {250, 0, 0}}, []RGB{blue})

	assert.Equal(t, []string{"#0000ff", "#ff0000"}, desc.Colors)
	assert.Equal(t, []string{"#ff0000", "#fa0000"}, desc.ProfileColors)
	assert.Equal(t, []string{"#0000ff"}, desc.BannerColors)
	assert.Equal(t, "#ff0000", desc.PrimaryColor)
	assert.Equal(t, "#ffffff", desc.SecondaryColor)
	assert.Equal(t, "#000000", desc.BackgroundColor)
	assert.Equal(t, Red, desc.ClosestNamedColor)
}

func TestSummarize_StoresLeastSaturatedFirst(t *testing.T) {
	desc := Summarize([]RGB{red, gray, blue}, nil)

	assert.Equal(t, []string{"#808080", "#0000ff", "#ff0000"}, desc.Colors)
	assert.Equal(t, "#ff0000", desc.PrimaryColor)
}

func TestSummarize_EmptyEncodesArrays(t *testing.T) {
	raw, err := json.Marshal(Summarize(nil, nil))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []any{}, decoded["colors"])
	assert.Equal(t, []any{}, decoded["bannerColors"])
	assert.NotContains(t, decoded, "profileBlurHash")
}

func TestSummarize_AtMostFiveColors(t *testing.T) {
	var profile []RGB
	for i := 0; i < 10; i++ {
		profile = append(profile, RGB{uint8(i * 25), uint8(255 - i*25), uint8(i * 12)})
	}

	desc := Summarize(profile, nil)

	assert.Len(t, desc.Colors, SelectionSize)
}

type fakeFetcher struct {
	mu      sync.Mutex
	images  map[string][]byte
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	data, ok := f.images[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return data, nil
}

func TestDescriber_Describe(t *testing.T) {
	fetcher := &fakeFetcher{images: map[string][]byte{
		"https://img/pfp.png":    encodePNG(t, solidImage(20, 20, color.NRGBA{R: 255, A: 255})),
		"https://img/banner.png": encodePNG(t, solidImage(80, 20, color.NRGBA{B: 255, A: 255})),
	}}
	describer := NewDescriber(NewExtractor(fetcher, Options{}, logger.Discard()))

	desc := describer.Describe(context.Background(), "https://img/pfp.png", "https://img/banner.png")

	assert.Equal(t, []string{"#0000ff", "#ff0000"}, desc.Colors)
	assert.NotEmpty(t, desc.ProfileColors)
	assert.NotEmpty(t, desc.BannerColors)
	assert.Equal(t, "#ff0000", desc.ProfileColors[0])
	assert.Equal(t, "#0000ff", desc.BannerColors[0])
	assert.NotEmpty(t, desc.ProfileBlurHash)
	assert.NotEmpty(t, desc.BannerBlurHash)
}

func TestDescriber_FailuresBecomeEmpty(t *testing.T) {
	fetcher := &fakeFetcher{images: map[string][]byte{
		"https://img/pfp.png": encodePNG(t, solidImage(20, 20, color.NRGBA{G: 255, A: 255})),
		"https://img/gif":     []byte("GIF89a"),
	}}
	describer := NewDescriber(NewExtractor(fetcher, Options{}, logger.Discard()))

	t.Run("missing banner", func(t *testing.T) {
		desc := describer.Describe(context.Background(), "https://img/pfp.png", "https://img/404.png")

		assert.Equal(t, []string{"#00ff00"}, desc.Colors)
		assert.Empty(t, desc.BannerColors)
		assert.Empty(t, desc.BannerBlurHash)
	})

	t.Run("unsupported profile", func(t *testing.T) {
		desc := describer.Describe(context.Background(), "https://img/gif", "")

		assert.Empty(t, desc.Colors)
		assert.Equal(t, "#000000", desc.PrimaryColor)
	})
}

func TestDescriber_EmptyBannerURLIsNotFetched(t *testing.T) {
	fetcher := &fakeFetcher{images: map[string][]byte{
		"https://img/pfp.png": encodePNG(t, solidImage(4, 4, color.NRGBA{R: 255, A: 255})),
	}}
	describer := NewDescriber(NewExtractor(fetcher, Options{}, logger.Discard()))

	describer.Describe(context.Background(), "https://img/pfp.png", "")

	assert.Equal(t, []string{"https://img/pfp.png"}, fetcher.fetched)
}

func TestDescriber_DescribeImage(t *testing.T) {
	describer := NewDescriber(NewExtractor(&fakeFetcher{}, Options{}, logger.Discard()))

	desc, err := describer.DescribeImage(encodePNG(t, solidImage(16, 16, color.NRGBA{R: 255, A: 255})))
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", desc.PrimaryColor)
	assert.NotEmpty(t, desc.ProfileBlurHash)

	_, err = describer.DescribeImage([]byte("plain text"))
	assert.Equal(t, domainerrors.CodeUnsupportedFormat, domainerrors.CodeOf(err))

	_, err = describer.DescribeImage(encodePNG(t, image.NewGray(image.Rect(0, 0, MaxDimension+1, 1))))
	assert.Equal(t, domainerrors.CodeDecodeFailure, domainerrors.CodeOf(err))
}

func TestBlurHash_LargeImage(t *testing.T) {
	hash, err := BlurHash(solidImage(300, 120, color.NRGBA{R: 10, G: 200, B: 30, A: 255}))

	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}
