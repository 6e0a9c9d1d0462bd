package dither

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"char64/palette"
)

// gradient builds a smooth color ramp that exercises every part of the
// palette.
func gradient(w, h int) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / (w - 1)),
				G: uint8(y * 255 / (h - 1)),
				B: uint8((x + y) * 255 / (w + h - 2)),
				A: 0xff,
			})
		}
	}
	return m
}

func TestQuantizeIdempotent(t *testing.T) {
	pal := palette.C64(palette.Lab)

	first := Quantize(gradient(64, 48), pal)
	second := Quantize(first, pal)

	assert.Equal(t, first.Pix, second.Pix)
}

func TestQuantizeSolid(t *testing.T) {
	pal := palette.C64(palette.RGB)

	m := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range m.Pix {
		m.Pix[i] = 0xff
	}

	out := Quantize(m, pal)
	for _, idx := range out.Pix {
		assert.Equal(t, uint8(1), idx) // white
	}
}

func TestQuantizeRespectsBoundsOffset(t *testing.T) {
	pal := palette.C64(palette.RGB)

	m := image.NewRGBA(image.Rect(10, 20, 18, 28))
	out := Quantize(m, pal)

	require.Equal(t, image.Rect(0, 0, 8, 8), out.Bounds())
	for _, idx := range out.Pix {
		assert.Equal(t, uint8(0), idx) // black
	}
}

// grays builds a w by h image from row major grey values.
func grays(w, h int, v ...uint8) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, g := range v {
		m.SetRGBA(i%w, i/w, color.RGBA{g, g, g, 0xff})
	}
	return m
}

// grayPalette has three usable levels: black, dark grey 64 and white.
// The black/grey cutoff sits at 32, grey/white at 159.5.
func grayPalette() *palette.Palette {
	return palette.New([]color.RGBA{
		{0x00, 0x00, 0x00, 0xff},
		{0x40, 0x40, 0x40, 0xff},
		{0xff, 0xff, 0xff, 0xff},
	}, palette.RGB)
}

func TestFloydSteinbergCoefficients(t *testing.T) {
	pal := grayPalette()

	// Each image isolates one diffusion weight. A 159 pixel quantizes
	// to grey 64 with error +95, and the receiving pixel starts at a
	// value where only the correct weight for that position carries it
	// across the nearest cutoff: 7/16 adds 41.56, 5/16 adds 29.69,
	// 3/16 adds 17.81, 1/16 adds 5.94. In the bottom right case the
	// intermediate pixels saturate to white with zero error, so the
	// target receives the 1/16 share alone.
	for _, tt := range []struct {
		name string
		w, h int
		src  []uint8
		want []uint8
	}{
		{"right", 2, 1, []uint8{159, 0}, []uint8{1, 1}},
		{"below", 1, 2, []uint8{159, 8}, []uint8{1, 1}},
		{"belowLeft", 2, 2, []uint8{0, 159, 20, 0}, []uint8{0, 1, 1, 0}},
		{"belowRight", 2, 2, []uint8{159, 230, 240, 20}, []uint8{1, 2, 2, 0}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			out := FloydSteinberg(grays(tt.w, tt.h, tt.src...), pal)
			assert.Equal(t, tt.want, out.Pix)
		})
	}
}

func TestFloydSteinbergClampsLazily(t *testing.T) {
	pal := grayPalette()

	// The two white pixels push the bottom right accumulator to -19.04
	// before the grey pixel's error pulls it back to +20.64, which
	// rounds to 21 and quantizes to black. Flooring the accumulator at
	// zero on every write instead of once at processing time would
	// leave it at +39.68 and land on grey 64.
	out := FloydSteinberg(grays(2, 2, 230, 210, 173, 0), pal)
	assert.Equal(t, []uint8{2, 2, 1, 0}, out.Pix)
}

func TestFloydSteinbergDeterministic(t *testing.T) {
	pal := palette.C64(palette.Lab)
	src := gradient(64, 48)

	first := FloydSteinberg(src, pal)
	second := FloydSteinberg(src, pal)

	assert.Equal(t, first.Pix, second.Pix)
}

func TestFloydSteinbergExactColorsPassThrough(t *testing.T) {
	pal := palette.C64(palette.RGB)

	// An image already made of palette colors produces zero error, so
	// dithering must not disturb any pixel.
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			src.SetRGBA(x, y, pal.Color((x+y)%palette.Size))
		}
	}

	out := FloydSteinberg(src, pal)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			assert.Equal(t, uint8((x+y)%palette.Size), out.ColorIndexAt(x, y))
		}
	}
}

func TestFloydSteinbergDiffusesError(t *testing.T) {
	pal := palette.C64(palette.RGB)

	// A uniform mid grey sits between the three grey palette entries;
	// without dithering every pixel collapses to a single index, with
	// dithering the accumulated error must pull in at least one other.
	src := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			src.SetRGBA(x, y, color.RGBA{0x88, 0x88, 0x88, 0xff})
		}
	}

	flat := Quantize(src, pal)
	seen := make(map[uint8]bool)
	for _, idx := range flat.Pix {
		seen[idx] = true
	}
	require.Len(t, seen, 1)

	dithered := FloydSteinberg(src, pal)
	seen = make(map[uint8]bool)
	for _, idx := range dithered.Pix {
		seen[idx] = true
	}
	assert.Greater(t, len(seen), 1)
}
