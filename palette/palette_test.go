package palette

import (
	"image"
	"image/color"
	"math"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samples = []color.RGBA{
	{0x00, 0x00, 0x00, 0xff},
	{0xff, 0xff, 0xff, 0xff},
	{0x80, 0x80, 0x80, 0xff},
	{0xff, 0x00, 0x00, 0xff},
	{0x00, 0xff, 0x00, 0xff},
	{0x00, 0x00, 0xff, 0xff},
	{0x12, 0x34, 0x56, 0xff},
	{0xfe, 0xdc, 0xba, 0xff},
	{0x01, 0xff, 0x7f, 0xff},
	{0x99, 0x00, 0xcc, 0xff},
}

func rgbDist(a, b color.RGBA) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return dr*dr + dg*dg + db*db
}

func labDist(a, b color.RGBA) float64 {
	l1, a1, b1 := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}.Lab()
	l2, a2, b2 := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}.Lab()
	return (l1-l2)*(l1-l2) + (a1-a2)*(a1-a2) + (b1-b2)*(b1-b2)
}

func TestIndexIsNearest(t *testing.T) {
	for _, tt := range []struct {
		name   string
		metric Metric
		dist   func(a, b color.RGBA) float64
	}{
		{"rgb", RGB, rgbDist},
		{"lab", Lab, labDist},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p := C64(tt.metric)
			for _, c := range samples {
				idx := p.Index(c)
				require.GreaterOrEqual(t, idx, 0)
				require.Less(t, idx, Size)

				chosen := tt.dist(c, p.Color(idx))
				for i := 0; i < Size; i++ {
					assert.LessOrEqual(t, chosen, tt.dist(c, p.Color(i))+1e-12,
						"entry %d is closer to %v than chosen %d", i, c, idx)
				}
			}
		})
	}
}

func TestIndexExactMatch(t *testing.T) {
	for _, m := range []Metric{RGB, Lab} {
		p := C64(m)
		for i := 0; i < Size; i++ {
			assert.Equal(t, i, p.Index(p.Color(i)))
		}
	}
}

func TestIndexTieBreak(t *testing.T) {
	black := color.RGBA{0, 0, 0, 0xff}
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}

	// Duplicate entries: the first one achieving the minimum wins.
	p := New([]color.RGBA{black, black, white, white}, RGB)
	assert.Equal(t, 0, p.Index(black))
	assert.Equal(t, 2, p.Index(white))
}

func TestNewPadsToSize(t *testing.T) {
	p := New([]color.RGBA{{0xff, 0xff, 0xff, 0xff}}, RGB)
	require.Len(t, p.Colors(), Size)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, p.Color(0))
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, p.Color(1))
}

func TestFromImage(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := color.RGBA{0xff, 0, 0, 0xff}
			if x >= 8 {
				c = color.RGBA{0, 0, 0xff, 0xff}
			}
			m.SetRGBA(x, y, c)
		}
	}

	p := FromImage(m, RGB)
	require.Len(t, p.Colors(), Size)

	// Both dominant hues must survive the median cut.
	red := p.Color(p.Index(color.RGBA{0xff, 0, 0, 0xff}))
	blue := p.Color(p.Index(color.RGBA{0, 0, 0xff, 0xff}))
	assert.Greater(t, int(red.R), int(red.B))
	assert.Greater(t, int(blue.B), int(blue.R))
}

func TestLabMatchesReference(t *testing.T) {
	// Spot check the perceptual transform against the closed-form
	// CIE values for pure white: L=100, a=b=0 (scaled by 1/100).
	lab := toLab(color.RGBA{0xff, 0xff, 0xff, 0xff})
	assert.InDelta(t, 1.0, lab[0], 1e-6)
	assert.InDelta(t, 0.0, lab[1], 1e-4)
	assert.InDelta(t, 0.0, lab[2], 1e-4)

	// Mid grey must sit between black and white in lightness.
	grey := toLab(color.RGBA{0x80, 0x80, 0x80, 0xff})
	assert.Greater(t, grey[0], 0.0)
	assert.Less(t, grey[0], 1.0)
	assert.True(t, math.Abs(grey[1]) < 1e-4)
}
