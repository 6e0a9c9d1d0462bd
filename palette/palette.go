/*
Package palette implements the 16 entry target palette and nearest-color
matching used when converting images to C64 character data.

The builtin palette uses the Pepto measurements of the VIC-II colors. A
palette always holds exactly 16 entries; shorter input palettes are padded
with black so that every matched index fits in 4 bits.
*/
package palette

import (
	"image"
	"image/color"
	"math"

	"github.com/ericpauley/go-quantize/quantize"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Size is the number of entries in a palette.
const Size = 16

// Metric selects how the distance between two colors is measured.
type Metric int

const (
	// RGB measures squared Euclidean distance directly in sRGB space.
	RGB Metric = iota
	// Lab measures CIE76 distance in the CIELAB color space, which is
	// closer to perceived color difference. This is the default.
	Lab
)

var c64 = []color.RGBA{
	{0x00, 0x00, 0x00, 0xff}, // 0  black
	{0xff, 0xff, 0xff, 0xff}, // 1  white
	{0x88, 0x00, 0x00, 0xff}, // 2  red
	{0xaa, 0xff, 0xee, 0xff}, // 3  cyan
	{0xcc, 0x44, 0xcc, 0xff}, // 4  purple
	{0x00, 0xcc, 0x55, 0xff}, // 5  green
	{0x00, 0x00, 0xaa, 0xff}, // 6  blue
	{0xee, 0xee, 0x77, 0xff}, // 7  yellow
	{0xdd, 0x88, 0x55, 0xff}, // 8  orange
	{0x66, 0x44, 0x00, 0xff}, // 9  brown
	{0xff, 0x77, 0x77, 0xff}, // 10 light red
	{0x33, 0x33, 0x33, 0xff}, // 11 dark grey
	{0x77, 0x77, 0x77, 0xff}, // 12 grey
	{0xaa, 0xff, 0x66, 0xff}, // 13 light green
	{0x00, 0x88, 0xff, 0xff}, // 14 light blue
	{0xbb, 0xbb, 0xbb, 0xff}, // 15 light grey
}

// Palette is a fixed set of 16 colors together with a distance metric.
// The zero value is not usable; use C64, FromImage or New.
type Palette struct {
	colors [Size]color.RGBA
	lab    [Size][3]float64
	metric Metric
}

// C64 returns the builtin C64 palette using the given metric.
func C64(m Metric) *Palette {
	return New(c64, m)
}

// New builds a palette from up to 16 colors, padding with black. Colors
// beyond the first 16 are ignored.
func New(colors []color.RGBA, m Metric) *Palette {
	p := &Palette{metric: m}
	for i := 0; i < Size && i < len(colors); i++ {
		p.colors[i] = colors[i]
	}
	for i := range p.colors {
		p.colors[i].A = 0xff
		p.lab[i] = toLab(p.colors[i])
	}
	return p
}

// FromImage derives a 16 color palette from the image by median cut
// quantization instead of using the builtin colors.
func FromImage(img image.Image, m Metric) *Palette {
	q := quantize.MedianCutQuantizer{}
	derived := q.Quantize(make(color.Palette, 0, Size), img)

	colors := make([]color.RGBA, 0, Size)
	for _, c := range derived {
		colors = append(colors, color.RGBAModel.Convert(c).(color.RGBA))
	}
	return New(colors, m)
}

// Color returns palette entry i.
func (p *Palette) Color(i int) color.RGBA {
	return p.colors[i]
}

// Colors returns the palette as a color.Palette suitable for use with
// image.Paletted.
func (p *Palette) Colors() color.Palette {
	cp := make(color.Palette, Size)
	for i, c := range p.colors {
		cp[i] = c
	}
	return cp
}

// Index returns the index of the palette entry closest to c under the
// palette's metric. The first entry achieving the minimum distance wins.
func (p *Palette) Index(c color.RGBA) int {
	if p.metric == Lab {
		return p.indexLab(c)
	}
	return p.indexRGB(c)
}

func (p *Palette) indexRGB(c color.RGBA) int {
	ret, bestSum := 0, math.MaxInt32
	for i, v := range p.colors {
		dr := int(c.R) - int(v.R)
		dg := int(c.G) - int(v.G)
		db := int(c.B) - int(v.B)
		sum := dr*dr + dg*dg + db*db
		if sum < bestSum {
			if sum == 0 {
				return i
			}
			ret, bestSum = i, sum
		}
	}
	return ret
}

func (p *Palette) indexLab(c color.RGBA) int {
	lab := toLab(c)
	ret, bestSum := 0, math.MaxFloat64
	for i, v := range p.lab {
		dl := lab[0] - v[0]
		da := lab[1] - v[1]
		db := lab[2] - v[2]
		sum := dl*dl + da*da + db*db
		if sum < bestSum {
			if sum == 0 {
				return i
			}
			ret, bestSum = i, sum
		}
	}
	return ret
}

func toLab(c color.RGBA) [3]float64 {
	l, a, b := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Lab()
	return [3]float64{l, a, b}
}
