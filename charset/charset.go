/*
Package charset converts a palette quantized image into C64 character
data.

The image is defined as 320 by 200 pixels exactly which is split into a
grid of 40 by 25 tiles of 8 by 8 pixels. Each tile is reduced to an 8
byte monochrome bitmap, one byte per row with bit 7 for the leftmost
pixel, plus a single palette index used as the tile's foreground color.
Bitmaps are interned into a pattern table of at most 256 entries; once
the table is full, new patterns are substituted with the closest
existing pattern by byte-wise distance, trading fidelity for the fixed
table size.
*/
package charset

import (
	"errors"
	"image"
	"image/color"
)

const (
	tileWidth   = 8
	tileHeight  = tileWidth
	tileX       = 40
	tileY       = 25
	numTiles    = tileX * tileY
	maxPatterns = 256
	pixelX      = tileWidth * tileX
	pixelY      = tileHeight * tileY
	numColors   = 16
)

// Canonical pixel and table dimensions of the character data.
const (
	Width       = pixelX
	Height      = pixelY
	ScreenSize  = numTiles
	CharmapSize = maxPatterns * tileHeight
)

// DefaultThreshold is the default luminance cutoff for the
// foreground/background decision.
const DefaultThreshold = 128

var (
	errWrongSize  = errors.New("charset: image is wrong size")
	errBadPalette = errors.New("charset: palette has more than 16 colors")
)

// LumaMode selects how pixel luminance is computed for the
// foreground/background decision.
type LumaMode int

const (
	// Rec601 weighs the channels 0.299, 0.587, 0.114.
	Rec601 LumaMode = iota
	// Average uses the plain channel mean.
	Average
)

// Options control how tiles are reduced to bitmaps.
type Options struct {
	// Threshold is the luminance cutoff in [0,255]. Pixels darker than
	// the threshold become foreground bits unless Invert is set, in
	// which case pixels at or above it do.
	Threshold uint8
	Invert    bool
	Luma      LumaMode
}

// Pattern is one tile's bitmap, one byte per row, most significant bit
// leftmost.
type Pattern [tileHeight]byte

// Distance returns the sum of absolute byte-wise differences between
// two patterns.
func (p Pattern) Distance(q Pattern) int {
	var d int
	for i := range p {
		if p[i] > q[i] {
			d += int(p[i] - q[i])
		} else {
			d += int(q[i] - p[i])
		}
	}
	return d
}

// Table is an insertion-ordered pattern table holding at most 256
// distinct patterns.
type Table struct {
	patterns []Pattern
	index    map[Pattern]uint8
}

// NewTable returns an empty pattern table.
func NewTable() *Table {
	return &Table{
		index: make(map[Pattern]uint8),
	}
}

// Intern resolves a pattern to a table index. A pattern seen before
// reuses its index, an unseen pattern is appended while the table has
// room, and once 256 patterns exist an unseen pattern resolves to the
// closest existing one instead. The first entry in insertion order wins
// distance ties, so resolution is stable for a given table state.
func (t *Table) Intern(p Pattern) uint8 {
	if i, ok := t.index[p]; ok {
		return i
	}

	if len(t.patterns) < maxPatterns {
		i := uint8(len(t.patterns))
		t.patterns = append(t.patterns, p)
		t.index[p] = i
		return i
	}

	ret, best := 0, maxPatterns*255+1
	for i, q := range t.patterns {
		if d := p.Distance(q); d < best {
			ret, best = i, d
		}
	}
	return uint8(ret)
}

// Len returns the number of distinct patterns interned so far.
func (t *Table) Len() int {
	return len(t.patterns)
}

// Pattern returns table entry i. Entries beyond Len are zero.
func (t *Table) Pattern(i int) Pattern {
	if i < len(t.patterns) {
		return t.patterns[i]
	}
	return Pattern{}
}

// Bytes returns the table as a flat 2048 byte character bitmap,
// zero-padded beyond the interned patterns.
func (t *Table) Bytes() []byte {
	b := make([]byte, CharmapSize)
	for i, p := range t.patterns {
		copy(b[i*tileHeight:], p[:])
	}
	return b
}

func tableFromBytes(b []byte) *Table {
	t := NewTable()
	for i := 0; i < maxPatterns; i++ {
		var p Pattern
		copy(p[:], b[i*tileHeight:])
		t.patterns = append(t.patterns, p)
		if _, ok := t.index[p]; !ok {
			t.index[p] = uint8(i)
		}
	}
	return t
}

// Screen is the character data for one converted image: a pattern
// index and a color index per tile, in row-major tile order, plus the
// pattern table the indices refer to.
type Screen struct {
	Chars  [numTiles]byte
	Colors [numTiles]byte
	Table  *Table
}

// FromImage reduces a quantized 320x200 image to character data.
func FromImage(m *image.Paletted, opts Options) (*Screen, error) {
	b := m.Bounds()
	if b.Dx() != pixelX || b.Dy() != pixelY {
		return nil, errWrongSize
	}
	if len(m.Palette) > numColors {
		return nil, errBadPalette
	}

	luma := make([]float64, len(m.Palette))
	for i, c := range m.Palette {
		luma[i] = lumaOf(color.RGBAModel.Convert(c).(color.RGBA), opts.Luma)
	}

	s := &Screen{Table: NewTable()}
	cutoff := float64(opts.Threshold)

	for ty := 0; ty < tileY; ty++ {
		for tx := 0; tx < tileX; tx++ {
			var p Pattern
			colorIdx := uint8(0)
			bestLuma := -1.0

			for py := 0; py < tileHeight; py++ {
				var row byte
				bit := byte(0x80)

				for px := 0; px < tileWidth; px++ {
					idx := m.ColorIndexAt(b.Min.X+tx*tileWidth+px, b.Min.Y+ty*tileHeight+py)
					lum := luma[idx]

					fg := lum < cutoff
					if opts.Invert {
						fg = lum >= cutoff
					}
					if fg {
						row |= bit
						// Anti-aliased edges tend toward the background, so
						// the brightest foreground pixel carries the tile's
						// hue. First one wins on equal luminance.
						if lum > bestLuma {
							bestLuma = lum
							colorIdx = idx
						}
					}

					bit >>= 1
				}

				p[py] = row
			}

			tile := ty*tileX + tx
			s.Chars[tile] = s.Table.Intern(p)
			s.Colors[tile] = colorIdx
		}
	}

	return s, nil
}

func lumaOf(c color.RGBA, mode LumaMode) float64 {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	if mode == Average {
		return (r + g + b) / 3
	}
	return 0.299*r + 0.587*g + 0.114*b
}
