package charset

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"
)

var (
	errNoArray   = errors.New("charset: no array declaration found")
	errBadValue  = errors.New("charset: array value out of byte range")
	errBadLength = errors.New("charset: unexpected array length")
	errBadColor  = errors.New("charset: color index out of range")
)

type decoder struct {
	r io.Reader
}

// readArray parses a single C unsigned char array declaration and
// returns its name and values.
func (d *decoder) readArray() (string, []byte, error) {
	b, err := io.ReadAll(d.r)
	if err != nil {
		return "", nil, err
	}

	src := string(b)
	open := strings.IndexByte(src, '{')
	end := strings.LastIndexByte(src, '}')
	if open < 0 || end < open {
		return "", nil, errNoArray
	}

	decl := strings.TrimSpace(src[:open])
	decl = strings.TrimSuffix(decl, "[]=")
	name := decl[strings.LastIndexByte(decl, ' ')+1:]
	if name == "" {
		return "", nil, errNoArray
	}

	var data []byte
	for _, field := range strings.Split(src[open+1:end], ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseUint(field, 10, 8)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q", errBadValue, field)
		}
		data = append(data, byte(v))
	}

	return name, data, nil
}

func readSized(r io.Reader, size int) ([]byte, error) {
	d := decoder{r: r}
	_, data, err := d.readArray()
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: got %d, want %d", errBadLength, len(data), size)
	}
	return data, nil
}

// Decode reassembles a Screen from the three generated header
// artifacts.
func Decode(screenMap, charmap, colorMap io.Reader) (*Screen, error) {
	chars, err := readSized(screenMap, ScreenSize)
	if err != nil {
		return nil, err
	}

	patterns, err := readSized(charmap, CharmapSize)
	if err != nil {
		return nil, err
	}

	colors, err := readSized(colorMap, ScreenSize)
	if err != nil {
		return nil, err
	}
	for _, c := range colors {
		if c >= numColors {
			return nil, errBadColor
		}
	}

	s := &Screen{Table: tableFromBytes(patterns)}
	copy(s.Chars[:], chars)
	copy(s.Colors[:], colors)

	return s, nil
}

// Render draws the character data as a 320x200 paletted image. Set
// bits take the tile's foreground color, clear bits palette entry 0.
func (s *Screen) Render(pal color.Palette) *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, pixelX, pixelY), pal)

	for ty := 0; ty < tileY; ty++ {
		for tx := 0; tx < tileX; tx++ {
			tile := ty*tileX + tx
			p := s.Table.Pattern(int(s.Chars[tile]))
			fg := s.Colors[tile]

			for py := 0; py < tileHeight; py++ {
				bit := byte(0x80)
				for px := 0; px < tileWidth; px++ {
					var idx uint8
					if p[py]&bit != 0 {
						idx = fg
					}
					m.SetColorIndex(tx*tileWidth+px, ty*tileHeight+py, idx)
					bit >>= 1
				}
			}
		}
	}

	return m
}
