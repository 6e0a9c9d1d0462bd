/*
Package char64 converts raster images into C64 character set data: a
40x25 screen map of tile indices, a character bitmap table of up to 256
8x8 patterns and per-tile colors from a 16 entry palette, written as C
header files ready to be compiled into a display routine.
*/
package char64

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"char64/charset"
	"char64/dither"
	"char64/palette"
)

// Output filenames written for each conversion.
const (
	ScreenMapFile = "img.h"
	CharmapFile   = "charmap.h"
	ColorMapFile  = "clrs.h"
)

// Options control a single conversion. DefaultOptions returns the
// values matching an unadorned command line.
type Options struct {
	// Dither enables Floyd-Steinberg error diffusion; when off every
	// pixel maps independently to its nearest palette color.
	Dither bool
	// Perceptual matches colors in CIELAB instead of plain RGB space.
	Perceptual bool
	// Adaptive derives the 16 color palette from the image by median
	// cut instead of using the builtin C64 colors.
	Adaptive bool
	// Threshold and Invert steer the foreground/background bit
	// decision, see charset.Options.
	Threshold uint8
	Invert    bool
	Luma      charset.LumaMode
	// Contrast and Brightness pre-adjust the image before
	// quantization. 1.0 leaves it untouched.
	Contrast   float64
	Brightness float64
	// Preview additionally writes the quantized image as a PNG.
	Preview bool
	// OutDir receives the generated files. Empty means the source
	// file's directory.
	OutDir string
}

func DefaultOptions() Options {
	return Options{
		Dither:     true,
		Perceptual: true,
		Threshold:  charset.DefaultThreshold,
		Contrast:   1.0,
		Brightness: 1.0,
	}
}

// String returns a compact summary of the options, recorded alongside
// each conversion in the history database.
func (o Options) String() string {
	var parts []string
	if o.Dither {
		parts = append(parts, "dither")
	}
	if o.Perceptual {
		parts = append(parts, "lab")
	} else {
		parts = append(parts, "rgb")
	}
	if o.Adaptive {
		parts = append(parts, "adaptive")
	}
	parts = append(parts, fmt.Sprintf("threshold=%d", o.Threshold))
	if o.Invert {
		parts = append(parts, "invert")
	}
	if o.Luma == charset.Average {
		parts = append(parts, "luma=avg")
	}
	if o.Contrast != 1.0 {
		parts = append(parts, fmt.Sprintf("contrast=%g", o.Contrast))
	}
	if o.Brightness != 1.0 {
		parts = append(parts, fmt.Sprintf("brightness=%g", o.Brightness))
	}
	return strings.Join(parts, ",")
}

// Result describes one finished conversion.
type Result struct {
	Source   string
	SHA1     string
	Patterns int
	Screen   *charset.Screen
}

// Converter ties the conversion pipeline to the history database and a
// logger.
type Converter struct {
	db     *HistoryDB
	logger *log.Logger
}

// New returns a Converter. db may be nil to skip history recording.
func New(db *HistoryDB, logger *log.Logger) *Converter {
	return &Converter{
		db:     db,
		logger: logger,
	}
}

// Convert reads an image file, quantizes it to 16 colors, reduces it
// to character data and writes the three header artifacts. Nothing is
// written if the image cannot be decoded.
func (c *Converter) Convert(file string, opts Options) (*Result, error) {
	sha, err := sha1File(file)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", file, err)
	}

	src := preprocess(m, opts.Contrast, opts.Brightness)
	c.logger.Printf("Converting %q (%dx%d source)\n", file, m.Bounds().Dx(), m.Bounds().Dy())

	metric := palette.RGB
	if opts.Perceptual {
		metric = palette.Lab
	}

	var pal *palette.Palette
	if opts.Adaptive {
		pal = palette.FromImage(src, metric)
	} else {
		pal = palette.C64(metric)
	}

	var quantized *image.Paletted
	if opts.Dither {
		quantized = dither.FloydSteinberg(src, pal)
	} else {
		quantized = dither.Quantize(src, pal)
	}

	screen, err := charset.FromImage(quantized, charset.Options{
		Threshold: opts.Threshold,
		Invert:    opts.Invert,
		Luma:      opts.Luma,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Printf("Generated %d unique patterns\n", screen.Table.Len())

	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Dir(file)
	}
	if err := writeArtifacts(outDir, file, screen, quantized, opts.Preview); err != nil {
		return nil, err
	}

	if c.db != nil {
		if _, err := c.db.Record(sha, file, opts.String(), screen.Table.Len(), screen.Table.Bytes()); err != nil {
			return nil, err
		}
	}

	return &Result{
		Source:   file,
		SHA1:     sha,
		Patterns: screen.Table.Len(),
		Screen:   screen,
	}, nil
}

func writeArtifacts(dir, source string, s *charset.Screen, preview *image.Paletted, withPreview bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, out := range []struct {
		name  string
		write func(*os.File) error
	}{
		{ScreenMapFile, func(f *os.File) error { return s.WriteScreenMap(f) }},
		{CharmapFile, func(f *os.File) error { return s.WriteCharmap(f) }},
		{ColorMapFile, func(f *os.File) error { return s.WriteColorMap(f) }},
	} {
		f, err := os.Create(filepath.Join(dir, out.name))
		if err != nil {
			return err
		}
		if err := out.write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	if withPreview {
		base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		f, err := os.Create(filepath.Join(dir, base+"_preview.png"))
		if err != nil {
			return err
		}
		defer f.Close()

		if err := png.Encode(f, preview); err != nil {
			return err
		}
	}

	return nil
}
