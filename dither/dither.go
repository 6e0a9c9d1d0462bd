/*
Package dither reduces an RGB image to a 16 color palette, optionally
using Floyd-Steinberg error diffusion.

Dithering processes pixels strictly in raster order; each quantization
decision depends on error diffused from previously processed pixels, so
the pass cannot be parallelized without changing the output.
*/
package dither

import (
	"image"
	"image/color"

	"char64/palette"
)

// Quantize maps every pixel of src independently to its nearest palette
// color. Quantizing an already quantized image is a no-op.
func Quantize(src image.Image, pal *palette.Palette) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal.Colors())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(src.At(x, y)).(color.RGBA)
			dst.SetColorIndex(x-b.Min.X, y-b.Min.Y, uint8(pal.Index(c)))
		}
	}

	return dst
}

// FloydSteinberg quantizes src to the palette with classic error
// diffusion: 7/16 of the quantization error goes to the right neighbor,
// 3/16 below left, 5/16 below and 1/16 below right. Accumulated channel
// values are kept unclamped and only clamped to [0,255] when a pixel is
// processed.
func FloydSteinberg(src image.Image, pal *palette.Palette) *image.Paletted {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	buf := make([]float64, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			i := (y*w + x) * 3
			buf[i] = float64(c.R)
			buf[i+1] = float64(c.G)
			buf[i+2] = float64(c.B)
		}
	}

	dst := image.NewPaletted(image.Rect(0, 0, w, h), pal.Colors())

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			r := clamp(buf[i])
			g := clamp(buf[i+1])
			bl := clamp(buf[i+2])

			idx := pal.Index(color.RGBA{R: round(r), G: round(g), B: round(bl), A: 0xff})
			chosen := pal.Color(idx)
			dst.SetColorIndex(x, y, uint8(idx))

			er := r - float64(chosen.R)
			eg := g - float64(chosen.G)
			eb := bl - float64(chosen.B)

			diffuse(buf, w, h, x+1, y, er, eg, eb, 7.0/16)
			diffuse(buf, w, h, x-1, y+1, er, eg, eb, 3.0/16)
			diffuse(buf, w, h, x, y+1, er, eg, eb, 5.0/16)
			diffuse(buf, w, h, x+1, y+1, er, eg, eb, 1.0/16)
		}
	}

	return dst
}

func diffuse(buf []float64, w, h, x, y int, er, eg, eb, f float64) {
	if x < 0 || x >= w || y >= h {
		return
	}
	i := (y*w + x) * 3
	buf[i] += er * f
	buf[i+1] += eg * f
	buf[i+2] += eb * f
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return v
}

func round(v float64) uint8 {
	return uint8(v + 0.5)
}
