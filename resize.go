package char64

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"char64/charset"
)

// preprocess coerces the source to a 320x200 RGBA buffer and applies
// the optional contrast and brightness adjustments.
func preprocess(src image.Image, contrast, brightness float64) *image.RGBA {
	b := src.Bounds()
	dr := image.Rect(0, 0, charset.Width, charset.Height)
	dst := image.NewRGBA(dr)

	if b.Dx() == charset.Width && b.Dy() == charset.Height {
		draw.Draw(dst, dr, src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dr, src, b, draw.Src, nil)
	}

	if contrast != 1.0 {
		mean := meanGray(dst)
		adjust(dst, func(v float64) float64 { return mean + (v-mean)*contrast })
	}
	if brightness != 1.0 {
		adjust(dst, func(v float64) float64 { return v * brightness })
	}

	return dst
}

// meanGray returns the mean Rec.601 luminance of the image, rounded to
// the nearest integer.
func meanGray(m *image.RGBA) float64 {
	var sum float64
	for y := 0; y < m.Rect.Dy(); y++ {
		i := y * m.Stride
		for x := 0; x < m.Rect.Dx(); x++ {
			r := float64(m.Pix[i])
			g := float64(m.Pix[i+1])
			b := float64(m.Pix[i+2])
			sum += 0.299*r + 0.587*g + 0.114*b
			i += 4
		}
	}
	return math.Round(sum / float64(m.Rect.Dx()*m.Rect.Dy()))
}

func adjust(m *image.RGBA, f func(float64) float64) {
	for y := 0; y < m.Rect.Dy(); y++ {
		i := y * m.Stride
		for x := 0; x < m.Rect.Dx(); x++ {
			for c := 0; c < 3; c++ {
				v := f(float64(m.Pix[i+c]))
				switch {
				case v < 0:
					v = 0
				case v > 255:
					v = 255
				}
				m.Pix[i+c] = uint8(math.Round(v))
			}
			i += 4
		}
	}
}
