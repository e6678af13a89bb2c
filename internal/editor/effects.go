package editor

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// glowRadius is the blur radius of the halo copy used by the glow effect.
const glowRadius = 8

// applyEffects runs pixelate, tilt-shift, lens blur and glow over the composed
// buffer in that order. Effects at their defaults are skipped and img is
// returned as is.
func applyEffects(img *image.NRGBA, e EffectParameters) *image.NRGBA {
	if e.Pixelate > 1 {
		img = pixelate(img, int(math.Round(e.Pixelate)))
	}
	if e.TiltShift > 0 {
		img = tiltShift(img, e.TiltShift/10)
	}
	if e.LensBlur > 0 {
		img = imaging.Clone(blur.Box(img, e.LensBlur))
	}
	if e.Glow > 0 {
		img = glow(img, e.Glow/100)
	}
	return img
}

func pixelate(img *image.NRGBA, size int) *image.NRGBA {
	g := gift.New(gift.Pixelate(size))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// tiltShift keeps the central third of the rows sharp and ramps linearly to
// the fully blurred copy at the top and bottom edges.
func tiltShift(img *image.NRGBA, sigma float64) *image.NRGBA {
	blurred := imaging.Clone(blur.Gaussian(img, sigma))
	b := img.Bounds()
	h := float64(b.Dy())
	out := image.NewNRGBA(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		t := (float64(y-b.Min.Y) + 0.5) / h
		var m float64
		switch {
		case t < 1.0/3:
			m = (1.0/3 - t) * 3
		case t > 2.0/3:
			m = (t - 2.0/3) * 3
		}
		m = math.Min(m, 1)

		i := img.PixOffset(b.Min.X, y)
		end := i + b.Dx()*4
		for ; i < end; i++ {
			out.Pix[i] = clampByte(float64(img.Pix[i])*(1-m) + float64(blurred.Pix[i])*m)
		}
	}
	return out
}

// glow screens a blurred copy over the image at the given opacity.
func glow(img *image.NRGBA, opacity float64) *image.NRGBA {
	halo := blur.Gaussian(img, glowRadius)
	screened := blend.Screen(img, halo)
	return imaging.Clone(blend.Opacity(img, screened, opacity))
}

// drawShadow paints a soft black silhouette of fg's alpha onto dst, offset
// down and to the right by strength/10 pixels.
func drawShadow(dst *image.NRGBA, fg *image.NRGBA, strength float64) {
	b := fg.Bounds()
	opacity := strength / 100
	silhouette := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := fg.PixOffset(b.Min.X, b.Min.Y+y)
		i := silhouette.PixOffset(0, y)
		for x := 0; x < b.Dx(); x++ {
			silhouette.Pix[i+3] = clampByte(float64(fg.Pix[src+3]) * opacity)
			src += 4
			i += 4
		}
	}

	soft := blur.Gaussian(silhouette, 2+strength/20)
	offset := int(math.Round(strength / 10))
	r := dst.Bounds().Add(image.Pt(offset, offset))
	draw.Draw(dst, r, soft, image.Point{}, draw.Over)
}
