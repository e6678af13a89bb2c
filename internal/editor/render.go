package editor

import (
	"image"
	"math"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

// RandomSource supplies the uniform [0,1) values consumed by film grain.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// Render produces the output raster for one parameter snapshot.
//
// The foreground is filtered, composited over the background (and the drop
// shadow when enabled), then the effect, vignette and film grain passes run
// over the composed buffer. The result always has raster's dimensions and
// origin (0,0). A nil raster renders to nil.
//
// rnd is only consulted when effects.FilmGrain > 0.
func Render(raster *image.NRGBA, bg Background, filters FilterParameters, effects EffectParameters, rnd RandomSource) *image.NRGBA {
	if raster == nil {
		return nil
	}
	return Composite(FilterForeground(raster, filters), bg, filters, effects, rnd)
}

// FilterForeground applies the tone filters to raster and returns a new image.
//
// The primary chain runs in a fixed order: brightness, contrast, saturation,
// hue rotation, blur, sepia, invert. Exposure, temperature, sharpen, gamma
// and noise follow. Stages left at their defaults are skipped, so default
// filters return an exact copy of raster.
func FilterForeground(raster *image.NRGBA, f FilterParameters) *image.NRGBA {
	g := gift.New()

	if f.Brightness != 100 {
		b := float32(f.Brightness / 100)
		g.Add(colorStage(func(c float32) float32 { return c * b }))
	}
	if f.Contrast != 100 {
		k := float32(f.Contrast / 100)
		g.Add(colorStage(func(c float32) float32 { return (c-0.5)*k + 0.5 }))
	}
	if f.Saturation != 100 {
		g.Add(saturateMatrix(f.Saturation / 100).filter())
	}
	if f.Hue != 0 {
		g.Add(hueRotateMatrix(f.Hue).filter())
	}
	if f.Blur > 0 {
		g.Add(gift.GaussianBlur(float32(f.Blur)))
	}
	if f.Sepia > 0 {
		g.Add(sepiaMatrix(f.Sepia / 100).filter())
	}
	if f.Invert > 0 {
		a := float32(f.Invert / 100)
		g.Add(colorStage(func(c float32) float32 { return a*(1-c) + (1-a)*c }))
	}
	if f.Exposure != 0 {
		k := float32(math.Exp2(f.Exposure / 100))
		g.Add(colorStage(func(c float32) float32 { return c * k }))
	}
	if f.Temperature != 0 {
		shift := float32(f.Temperature / 100 * 0.1)
		g.Add(gift.ColorFunc(func(r0, g0, b0, a0 float32) (r, g, b, a float32) {
			return clamp01(r0 + shift), g0, clamp01(b0 - shift), a0
		}))
	}
	if f.Sharpen > 0 {
		g.Add(gift.UnsharpMask(1, float32(f.Sharpen/50), 0))
	}

	var out *image.NRGBA
	if len(g.Filters) == 0 {
		out = imaging.Clone(raster)
	} else {
		out = image.NewNRGBA(g.Bounds(raster.Bounds()))
		g.Draw(out, raster)
	}

	if f.Gamma != 100 {
		out = imaging.AdjustGamma(out, f.Gamma/100)
	}
	if f.Noise > 0 {
		applyNoise(out, f.Noise)
	}
	return out
}

// Composite layers an already filtered foreground over the background and
// runs the buffer-wide passes. fg is not modified.
func Composite(fg *image.NRGBA, bg Background, filters FilterParameters, effects EffectParameters, rnd RandomSource) *image.NRGBA {
	if fg == nil {
		return nil
	}
	w, h := fg.Bounds().Dx(), fg.Bounds().Dy()
	bounds := image.Rect(0, 0, w, h)
	out := image.NewNRGBA(bounds)

	bg.fill(out)
	if effects.Shadow > 0 {
		drawShadow(out, fg, effects.Shadow)
	}
	if bg.Kind == BackgroundTransparent && effects.Shadow == 0 {
		draw.Draw(out, bounds, fg, fg.Bounds().Min, draw.Src)
	} else {
		draw.Draw(out, bounds, fg, fg.Bounds().Min, draw.Over)
	}

	out = applyEffects(out, effects)

	if filters.Vignette > 0 {
		applyVignette(out, filters.Vignette)
	}
	if effects.FilmGrain > 0 && rnd != nil {
		applyFilmGrain(out, effects.FilmGrain, rnd)
	}
	return out
}

// colorStage applies fn to the red, green and blue channels independently.
func colorStage(fn func(c float32) float32) gift.Filter {
	return gift.ColorFunc(func(r0, g0, b0, a0 float32) (r, g, b, a float32) {
		return clamp01(fn(r0)), clamp01(fn(g0)), clamp01(fn(b0)), a0
	})
}

// colorMatrix is a 3x3 linear transform over (r, g, b).
type colorMatrix [3][3]float32

func (m colorMatrix) filter() gift.Filter {
	return gift.ColorFunc(func(r0, g0, b0, a0 float32) (r, g, b, a float32) {
		r = m[0][0]*r0 + m[0][1]*g0 + m[0][2]*b0
		g = m[1][0]*r0 + m[1][1]*g0 + m[1][2]*b0
		b = m[2][0]*r0 + m[2][1]*g0 + m[2][2]*b0
		return clamp01(r), clamp01(g), clamp01(b), a0
	})
}

func saturateMatrix(s float64) colorMatrix {
	return colorMatrix{
		{f32(0.213 + 0.787*s), f32(0.715 - 0.715*s), f32(0.072 - 0.072*s)},
		{f32(0.213 - 0.213*s), f32(0.715 + 0.285*s), f32(0.072 - 0.072*s)},
		{f32(0.213 - 0.213*s), f32(0.715 - 0.715*s), f32(0.072 + 0.928*s)},
	}
}

func hueRotateMatrix(degrees float64) colorMatrix {
	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return colorMatrix{
		{
			f32(0.213 + cos*0.787 - sin*0.213),
			f32(0.715 - cos*0.715 - sin*0.715),
			f32(0.072 - cos*0.072 + sin*0.928),
		},
		{
			f32(0.213 - cos*0.213 + sin*0.143),
			f32(0.715 + cos*0.285 + sin*0.140),
			f32(0.072 - cos*0.072 - sin*0.283),
		},
		{
			f32(0.213 - cos*0.213 - sin*0.787),
			f32(0.715 - cos*0.715 + sin*0.715),
			f32(0.072 + cos*0.928 + sin*0.072),
		},
	}
}

func sepiaMatrix(amount float64) colorMatrix {
	k := 1 - math.Min(amount, 1)
	return colorMatrix{
		{f32(0.393 + 0.607*k), f32(0.769 - 0.769*k), f32(0.189 - 0.189*k)},
		{f32(0.349 - 0.349*k), f32(0.686 + 0.314*k), f32(0.168 - 0.168*k)},
		{f32(0.272 - 0.272*k), f32(0.534 - 0.534*k), f32(0.131 + 0.869*k)},
	}
}

// applyNoise adds a fixed per-pixel luminance pattern. The pattern depends
// only on pixel coordinates, so repeated renders are identical.
func applyNoise(img *image.NRGBA, amount float64) {
	amplitude := amount / 100 * 64
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[i+3] != 0 {
				d := (float64(noiseHash(x, y))/math.MaxUint32 - 0.5) * amplitude
				img.Pix[i+0] = clampByte(float64(img.Pix[i+0]) + d)
				img.Pix[i+1] = clampByte(float64(img.Pix[i+1]) + d)
				img.Pix[i+2] = clampByte(float64(img.Pix[i+2]) + d)
			}
			i += 4
		}
	}
}

func noiseHash(x, y int) uint32 {
	h := uint32(x)*374761393 + uint32(y)*668265263
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

// applyVignette darkens img towards the corners. Opacity grows from 0 at the
// centre to strength/100 at half the longer side and stays there beyond it.
func applyVignette(img *image.NRGBA, strength float64) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	radius := math.Max(w, h) / 2
	if radius <= 0 {
		return
	}
	brush := gg.NewRadialGradientBrush(w/2, h/2, 0, radius).
		AddColorStop(0, gg.RGBA2(0, 0, 0, 0)).
		AddColorStop(1, gg.RGBA2(0, 0, 0, strength/100))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			sa := brush.ColorAt(float64(x-b.Min.X)+0.5, float64(y-b.Min.Y)+0.5).A
			if sa > 0 {
				blackOver(img.Pix[i:i+4:i+4], sa)
			}
			i += 4
		}
	}
}

// blackOver composites black at opacity sa over a straight-alpha pixel.
func blackOver(px []uint8, sa float64) {
	da := float64(px[3]) / 255
	oa := sa + da*(1-sa)
	if oa <= 0 {
		return
	}
	k := da * (1 - sa) / oa
	px[0] = clampByte(float64(px[0]) * k)
	px[1] = clampByte(float64(px[1]) * k)
	px[2] = clampByte(float64(px[2]) * k)
	px[3] = clampByte(oa * 255)
}

// applyFilmGrain perturbs every colour channel independently by
// (rnd-0.5)*255*intensity/100. Alpha is left untouched.
func applyFilmGrain(img *image.NRGBA, intensity float64, rnd RandomSource) {
	scale := 255 * intensity / 100
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			for c := 0; c < 3; c++ {
				img.Pix[i+c] = clampByte(float64(img.Pix[i+c]) + (rnd.Float64()-0.5)*scale)
			}
			i += 4
		}
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func f32(v float64) float32 { return float32(v) }
