package imaging

import (
	"fmt"
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// HandleSize is the side length of the square corner markers drawn by
// CropOverlay.
const HandleSize = 8

var (
	overlayShade = color.NRGBA{0, 0, 0, 128}
	labelFG      = color.NRGBA{255, 255, 255, 255}
	labelBG      = color.NRGBA{0, 0, 0, 180}
)

// CropOverlay draws the crop tool's on-screen chrome over a copy of img:
// everything outside r is dimmed, r gets a one pixel border, each corner
// gets a handle marker, and the region size is printed as "WxH" inside the
// top-left corner.
//
// accentHex colours the border and handles; an empty or invalid value falls
// back to white.
func CropOverlay(img image.Image, r image.Rectangle, accentHex string) *image.NRGBA {
	bounds := img.Bounds()
	result := image.NewNRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	accent := color.NRGBA{255, 255, 255, 255}
	if c, err := colorful.Hex(accentHex); err == nil {
		cr, cg, cb := c.RGB255()
		accent = color.NRGBA{cr, cg, cb, 255}
	}

	shade := image.NewUniform(overlayShade)
	for _, outside := range []image.Rectangle{
		image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, r.Min.Y),
		image.Rect(bounds.Min.X, r.Max.Y, bounds.Max.X, bounds.Max.Y),
		image.Rect(bounds.Min.X, r.Min.Y, r.Min.X, r.Max.Y),
		image.Rect(r.Max.X, r.Min.Y, bounds.Max.X, r.Max.Y),
	} {
		outside = outside.Intersect(bounds)
		if !outside.Empty() {
			draw.Draw(result, outside, shade, image.Point{}, draw.Over)
		}
	}

	for x := r.Min.X; x < r.Max.X; x++ {
		setIn(result, x, r.Min.Y, accent)
		setIn(result, x, r.Max.Y-1, accent)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		setIn(result, r.Min.X, y, accent)
		setIn(result, r.Max.X-1, y, accent)
	}

	half := HandleSize / 2
	for _, corner := range []image.Point{
		r.Min,
		{X: r.Max.X - 1, Y: r.Min.Y},
		{X: r.Min.X, Y: r.Max.Y - 1},
		{X: r.Max.X - 1, Y: r.Max.Y - 1},
	} {
		for dy := -half; dy < half; dy++ {
			for dx := -half; dx < half; dx++ {
				setIn(result, corner.X+dx, corner.Y+dy, accent)
			}
		}
	}

	drawLabel(result, r.Min.X+half+2, r.Min.Y+half+2, fmt.Sprintf("%dx%d", r.Dx(), r.Dy()), labelFG, labelBG)
	return result
}

func setIn(img *image.NRGBA, x, y int, c color.NRGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetNRGBA(x, y, c)
	}
}

// drawLabel draws text with a tiny 3x5 pixel font. Only digits and 'x' have
// glyphs; other runes leave a gap.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		'x': {"000", "101", "010", "101", "000"},
	}

	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setIn(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		if glyph, ok := glyphs[ch]; ok {
			for row, line := range glyph {
				for col, pixel := range line {
					if pixel == '1' {
						setIn(img, cx+col, y+row, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
