package editor

import (
	"fmt"
	"image"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// BackgroundKind tags the variant held by a Background.
type BackgroundKind int

const (
	BackgroundTransparent BackgroundKind = iota
	BackgroundSolid
	BackgroundGradient
)

func (k BackgroundKind) String() string {
	switch k {
	case BackgroundSolid:
		return "solid"
	case BackgroundGradient:
		return "gradient"
	default:
		return "transparent"
	}
}

// Background is what the foreground raster is composited over.
//
// Solid backgrounds use Color. Gradients run from From at the top-left corner
// to To at the bottom-right corner; Preset names the gradient when it came
// from the built-in list.
type Background struct {
	Kind   BackgroundKind
	Color  colorful.Color
	From   colorful.Color
	To     colorful.Color
	Preset string
}

var gradientPresets = map[string][2]string{
	"sunset":   {"#ff7e5f", "#feb47b"},
	"ocean":    {"#2193b0", "#6dd5ed"},
	"forest":   {"#134e5e", "#71b280"},
	"lavender": {"#667eea", "#764ba2"},
	"fire":     {"#f12711", "#f5af19"},
	"mint":     {"#00b09b", "#96c93d"},
	"midnight": {"#232526", "#414345"},
	"peach":    {"#ffecd2", "#fcb69f"},
}

// GradientPresets returns the names of the built-in gradients.
func GradientPresets() []string {
	names := make([]string, 0, len(gradientPresets))
	for name := range gradientPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Transparent returns the empty background.
func Transparent() Background {
	return Background{Kind: BackgroundTransparent}
}

// SolidColor returns a background filled with a CSS hex colour ("#rgb" or "#rrggbb").
func SolidColor(hex string) (Background, error) {
	c, err := parseHex(hex)
	if err != nil {
		return Background{}, err
	}
	return Background{Kind: BackgroundSolid, Color: c}, nil
}

// GradientStops returns a two-stop diagonal gradient.
func GradientStops(from, to string) (Background, error) {
	a, err := parseHex(from)
	if err != nil {
		return Background{}, err
	}
	b, err := parseHex(to)
	if err != nil {
		return Background{}, err
	}
	return Background{Kind: BackgroundGradient, From: a, To: b}, nil
}

// GradientPreset returns one of the named built-in gradients.
func GradientPreset(name string) (Background, error) {
	stops, ok := gradientPresets[name]
	if !ok {
		return Background{}, fmt.Errorf("gradient preset %q: %w", name, ErrInvalidBackground)
	}
	bg, err := GradientStops(stops[0], stops[1])
	if err != nil {
		return Background{}, err
	}
	bg.Preset = name
	return bg, nil
}

// ParseBackground understands the textual forms used by the CLI and the
// MCP tools:
//
//	transparent
//	#ffffff
//	gradient:sunset
//	gradient:#ff0000,#0000ff
func ParseBackground(spec string) (Background, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case spec == "" || strings.EqualFold(spec, "transparent") || strings.EqualFold(spec, "none"):
		return Transparent(), nil
	case strings.HasPrefix(spec, "#"):
		return SolidColor(spec)
	case strings.HasPrefix(spec, "gradient:"):
		arg := strings.TrimPrefix(spec, "gradient:")
		if from, to, ok := strings.Cut(arg, ","); ok {
			return GradientStops(strings.TrimSpace(from), strings.TrimSpace(to))
		}
		return GradientPreset(arg)
	}
	return Background{}, fmt.Errorf("%q: %w", spec, ErrInvalidBackground)
}

// String renders the background in the form accepted by ParseBackground.
func (b Background) String() string {
	switch b.Kind {
	case BackgroundSolid:
		return b.Color.Clamped().Hex()
	case BackgroundGradient:
		if b.Preset != "" {
			return "gradient:" + b.Preset
		}
		return "gradient:" + b.From.Clamped().Hex() + "," + b.To.Clamped().Hex()
	default:
		return "transparent"
	}
}

func parseHex(s string) (colorful.Color, error) {
	c, err := colorful.Hex(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return colorful.Color{}, fmt.Errorf("colour %q: %w", s, ErrInvalidBackground)
	}
	return c, nil
}

// fill paints the background over every pixel of dst. Transparent is a no-op.
func (b Background) fill(dst *image.NRGBA) {
	bounds := dst.Bounds()
	switch b.Kind {
	case BackgroundSolid:
		r, g, bl := b.Color.Clamped().RGB255()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			i := dst.PixOffset(bounds.Min.X, y)
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				dst.Pix[i+0] = r
				dst.Pix[i+1] = g
				dst.Pix[i+2] = bl
				dst.Pix[i+3] = 0xff
				i += 4
			}
		}
	case BackgroundGradient:
		// Linear gradient from (0,0) to (w,h): t is the projection of the
		// pixel centre onto that diagonal.
		w, h := float64(bounds.Dx()), float64(bounds.Dy())
		lengthSq := w*w + h*h
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			i := dst.PixOffset(bounds.Min.X, y)
			py := float64(y-bounds.Min.Y) + 0.5
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				px := float64(x-bounds.Min.X) + 0.5
				t := (px*w + py*h) / lengthSq
				r, g, bl := b.From.BlendRgb(b.To, t).Clamped().RGB255()
				dst.Pix[i+0] = r
				dst.Pix[i+1] = g
				dst.Pix[i+2] = bl
				dst.Pix[i+3] = 0xff
				i += 4
			}
		}
	}
}
