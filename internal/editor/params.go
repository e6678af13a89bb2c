package editor

import (
	"fmt"
	"math"
	"strings"
)

// ParamSpec declares the accepted range and default of a single slider.
//
// Every write to a FilterParameters or EffectParameters field goes through
// Clamp, so stored values always satisfy Min <= v <= Max.
type ParamSpec struct {
	Name    string  `json:"name"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// Clamp limits v to the spec's range. NaN resolves to the default.
func (p ParamSpec) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return p.Default
	}
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// FilterParameters holds the primary tone sliders.
//
// Brightness, contrast, saturation and gamma are percentages around a 100
// baseline. Hue is a rotation in degrees, blur a radius in pixels, and the
// remaining fields are additive amounts where 0 means "off".
type FilterParameters struct {
	Brightness  float64 `json:"brightness"`
	Contrast    float64 `json:"contrast"`
	Saturation  float64 `json:"saturation"`
	Hue         float64 `json:"hue"`
	Blur        float64 `json:"blur"`
	Sepia       float64 `json:"sepia"`
	Invert      float64 `json:"invert"`
	Vignette    float64 `json:"vignette"`
	Exposure    float64 `json:"exposure"`
	Temperature float64 `json:"temperature"`
	Sharpen     float64 `json:"sharpen"`
	Gamma       float64 `json:"gamma"`
	Noise       float64 `json:"noise"`
}

// EffectParameters holds the derived effects layered after the filter pass.
type EffectParameters struct {
	TiltShift float64 `json:"tiltShift"`
	LensBlur  float64 `json:"lensBlur"`
	Pixelate  float64 `json:"pixelate"`
	Glow      float64 `json:"glow"`
	Shadow    float64 `json:"shadow"`
	FilmGrain float64 `json:"filmGrain"`
}

var filterSpecs = []ParamSpec{
	{Name: "brightness", Min: 0, Max: 200, Default: 100},
	{Name: "contrast", Min: 0, Max: 200, Default: 100},
	{Name: "saturation", Min: 0, Max: 200, Default: 100},
	{Name: "hue", Min: -180, Max: 180, Default: 0},
	{Name: "blur", Min: 0, Max: 20, Default: 0},
	{Name: "sepia", Min: 0, Max: 100, Default: 0},
	{Name: "invert", Min: 0, Max: 100, Default: 0},
	{Name: "vignette", Min: 0, Max: 100, Default: 0},
	{Name: "exposure", Min: -100, Max: 100, Default: 0},
	{Name: "temperature", Min: -100, Max: 100, Default: 0},
	{Name: "sharpen", Min: 0, Max: 100, Default: 0},
	{Name: "gamma", Min: 20, Max: 300, Default: 100},
	{Name: "noise", Min: 0, Max: 100, Default: 0},
}

var effectSpecs = []ParamSpec{
	{Name: "tiltShift", Min: 0, Max: 100, Default: 0},
	{Name: "lensBlur", Min: 0, Max: 20, Default: 0},
	{Name: "pixelate", Min: 1, Max: 50, Default: 1},
	{Name: "glow", Min: 0, Max: 100, Default: 0},
	{Name: "shadow", Min: 0, Max: 100, Default: 0},
	{Name: "filmGrain", Min: 0, Max: 100, Default: 0},
}

// FilterSpecs returns the declared ranges of every filter slider, in display order.
func FilterSpecs() []ParamSpec {
	return append([]ParamSpec(nil), filterSpecs...)
}

// EffectSpecs returns the declared ranges of every effect slider, in display order.
func EffectSpecs() []ParamSpec {
	return append([]ParamSpec(nil), effectSpecs...)
}

// DefaultFilters returns the documented filter defaults.
func DefaultFilters() FilterParameters {
	var f FilterParameters
	for _, spec := range filterSpecs {
		*f.field(spec.Name) = spec.Default
	}
	return f
}

// DefaultEffects returns the documented effect defaults.
func DefaultEffects() EffectParameters {
	var e EffectParameters
	for _, spec := range effectSpecs {
		*e.field(spec.Name) = spec.Default
	}
	return e
}

func lookupSpec(specs []ParamSpec, name string) (ParamSpec, bool) {
	for _, spec := range specs {
		if strings.EqualFold(spec.Name, name) {
			return spec, true
		}
	}
	return ParamSpec{}, false
}

// field maps a canonical slider name to its storage.
func (f *FilterParameters) field(name string) *float64 {
	switch name {
	case "brightness":
		return &f.Brightness
	case "contrast":
		return &f.Contrast
	case "saturation":
		return &f.Saturation
	case "hue":
		return &f.Hue
	case "blur":
		return &f.Blur
	case "sepia":
		return &f.Sepia
	case "invert":
		return &f.Invert
	case "vignette":
		return &f.Vignette
	case "exposure":
		return &f.Exposure
	case "temperature":
		return &f.Temperature
	case "sharpen":
		return &f.Sharpen
	case "gamma":
		return &f.Gamma
	case "noise":
		return &f.Noise
	}
	return nil
}

func (e *EffectParameters) field(name string) *float64 {
	switch name {
	case "tiltShift":
		return &e.TiltShift
	case "lensBlur":
		return &e.LensBlur
	case "pixelate":
		return &e.Pixelate
	case "glow":
		return &e.Glow
	case "shadow":
		return &e.Shadow
	case "filmGrain":
		return &e.FilmGrain
	}
	return nil
}

// Set clamps v to the named slider's range and stores it, returning the
// stored value. Names match case-insensitively.
func (f *FilterParameters) Set(name string, v float64) (float64, error) {
	spec, ok := lookupSpec(filterSpecs, name)
	if !ok {
		return 0, fmt.Errorf("filter %q: %w", name, ErrUnknownParameter)
	}
	stored := spec.Clamp(v)
	*f.field(spec.Name) = stored
	return stored, nil
}

// Get returns the current value of the named slider.
func (f FilterParameters) Get(name string) (float64, error) {
	spec, ok := lookupSpec(filterSpecs, name)
	if !ok {
		return 0, fmt.Errorf("filter %q: %w", name, ErrUnknownParameter)
	}
	return *f.field(spec.Name), nil
}

// Set clamps v to the named effect's range and stores it.
func (e *EffectParameters) Set(name string, v float64) (float64, error) {
	spec, ok := lookupSpec(effectSpecs, name)
	if !ok {
		return 0, fmt.Errorf("effect %q: %w", name, ErrUnknownParameter)
	}
	stored := spec.Clamp(v)
	*e.field(spec.Name) = stored
	return stored, nil
}

// Get returns the current value of the named effect.
func (e EffectParameters) Get(name string) (float64, error) {
	spec, ok := lookupSpec(effectSpecs, name)
	if !ok {
		return 0, fmt.Errorf("effect %q: %w", name, ErrUnknownParameter)
	}
	return *e.field(spec.Name), nil
}
