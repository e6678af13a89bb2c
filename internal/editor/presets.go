package editor

import (
	"fmt"
	"sort"
)

// Preset is a named partial override of FilterParameters.
type Preset struct {
	Name      string             `json:"name"`
	Overrides map[string]float64 `json:"overrides"`
}

var presets = map[string]Preset{
	"vintage": {Name: "vintage", Overrides: map[string]float64{
		"sepia": 40, "contrast": 110, "brightness": 105, "saturation": 80, "vignette": 30,
	}},
	"dramatic": {Name: "dramatic", Overrides: map[string]float64{
		"contrast": 150, "brightness": 90, "saturation": 120, "vignette": 40,
	}},
	"bright": {Name: "bright", Overrides: map[string]float64{
		"brightness": 130, "contrast": 105, "saturation": 110,
	}},
	"black-and-white": {Name: "black-and-white", Overrides: map[string]float64{
		"saturation": 0, "contrast": 120,
	}},
	"cinematic": {Name: "cinematic", Overrides: map[string]float64{
		"contrast": 130, "saturation": 85, "temperature": -15, "vignette": 35,
	}},
	"soft": {Name: "soft", Overrides: map[string]float64{
		"brightness": 110, "contrast": 85, "saturation": 90, "blur": 1,
	}},
	"vibrant": {Name: "vibrant", Overrides: map[string]float64{
		"saturation": 160, "contrast": 115,
	}},
}

// Presets returns every registered preset sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupPreset returns the named preset.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("preset %q: %w", name, ErrUnknownPreset)
	}
	return p, nil
}

// Apply merges the preset's overrides into f. Fields the preset does not
// mention keep their current values.
func (p Preset) Apply(f *FilterParameters) error {
	merged := *f
	for name, v := range p.Overrides {
		if _, err := merged.Set(name, v); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
	}
	*f = merged
	return nil
}
