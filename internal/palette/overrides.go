package palette

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// allFlavorsKey targets every flavor in a color override mapping.
const allFlavorsKey = "all"

// DecodeColorOverrides decodes a JSON or YAML mapping of the form
// {"all": {"base": "#000000"}, "mocha": {"text": "#ffffff"}}.
// Flavor keys are resolved with ParseFlavor.
func DecodeColorOverrides(data []byte) (*ColorOverrides, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding color overrides: %w", err)
	}
	return NewColorOverrides(raw)
}

// NewColorOverrides splits a raw override mapping into the shared and the
// flavor-specific parts.
func NewColorOverrides(raw map[string]map[string]string) (*ColorOverrides, error) {
	overrides := &ColorOverrides{
		Flavors: make(map[string]map[string]string),
	}
	for key, colors := range raw {
		if key == allFlavorsKey {
			overrides.All = colors
			continue
		}
		id, err := ParseFlavor(key)
		if err != nil {
			return nil, fmt.Errorf("color overrides: %w", err)
		}
		if overrides.Flavors[id] == nil {
			overrides.Flavors[id] = make(map[string]string, len(colors))
		}
		for colorID, hex := range colors {
			overrides.Flavors[id][colorID] = hex
		}
	}
	return overrides, nil
}

// Combine returns the overrides of o with those of other layered on top.
// Either may be nil.
func (o *ColorOverrides) Combine(other *ColorOverrides) *ColorOverrides {
	if o == nil {
		return other
	}
	if other == nil {
		return o
	}
	out := &ColorOverrides{
		All:     combineColors(o.All, other.All),
		Flavors: make(map[string]map[string]string),
	}
	for id, colors := range o.Flavors {
		out.Flavors[id] = combineColors(colors, nil)
	}
	for id, colors := range other.Flavors {
		out.Flavors[id] = combineColors(out.Flavors[id], colors)
	}
	return out
}

func combineColors(base, top map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(top))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range top {
		out[k] = v
	}
	return out
}
