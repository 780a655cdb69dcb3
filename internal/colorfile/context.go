package colorfile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/backwardspy/whiskers2/internal/color"
	"github.com/backwardspy/whiskers2/internal/palette"
)

// hexFormat is the encoding used for colors inside override expressions,
// independent of the caller's output formatting.
var hexFormat = color.HexFormat{Prefix: "#"}

// PaletteToCty converts a palette to an object of flavors, each an object of
// hex strings keyed by color identifier.
func PaletteToCty(p palette.Palette) cty.Value {
	flavors := make(map[string]cty.Value, len(p.Flavors))
	for _, f := range p.All() {
		colors := make(map[string]cty.Value, len(f.Colors))
		for _, c := range f.All() {
			colors[c.Identifier] = cty.StringVal(color.EncodeHex(c.RGB, c.Opacity, hexFormat))
		}
		flavors[f.Identifier] = cty.ObjectVal(colors)
	}
	return cty.ObjectVal(flavors)
}

// colorOps are the single-argument color operations exposed to HCL.
var colorOps = map[string]struct {
	description string
	apply       func(color.Color, float64) color.Color
}{
	"mod_hue":        {"Sets the hue in degrees", color.Color.ModHue},
	"add_hue":        {"Rotates the hue forward by degrees", color.Color.AddHue},
	"sub_hue":        {"Rotates the hue backward by degrees", color.Color.SubHue},
	"mod_saturation": {"Sets the saturation percentage (0-100)", color.Color.ModSaturation},
	"add_saturation": {"Raises the saturation by percentage points", color.Color.AddSaturation},
	"sub_saturation": {"Lowers the saturation by percentage points", color.Color.SubSaturation},
	"mod_lightness":  {"Sets the lightness percentage (0-100)", color.Color.ModLightness},
	"add_lightness":  {"Raises the lightness by percentage points", color.Color.AddLightness},
	"sub_lightness":  {"Lowers the lightness by percentage points", color.Color.SubLightness},
	"mod_opacity":    {"Sets the opacity (0.0 to 1.0)", color.Color.ModOpacity},
	"add_opacity":    {"Raises the opacity by a fraction (0.0 to 1.0)", color.Color.AddOpacity},
	"sub_opacity":    {"Lowers the opacity by a fraction (0.0 to 1.0)", color.Color.SubOpacity},
}

// makeColorFunc wraps a color operation as an HCL function.
// Usage: add_lightness("#hex", 10) or add_lightness(palette.mocha.red, 10)
func makeColorFunc(description string, apply func(color.Color, float64) color.Color) function.Function {
	return function.New(&function.Spec{
		Description: description,
		Params: []function.Parameter{
			{Name: "color", Type: cty.String},
			{Name: "amount", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			c, err := parseColor(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			amount, _ := args[1].AsBigFloat().Float64()

			result := apply(c, amount)
			return cty.StringVal(result.Hex), nil
		},
	})
}

// makeMixFunc creates an HCL function that blends two colors.
// Usage: mix(palette.mocha.base, "#000000", 0.5)
func makeMixFunc() function.Function {
	return function.New(&function.Spec{
		Description: "Mixes two colors; an amount of 0 keeps the first, 1 yields the second",
		Params: []function.Parameter{
			{Name: "base", Type: cty.String},
			{Name: "blend", Type: cty.String},
			{Name: "amount", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			base, err := parseColor(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			blend, err := parseColor(args[1].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			amount, _ := args[2].AsBigFloat().Float64()

			return cty.StringVal(color.Mix(base, blend, amount).Hex), nil
		},
	})
}

func parseColor(hex string) (color.Color, error) {
	rgb, opacity, err := color.ParseHex(hex)
	if err != nil {
		return color.Color{}, fmt.Errorf("parsing color argument: %w", err)
	}
	return color.New("", "", false, rgb, opacity, hexFormat), nil
}

// BuildEvalContext creates an HCL evaluation context with the palette as the
// "palette" variable and the color functions.
func BuildEvalContext(p palette.Palette) *hcl.EvalContext {
	funcs := make(map[string]function.Function, len(colorOps)+1)
	for name, op := range colorOps {
		funcs[name] = makeColorFunc(op.description, op.apply)
	}
	funcs["mix"] = makeMixFunc()

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"palette": PaletteToCty(p),
		},
		Functions: funcs,
	}
}
