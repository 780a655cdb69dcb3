package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/backwardspy/whiskers2/internal/color"
	"github.com/backwardspy/whiskers2/internal/palette"
)

// Channel names accepted by add, sub and mod.
const (
	ChannelHue        = "hue"
	ChannelSaturation = "saturation"
	ChannelLightness  = "lightness"
	ChannelOpacity    = "opacity"
)

// Channels lists the channel names in display order.
var Channels = []string{ChannelHue, ChannelSaturation, ChannelLightness, ChannelOpacity}

type colorOp func(color.Color, float64) color.Color

var (
	addOps = map[string]colorOp{
		ChannelHue:        color.Color.AddHue,
		ChannelSaturation: color.Color.AddSaturation,
		ChannelLightness:  color.Color.AddLightness,
		ChannelOpacity:    color.Color.AddOpacity,
	}
	subOps = map[string]colorOp{
		ChannelHue:        color.Color.SubHue,
		ChannelSaturation: color.Color.SubSaturation,
		ChannelLightness:  color.Color.SubLightness,
		ChannelOpacity:    color.Color.SubOpacity,
	}
	modOps = map[string]colorOp{
		ChannelHue:        color.Color.ModHue,
		ChannelSaturation: color.Color.ModSaturation,
		ChannelLightness:  color.Color.ModLightness,
		ChannelOpacity:    color.Color.ModOpacity,
	}
)

// FuncMap returns the template functions available to templates rendered
// against p.
//
// Color adjustments take the channel and amount first so they can be piped:
//
//	{{ .red | mod "lightness" 50 | hex }}
func FuncMap(p palette.Palette) template.FuncMap {
	title := cases.Title(language.Und)

	return template.FuncMap{
		"add": adjust(addOps),
		"sub": adjust(subOps),
		"mod": adjust(modOps),
		"mix": func(base, blend color.Color, amount any) (color.Color, error) {
			f, err := toFloat(amount)
			if err != nil {
				return color.Color{}, fmt.Errorf("mix: %w", err)
			}
			return color.Mix(base, blend, f), nil
		},

		"hex": func(c color.Color) string {
			return c.Hex
		},
		"rgb": func(c color.Color) string {
			return c.CSSRGB()
		},
		"rgba": func(c color.Color) string {
			return c.CSSRGBA()
		},
		"hsl": func(c color.Color) string {
			return c.CSSHSL()
		},
		"hsla": func(c color.Color) string {
			return c.CSSHSLA()
		},
		"oklch": func(c color.Color) string {
			return c.CSSOKLCH()
		},

		"palette": func() palette.Palette {
			return p
		},
		"flavorNamed": func(name string) (palette.Flavor, error) {
			id, err := palette.ParseFlavor(name)
			if err != nil {
				return palette.Flavor{}, err
			}
			f, ok := p.Flavor(id)
			if !ok {
				return palette.Flavor{}, fmt.Errorf("%w %q", palette.ErrUnknownFlavor, name)
			}
			return f, nil
		},

		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"trim":      strings.TrimSpace,
		"titlecase": title.String,
	}
}

// adjust builds a template function that dispatches on a channel name. An
// unknown channel leaves the color unchanged.
func adjust(ops map[string]colorOp) func(string, any, color.Color) (color.Color, error) {
	return func(channel string, amount any, c color.Color) (color.Color, error) {
		op, ok := ops[channel]
		if !ok {
			return c, nil
		}
		f, err := toFloat(amount)
		if err != nil {
			return color.Color{}, fmt.Errorf("%s: %w", channel, err)
		}
		return op(c, f), nil
	}
}

// toFloat accepts the numeric forms that reach templates from literals and
// decoded frontmatter.
func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("invalid amount of type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid amount %v: must be finite", v)
	}
	return f, nil
}
