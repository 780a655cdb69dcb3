package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB holds the 8-bit red, green and blue channels of a color.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// HSL holds hue in whole degrees [0, 360) and saturation/lightness as
// percentages [0, 100].
type HSL struct {
	H int     `json:"h" yaml:"h"`
	S float64 `json:"s" yaml:"s"`
	L float64 `json:"l" yaml:"l"`
}

// HexFormat controls how the Hex field of a Color is rendered.
type HexFormat struct {
	Upper  bool
	Prefix string
}

// Color is an immutable named palette color. RGB and HSL describe the same
// color; Hex is always derived from RGB and Opacity.
//
// Every operation returns a new Color and keeps Name, Identifier and Accent.
type Color struct {
	Name       string `json:"name" yaml:"name"`
	Identifier string `json:"identifier" yaml:"identifier"`
	Accent     bool   `json:"accent" yaml:"accent"`
	Hex        string `json:"hex" yaml:"hex"`
	RGB        RGB    `json:"rgb" yaml:"rgb"`
	HSL        HSL    `json:"hsl" yaml:"hsl"`
	Opacity    uint8  `json:"opacity" yaml:"opacity"`

	format HexFormat
}

// New builds a Color from RGB channels and an opacity. HSL is computed from RGB.
func New(name, identifier string, accent bool, rgb RGB, opacity uint8, format HexFormat) Color {
	c := Color{
		Name:       name,
		Identifier: identifier,
		Accent:     accent,
		format:     format,
	}
	return c.fromRGBA(rgb, opacity)
}

// Format returns the hex formatting the color was built with.
func (c Color) Format() HexFormat {
	return c.format
}

// WithFormat returns a copy of the color with its hex string re-encoded.
func (c Color) WithFormat(format HexFormat) Color {
	c.format = format
	c.Hex = EncodeHex(c.RGB, c.Opacity, format)
	return c
}

// fromRGBA returns a copy of c with new RGB and opacity; HSL and Hex are recomputed.
func (c Color) fromRGBA(rgb RGB, opacity uint8) Color {
	c.RGB = rgb
	c.HSL = rgbToHSL(rgb)
	c.Opacity = opacity
	c.Hex = EncodeHex(rgb, opacity, c.format)
	return c
}

// fromHSL returns a copy of c with a new HSL value; RGB and Hex are recomputed.
// Opacity is kept.
func (c Color) fromHSL(hsl HSL) Color {
	c.HSL = hsl
	c.RGB = hslToRGB(hsl)
	c.Hex = EncodeHex(c.RGB, c.Opacity, c.format)
	return c
}

// ParseHex parses a hex color like "#eb6f92" or "eb6f92cc". Six digits yield an
// opacity of 255; eight digits carry the alpha channel in the last pair.
func ParseHex(s string) (RGB, uint8, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return RGB{}, 0, fmt.Errorf("invalid hex color %q: must be 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, 0, fmt.Errorf("invalid hex color %q: must be 6 or 8 hex digits", s)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	rgb := RGB{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8)}
	return rgb, uint8(v), nil
}

// EncodeHex renders rgb and opacity as hex digits: six when fully opaque,
// eight (alpha last) otherwise.
func EncodeHex(rgb RGB, opacity uint8, format HexFormat) string {
	var digits string
	if opacity < 255 {
		digits = fmt.Sprintf("%02x%02x%02x%02x", rgb.R, rgb.G, rgb.B, opacity)
	} else {
		digits = fmt.Sprintf("%02x%02x%02x", rgb.R, rgb.G, rgb.B)
	}
	if format.Upper {
		digits = strings.ToUpper(digits)
	}
	return format.Prefix + digits
}

func (rgb RGB) colorful() colorful.Color {
	return colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
}

func rgbToHSL(rgb RGB) HSL {
	h, s, l := rgb.colorful().Hsl()
	return HSL{
		H: normalizeHue(h),
		S: s * 100,
		L: l * 100,
	}
}

func hslToRGB(hsl HSL) RGB {
	r, g, b := colorful.Hsl(float64(hsl.H), hsl.S/100, hsl.L/100).Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// normalizeHue rounds deg to whole degrees and wraps it into [0, 360).
func normalizeHue(deg float64) int {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	h := int(math.Round(deg)) % 360
	if h < 0 {
		h += 360
	}
	return h
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
