package color

import (
	"math"
	"strings"
	"testing"
)

var (
	red  = New("Red", "red", true, RGB{255, 0, 0}, 255, HexFormat{})
	blue = New("Blue", "blue", true, RGB{0, 0, 255}, 255, HexFormat{})
	love = New("Love", "love", true, RGB{235, 111, 146}, 255, HexFormat{})
	base = New("Base", "base", false, RGB{25, 23, 36}, 255, HexFormat{})
)

func absDiffUint8(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func closeRGB(a, b RGB) bool {
	return absDiffUint8(a.R, b.R) <= 1 && absDiffUint8(a.G, b.G) <= 1 && absDiffUint8(a.B, b.B) <= 1
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        RGB
		wantOpacity uint8
		wantErr     bool
	}{
		{"with hash", "#eb6f92", RGB{235, 111, 146}, 255, false},
		{"without hash", "eb6f92", RGB{235, 111, 146}, 255, false},
		{"black", "#000000", RGB{0, 0, 0}, 255, false},
		{"white", "#ffffff", RGB{255, 255, 255}, 255, false},
		{"uppercase", "#AABBCC", RGB{170, 187, 204}, 255, false},
		{"with alpha", "#eb6f92cc", RGB{235, 111, 146}, 204, false},
		{"too short", "#fff", RGB{}, 0, true},
		{"seven digits", "#aabbccd", RGB{}, 0, true},
		{"invalid chars", "#zzzzzz", RGB{}, 0, true},
		{"invalid alpha", "#aabbcczz", RGB{}, 0, true},
		{"empty", "", RGB{}, 0, true},
		{"embedded space", "#1 2345", RGB{}, 0, true},
		{"space in alpha", "#aabbcc 1", RGB{}, 0, true},
		{"sign", "+12345", RGB{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, opacity, err := ParseHex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want || opacity != tt.wantOpacity {
				t.Errorf("ParseHex(%q) = %v/%d, want %v/%d", tt.input, got, opacity, tt.want, tt.wantOpacity)
			}
		})
	}
}

func TestEncodeHex(t *testing.T) {
	tests := []struct {
		name    string
		rgb     RGB
		opacity uint8
		format  HexFormat
		want    string
	}{
		{"opaque", RGB{235, 111, 146}, 255, HexFormat{}, "eb6f92"},
		{"translucent", RGB{235, 111, 146}, 128, HexFormat{}, "eb6f9280"},
		{"zero padding", RGB{0, 5, 10}, 255, HexFormat{}, "00050a"},
		{"upper", RGB{235, 111, 146}, 255, HexFormat{Upper: true}, "EB6F92"},
		{"upper translucent", RGB{235, 111, 146}, 10, HexFormat{Upper: true}, "EB6F920A"},
		{"prefix", RGB{235, 111, 146}, 255, HexFormat{Prefix: "#"}, "#eb6f92"},
		{"prefix upper", RGB{25, 23, 36}, 255, HexFormat{Upper: true, Prefix: "0x"}, "0x191724"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeHex(tt.rgb, tt.opacity, tt.format); got != tt.want {
				t.Errorf("EncodeHex() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewComputesHSL(t *testing.T) {
	if red.HSL.H != 0 || math.Abs(red.HSL.S-100) > 0.01 || math.Abs(red.HSL.L-50) > 0.01 {
		t.Errorf("red.HSL = %+v, want {0 100 50}", red.HSL)
	}
	if blue.HSL.H != 240 {
		t.Errorf("blue.HSL.H = %d, want 240", blue.HSL.H)
	}
	if red.Hex != "ff0000" {
		t.Errorf("red.Hex = %q, want %q", red.Hex, "ff0000")
	}
	if red.Opacity != 255 {
		t.Errorf("red.Opacity = %d, want 255", red.Opacity)
	}
}

func TestHSLRoundtrip(t *testing.T) {
	colors := []RGB{
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
		{128, 128, 128},
		{235, 111, 146},
		{49, 116, 143},
		{156, 207, 216},
	}

	for _, rgb := range colors {
		t.Run(EncodeHex(rgb, 255, HexFormat{}), func(t *testing.T) {
			got := hslToRGB(rgbToHSL(rgb))
			if !closeRGB(got, rgb) {
				t.Errorf("roundtrip = %v, want %v (±1)", got, rgb)
			}
		})
	}
}

func TestWithFormat(t *testing.T) {
	c := love.ModOpacity(0.5).WithFormat(HexFormat{Upper: true, Prefix: "#"})
	if c.Hex != "#EB6F9280" {
		t.Errorf("Hex = %q, want %q", c.Hex, "#EB6F9280")
	}

	// formatting survives further transformation
	if got := c.AddHue(10).Hex; !strings.HasPrefix(got, "#") || strings.ToUpper(got) != got {
		t.Errorf("derived Hex = %q, want uppercase with # prefix", got)
	}
}

func TestCSSFormatters(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"rgb", love.CSSRGB(), "rgb(235, 111, 146)"},
		{"rgba opaque", red.CSSRGBA(), "rgba(255, 0, 0, 1)"},
		{"rgba translucent", red.ModOpacity(0.5).CSSRGBA(), "rgba(255, 0, 0, 0.5)"},
		{"hsl", red.CSSHSL(), "hsl(0, 100%, 50%)"},
		{"hsla", blue.ModOpacity(0.25).CSSHSLA(), "hsla(240, 100%, 50%, 0.25)"},
		{"oklch black", New("", "", false, RGB{}, 255, HexFormat{}).CSSOKLCH(), "oklch(0% 0 0)"},
		{"oklch black alpha", New("", "", false, RGB{}, 255, HexFormat{}).ModOpacity(0.5).CSSOKLCH(), "oklch(0% 0 0 / 0.5)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestCSSOKLCHRed(t *testing.T) {
	got := red.CSSOKLCH()
	if !strings.HasPrefix(got, "oklch(62.") {
		t.Errorf("CSSOKLCH() = %q, want lightness near 62.8%%", got)
	}
}
