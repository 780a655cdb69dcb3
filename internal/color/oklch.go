package color

import (
	"fmt"
	"math"
	"strconv"
)

// CSSRGB returns the color as an rgb() string, e.g. "rgb(235, 111, 146)".
func (c Color) CSSRGB() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.RGB.R, c.RGB.G, c.RGB.B)
}

// CSSRGBA returns the color as an rgba() string with its opacity as a fraction.
func (c Color) CSSRGBA() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.RGB.R, c.RGB.G, c.RGB.B, alpha(c.Opacity))
}

// CSSHSL returns the color as an hsl() string, e.g. "hsl(343, 81%, 75%)".
func (c Color) CSSHSL() string {
	return fmt.Sprintf("hsl(%d, %s%%, %s%%)", c.HSL.H, trimFloat(c.HSL.S, 0), trimFloat(c.HSL.L, 0))
}

// CSSHSLA returns the color as an hsla() string with its opacity as a fraction.
func (c Color) CSSHSLA() string {
	return fmt.Sprintf("hsla(%d, %s%%, %s%%, %s)", c.HSL.H, trimFloat(c.HSL.S, 0), trimFloat(c.HSL.L, 0), alpha(c.Opacity))
}

// CSSOKLCH returns the color in the CSS oklch() notation. Lightness is a
// percentage, chroma is unbounded (roughly [0, 0.37] for sRGB), hue in degrees.
// The alpha component is only written when the color is not fully opaque.
func (c Color) CSSOKLCH() string {
	l, chroma, hue := c.RGB.colorful().OkLch()
	s := fmt.Sprintf("oklch(%s%% %s %s", trimFloat(l*100, 2), trimFloat(chroma, 4), trimFloat(hue, 2))
	if c.Opacity < 255 {
		s += " / " + alpha(c.Opacity)
	}
	return s + ")"
}

func alpha(opacity uint8) string {
	return trimFloat(float64(opacity)/255.0, 2)
}

// trimFloat formats v with at most prec decimals and no trailing zeros.
func trimFloat(v float64, prec int) string {
	p := math.Pow10(prec)
	return strconv.FormatFloat(math.Round(v*p)/p, 'f', -1, 64)
}
