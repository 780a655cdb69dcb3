package color

import "math"

// ModHue returns the color with its hue set to deg, taken modulo 360.
func (c Color) ModHue(deg float64) Color {
	hsl := c.HSL
	hsl.H = normalizeHue(deg)
	return c.fromHSL(hsl)
}

// AddHue rotates the hue by deg degrees, wrapping at 360.
func (c Color) AddHue(deg float64) Color {
	return c.ModHue(float64(c.HSL.H) + deg)
}

// SubHue rotates the hue by -deg degrees, wrapping at 0.
func (c Color) SubHue(deg float64) Color {
	return c.ModHue(float64(c.HSL.H) - deg)
}

// ModSaturation sets the saturation to pct, clamped to [0, 100].
func (c Color) ModSaturation(pct float64) Color {
	hsl := c.HSL
	hsl.S = clampPercent(pct)
	return c.fromHSL(hsl)
}

// AddSaturation raises the saturation by pct percentage points, saturating at 100.
func (c Color) AddSaturation(pct float64) Color {
	return c.ModSaturation(c.HSL.S + pct)
}

// SubSaturation lowers the saturation by pct percentage points, saturating at 0.
func (c Color) SubSaturation(pct float64) Color {
	return c.ModSaturation(c.HSL.S - pct)
}

// ModLightness sets the lightness to pct, clamped to [0, 100].
func (c Color) ModLightness(pct float64) Color {
	hsl := c.HSL
	hsl.L = clampPercent(pct)
	return c.fromHSL(hsl)
}

// AddLightness raises the lightness by pct percentage points, saturating at 100.
func (c Color) AddLightness(pct float64) Color {
	return c.ModLightness(c.HSL.L + pct)
}

// SubLightness lowers the lightness by pct percentage points, saturating at 0.
func (c Color) SubLightness(pct float64) Color {
	return c.ModLightness(c.HSL.L - pct)
}

// ModOpacity sets the opacity from a [0, 1] fraction. Inputs outside that
// range are clamped.
func (c Color) ModOpacity(v float64) Color {
	return c.fromRGBA(c.RGB, opacityByte(v)).withHSL(c.HSL)
}

// AddOpacity raises the opacity by a [0, 1] fraction, saturating at 255.
func (c Color) AddOpacity(v float64) Color {
	o := min(int(c.Opacity)+int(opacityByte(v)), 255)
	return c.fromRGBA(c.RGB, uint8(o)).withHSL(c.HSL)
}

// SubOpacity lowers the opacity by a [0, 1] fraction, saturating at 0.
func (c Color) SubOpacity(v float64) Color {
	o := max(int(c.Opacity)-int(opacityByte(v)), 0)
	return c.fromRGBA(c.RGB, uint8(o)).withHSL(c.HSL)
}

// Mix linearly interpolates the RGB and alpha channels of base towards blend.
// An amount of 0 yields base, 1 yields blend. The result keeps base's identity.
func Mix(base, blend Color, amount float64) Color {
	amount = clampUnit(amount)

	r, g, b := base.RGB.colorful().BlendRgb(blend.RGB.colorful(), amount).Clamped().RGB255()
	opacity := math.Round(float64(base.Opacity) + amount*(float64(blend.Opacity)-float64(base.Opacity)))

	return base.fromRGBA(RGB{R: r, G: g, B: b}, uint8(opacity))
}

// withHSL keeps the HSL value an opacity-only change must not disturb.
func (c Color) withHSL(hsl HSL) Color {
	c.HSL = hsl
	return c
}

func opacityByte(v float64) uint8 {
	return uint8(math.Round(clampUnit(v) * 255))
}

// clampUnit clamps v to [0, 1]. NaN becomes 0.
func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
