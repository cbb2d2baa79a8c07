// color.go - warp/weft color values used by drafts and the drawdown renderer

package main

import (
	"fmt"
	"strconv"
)

// Color holds a normalized RGB triple in [0,1). Draft files store colors as
// small integer ranges (0-255, 0-15, ...); Color is the range-free form used
// everywhere else so the renderer never has to know what range a draft file
// used.
type Color struct {
	Red, Green, Blue float64
}

// NewColorRange maps an integer (r,g,b) in [low,high] to a Color in [0,1).
func NewColorRange(r, g, b, low, high int) (Color, error) {
	if r < low || r > high || g < low || g > high || b < low || b > high {
		return Color{}, fmt.Errorf("illegal color value")
	}
	delta := float64(high-low) + 1.0
	return Color{
		Red:   float64(r-low) / delta,
		Green: float64(g-low) / delta,
		Blue:  float64(b-low) / delta,
	}, nil
}

// ParseColorHex parses a 3- or 6-digit hex color ("f80" or "ff8800").
func ParseColorHex(s string) (Color, error) {
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil || v < 0 {
		return Color{}, fmt.Errorf("illegal color value")
	}
	switch len(s) {
	case 3:
		return Color{
			Red:   float64((v&0xf00)>>8) / 16.0,
			Green: float64((v&0x0f0)>>4) / 16.0,
			Blue:  float64((v&0x00f)>>0) / 16.0,
		}, nil
	case 6:
		return Color{
			Red:   float64((v&0xff0000)>>16) / 256.0,
			Green: float64((v&0x00ff00)>>8) / 256.0,
			Blue:  float64((v&0x0000ff)>>0) / 256.0,
		}, nil
	default:
		return Color{}, fmt.Errorf("illegal color value")
	}
}

// Convert scales the color into [0,range-1] per channel, e.g. range=256 for
// 8-bit truecolor output.
func (c Color) Convert(rng int) (r, g, b int) {
	return int(c.Red * float64(rng)), int(c.Green * float64(rng)), int(c.Blue * float64(rng))
}

// ConvertGray returns the shared channel value if the color is gray under the
// given range, or -1 if it isn't; used to pick the ANSI grayscale ramp.
func (c Color) ConvertGray(rng int) int {
	r, g, b := c.Convert(rng)
	if r == g && g == b {
		return r
	}
	return -1
}

// UseWhiteText reports whether white (rather than black) foreground text is
// legible against this color as a background, by perceived luminance.
func (c Color) UseWhiteText() bool {
	return c.Red*0.299+c.Green*0.587+c.Blue*0.114 < 0.5
}

func (c Color) Equal(o Color) bool {
	return c.Red == o.Red && c.Green == o.Green && c.Blue == o.Blue
}
