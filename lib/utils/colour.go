package utils

import (
	"fmt"
	"image/color"
	"regexp"
)

var colourPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{8}$`)

func ColourValidate(c string) bool {
	return colourPattern.MatchString(c)
}

// ColourParse reads a #RRGGBBAA string.
func ColourParse(s string) (c color.RGBA, err error) {
	if !ColourValidate(s) {
		return c, fmt.Errorf("invalid colour %q, expected #RRGGBBAA", s)
	}
	_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	return
}

// ColourFloats returns the components of c scaled to [0, 1].
func ColourFloats(c color.RGBA) (r, g, b, a float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255
}
