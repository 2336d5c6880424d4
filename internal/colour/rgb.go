// Package colour provides colour types and average-colour extraction for test strip images.
package colour

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB represents a colour as 8-bit red, green and blue channels.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as an upper-case hex code without a leading '#' (e.g., "C7D7C9").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", rgb.R, rgb.G, rgb.B)
}

// RGBA implements color.Color so an RGB can be handed to image/color helpers.
func (rgb RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 0xff}.RGBA()
}

// ToRGB converts a color.Color to RGB, discarding alpha.
// The colour is un-premultiplied first so translucent pixels keep their stored channel values.
func ToRGB(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// ParseHex parses a 6-hex-digit colour code, with or without a leading '#'.
func ParseHex(code string) (RGB, error) {
	trimmed := strings.TrimSpace(code)
	if !strings.HasPrefix(trimmed, "#") {
		trimmed = "#" + trimmed
	}
	if len(trimmed) != 7 {
		return RGB{}, fmt.Errorf("%w: hex code %q must have 6 digits", ErrInvalidInput, code)
	}

	c, err := colorful.Hex(trimmed)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: hex code %q: %v", ErrInvalidInput, code, err)
	}

	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// Distance returns the Euclidean distance between two colours in RGB space.
func Distance(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// DistanceLab returns the CIE76 distance between two colours in L*a*b* space,
// scaled so that 1.0 is roughly one just-noticeable difference.
func DistanceLab(a, b RGB) float64 {
	ca, _ := colorful.MakeColor(a)
	cb, _ := colorful.MakeColor(b)
	return ca.DistanceLab(cb) * 100
}
