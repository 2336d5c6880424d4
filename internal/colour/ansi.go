package colour

import (
	"fmt"
	"strings"
)

// ANSI escape codes for 24-bit terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 8
)

// Swatch returns a solid block of the given colour, width cells wide, using
// ANSI 24-bit background escapes.
func Swatch(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	bg := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	return bg + strings.Repeat(" ", width) + ansiReset
}

// FormatWithSwatch formats a colour as its swatch followed by hex code and RGB triple.
func FormatWithSwatch(c RGB, width int) string {
	return fmt.Sprintf("%s #%s %s", Swatch(c, width), c.Hex(), c.String())
}

// CSS returns the colour as a CSS rgb() value, for HTML swatches.
func (rgb RGB) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}
