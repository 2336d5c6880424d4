package colour

import (
	"fmt"
	"image"
	"image/color"
)

// PixelGrid is a height × width × channels array of 8-bit samples.
// Every pixel carries either 3 (RGB) or 4 (RGBA) channels.
type PixelGrid [][][]uint8

// Dimensions returns the height, width and channel count of the grid.
// It reports only the shape of the first row and pixel; use Validate for consistency checks.
func (g PixelGrid) Dimensions() (height, width, channels int) {
	height = len(g)
	if height == 0 {
		return 0, 0, 0
	}
	width = len(g[0])
	if width == 0 {
		return height, 0, 0
	}
	return height, width, len(g[0][0])
}

// Validate checks that the grid is non-empty, rectangular and uses a single
// channel count of 3 or 4.
func (g PixelGrid) Validate() error {
	height, width, channels := g.Dimensions()
	if height == 0 || width == 0 {
		return fmt.Errorf("%w: pixel grid is empty", ErrInvalidInput)
	}
	if channels < 3 || channels > 4 {
		return fmt.Errorf("%w: expected 3 or 4 channels per pixel, got %d", ErrInvalidInput, channels)
	}

	for y, row := range g {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d pixels, expected %d", ErrInvalidInput, y, len(row), width)
		}
		for x, px := range row {
			if len(px) != channels {
				return fmt.Errorf("%w: pixel (%d,%d) has %d channels, expected %d", ErrInvalidInput, x, y, len(px), channels)
			}
		}
	}
	return nil
}

// ExtractAverageColour returns the per-channel arithmetic mean of the grid.
// A fourth (alpha) channel is ignored. Means are truncated towards zero.
func ExtractAverageColour(pixels PixelGrid) (RGB, error) {
	if err := pixels.Validate(); err != nil {
		return RGB{}, err
	}

	// Integer sums keep the result independent of traversal order.
	var r, g, b uint64
	var n uint64
	for _, row := range pixels {
		for _, px := range row {
			r += uint64(px[0])
			g += uint64(px[1])
			b += uint64(px[2])
			n++
		}
	}

	return RGB{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n)}, nil
}

// PixelGridFromImage converts a decoded image into a 4-channel grid of
// non-premultiplied RGBA samples, walking the image's bounds row by row.
// The grid costs a slice per pixel; AverageColour does not build one.
func PixelGridFromImage(img image.Image) PixelGrid {
	bounds := img.Bounds()
	grid := make(PixelGrid, 0, bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := make([][]uint8, 0, bounds.Dx())
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			n := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			row = append(row, []uint8{n.R, n.G, n.B, n.A})
		}
		grid = append(grid, row)
	}
	return grid
}

// AverageColour computes the average colour of a decoded image. The result is
// the same as ExtractAverageColour(PixelGridFromImage(img)), summed in place.
func AverageColour(img image.Image) (RGB, error) {
	if img == nil {
		return RGB{}, fmt.Errorf("%w: image is nil", ErrInvalidInput)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return RGB{}, fmt.Errorf("%w: pixel grid is empty", ErrInvalidInput)
	}

	var s channelSums
	switch src := img.(type) {
	case *image.NRGBA:
		s.addNRGBA(src, bounds)
	case *image.RGBA:
		s.addRGBA(src, bounds)
	case *image.YCbCr:
		s.addYCbCr(src, bounds)
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				n := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				s.add(n.R, n.G, n.B)
			}
		}
	}
	return s.mean(), nil
}

type channelSums struct {
	r, g, b, n uint64
}

func (s *channelSums) add(r, g, b uint8) {
	s.r += uint64(r)
	s.g += uint64(g)
	s.b += uint64(b)
	s.n++
}

func (s *channelSums) mean() RGB {
	return RGB{R: uint8(s.r / s.n), G: uint8(s.g / s.n), B: uint8(s.b / s.n)}
}

func (s *channelSums) addNRGBA(img *image.NRGBA, bounds image.Rectangle) {
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		i := img.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			s.add(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
			i += 4
		}
	}
}

// addRGBA un-premultiplies each pixel exactly as color.NRGBAModel does.
func (s *channelSums) addRGBA(img *image.RGBA, bounds image.Rectangle) {
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		i := img.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p := img.Pix[i : i+4 : i+4]
			s.add(unpremultiply(widen(p[0]), widen(p[1]), widen(p[2]), widen(p[3])))
			i += 4
		}
	}
}

func (s *channelSums) addYCbCr(img *image.YCbCr, bounds image.Rectangle) {
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			yi := img.YOffset(x, y)
			ci := img.COffset(x, y)
			r, g, b, _ := color.YCbCr{Y: img.Y[yi], Cb: img.Cb[ci], Cr: img.Cr[ci]}.RGBA()
			s.add(uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
}

// widen scales an 8-bit sample to 16 bits the way color.RGBA.RGBA does.
func widen(v uint8) uint32 {
	w := uint32(v)
	return w | w<<8
}

func unpremultiply(r, g, b, a uint32) (uint8, uint8, uint8) {
	switch a {
	case 0xffff:
		return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
	case 0:
		return 0, 0, 0
	}
	r = (r * 0xffff) / a
	g = (g * 0xffff) / a
	b = (b * 0xffff) / a
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
