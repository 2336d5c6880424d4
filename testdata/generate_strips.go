// Strip image generator: writes one noisy PNG per reference colour so the
// classifier can be tried end to end, e.g.
//
//	go run ./testdata/generate_strips.go
//	stripscan classify -t 30 testdata/strips/01-C7D7C9.png
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/jmylchreest/stripscan/internal/classify"
)

const (
	width  = 120
	height = 40
	jitter = 6
)

func main() {
	outDir := filepath.Join("testdata", "strips")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Fixed seed keeps the images stable between runs.
	rng := rand.New(rand.NewPCG(1, 2))

	for i, ref := range classify.DefaultCopperTable().Entries() {
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetNRGBA(x, y, color.NRGBA{
					R: wobble(rng, ref.Colour.R),
					G: wobble(rng, ref.Colour.G),
					B: wobble(rng, ref.Colour.B),
					A: 255,
				})
			}
		}

		path := filepath.Join(outDir, fmt.Sprintf("%02d-%s.png", i+1, ref.Colour.Hex()))
		if err := writePNG(path, img); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("wrote", path)
	}
}

// wobble adds symmetric noise of up to ±jitter, clamped to a byte.
func wobble(rng *rand.Rand, v uint8) uint8 {
	n := int(v) + rng.IntN(2*jitter+1) - jitter
	return uint8(max(0, min(255, n)))
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path) // #nosec G304 - Fixed output location
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
