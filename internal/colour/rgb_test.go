package colour

import (
	"errors"
	"image/color"
	"math"
	"strings"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		code    string
		want    RGB
		wantErr bool
	}{
		{code: "C7D7C9", want: RGB{R: 199, G: 215, B: 201}},
		{code: "#b2bba0", want: RGB{R: 178, G: 187, B: 160}},
		{code: " CCCAB9 ", want: RGB{R: 204, G: 202, B: 185}},
		{code: "FFF", wantErr: true},
		{code: "GGGGGG", wantErr: true},
		{code: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParseHex(tt.code)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("ParseHex(%q) error = %v, want ErrInvalidInput", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHex(%q) error = %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := RGB{R: 0xB0, G: 0xB4, B: 0x96}
	if c.Hex() != "B0B496" {
		t.Errorf("Hex() = %q, want B0B496", c.Hex())
	}
	back, err := ParseHex(c.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if back != c {
		t.Errorf("ParseHex(Hex()) = %v, want %v", back, c)
	}
}

func TestDistance(t *testing.T) {
	a := RGB{R: 0, G: 0, B: 0}
	b := RGB{R: 3, G: 4, B: 0}
	if got := Distance(a, b); got != 5 {
		t.Errorf("Distance() = %v, want 5", got)
	}
	if got := Distance(b, a); got != 5 {
		t.Errorf("Distance() not symmetric: %v", got)
	}
	if got := Distance(b, b); got != 0 {
		t.Errorf("Distance(x, x) = %v, want 0", got)
	}
}

func TestDistanceLab(t *testing.T) {
	white := RGB{R: 255, G: 255, B: 255}
	black := RGB{}
	if got := DistanceLab(white, white); got != 0 {
		t.Errorf("DistanceLab(x, x) = %v, want 0", got)
	}
	// L* spans 0..100 between black and white.
	if got := DistanceLab(white, black); math.Abs(got-100) > 0.5 {
		t.Errorf("DistanceLab(white, black) = %v, want ~100", got)
	}
}

func TestToRGBUnpremultiplies(t *testing.T) {
	// Premultiplied 50% alpha red.
	got := ToRGB(color.RGBA{R: 128, G: 0, B: 0, A: 128})
	if got.R != 255 || got.G != 0 || got.B != 0 {
		t.Errorf("ToRGB() = %v, want rgb(255, 0, 0)", got)
	}
}

func TestSwatch(t *testing.T) {
	s := Swatch(RGB{R: 1, G: 2, B: 3}, 4)
	if !strings.HasPrefix(s, "\033[48;2;1;2;3m") {
		t.Errorf("Swatch() missing background escape: %q", s)
	}
	if !strings.HasSuffix(s, "    "+ansiReset) {
		t.Errorf("Swatch() wrong block width: %q", s)
	}
	if got := FormatWithSwatch(RGB{R: 255}, 0); !strings.Contains(got, "#FF0000 rgb(255, 0, 0)") {
		t.Errorf("FormatWithSwatch() = %q", got)
	}
}
