package effect

import "testing"

func TestParseRoundTrip(t *testing.T) {
	for _, e := range []Effect{None, HighContrast, HighVisibility, Amber, Invert} {
		got, ok := Parse(e.Name())
		if !ok || got != e {
			t.Errorf("Parse(%q) = %v,%v, want %v", e.Name(), got, ok, e)
		}
	}

	if _, ok := Parse("sepia"); ok {
		t.Error("Expected unknown effect name to be rejected")
	}
	if e, ok := Parse(""); !ok || e != None {
		t.Error("Expected empty name to parse as None")
	}
}

func rgba(r, g, b byte) []byte {
	return []byte{r, g, b, 255}
}

func TestApplyNoneIsIdentity(t *testing.T) {
	pix := rgba(12, 200, 99)
	None.Apply(pix, 1)
	if pix[0] != 12 || pix[1] != 200 || pix[2] != 99 {
		t.Errorf("None changed pixels: %v", pix)
	}
}

func TestApplyZeroIntensityIsIdentity(t *testing.T) {
	pix := rgba(12, 200, 99)
	Invert.Apply(pix, 0)
	if pix[0] != 12 || pix[1] != 200 || pix[2] != 99 {
		t.Errorf("Zero intensity changed pixels: %v", pix)
	}
}

func TestInvertFullIntensity(t *testing.T) {
	pix := rgba(0, 255, 100)
	Invert.Apply(pix, 1)
	if pix[0] != 255 || pix[1] != 0 || pix[2] != 155 {
		t.Errorf("Unexpected inverted pixel: %v", pix)
	}
	if pix[3] != 255 {
		t.Error("Alpha must not change")
	}
}

func TestInvertHalfIntensityMixes(t *testing.T) {
	pix := rgba(0, 0, 0)
	Invert.Apply(pix, 0.5)
	// Halfway between black and white.
	for i := 0; i < 3; i++ {
		if pix[i] < 127 || pix[i] > 128 {
			t.Errorf("Expected ~128 at channel %d, got %d", i, pix[i])
		}
	}
}

func TestHighContrastMapsBlackToWhite(t *testing.T) {
	// Black text: lum 0, inv 1, curve 1 -> white.
	pix := rgba(0, 0, 0)
	HighContrast.Apply(pix, 1)
	if pix[0] != 255 || pix[1] != 255 || pix[2] != 255 {
		t.Errorf("Expected white, got %v", pix)
	}

	// White paper: lum 1, inv 0 -> black.
	pix = rgba(255, 255, 255)
	HighContrast.Apply(pix, 1)
	if pix[0] != 0 || pix[1] != 0 || pix[2] != 0 {
		t.Errorf("Expected black, got %v", pix)
	}
}

func TestHighVisibilityYellowOnBlack(t *testing.T) {
	// Black text becomes yellow: (inv, inv, 0) with inv 1.
	pix := rgba(0, 0, 0)
	HighVisibility.Apply(pix, 1)
	if pix[0] != 255 || pix[1] != 255 || pix[2] != 0 {
		t.Errorf("Expected yellow, got %v", pix)
	}
}

func TestAmberClampsChannels(t *testing.T) {
	pix := rgba(255, 255, 255)
	Amber.Apply(pix, 1)
	// 1.15 and 1.05 clamp to 1; blue scales by 0.75.
	if pix[0] != 255 || pix[1] != 255 {
		t.Errorf("Expected clamped warm channels, got %v", pix)
	}
	if pix[2] != 191 {
		t.Errorf("Expected blue 191, got %d", pix[2])
	}
}

func TestPaletteVariesByEffect(t *testing.T) {
	if None.Palette().BlockReveal == nil {
		t.Error("Expected None palette to include a block reveal")
	}
	if HighContrast.Palette().BlockReveal != nil {
		t.Error("Expected HighContrast palette to be outline-only")
	}
	if HighContrast.Palette().BlockOutlineWidth <= None.Palette().BlockOutlineWidth {
		t.Error("Expected heavier outline for high-contrast palette")
	}
}
