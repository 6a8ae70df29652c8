// Package effect provides the colour effects applied to page content for
// visual-impairment accessibility, together with the overlay palettes
// rail mode uses so its highlights complement the filtered content.
//
// Effects are CPU pixel filters over RGBA buffers. Each effect mixes its
// full-strength result with the original colour by an intensity in
// [0, 1]; intensity 0 is the identity.
package effect

import (
	"image/color"
	"math"
)

// Effect selects the colour filter applied to page content.
type Effect int

const (
	None Effect = iota
	HighContrast
	HighVisibility
	Amber
	Invert
)

// String returns the effect's display name.
func (e Effect) String() string {
	switch e {
	case HighContrast:
		return "High Contrast"
	case HighVisibility:
		return "High Visibility"
	case Amber:
		return "Amber Filter"
	case Invert:
		return "Invert"
	default:
		return "None"
	}
}

// Name returns the effect's configuration key.
func (e Effect) Name() string {
	switch e {
	case HighContrast:
		return "high_contrast"
	case HighVisibility:
		return "high_visibility"
	case Amber:
		return "amber"
	case Invert:
		return "invert"
	default:
		return "none"
	}
}

// Parse resolves a configuration key to an effect. Unknown names report
// false.
func Parse(name string) (Effect, bool) {
	switch name {
	case "", "none":
		return None, true
	case "high_contrast":
		return HighContrast, true
	case "high_visibility":
		return HighVisibility, true
	case "amber":
		return Amber, true
	case "invert":
		return Invert, true
	}
	return None, false
}

// Descriptions lists all effects with a short description each, in menu
// order.
var Descriptions = []struct {
	Effect      Effect
	Description string
}{
	{None, "No colour effect"},
	{HighContrast, "White on black for glare reduction"},
	{HighVisibility, "Yellow on black for maximum legibility"},
	{Amber, "Warm amber tint for haze reduction"},
	{Invert, "Invert colours for eye strain relief"},
}

// Apply runs the effect in place over an RGBA byte buffer (4 bytes per
// pixel, alpha untouched), mixing with the original by intensity.
func (e Effect) Apply(pix []byte, intensity float64) {
	if e == None || intensity <= 0 {
		return
	}
	if intensity > 1 {
		intensity = 1
	}

	for i := 0; i+3 < len(pix); i += 4 {
		r := float64(pix[i]) / 255
		g := float64(pix[i+1]) / 255
		b := float64(pix[i+2]) / 255

		var er, eg, eb float64
		switch e {
		case HighContrast:
			lum := 0.299*r + 0.587*g + 0.114*b
			inv := 1 - lum
			var c float64
			if inv < 0.5 {
				c = 2 * inv * inv
			} else {
				c = 1 - 2*(1-inv)*(1-inv)
			}
			er, eg, eb = c, c, c
		case HighVisibility:
			lum := 0.299*r + 0.587*g + 0.114*b
			inv := 1 - lum
			er, eg, eb = inv, inv, 0
		case Amber:
			er = math.Min(r*1.15, 1)
			eg = math.Min(g*1.05, 1)
			eb = math.Min(b*0.75, 1)
		case Invert:
			er, eg, eb = 1-r, 1-g, 1-b
		}

		pix[i] = mix(r, er, intensity)
		pix[i+1] = mix(g, eg, intensity)
		pix[i+2] = mix(b, eb, intensity)
	}
}

func mix(orig, eff, intensity float64) byte {
	v := orig + (eff-orig)*intensity
	return byte(math.Round(v * 255))
}

// OverlayPalette holds the colours rail-mode overlays draw with,
// adapted per effect so they complement rather than fight the filtered
// content.
type OverlayPalette struct {
	// Dim is the semi-transparent fill over the whole page that
	// de-emphasises non-active blocks.
	Dim color.NRGBA

	// BlockReveal, when non-nil, is drawn additively over the active
	// block to lift it out of the dim layer. Nil means outline-only.
	BlockReveal *color.NRGBA

	// BlockOutline strokes the active block's bounding box.
	BlockOutline      color.NRGBA
	BlockOutlineWidth float64

	// LineHighlight fills the current-line band.
	LineHighlight color.NRGBA
}

// Palette returns the overlay palette tuned for this effect.
func (e Effect) Palette() OverlayPalette {
	switch e {
	case HighContrast:
		return OverlayPalette{
			Dim:               color.NRGBA{60, 60, 60, 100},
			BlockOutline:      color.NRGBA{0, 255, 255, 200},
			BlockOutlineWidth: 2.5,
			LineHighlight:     color.NRGBA{0, 255, 255, 50},
		}
	case HighVisibility:
		return OverlayPalette{
			Dim:               color.NRGBA{40, 40, 0, 100},
			BlockOutline:      color.NRGBA{255, 230, 0, 200},
			BlockOutlineWidth: 2.5,
			LineHighlight:     color.NRGBA{255, 230, 0, 45},
		}
	case Amber:
		return OverlayPalette{
			Dim:               color.NRGBA{20, 10, 0, 110},
			BlockReveal:       &color.NRGBA{255, 220, 160, 100},
			BlockOutline:      color.NRGBA{255, 180, 60, 120},
			BlockOutlineWidth: 1.5,
			LineHighlight:     color.NRGBA{255, 180, 60, 35},
		}
	case Invert:
		return OverlayPalette{
			Dim:               color.NRGBA{60, 60, 60, 100},
			BlockOutline:      color.NRGBA{0, 220, 120, 180},
			BlockOutlineWidth: 2.0,
			LineHighlight:     color.NRGBA{0, 220, 120, 40},
		}
	default:
		return OverlayPalette{
			Dim:               color.NRGBA{0, 0, 0, 120},
			BlockReveal:       &color.NRGBA{255, 255, 255, 120},
			BlockOutline:      color.NRGBA{66, 133, 244, 80},
			BlockOutlineWidth: 1.5,
			LineHighlight:     color.NRGBA{66, 133, 244, 40},
		}
	}
}
