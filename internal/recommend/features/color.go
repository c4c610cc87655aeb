// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package features

import (
	"math"
	"strconv"
	"strings"
)

// DefaultHex is used for items without a parseable primary color.
const DefaultHex = "#808080"

// NeutralSaturation is the saturation below which a color counts as neutral
// for harmony purposes.
const NeutralSaturation = 0.15

// RGB is a color with channels in [0,255].
type RGB struct {
	R, G, B uint8
}

// HSL is a color with H in [0,360) and S, L in [0,1].
type HSL struct {
	H, S, L float64
}

// ParseHex parses "#rrggbb", "rrggbb" or the three-digit shorthand.
func ParseHex(s string) (RGB, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// ParseHexOrGray parses s, falling back to DefaultHex.
func ParseHexOrGray(s string) RGB {
	if c, ok := ParseHex(s); ok {
		return c
	}
	c, _ := ParseHex(DefaultHex)
	return c
}

// Normalized returns the channels scaled to [0,1].
func (c RGB) Normalized() (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// HSL converts the color to hue/saturation/lightness.
func (c RGB) HSL() HSL {
	r, g, b := c.Normalized()
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l := (maxC + minC) / 2

	if maxC == minC {
		return HSL{H: 0, S: 0, L: l}
	}

	d := maxC - minC
	var s float64
	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}

	var h float64
	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	if h >= 360 {
		h -= 360
	}

	return HSL{H: h, S: s, L: l}
}

// HexToHSL parses s and converts it, falling back to gray.
func HexToHSL(s string) HSL {
	return ParseHexOrGray(s).HSL()
}

// HueDistance is the circular distance between two hues in degrees, in [0,180].
func HueDistance(h1, h2 float64) float64 {
	d := math.Abs(h1 - h2)
	d = math.Mod(d, 360)
	return math.Min(d, 360-d)
}

// IsNeutral reports whether a color harmonizes with anything.
func IsNeutral(c HSL) bool {
	return c.S < NeutralSaturation
}

// PairHarmony scores how well two colors go together.
//
//	neutral (either side)       0.8
//	d <= 15                     0.9
//	15 < d <= 30                0.85
//	150 <= d <= 180             0.9
//	135 <= d < 150              0.8
//	110 <= d <= 130             0.75
//	60 <= d < 110               0.3
//	anything else               0.5
func PairHarmony(a, b HSL) float64 {
	if IsNeutral(a) || IsNeutral(b) {
		return 0.8
	}
	d := HueDistance(a.H, b.H)
	switch {
	case d <= 15:
		return 0.9
	case d <= 30:
		return 0.85
	case d >= 150:
		return 0.9
	case d >= 135:
		return 0.8
	case d >= 110 && d <= 130:
		return 0.75
	case d >= 60 && d < 110:
		return 0.3
	default:
		return 0.5
	}
}
