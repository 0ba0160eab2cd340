package profile

import (
	"strings"
)

// Strength names a transformation aggressiveness profile.
type Strength string

const (
	StrengthLow    Strength = "low"
	StrengthMedium Strength = "medium"
	StrengthHigh   Strength = "high"
)

// Range is an inclusive (Min, Max) float interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Ranges bundles the six parameter intervals of one strength profile.
type Ranges struct {
	Resize  Range // resolution scale factor
	Speed   Range // playback speed factor
	Rotate  Range // rotation in degrees
	Density Range // color wash density
	Opacity Range // overlay element opacity
	Bitrate Range // target bitrate multiplier
}

var profiles = map[Strength]Ranges{
	StrengthLow: {
		Resize:  Range{0.95, 1.05},
		Speed:   Range{0.98, 1.02},
		Rotate:  Range{-0.5, 0.5},
		Density: Range{0.4, 0.6},
		Opacity: Range{0.06, 0.12},
		Bitrate: Range{0.9, 1.1},
	},
	StrengthMedium: {
		Resize:  Range{0.7, 1.3},
		Speed:   Range{0.92, 1.08},
		Rotate:  Range{-2.0, 2.0},
		Density: Range{0.5, 0.7},
		Opacity: Range{0.10, 0.18},
		Bitrate: Range{0.8, 1.2},
	},
	StrengthHigh: {
		Resize:  Range{0.6, 1.4},
		Speed:   Range{0.9, 1.1},
		Rotate:  Range{-4.0, 4.0},
		Density: Range{0.6, 0.8},
		Opacity: Range{0.15, 0.25},
		Bitrate: Range{0.7, 1.3},
	},
}

// ParseStrength normalizes a strength name. Unrecognized values fall back to
// medium so a bad selection degrades rather than fails.
func ParseStrength(value string) Strength {
	switch Strength(strings.ToLower(strings.TrimSpace(value))) {
	case StrengthLow:
		return StrengthLow
	case StrengthHigh:
		return StrengthHigh
	default:
		return StrengthMedium
	}
}

// RangesFor returns the parameter ranges of the named profile.
func RangesFor(strength Strength) Ranges {
	ranges, ok := profiles[strength]
	if !ok {
		return profiles[StrengthMedium]
	}
	return ranges
}
