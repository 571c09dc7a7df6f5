package markup

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Length unit conversion tables. Points are the common unit when comparing
// list-paragraph margins; pixels when normalizing table column widths.
var (
	pointsPerUnit = map[string]float64{
		"in": 72,
		"cm": 28.3465,
		"mm": 2.83465,
		"pc": 12,
		"px": 0.75,
		"pt": 1,
	}
	pixelsPerUnit = map[string]float64{
		"pt": 1.3333,
		"in": 96,
		"cm": 37.795,
		"mm": 3.7795,
		"pc": 16,
		"px": 1,
	}
)

// Word exports write fractional lengths without a leading zero (".5in").
var lengthPattern = regexp.MustCompile(`^(-?(?:\d+(?:\.\d+)?|\.\d+))\s*([a-z%]*)$`)

// ParseLength splits a CSS length into magnitude and unit. The unit may be
// empty. Reports false when the value is not a length.
func ParseLength(s string) (float64, string, bool) {
	m := lengthPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	return v, m[2], true
}

// Points converts a CSS length to points. Unit-less magnitudes are taken as
// points already. Reports false for unparseable values or unknown units.
func Points(s string) (float64, bool) {
	v, unit, ok := ParseLength(s)
	if !ok {
		return 0, false
	}
	if unit == "" {
		return v, true
	}
	f, ok := pointsPerUnit[unit]
	if !ok {
		return 0, false
	}
	return v * f, true
}

// Pixels converts an absolute CSS length to a rounded pixel magnitude.
// Unit-less magnitudes are taken as pixels. Reports false for percentages,
// unparseable values, and unknown units.
func Pixels(s string) (int, bool) {
	v, unit, ok := ParseLength(s)
	if !ok || unit == "%" {
		return 0, false
	}
	if unit == "" {
		return int(math.Round(v)), true
	}
	f, ok := pixelsPerUnit[unit]
	if !ok {
		return 0, false
	}
	return int(math.Round(v * f)), true
}
