package util

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders v with up to 17 significant digits, enough for every
// float64 to round-trip; it is not the shortest such form (0.1 renders as
// 0.10000000000000001). Exponents use an upper-case E with at least two
// digits ("1.5E-05") to match the chart files produced by the reference tools.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', 17, 64)
	switch s {
	case "NaN":
		return "NaN"
	case "+Inf":
		return "Infinity"
	case "-Inf":
		return "-Infinity"
	}
	return strings.Replace(s, "e", "E", 1)
}

// FormatTrimmed renders v with at most eight decimals and no trailing zeros.
func FormatTrimmed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatFloat(v)
	}
	s := strconv.FormatFloat(v, 'f', 8, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// RoundMs rounds a millisecond time to the nearest integer, ties to even.
func RoundMs(v float64) int64 {
	return int64(math.RoundToEven(v))
}

// ParseFloat parses a trimmed decimal field.
func ParseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		// ParseFloat reports overflow as an error but still returns ±Inf,
		// which is how the chart format spells huge values.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return v, true
		}
		return 0, false
	}
	return v, true
}

// ParseInt parses a trimmed integer field.
func ParseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}
