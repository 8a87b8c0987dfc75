package numeric

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Round rounds x to places decimals, ties to even
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).RoundBank(places).Float64()
	return f
}

// FormatRounded rounds x to places decimals and prints it like a float:
// trailing zeros trimmed, but always with a decimal point ("19750.0", "-1.25").
func FormatRounded(x float64, places int32) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	s := decimal.NewFromFloat(x).RoundBank(places).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatWhole rounds x to an integer, ties to even, and prints it without a decimal point
func FormatWhole(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return decimal.NewFromFloat(x).RoundBank(0).String()
}

// FormatNumber prints x in its shortest form ("19", "19.35", "-0.2")
func FormatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
