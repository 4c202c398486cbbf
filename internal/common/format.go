package common

import (
	"fmt"
	"math"
	"strings"
)

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FormatAmount renders a currency amount with thousands separators and no decimals.
func FormatAmount(v float64) string {
	neg := v < 0
	s := fmt.Sprintf("%.0f", math.Abs(v))

	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}

// FormatPercent renders a percentage value with two decimals.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatFloat renders a float with four decimals for structured log fields.
func FormatFloat(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
