package aggregator

import "math"

// ComputeRate returns numerator as a percentage of denominator, or 0 when the denominator is 0.
// The value is not rounded.
func ComputeRate(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator * 100 / denominator
}

// ComputeGrowth returns the period-over-period change in percent, or 0 when the previous period is 0.
func ComputeGrowth(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) * 100 / previous
}

// Round1 rounds to one decimal place. Use it only when rendering.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
