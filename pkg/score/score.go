// Package score holds helpers shared by the quality scorers.
package score

import "math"

// Round rounds v to the given number of decimal places. Every score and
// duration in reported results is rounded this way so JSON output stays
// stable across runs.
func Round(v float64, places int) float64 {
	k := math.Pow(10, float64(places))
	return math.Round(v*k) / k
}
