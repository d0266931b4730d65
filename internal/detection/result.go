// Package detection defines the classification result types shared by the
// local and remote classification paths.
package detection

import (
	"slices"
	"time"
)

// MaxResults is the maximum number of ranked results a classification returns.
const MaxResults = 5

// Result is a single ranked species classification.
type Result struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// SortDescending orders results by confidence, highest first. The sort is
// stable so equal confidences keep their input order, which keeps rankings
// reproducible for identical inputs.
func SortDescending(results []Result) {
	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		default:
			return 0
		}
	})
}

// TrimToMax truncates results to at most MaxResults entries.
func TrimToMax(results []Result) []Result {
	if len(results) > MaxResults {
		return results[:MaxResults]
	}
	return results
}
