package dataset

import (
	"github.com/RyanBlaney/sonido-svm/classifier"
	"github.com/RyanBlaney/sonido-svm/features"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FeatureStats describes one feature over a set of records
type FeatureStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"` // sample standard deviation, 0 for a single record
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ClassSummary holds per-feature statistics for one class, in features.Names order
type ClassSummary struct {
	Class    classifier.Class `json:"class"`
	Count    int              `json:"count"`
	Features []FeatureStats   `json:"features"`
}

// Summarize groups records by class. Classes without records are omitted;
// Music comes before Speech.
func Summarize(records []Record) []ClassSummary {
	var out []ClassSummary
	for _, class := range []classifier.Class{classifier.Music, classifier.Speech} {
		columns := make([][]float64, len(features.Names))
		for _, r := range records {
			if r.Class != class {
				continue
			}
			for i, v := range r.Features.Values() {
				columns[i] = append(columns[i], v)
			}
		}
		if len(columns[0]) == 0 {
			continue
		}

		summary := ClassSummary{
			Class:    class,
			Count:    len(columns[0]),
			Features: make([]FeatureStats, len(columns)),
		}
		for i, col := range columns {
			mean, std := stat.MeanStdDev(col, nil)
			if len(col) < 2 {
				std = 0
			}
			summary.Features[i] = FeatureStats{
				Mean:   mean,
				StdDev: std,
				Min:    floats.Min(col),
				Max:    floats.Max(col),
			}
		}
		out = append(out, summary)
	}
	return out
}
