package temporal

import (
	"math"

	"github.com/RyanBlaney/sonido-svm/algorithms/common"
	"gonum.org/v1/gonum/floats"
)

// Energy computes energy-based temporal features
type Energy struct{}

// NewEnergy creates a new energy calculator
func NewEnergy() *Energy {
	return &Energy{}
}

// MeanSquare returns the mean of squared samples over the whole signal.
// It is zero only for an all-zero signal.
func (e *Energy) MeanSquare(signal []float64) (float64, error) {
	if len(signal) == 0 {
		return 0, common.ErrEmptyInput
	}

	return floats.Dot(signal, signal) / float64(len(signal)), nil
}

// RMS returns the root of MeanSquare
func (e *Energy) RMS(signal []float64) (float64, error) {
	ms, err := e.MeanSquare(signal)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(ms), nil
}

// IsSilent reports whether every sample is exactly zero
func (e *Energy) IsSilent(signal []float64) bool {
	for _, v := range signal {
		if v != 0 {
			return false
		}
	}
	return true
}
