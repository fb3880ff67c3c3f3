package spectral

import (
	"fmt"

	"github.com/RyanBlaney/sonido-svm/algorithms/common"
	"gonum.org/v1/gonum/floats"
)

// SpectralCentroid computes the spectral centroid (center of mass) of a spectrum
type SpectralCentroid struct{}

// NewSpectralCentroid creates a new spectral centroid calculator
func NewSpectralCentroid() *SpectralCentroid {
	return &SpectralCentroid{}
}

// Compute returns sum(f*m)/sum(m). A spectrum with zero total magnitude
// yields ErrDegenerateSpectrum instead of NaN.
func (sc *SpectralCentroid) Compute(frequencies, magnitudes []float64) (float64, error) {
	if len(magnitudes) == 0 {
		return 0, common.ErrEmptyInput
	}
	if len(frequencies) != len(magnitudes) {
		return 0, fmt.Errorf("frequency/magnitude length mismatch: %d != %d", len(frequencies), len(magnitudes))
	}

	denominator := floats.Sum(magnitudes)
	if denominator == 0 {
		return 0, common.ErrDegenerateSpectrum
	}

	return floats.Dot(frequencies, magnitudes) / denominator, nil
}

// ComputeSpectrum is Compute over a Spectrum
func (sc *SpectralCentroid) ComputeSpectrum(s *Spectrum) (float64, error) {
	if s == nil {
		return 0, common.ErrEmptyInput
	}
	return sc.Compute(s.Frequencies, s.Magnitudes)
}
