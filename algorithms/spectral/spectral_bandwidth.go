package spectral

import (
	"fmt"

	"github.com/RyanBlaney/sonido-svm/algorithms/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SpectralBandwidth measures how far apart the strong bins of a spectrum are.
// A bin is strong when its magnitude is strictly above the spectrum's mean
// magnitude; the bandwidth is the spread (max - min) of their frequencies.
type SpectralBandwidth struct{}

// NewSpectralBandwidth creates a new spectral bandwidth calculator
func NewSpectralBandwidth() *SpectralBandwidth {
	return &SpectralBandwidth{}
}

// AboveMean returns the frequencies of bins whose magnitude exceeds the mean
func (sb *SpectralBandwidth) AboveMean(frequencies, magnitudes []float64) []float64 {
	if len(magnitudes) == 0 {
		return nil
	}

	threshold := stat.Mean(magnitudes, nil)

	var selected []float64
	for i, mag := range magnitudes {
		if mag > threshold {
			selected = append(selected, frequencies[i])
		}
	}
	return selected
}

// Compute returns max-min of the above-mean frequencies. A flat spectrum with
// energy has no spread and gives 0; an all-zero spectrum returns
// ErrDegenerateSpectrum.
func (sb *SpectralBandwidth) Compute(frequencies, magnitudes []float64) (float64, error) {
	if len(magnitudes) == 0 {
		return 0, common.ErrEmptyInput
	}
	if len(frequencies) != len(magnitudes) {
		return 0, fmt.Errorf("frequency/magnitude length mismatch: %d != %d", len(frequencies), len(magnitudes))
	}

	selected := sb.AboveMean(frequencies, magnitudes)
	if len(selected) == 0 {
		if floats.Sum(magnitudes) == 0 {
			return 0, common.ErrDegenerateSpectrum
		}
		return 0, nil
	}

	return floats.Max(selected) - floats.Min(selected), nil
}

// ComputeAboveMean is Compute over a Spectrum
func (sb *SpectralBandwidth) ComputeAboveMean(s *Spectrum) (float64, error) {
	if s == nil {
		return 0, common.ErrEmptyInput
	}
	return sb.Compute(s.Frequencies, s.Magnitudes)
}
