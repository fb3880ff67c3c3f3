package spectral

import (
	"fmt"

	"github.com/RyanBlaney/sonido-svm/algorithms/common"
)

// Spectrum is a one-sided power spectrum: Magnitudes[i] is the power at
// Frequencies[i]. Both slices have length ceil((NumSamples+1)/2).
type Spectrum struct {
	Frequencies []float64 `json:"frequencies"`
	Magnitudes  []float64 `json:"magnitudes"`
	SampleRate  int       `json:"sample_rate"`
	NumSamples  int       `json:"num_samples"`
}

// Len returns the number of bins
func (s *Spectrum) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Magnitudes)
}

// PowerSpectrum provides power spectral density computation
type PowerSpectrum struct {
	fft *FFT
}

// NewPowerSpectrum creates a new power spectrum calculator
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{fft: NewFFT()}
}

// Compute computes power spectral density from magnitude spectrum
func (ps *PowerSpectrum) Compute(magnitudeSpectrum []float64) []float64 {
	if len(magnitudeSpectrum) == 0 {
		return []float64{}
	}

	power := make([]float64, len(magnitudeSpectrum))
	for i, mag := range magnitudeSpectrum {
		power[i] = mag * mag
	}

	return power
}

// OneSided transforms the whole signal and folds it into a one-sided power
// spectrum. Bin magnitudes are |X[k]|/N squared; every bin except DC (and
// Nyquist for even N) is doubled to account for the negative frequencies.
// Bin i sits at i*sampleRate/N Hz.
func (ps *PowerSpectrum) OneSided(x []float64, sampleRate int) (*Spectrum, error) {
	n := len(x)
	if n == 0 {
		return nil, common.ErrEmptyInput
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", common.ErrInvalidSampleRate, sampleRate)
	}

	unique := common.UniquePoints(n)
	mags := ps.fft.Magnitudes(ps.fft.Compute(x), unique)

	for i := range mags {
		mags[i] /= float64(n)
	}
	power := ps.Compute(mags)

	last := unique
	if n%2 == 0 {
		last = unique - 1
	}
	for i := 1; i < last; i++ {
		power[i] *= 2
	}

	freqs := make([]float64, unique)
	for i := range unique {
		freqs[i] = float64(i) * float64(sampleRate) / float64(n)
	}

	return &Spectrum{
		Frequencies: freqs,
		Magnitudes:  power,
		SampleRate:  sampleRate,
		NumSamples:  n,
	}, nil
}
