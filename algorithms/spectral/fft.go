package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the full complex DFT of a real signal.
// mjibson/go-dsp handles non-power-of-2 lengths (Bluestein), so the
// whole waveform is transformed without padding.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// Magnitudes returns |X[k]| for the first n bins of a transform
func (f *FFT) Magnitudes(spectrum []complex128, n int) []float64 {
	n = min(n, len(spectrum))
	mags := make([]float64, n)
	for i := range n {
		mags[i] = cmplx.Abs(spectrum[i])
	}
	return mags
}
