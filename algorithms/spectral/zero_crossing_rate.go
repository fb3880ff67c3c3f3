package spectral

import (
	"fmt"

	"github.com/RyanBlaney/sonido-svm/algorithms/common"
)

// Normalization selects the denominator used for the zero crossing rate
type Normalization string

const (
	// NormalizeSamples divides sum(|sign[i]-sign[i-1]|) by 2N, i.e. crossings
	// per sample. This is the canonical feature and stays within [0,1].
	NormalizeSamples Normalization = "samples"

	// NormalizePairs divides crossings by the N-1 adjacent pairs. Kept for
	// models trained with the per-pair variant.
	NormalizePairs Normalization = "pairs"
)

// ParseNormalization validates a normalization name; empty means NormalizeSamples
func ParseNormalization(name string) (Normalization, error) {
	switch Normalization(name) {
	case "", NormalizeSamples:
		return NormalizeSamples, nil
	case NormalizePairs:
		return NormalizePairs, nil
	default:
		return "", fmt.Errorf("unknown zero crossing normalization %q", name)
	}
}

// ZeroCrossingRate calculates zero crossing rate
// High ZCR indicates fricatives/unvoiced speech, low ZCR indicates voiced speech or tonal music
type ZeroCrossingRate struct{}

// NewZeroCrossingRate creates a new zero crossing rate calculator
func NewZeroCrossingRate() *ZeroCrossingRate {
	return &ZeroCrossingRate{}
}

// Crossings counts adjacent sample pairs whose signs differ; 0 counts as positive
func (zcr *ZeroCrossingRate) Crossings(signal []float64) int {
	crossings := 0
	for i := 1; i < len(signal); i++ {
		if common.Sign(signal[i]) != common.Sign(signal[i-1]) {
			crossings++
		}
	}
	return crossings
}

// ComputeSignChange returns the fraction of sign changes over the whole signal
func (zcr *ZeroCrossingRate) ComputeSignChange(signal []float64, norm Normalization) (float64, error) {
	n := len(signal)
	if n == 0 {
		return 0, common.ErrEmptyInput
	}

	// each crossing contributes |(+1)-(-1)| = 2 to sum(|sign[i]-sign[i-1]|)
	crossings := float64(zcr.Crossings(signal))

	switch norm {
	case "", NormalizeSamples:
		return crossings / float64(n), nil
	case NormalizePairs:
		if n < 2 {
			return 0, nil
		}
		return crossings / float64(n-1), nil
	default:
		return 0, fmt.Errorf("unknown zero crossing normalization %q", norm)
	}
}
