package features

import (
	"context"
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-svm/algorithms/common"
	"github.com/RyanBlaney/sonido-svm/algorithms/spectral"
	"github.com/RyanBlaney/sonido-svm/algorithms/temporal"
	"github.com/RyanBlaney/sonido-svm/logging"
	"github.com/RyanBlaney/sonido-svm/transcode"
)

// DegeneratePolicy decides what happens when centroid or bandwidth is undefined
type DegeneratePolicy string

const (
	// PolicyError propagates common.ErrDegenerateSpectrum
	PolicyError DegeneratePolicy = "error"

	// PolicyZero substitutes 0 and logs a warning
	PolicyZero DegeneratePolicy = "zero"
)

// Config holds extractor configuration
type Config struct {
	ZeroCrossingNormalization spectral.Normalization `json:"zero_crossing_normalization" yaml:"zero_crossing_normalization"`
	DegeneratePolicy          DegeneratePolicy       `json:"degenerate_policy" yaml:"degenerate_policy"`
}

// DefaultConfig returns the canonical extractor settings
func DefaultConfig() *Config {
	return &Config{
		ZeroCrossingNormalization: spectral.NormalizeSamples,
		DegeneratePolicy:          PolicyError,
	}
}

// Validate checks enum fields
func (c *Config) Validate() error {
	if _, err := spectral.ParseNormalization(string(c.ZeroCrossingNormalization)); err != nil {
		return err
	}
	switch c.DegeneratePolicy {
	case "", PolicyError, PolicyZero:
		return nil
	default:
		return fmt.Errorf("unknown degenerate policy %q", c.DegeneratePolicy)
	}
}

// Extractor computes FeatureVectors. It holds no per-call state and is safe
// for concurrent use.
type Extractor struct {
	config    Config
	power     *spectral.PowerSpectrum
	centroid  *spectral.SpectralCentroid
	bandwidth *spectral.SpectralBandwidth
	zcr       *spectral.ZeroCrossingRate
	energy    *temporal.Energy
	logger    logging.Logger
}

// NewExtractor creates an extractor; nil config means DefaultConfig
func NewExtractor(config *Config) (*Extractor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Extractor{
		config:    *config,
		power:     spectral.NewPowerSpectrum(),
		centroid:  spectral.NewSpectralCentroid(),
		bandwidth: spectral.NewSpectralBandwidth(),
		zcr:       spectral.NewZeroCrossingRate(),
		energy:    temporal.NewEnergy(),
		logger: logging.WithFields(logging.Fields{
			"component": "feature_extractor",
		}),
	}, nil
}

// Spectrum computes the one-sided power spectrum of a waveform
func (e *Extractor) Spectrum(w Waveform) (*spectral.Spectrum, error) {
	return e.power.OneSided(w.Samples, w.SampleRate)
}

// Energy is the mean squared sample value
func (e *Extractor) Energy(w Waveform) (float64, error) {
	return e.energy.MeanSquare(w.Samples)
}

// Centroid is the magnitude-weighted mean frequency
func (e *Extractor) Centroid(s *spectral.Spectrum) (float64, error) {
	return e.centroid.ComputeSpectrum(s)
}

// ZeroCrossingRate uses the configured normalization
func (e *Extractor) ZeroCrossingRate(w Waveform) (float64, error) {
	return e.zcr.ComputeSignChange(w.Samples, e.config.ZeroCrossingNormalization)
}

// Bandwidth is the spread of the above-mean frequencies
func (e *Extractor) Bandwidth(s *spectral.Spectrum) (float64, error) {
	return e.bandwidth.ComputeAboveMean(s)
}

// Extract computes the spectrum once, then energy, centroid, zero crossing
// rate and bandwidth in that order
func (e *Extractor) Extract(w Waveform) (FeatureVector, error) {
	var fv FeatureVector

	if len(w.Samples) == 0 {
		return fv, common.ErrEmptyInput
	}

	spectrum, err := e.Spectrum(w)
	if err != nil {
		return fv, fmt.Errorf("spectrum: %w", err)
	}

	if fv.Energy, err = e.Energy(w); err != nil {
		return fv, fmt.Errorf("energy: %w", err)
	}

	centroid, err := e.Centroid(spectrum)
	if fv.Centroid, err = e.degenerate("centroid", centroid, err); err != nil {
		return fv, err
	}

	if fv.ZeroCrossingRate, err = e.ZeroCrossingRate(w); err != nil {
		return fv, fmt.Errorf("zero crossing rate: %w", err)
	}

	bandwidth, err := e.Bandwidth(spectrum)
	if fv.Bandwidth, err = e.degenerate("bandwidth", bandwidth, err); err != nil {
		return fv, err
	}

	e.logger.Debug("Features extracted", logging.Fields{
		"samples":            len(w.Samples),
		"sample_rate":        w.SampleRate,
		"energy":             fv.Energy,
		"centroid":           fv.Centroid,
		"zero_crossing_rate": fv.ZeroCrossingRate,
		"bandwidth":          fv.Bandwidth,
	})

	return fv, nil
}

func (e *Extractor) degenerate(name string, value float64, err error) (float64, error) {
	if err == nil {
		return value, nil
	}
	if errors.Is(err, common.ErrDegenerateSpectrum) && e.config.DegeneratePolicy == PolicyZero {
		e.logger.Warn("Spectrum is degenerate, using zero", logging.Fields{
			"feature": name,
		})
		return 0, nil
	}
	return 0, fmt.Errorf("%s: %w", name, err)
}

// ExtractAudio extracts features from decoded audio
func (e *Extractor) ExtractAudio(data *transcode.AudioData) (FeatureVector, error) {
	w, err := WaveformFromAudio(data)
	if err != nil {
		return FeatureVector{}, err
	}
	return e.Extract(w)
}

// ExtractFile decodes a file and extracts its features
func (e *Extractor) ExtractFile(ctx context.Context, decoder *transcode.Decoder, path string) (FeatureVector, error) {
	logger := e.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "ExtractFile",
		"file":     path,
	})

	data, err := decoder.DecodeFileContext(ctx, path)
	if err != nil {
		return FeatureVector{}, err
	}

	fv, err := e.ExtractAudio(data)
	if err != nil {
		logger.Error(err, "Feature extraction failed")
		return FeatureVector{}, fmt.Errorf("%s: %w", path, err)
	}
	return fv, nil
}
