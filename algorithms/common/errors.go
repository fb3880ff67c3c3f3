package common

import "errors"

var (
	// ErrEmptyInput is returned when a waveform or spectrum has no samples
	ErrEmptyInput = errors.New("empty input")

	// ErrDegenerateSpectrum is returned when a spectrum carries no energy,
	// so centroid and bandwidth are undefined
	ErrDegenerateSpectrum = errors.New("degenerate spectrum: total magnitude is zero")

	// ErrInvalidSampleRate is returned for non-positive sample rates
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)
