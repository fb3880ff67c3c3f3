package features

import (
	"fmt"

	"github.com/RyanBlaney/sonido-svm/algorithms/common"
	"github.com/RyanBlaney/sonido-svm/svmlight"
	"github.com/RyanBlaney/sonido-svm/transcode"
)

// Waveform is a mono sample sequence with its sample rate
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// NewWaveform validates samples and rate
func NewWaveform(samples []float64, sampleRate int) (Waveform, error) {
	if len(samples) == 0 {
		return Waveform{}, common.ErrEmptyInput
	}
	if sampleRate <= 0 {
		return Waveform{}, fmt.Errorf("%w: %d", common.ErrInvalidSampleRate, sampleRate)
	}
	return Waveform{Samples: samples, SampleRate: sampleRate}, nil
}

// WaveformFromAudio wraps decoded audio
func WaveformFromAudio(data *transcode.AudioData) (Waveform, error) {
	if data == nil {
		return Waveform{}, common.ErrEmptyInput
	}
	return NewWaveform(data.PCM, data.SampleRate)
}

// Feature indices in the classifier's sparse format
const (
	IndexEnergy = iota + 1
	IndexCentroid
	IndexZeroCrossingRate
	IndexBandwidth
)

// Names lists the features in vector order
var Names = []string{"energy", "centroid", "zero_crossing_rate", "bandwidth"}

// FeatureVector is the fixed feature tuple fed to the classifier
type FeatureVector struct {
	Energy           float64 `json:"energy" parquet:"energy"`
	Centroid         float64 `json:"centroid" parquet:"centroid"`
	ZeroCrossingRate float64 `json:"zero_crossing_rate" parquet:"zero_crossing_rate"`
	Bandwidth        float64 `json:"bandwidth" parquet:"bandwidth"`
}

// Values returns the features in vector order
func (v FeatureVector) Values() []float64 {
	return []float64{v.Energy, v.Centroid, v.ZeroCrossingRate, v.Bandwidth}
}

// Features returns the vector as 1-based index:value pairs
func (v FeatureVector) Features() []svmlight.Feature {
	values := v.Values()
	out := make([]svmlight.Feature, len(values))
	for i, val := range values {
		out[i] = svmlight.Feature{Index: i + 1, Value: val}
	}
	return out
}

// Example builds a feature-file line for this vector
func (v FeatureVector) Example(label svmlight.Label, comment string) svmlight.Example {
	return svmlight.Example{
		Label:    label,
		Features: v.Features(),
		Comment:  comment,
	}
}

// FromExample rebuilds a vector from a parsed feature-file line
func FromExample(ex svmlight.Example) (FeatureVector, error) {
	m := ex.Map()
	for idx := IndexEnergy; idx <= IndexBandwidth; idx++ {
		if _, ok := m[idx]; !ok {
			return FeatureVector{}, fmt.Errorf("feature %d (%s) missing", idx, Names[idx-1])
		}
	}
	return FeatureVector{
		Energy:           m[IndexEnergy],
		Centroid:         m[IndexCentroid],
		ZeroCrossingRate: m[IndexZeroCrossingRate],
		Bandwidth:        m[IndexBandwidth],
	}, nil
}
