package features

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/sonido-svm/algorithms/common"
	"github.com/RyanBlaney/sonido-svm/algorithms/spectral"
	"github.com/RyanBlaney/sonido-svm/logging"
	"github.com/RyanBlaney/sonido-svm/svmlight"
	"github.com/RyanBlaney/sonido-svm/transcode"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	os.Exit(m.Run())
}

func sineWave(freq float64, sampleRate, n int, amplitude float64) Waveform {
	x := make([]float64, n)
	for i := range n {
		x[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return Waveform{Samples: x, SampleRate: sampleRate}
}

func mustExtractor(t *testing.T, cfg *Config) *Extractor {
	t.Helper()
	e, err := NewExtractor(cfg)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return e
}

func TestExtractSilence(t *testing.T) {
	e := mustExtractor(t, nil)
	w := Waveform{Samples: make([]float64, 8000), SampleRate: 8000}

	energy, err := e.Energy(w)
	if err != nil || energy != 0 {
		t.Errorf("energy = %v, %v; want 0", energy, err)
	}

	zcr, err := e.ZeroCrossingRate(w)
	if err != nil || zcr != 0 {
		t.Errorf("zcr = %v, %v; want 0", zcr, err)
	}

	s, err := e.Spectrum(w)
	if err != nil {
		t.Fatalf("spectrum: %v", err)
	}
	if _, err := e.Centroid(s); !errors.Is(err, common.ErrDegenerateSpectrum) {
		t.Errorf("centroid: got %v, want ErrDegenerateSpectrum", err)
	}
	if _, err := e.Bandwidth(s); !errors.Is(err, common.ErrDegenerateSpectrum) {
		t.Errorf("bandwidth: got %v, want ErrDegenerateSpectrum", err)
	}

	if _, err := e.Extract(w); !errors.Is(err, common.ErrDegenerateSpectrum) {
		t.Errorf("Extract: got %v, want ErrDegenerateSpectrum", err)
	}
}

func TestExtractSilenceZeroPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DegeneratePolicy = PolicyZero
	e := mustExtractor(t, cfg)

	fv, err := e.Extract(Waveform{Samples: make([]float64, 8000), SampleRate: 8000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fv != (FeatureVector{}) {
		t.Errorf("expected all-zero vector, got %+v", fv)
	}
}

func TestExtractSine440(t *testing.T) {
	e := mustExtractor(t, nil)

	fv, err := e.Extract(sineWave(440, 44100, 44100, 0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(fv.Centroid-440) > 5 {
		t.Errorf("centroid = %v, want 440 ± 5", fv.Centroid)
	}
	if math.Abs(fv.ZeroCrossingRate-2*440.0/44100.0) > 0.001 {
		t.Errorf("zcr = %v, want ≈ 0.02", fv.ZeroCrossingRate)
	}
	if math.Abs(fv.Energy-0.125) > 1e-6 {
		t.Errorf("energy = %v, want 0.125", fv.Energy)
	}
	if fv.Bandwidth > 5 {
		t.Errorf("bandwidth = %v, want ~0 for a pure tone", fv.Bandwidth)
	}
}

func TestExtractPairsNormalization(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ZeroCrossingNormalization = spectral.NormalizePairs
	e := mustExtractor(t, cfg)

	zcr, err := e.ZeroCrossingRate(Waveform{Samples: []float64{1, -1, 1, -1}, SampleRate: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zcr != 1 {
		t.Errorf("zcr = %v, want 1", zcr)
	}
}

func TestExtractEmpty(t *testing.T) {
	e := mustExtractor(t, nil)

	if _, err := e.Extract(Waveform{SampleRate: 8000}); !errors.Is(err, common.ErrEmptyInput) {
		t.Errorf("got %v, want ErrEmptyInput", err)
	}
	if _, err := NewWaveform(nil, 8000); !errors.Is(err, common.ErrEmptyInput) {
		t.Errorf("NewWaveform: got %v, want ErrEmptyInput", err)
	}
	if _, err := NewWaveform([]float64{1}, 0); !errors.Is(err, common.ErrInvalidSampleRate) {
		t.Errorf("NewWaveform: got %v, want ErrInvalidSampleRate", err)
	}
	if _, err := e.ExtractAudio(nil); !errors.Is(err, common.ErrEmptyInput) {
		t.Errorf("ExtractAudio(nil): got %v, want ErrEmptyInput", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", *DefaultConfig(), false},
		{"empty", Config{}, false},
		{"pairs and zero", Config{ZeroCrossingNormalization: spectral.NormalizePairs, DegeneratePolicy: PolicyZero}, false},
		{"bad normalization", Config{ZeroCrossingNormalization: "frames"}, true},
		{"bad policy", Config{DegeneratePolicy: "ignore"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if _, err := NewExtractor(&tt.cfg); (err != nil) != tt.wantErr {
				t.Errorf("NewExtractor() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFeatureVectorExampleRoundTrip(t *testing.T) {
	fv := FeatureVector{Energy: 1234.5, Centroid: 440.25, ZeroCrossingRate: 0.019, Bandwidth: 3000}

	line, err := svmlight.FormatExample(fv.Example(svmlight.Positive, "mu_test.wav"))
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if line != "1 1:1234.5 2:440.25 3:0.019 4:3000 # mu_test.wav" {
		t.Errorf("line = %q", line)
	}

	ex, err := svmlight.ParseExample(line)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := FromExample(ex)
	if err != nil {
		t.Fatalf("FromExample: %v", err)
	}
	if got != fv {
		t.Errorf("round trip = %+v, want %+v", got, fv)
	}

	if _, err := FromExample(svmlight.Example{Features: []svmlight.Feature{{Index: 1, Value: 1}}}); err == nil {
		t.Error("expected error for missing features")
	}
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	const rate = 8000
	data := make([]int, rate)
	for i := range data {
		data[i] = int(10000 * math.Sin(2*math.Pi*1000*float64(i)/rate))
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	e := mustExtractor(t, nil)
	fv, err := e.ExtractFile(context.Background(), transcode.NewDecoder(nil), path)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}

	if math.Abs(fv.Centroid-1000) > 5 {
		t.Errorf("centroid = %v, want ≈ 1000", fv.Centroid)
	}
	if fv.Energy <= 0 {
		t.Errorf("energy = %v, want > 0", fv.Energy)
	}

	if _, err := e.ExtractFile(context.Background(), transcode.NewDecoder(nil), filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractSingleSample(t *testing.T) {
	e := mustExtractor(t, nil)

	fv, err := e.Extract(Waveform{Samples: []float64{5}, SampleRate: 8000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := FeatureVector{Energy: 25, Centroid: 0, ZeroCrossingRate: 0, Bandwidth: 0}
	if fv != want {
		t.Errorf("got %+v, want %+v", fv, want)
	}
}
