package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-svm/logging"
)

var (
	// ErrInvalidWAV is returned when a file does not carry a RIFF/WAVE header
	ErrInvalidWAV = errors.New("invalid WAV file")

	// ErrNoSamples is returned when a file decodes to zero samples
	ErrNoSamples = errors.New("no audio samples decoded")
)

// AudioData represents decoded audio data. PCM is always mono.
type AudioData struct {
	PCM        []float64       `json:"-"`
	SampleRate int             `json:"sample_rate"`
	Channels   int             `json:"channels"`   // channel count of the source before down-mixing
	BitDepth   int             `json:"bit_depth"`  // source bit depth
	FullScale  float64         `json:"full_scale"` // PCM magnitude of a full-scale sample
	Duration   time.Duration   `json:"duration"`
	Timestamp  time.Time       `json:"timestamp"`
	Metadata   *StreamMetadata `json:"metadata,omitempty"`
}

// StreamMetadata represents metadata about the audio file
type StreamMetadata struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Format    string    `json:"format"`
	Codec     string    `json:"codec,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	// Normalize scales samples to [-1,1). When false samples keep their raw
	// integer amplitude, which is what previously trained models expect.
	Normalize   bool          `json:"normalize" yaml:"normalize"`
	MaxDuration time.Duration `json:"max_duration" yaml:"max_duration"` // 0 = whole file
	FFmpegPath  string        `json:"ffmpeg_path" yaml:"ffmpeg_path"`   // used for non-WAV input
	FFprobePath string        `json:"ffprobe_path" yaml:"ffprobe_path"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"` // timeout for ffmpeg operations
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		Normalize:   false,
		MaxDuration: 0,
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		Timeout:     30 * time.Second,
	}
}

// Decoder turns audio files into mono PCM
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// Config returns the decoder configuration
func (d *Decoder) Config() DecoderConfig {
	return *d.config
}

// DecodeFile decodes an audio file and returns PCM data
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	return d.DecodeFileContext(context.Background(), filename)
}

// DecodeFileContext decodes an audio file. WAV files are parsed in process;
// anything else goes through ffmpeg.
func (d *Decoder) DecodeFileContext(ctx context.Context, filename string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFileContext",
		"filename": filename,
	})

	logger.Debug("Starting audio file decode")

	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("audio file %s: %w", filename, err)
	}

	var (
		data *AudioData
		err  error
	)
	if IsWAV(filename) {
		data, err = d.decodeWAVFile(filename)
	} else {
		data, err = d.decodeWithFFmpeg(ctx, filename)
	}
	if err != nil {
		logger.Error(err, "Failed to decode audio file")
		return nil, err
	}

	logger.Debug("Audio decoded", logging.Fields{
		"sample_rate": data.SampleRate,
		"channels":    data.Channels,
		"bit_depth":   data.BitDepth,
		"samples":     len(data.PCM),
		"duration":    data.Duration.Seconds(),
	})

	return data, nil
}

// IsWAV reports whether a path has a .wav extension (case-insensitive)
func IsWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}

// truncate applies MaxDuration to a mono signal
func (d *Decoder) truncate(pcm []float64, sampleRate int) []float64 {
	if d.config.MaxDuration <= 0 || sampleRate <= 0 {
		return pcm
	}
	limit := int(d.config.MaxDuration.Seconds() * float64(sampleRate))
	if limit > 0 && limit < len(pcm) {
		return pcm[:limit]
	}
	return pcm
}

func newAudioData(pcm []float64, sampleRate, channels, bitDepth int, fullScale float64, path, format, codec string) *AudioData {
	now := time.Now()
	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
		FullScale:  fullScale,
		Duration:   time.Duration(len(pcm)) * time.Second / time.Duration(sampleRate),
		Timestamp:  now,
		Metadata: &StreamMetadata{
			Path:      path,
			Name:      filepath.Base(path),
			Format:    format,
			Codec:     codec,
			Timestamp: now,
		},
	}
}
