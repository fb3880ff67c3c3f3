package transcode

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

func (d *Decoder) decodeWAVFile(filename string) (*AudioData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	return d.DecodeWAV(f, filename)
}

// DecodeWAV decodes an uncompressed PCM WAV stream. Multi-channel audio is
// averaged down to mono.
func (d *Decoder) DecodeWAV(r io.ReadSeeker, name string) (*AudioData, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", name, ErrInvalidWAV)
	}

	if decoder.WavAudioFormat != wavFormatPCM && decoder.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%s: unsupported WAV audio format %d (only PCM is supported)", name, decoder.WavAudioFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: could not read PCM buffer: %w", name, err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoSamples)
	}

	sampleRate := buf.Format.SampleRate
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%s: invalid sample rate %d", name, sampleRate)
	}

	channels := max(buf.Format.NumChannels, 1)
	bitDepth := int(decoder.BitDepth)

	pcm := d.truncate(downmix(buf, channels), sampleRate)
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoSamples)
	}

	fullScale := math.Exp2(float64(bitDepth - 1))
	if d.config.Normalize {
		normalize(pcm, bitDepth, fullScale)
		fullScale = 1
	}

	return newAudioData(pcm, sampleRate, channels, bitDepth, fullScale, name, "wav", fmt.Sprintf("pcm_s%d", bitDepth)), nil
}

// downmix averages interleaved frames into a mono signal
func downmix(buf *audio.IntBuffer, channels int) []float64 {
	frames := len(buf.Data) / channels
	pcm := make([]float64, frames)

	for i := range frames {
		sum := 0
		for c := range channels {
			sum += buf.Data[i*channels+c]
		}
		pcm[i] = float64(sum) / float64(channels)
	}

	return pcm
}

// normalize scales raw samples to [-1,1). 8-bit WAV is unsigned and centred on 128.
func normalize(pcm []float64, bitDepth int, fullScale float64) {
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}
	for i, v := range pcm {
		pcm[i] = (v - offset) / fullScale
	}
}
