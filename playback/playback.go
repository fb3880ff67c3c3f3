// Package playback streams decoded audio to an output sink. Playback is
// stopped by cancelling a context rather than by polling a flag.
package playback

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/RyanBlaney/sonido-svm/logging"
	"github.com/RyanBlaney/sonido-svm/transcode"
)

// DefaultChunkFrames is the number of frames written per chunk
const DefaultChunkFrames = 1024

// Format describes the raw PCM written to a sink. Samples are always signed
// 16-bit little endian.
type Format struct {
	SampleRate int
	Channels   int
}

// Sink receives raw PCM. Close blocks until buffered audio has been played.
type Sink interface {
	io.Writer
	Close() error
}

// SinkFactory opens a sink for one playback session. The sink must stop
// when ctx is cancelled.
type SinkFactory func(ctx context.Context, format Format) (Sink, error)

// Config holds playback configuration
type Config struct {
	FFplayPath  string `json:"ffplay_path" yaml:"ffplay_path"`
	ChunkFrames int    `json:"chunk_frames" yaml:"chunk_frames"`
}

// DefaultConfig plays through ffplay on PATH
func DefaultConfig() *Config {
	return &Config{
		FFplayPath:  "ffplay",
		ChunkFrames: DefaultChunkFrames,
	}
}

// Validate checks configuration values
func (c *Config) Validate() error {
	if c.ChunkFrames < 0 {
		return fmt.Errorf("playback chunk_frames must not be negative: %d", c.ChunkFrames)
	}
	return nil
}

// Stream converts audio to s16le and writes it to w in chunks of
// chunkFrames, checking ctx before every chunk. It returns ctx.Err() when
// cancelled and nil once all audio has been written.
func Stream(ctx context.Context, data *transcode.AudioData, w io.Writer, chunkFrames int) error {
	if data == nil {
		return fmt.Errorf("no audio to play")
	}
	if chunkFrames <= 0 {
		chunkFrames = DefaultChunkFrames
	}

	fullScale := data.FullScale
	if fullScale <= 0 {
		fullScale = 1
	}
	// raw 8-bit WAV samples are unsigned
	offset := 0.0
	if data.BitDepth == 8 && fullScale != 1 {
		offset = 128
	}

	buf := make([]byte, chunkFrames*2)
	for start := 0; start < len(data.PCM); start += chunkFrames {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+chunkFrames, len(data.PCM))
		chunk := buf[:(end-start)*2]
		for i, v := range data.PCM[start:end] {
			binary.LittleEndian.PutUint16(chunk[i*2:], uint16(toInt16((v-offset)/fullScale)))
		}

		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("write audio: %w", err)
		}
	}
	return nil
}

func toInt16(x float64) int16 {
	s := math.Round(x * 32768)
	switch {
	case s > math.MaxInt16:
		return math.MaxInt16
	case s < math.MinInt16:
		return math.MinInt16
	default:
		return int16(s)
	}
}

// Player starts playback sessions
type Player struct {
	config  *Config
	factory SinkFactory
	logger  logging.Logger
}

// NewPlayer creates a player. A nil factory plays through ffplay.
func NewPlayer(config *Config, factory SinkFactory) *Player {
	if config == nil {
		config = DefaultConfig()
	}
	if factory == nil {
		factory = FFplaySinkFactory(config.FFplayPath)
	}
	return &Player{
		config:  config,
		factory: factory,
		logger: logging.WithFields(logging.Fields{
			"component": "player",
		}),
	}
}

// Session is one running playback
type Session struct {
	cancel  context.CancelFunc
	done    chan struct{}
	playing atomic.Bool

	mu  sync.Mutex
	err error
}

// Start begins playing data in the background
func (p *Player) Start(ctx context.Context, data *transcode.AudioData) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.playing.Store(true)

	go func() {
		defer close(s.done)
		defer cancel()
		err := p.play(ctx, data)
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.playing.Store(false)
	}()

	return s
}

// Play blocks until data has played or ctx is cancelled
func (p *Player) Play(ctx context.Context, data *transcode.AudioData) error {
	return p.Start(ctx, data).Wait()
}

func (p *Player) play(ctx context.Context, data *transcode.AudioData) error {
	if data == nil {
		return fmt.Errorf("no audio to play")
	}

	logger := p.logger.WithContext(ctx).WithFields(logging.Fields{
		"function":    "play",
		"sample_rate": data.SampleRate,
		"duration":    data.Duration.String(),
	})

	sink, err := p.factory(ctx, Format{SampleRate: data.SampleRate, Channels: 1})
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}

	logger.Debug("Playback started")

	streamErr := Stream(ctx, data, sink, p.config.ChunkFrames)
	closeErr := sink.Close()

	// a cancelled sink fails its pending write; report the cancellation
	if err := ctx.Err(); err != nil {
		logger.Debug("Playback stopped", logging.Fields{"reason": err.Error()})
		return err
	}
	if streamErr != nil {
		return streamErr
	}
	if closeErr != nil {
		return fmt.Errorf("close sink: %w", closeErr)
	}

	logger.Debug("Playback finished")
	return nil
}

// Stop cancels playback and waits for the sink to close
func (s *Session) Stop() error {
	s.cancel()
	return s.Wait()
}

// Wait blocks until playback ends. It returns context.Canceled if the
// session was stopped.
func (s *Session) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed when playback ends
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Playing reports whether audio is still being played
func (s *Session) Playing() bool {
	return s.playing.Load()
}
