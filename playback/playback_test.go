package playback

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-svm/logging"
	"github.com/RyanBlaney/sonido-svm/transcode"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	os.Exit(m.Run())
}

// bufferSink collects written audio
type bufferSink struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	writes int
	closed bool
	delay  time.Duration
	first  chan struct{}
	once   sync.Once
}

func newBufferSink() *bufferSink {
	return &bufferSink{first: make(chan struct{})}
}

func (s *bufferSink) Write(p []byte) (int, error) {
	s.once.Do(func() { close(s.first) })
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	return s.buf.Write(p)
}

func (s *bufferSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *bufferSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

func factoryFor(sink *bufferSink, got *Format) SinkFactory {
	return func(ctx context.Context, format Format) (Sink, error) {
		if got != nil {
			*got = format
		}
		return sink, nil
	}
}

func rawAudio(n int) *transcode.AudioData {
	pcm := make([]float64, n)
	for i := range pcm {
		pcm[i] = float64(i % 100)
	}
	return &transcode.AudioData{PCM: pcm, SampleRate: 8000, BitDepth: 16, FullScale: 32768}
}

func decodeS16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

func TestStreamConversion(t *testing.T) {
	tests := []struct {
		name string
		data *transcode.AudioData
		want []int16
	}{
		{
			name: "raw 16-bit",
			data: &transcode.AudioData{PCM: []float64{0, 1000, -32768, 32767}, BitDepth: 16, FullScale: 32768},
			want: []int16{0, 1000, -32768, 32767},
		},
		{
			name: "normalized",
			data: &transcode.AudioData{PCM: []float64{0, 0.5, -1, 1.5}, BitDepth: 16, FullScale: 1},
			want: []int16{0, 16384, -32768, 32767},
		},
		{
			name: "raw 8-bit unsigned",
			data: &transcode.AudioData{PCM: []float64{128, 192, 0}, BitDepth: 8, FullScale: 128},
			want: []int16{0, 16384, -32768},
		},
		{
			name: "raw 24-bit",
			data: &transcode.AudioData{PCM: []float64{4194304}, BitDepth: 24, FullScale: 8388608},
			want: []int16{16384},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Stream(context.Background(), tt.data, &buf, 0); err != nil {
				t.Fatalf("Stream: %v", err)
			}
			got := decodeS16(buf.Bytes())
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("sample %d = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStreamChunks(t *testing.T) {
	sink := newBufferSink()
	if err := Stream(context.Background(), rawAudio(2500), sink, 1024); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if sink.writes != 3 {
		t.Errorf("writes = %d, want 3", sink.writes)
	}
	if sink.Len() != 5000 {
		t.Errorf("bytes = %d, want 5000", sink.Len())
	}
}

func TestStreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := newBufferSink()
	err := Stream(ctx, rawAudio(4096), sink, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if sink.writes != 0 {
		t.Errorf("writes = %d after cancel", sink.writes)
	}

	if err := Stream(context.Background(), nil, sink, 0); err == nil {
		t.Error("expected error for nil audio")
	}
}

func TestPlayerPlaysToCompletion(t *testing.T) {
	sink := newBufferSink()
	var format Format
	player := NewPlayer(nil, factoryFor(sink, &format))

	if err := player.Play(context.Background(), rawAudio(3000)); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if sink.Len() != 6000 {
		t.Errorf("bytes = %d, want 6000", sink.Len())
	}
	if !sink.closed {
		t.Error("sink was not closed")
	}
	if format != (Format{SampleRate: 8000, Channels: 1}) {
		t.Errorf("format = %+v", format)
	}
}

func TestSessionStop(t *testing.T) {
	sink := newBufferSink()
	sink.delay = time.Millisecond
	player := NewPlayer(&Config{ChunkFrames: 1}, factoryFor(sink, nil))

	total := 10000
	session := player.Start(context.Background(), rawAudio(total))
	if !session.Playing() {
		t.Error("session should be playing after Start")
	}

	select {
	case <-sink.first:
	case <-time.After(5 * time.Second):
		t.Fatal("playback never started")
	}

	if err := session.Stop(); !errors.Is(err, context.Canceled) {
		t.Errorf("Stop() = %v, want context.Canceled", err)
	}
	if session.Playing() {
		t.Error("session still playing after Stop")
	}
	if sink.Len() >= total*2 {
		t.Error("all audio written despite Stop")
	}
	if !sink.closed {
		t.Error("sink was not closed after Stop")
	}

	select {
	case <-session.Done():
	default:
		t.Error("Done not closed after Stop")
	}
}

func TestSessionParentCancel(t *testing.T) {
	sink := newBufferSink()
	sink.delay = time.Millisecond
	player := NewPlayer(&Config{ChunkFrames: 1}, factoryFor(sink, nil))

	ctx, cancel := context.WithCancel(context.Background())
	session := player.Start(ctx, rawAudio(10000))
	<-sink.first
	cancel()

	if err := session.Wait(); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() = %v, want context.Canceled", err)
	}
}

func TestSessionFactoryError(t *testing.T) {
	boom := errors.New("no audio device")
	player := NewPlayer(nil, func(ctx context.Context, format Format) (Sink, error) {
		return nil, boom
	})

	session := player.Start(context.Background(), rawAudio(10))
	if err := session.Wait(); !errors.Is(err, boom) {
		t.Errorf("Wait() = %v, want %v", err, boom)
	}
	if session.Playing() {
		t.Error("session playing after failure")
	}
}

func TestBuildFFplayArgs(t *testing.T) {
	got := buildFFplayArgs(Format{SampleRate: 44100, Channels: 1})
	want := []string{"-nodisp", "-autoexit", "-loglevel", "error", "-f", "s16le", "-ar", "44100", "-ch_layout", "mono", "-i", "pipe:0"}
	if len(got) != len(want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if err := (&Config{ChunkFrames: -1}).Validate(); err == nil {
		t.Error("expected error for negative chunk_frames")
	}
}

// fakeFFplay writes a shell script standing in for ffplay
func fakeFFplay(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}

	path := filepath.Join(t.TempDir(), "ffplay")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestFFplaySinkStopWhileBlocked(t *testing.T) {
	// never reads stdin, so writes block once the pipe is full
	player := NewPlayer(nil, FFplaySinkFactory(fakeFFplay(t, "exec sleep 30")))

	session := player.Start(context.Background(), rawAudio(1_000_000))
	time.Sleep(300 * time.Millisecond)

	if err := session.Stop(); !errors.Is(err, context.Canceled) {
		t.Errorf("Stop() = %v, want context.Canceled", err)
	}
	if session.Playing() {
		t.Error("session still playing after Stop")
	}
}

func TestFFplaySinkPlaysToCompletion(t *testing.T) {
	player := NewPlayer(nil, FFplaySinkFactory(fakeFFplay(t, "cat > /dev/null")))

	if err := player.Play(context.Background(), rawAudio(100_000)); err != nil {
		t.Errorf("Play() = %v, want nil", err)
	}
}

func TestFFplaySinkFailure(t *testing.T) {
	player := NewPlayer(nil, FFplaySinkFactory(fakeFFplay(t, "cat > /dev/null; echo 'no audio device' >&2; exit 1")))

	err := player.Play(context.Background(), rawAudio(1000))
	if err == nil || errors.Is(err, context.Canceled) {
		t.Fatalf("Play() = %v, want sink failure", err)
	}
}
