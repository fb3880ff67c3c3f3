package playback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// ffplaySink feeds raw PCM to an ffplay child process on stdin
type ffplaySink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
}

// FFplaySinkFactory plays audio through ffplay without a window
func FFplaySinkFactory(path string) SinkFactory {
	if path == "" {
		path = "ffplay"
	}
	return func(ctx context.Context, format Format) (Sink, error) {
		cmd := exec.CommandContext(ctx, path, buildFFplayArgs(format)...)

		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, err
		}
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("start %s: %w", path, err)
		}
		return &ffplaySink{cmd: cmd, stdin: stdin, stderr: &stderr}, nil
	}
}

func buildFFplayArgs(format Format) []string {
	channels := "mono"
	if format.Channels == 2 {
		channels = "stereo"
	}
	return []string{
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(format.SampleRate),
		"-ch_layout", channels,
		"-i", "pipe:0",
	}
}

func (s *ffplaySink) Write(p []byte) (int, error) {
	return s.stdin.Write(p)
}

// Close ends the input and waits for ffplay to drain it
func (s *ffplaySink) Close() error {
	if err := s.stdin.Close(); err != nil {
		_ = s.cmd.Wait()
		return err
	}
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffplay failed: %w, stderr: %s", err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}
