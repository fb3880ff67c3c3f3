package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"fatal", FatalLevel, false},
		{"verbose", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultLoggerRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&stdout, &stderr)
	logger.SetLevel(DebugLevel)

	logger.Debug("debug message")
	logger.Info("info message", Fields{"file": "a.wav"})
	logger.Warn("warn message")
	logger.Error(errors.New("boom"), "error message")

	out := stdout.String()
	if !strings.Contains(out, "[DEBUG] debug message") {
		t.Errorf("stdout missing debug line: %q", out)
	}
	if !strings.Contains(out, "[INFO] info message file=a.wav") {
		t.Errorf("stdout missing info line with fields: %q", out)
	}

	errOut := stderr.String()
	if !strings.Contains(errOut, "[WARN] warn message") {
		t.Errorf("stderr missing warn line: %q", errOut)
	}
	if !strings.Contains(errOut, "[ERROR] error message: boom") {
		t.Errorf("stderr missing error line: %q", errOut)
	}
}

func TestDefaultLoggerLevelFilter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&stdout, &stderr)
	logger.SetLevel(WarnLevel)

	logger.Info("hidden")
	logger.Warn("shown")

	if stdout.Len() != 0 {
		t.Errorf("expected no stdout output, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "shown") {
		t.Errorf("expected warn output, got %q", stderr.String())
	}
}

func TestDefaultLoggerFatalExits(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&stdout, &stderr)

	code := -1
	prev := exitFunc
	exitFunc = func(c int) { code = c }
	defer func() { exitFunc = prev }()

	logger.Fatal(errors.New("bad"), "giving up")

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "[FATAL] giving up: bad") {
		t.Errorf("stderr missing fatal line: %q", stderr.String())
	}
}

func TestWithContextFields(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&stdout, &stderr)

	ctx := ContextWithFields(context.Background(), Fields{"request": "r1"})
	ctx = ContextWithFields(ctx, Fields{"file": "b.wav"})

	logger.WithContext(ctx).Info("scoped")

	out := stdout.String()
	if !strings.Contains(out, "file=b.wav") || !strings.Contains(out, "request=r1") {
		t.Errorf("context fields missing from %q", out)
	}
}

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLoggerFromCore(core, InfoLevel)

	logger.Debug("dropped")
	logger.WithFields(Fields{"component": "extractor"}).Info("kept", Fields{"energy": 1.5})
	logger.Error(errors.New("decode failed"), "failed")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0].ContextMap()
	if first["component"] != "extractor" {
		t.Errorf("component field = %v", first["component"])
	}
	if first["energy"] != 1.5 {
		t.Errorf("energy field = %v", first["energy"])
	}

	second := entries[1].ContextMap()
	if second["error"] != "decode failed" {
		t.Errorf("error field = %v", second["error"])
	}

	logger.SetLevel(DebugLevel)
	logger.Debug("now kept")
	if logs.Len() != 3 {
		t.Errorf("expected debug entry after SetLevel, got %d entries", logs.Len())
	}
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("expected NoOpLogger after SetGlobalLogger(nil), got %T", GetGlobalLogger())
	}
}
