package config

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-svm/classifier"
	"github.com/RyanBlaney/sonido-svm/features"
	"github.com/RyanBlaney/sonido-svm/logging"
	"github.com/RyanBlaney/sonido-svm/playback"
	"github.com/RyanBlaney/sonido-svm/transcode"
	"gopkg.in/yaml.v3"
)

// Config represents the complete tool configuration
type Config struct {
	Logging    LoggingConfig           `yaml:"logging"`
	Decoder    transcode.DecoderConfig `yaml:"decoder"`
	Features   features.Config         `yaml:"features"`
	Classifier classifier.Config       `yaml:"classifier"`
	Playback   playback.Config         `yaml:"playback"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // text or json
	NoColor bool   `yaml:"no_color"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Decoder:    *transcode.DefaultDecoderConfig(),
		Features:   *features.DefaultConfig(),
		Classifier: *classifier.DefaultConfig(),
		Playback:   *playback.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate validates every section
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if c.Decoder.MaxDuration < 0 {
		return fmt.Errorf("decoder config: max_duration must not be negative, got %v", c.Decoder.MaxDuration)
	}
	if c.Decoder.Timeout < 0 {
		return fmt.Errorf("decoder config: timeout must not be negative, got %v", c.Decoder.Timeout)
	}

	if err := c.Features.Validate(); err != nil {
		return fmt.Errorf("features config: %w", err)
	}

	if err := c.Classifier.Validate(); err != nil {
		return fmt.Errorf("classifier config: %w", err)
	}

	if err := c.Playback.Validate(); err != nil {
		return fmt.Errorf("playback config: %w", err)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	if _, err := logging.ParseLevel(l.Level); err != nil {
		return err
	}

	switch l.Format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("format must be text or json, got %q", l.Format)
	}
}

// NewLogger builds the logger described by the configuration
func (l *LoggingConfig) NewLogger() (logging.Logger, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	if l.Format == "json" {
		return logging.NewZapLogger(level)
	}

	var logger *logging.DefaultLogger
	if l.NoColor {
		logger = logging.NewDefaultLoggerNoColor()
	} else {
		logger = logging.NewDefaultLogger()
	}
	logger.SetLevel(level)
	return logger, nil
}
