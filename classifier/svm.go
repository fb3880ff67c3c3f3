package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-svm/features"
	"github.com/RyanBlaney/sonido-svm/logging"
	"github.com/RyanBlaney/sonido-svm/svmlight"
)

// Class is the predicted content type
type Class string

const (
	Music  Class = "Music"
	Speech Class = "Speech"
)

// ClassForLabel maps the classifier's positive label to Music
func ClassForLabel(l svmlight.Label) Class {
	if l == svmlight.Positive {
		return Music
	}
	return Speech
}

// Label is the training label for a class
func (c Class) Label() svmlight.Label {
	if c == Music {
		return svmlight.Positive
	}
	return svmlight.Negative
}

// Prediction is one classified example
type Prediction struct {
	Score float64 `json:"score"`
	Class Class   `json:"class"`
}

// Config locates the external SVM programs
type Config struct {
	LearnPath    string        `json:"learn_path" yaml:"learn_path"`
	ClassifyPath string        `json:"classify_path" yaml:"classify_path"`
	LearnArgs    []string      `json:"learn_args,omitempty" yaml:"learn_args"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
	WorkDir      string        `json:"work_dir,omitempty" yaml:"work_dir"` // temp files; empty = os.TempDir()
}

// DefaultConfig assumes SVMlight is on PATH
func DefaultConfig() *Config {
	return &Config{
		LearnPath:    "svm_learn",
		ClassifyPath: "svm_classify",
		Timeout:      5 * time.Minute,
	}
}

// Validate checks required fields
func (c *Config) Validate() error {
	if c.LearnPath == "" {
		return fmt.Errorf("classifier learn_path is required")
	}
	if c.ClassifyPath == "" {
		return fmt.Errorf("classifier classify_path is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("classifier timeout must not be negative: %v", c.Timeout)
	}
	return nil
}

// SVM runs the external learner and classifier processes
type SVM struct {
	config *Config
	logger logging.Logger
}

// NewSVM creates an SVM runner; nil config means DefaultConfig
func NewSVM(config *Config) *SVM {
	if config == nil {
		config = DefaultConfig()
	}
	return &SVM{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "svm_classifier",
		}),
	}
}

// Train builds modelPath from a feature file
func (s *SVM) Train(ctx context.Context, examplesPath, modelPath string) error {
	args := append(append([]string{}, s.config.LearnArgs...), examplesPath, modelPath)

	s.logger.Info("Training model", logging.Fields{
		"examples": examplesPath,
		"model":    modelPath,
	})

	return s.run(ctx, s.config.LearnPath, args)
}

// Classify scores every example in examplesPath and writes the raw decision
// values to predictionsPath
func (s *SVM) Classify(ctx context.Context, examplesPath, modelPath, predictionsPath string) ([]Prediction, error) {
	if err := s.run(ctx, s.config.ClassifyPath, []string{examplesPath, modelPath, predictionsPath}); err != nil {
		return nil, err
	}

	f, err := os.Open(predictionsPath)
	if err != nil {
		return nil, fmt.Errorf("open predictions: %w", err)
	}
	defer f.Close()

	scores, err := svmlight.ReadPredictions(f)
	if err != nil {
		return nil, fmt.Errorf("read predictions: %w", err)
	}

	predictions := make([]Prediction, len(scores))
	for i, score := range scores {
		predictions[i] = Prediction{
			Score: score,
			Class: ClassForLabel(svmlight.ClassFromScore(score)),
		}
	}
	return predictions, nil
}

// ClassifyVectors writes the vectors with label 0 to a temporary feature
// file, classifies it and returns one prediction per vector
func (s *SVM) ClassifyVectors(ctx context.Context, modelPath string, vectors []features.FeatureVector, comments []string) ([]Prediction, error) {
	if len(vectors) == 0 {
		return nil, nil
	}

	dir, err := os.MkdirTemp(s.config.WorkDir, "sonido-svm-")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	examplesPath := filepath.Join(dir, "query.dat")
	f, err := os.Create(examplesPath)
	if err != nil {
		return nil, err
	}

	w := svmlight.NewWriter(f)
	for i, v := range vectors {
		comment := ""
		if i < len(comments) {
			comment = comments[i]
		}
		if err := w.Write(v.Example(svmlight.Unknown, comment)); err != nil {
			f.Close()
			return nil, fmt.Errorf("write example %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	predictions, err := s.Classify(ctx, examplesPath, modelPath, filepath.Join(dir, "predictions.dat"))
	if err != nil {
		return nil, err
	}
	if len(predictions) != len(vectors) {
		return nil, fmt.Errorf("classifier returned %d predictions for %d examples", len(predictions), len(vectors))
	}
	return predictions, nil
}

// ClassifyVector classifies a single vector
func (s *SVM) ClassifyVector(ctx context.Context, modelPath string, v features.FeatureVector) (Prediction, error) {
	predictions, err := s.ClassifyVectors(ctx, modelPath, []features.FeatureVector{v}, nil)
	if err != nil {
		return Prediction{}, err
	}
	return predictions[0], nil
}

func (s *SVM) run(ctx context.Context, program string, args []string) error {
	logger := s.logger.WithFields(logging.Fields{
		"function": "run",
		"program":  program,
	})

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stderr = &stderr

	logger.Debug("Running classifier command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", program, ctxErr)
		}
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			logger.Error(err, "Classifier command failed", logging.Fields{
				"stderr": stderr.String(),
			})
			return fmt.Errorf("%s failed: %w, stderr: %s", program, err, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("%s: %w", program, err)
	}
	return nil
}
