package dataset

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/sonido-svm/features"
	"github.com/RyanBlaney/sonido-svm/logging"
	"github.com/RyanBlaney/sonido-svm/svmlight"
	"github.com/RyanBlaney/sonido-svm/transcode"
)

// Builder decodes entries and extracts their features
type Builder struct {
	decoder   *transcode.Decoder
	extractor *features.Extractor
	logger    logging.Logger

	// SkipFailures logs and skips files that fail to decode or extract
	// instead of aborting the build
	SkipFailures bool
}

// NewBuilder creates a builder from a decoder and extractor
func NewBuilder(decoder *transcode.Decoder, extractor *features.Extractor) *Builder {
	return &Builder{
		decoder:   decoder,
		extractor: extractor,
		logger: logging.WithFields(logging.Fields{
			"component": "dataset_builder",
		}),
	}
}

// ExtractorConfig returns a copy of cfg using the zero degenerate policy, so
// a silent file in a directory gets zero centroid and bandwidth instead of
// aborting the build
func ExtractorConfig(cfg features.Config) *features.Config {
	cfg.DegeneratePolicy = features.PolicyZero
	return &cfg
}

// Build extracts one record per entry in order. The context is checked
// before each file.
func (b *Builder) Build(ctx context.Context, entries []Entry) ([]Record, error) {
	logger := b.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "Build",
		"entries":  len(entries),
	})

	records := make([]Record, 0, len(entries))
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		fv, err := b.extractor.ExtractFile(ctx, b.decoder, entry.Path())
		if err != nil {
			if b.SkipFailures {
				logger.Warn("Skipping file", logging.Fields{
					"file":  entry.Name,
					"error": err.Error(),
				})
				continue
			}
			return records, fmt.Errorf("entry %d: %w", i, err)
		}

		records = append(records, Record{
			Entry:    entry,
			Class:    entry.Class(),
			Features: fv,
		})

		logger.Debug("Extracted features", logging.Fields{
			"file":  entry.Name,
			"class": string(entry.Class()),
		})
	}

	logger.Info("Dataset built", logging.Fields{
		"records": len(records),
	})
	return records, nil
}

// BuildDir scans dir and builds every entry
func (b *Builder) BuildDir(ctx context.Context, dir string) ([]Record, error) {
	entries, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, entries)
}

// WriteTraining writes records as feature-file lines
func WriteTraining(w io.Writer, records []Record) error {
	sw := svmlight.NewWriter(w)
	for _, r := range records {
		if err := sw.Write(r.Example()); err != nil {
			return fmt.Errorf("%s: %w", r.Entry.Name, err)
		}
	}
	return sw.Flush()
}

// WriteTrainingFile writes records to path, replacing any existing file
func WriteTrainingFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTraining(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
