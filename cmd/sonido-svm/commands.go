package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RyanBlaney/sonido-svm/algorithms/temporal"
	"github.com/RyanBlaney/sonido-svm/classifier"
	"github.com/RyanBlaney/sonido-svm/dataset"
	"github.com/RyanBlaney/sonido-svm/features"
	"github.com/RyanBlaney/sonido-svm/logging"
	"github.com/RyanBlaney/sonido-svm/playback"
	"github.com/RyanBlaney/sonido-svm/transcode"
)

func (a *App) decoder() *transcode.Decoder {
	return transcode.NewDecoder(&a.config.Decoder)
}

func (a *App) builder(skipFailures bool) (*dataset.Builder, error) {
	extractor, err := features.NewExtractor(dataset.ExtractorConfig(a.config.Features))
	if err != nil {
		return nil, err
	}
	b := dataset.NewBuilder(a.decoder(), extractor)
	b.SkipFailures = skipFailures
	return b, nil
}

// FeaturesCmd prints the feature vector of each file
type FeaturesCmd struct {
	JSON  bool     `help:"Print JSON instead of a table"`
	Files []string `arg:"" name:"files" type:"existingfile" help:"Audio files"`
}

type featuresOutput struct {
	File     string                 `json:"file"`
	Class    classifier.Class       `json:"label"`
	RMS      float64                `json:"rms"`
	Features features.FeatureVector `json:"features"`
}

func (c *FeaturesCmd) Run(app *App) error {
	extractor, err := features.NewExtractor(&app.config.Features)
	if err != nil {
		return err
	}
	decoder := app.decoder()
	energy := temporal.NewEnergy()

	var out []featuresOutput
	for _, path := range c.Files {
		if err := app.ctx.Err(); err != nil {
			return err
		}

		data, err := decoder.DecodeFileContext(app.ctx, path)
		if err != nil {
			return err
		}
		if energy.IsSilent(data.PCM) {
			app.logger.Warn("File is silent", logging.Fields{"file": path})
		}

		fv, err := extractor.ExtractAudio(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		rms, err := energy.RMS(data.PCM)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		out = append(out, featuresOutput{
			File:     path,
			Class:    dataset.LabelForName(filepath.Base(path)),
			RMS:      rms,
			Features: fv,
		})
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, o := range out {
		printTitle(o.File)
		printKeyValue("label (by name)", renderClass(o.Class))
		values := o.Features.Values()
		for i, name := range features.Names {
			printKeyValue(name, values[i])
		}
		printKeyValue("rms", o.RMS)
		fmt.Println()
	}
	return nil
}

// ListCmd lists a directory's WAV files
type ListCmd struct {
	Dir string `arg:"" type:"existingdir" help:"Directory of WAV files"`
}

func (c *ListCmd) Run(app *App) error {
	entries, err := dataset.Scan(c.Dir)
	if err != nil {
		return err
	}

	printTitle(fmt.Sprintf("%d WAV files in %s", len(entries), c.Dir))
	for _, e := range entries {
		printKeyValue(e.Name, renderClass(e.Class()))
	}
	return nil
}

// GenerateCmd writes training data for a directory
type GenerateCmd struct {
	Dir          string `arg:"" type:"existingdir" help:"Directory of WAV files"`
	Output       string `arg:"" optional:"" default:"${training_file}" help:"Training data output file"`
	SkipFailures bool   `help:"Skip files that fail to decode instead of aborting"`
}

func (c *GenerateCmd) Run(app *App) error {
	return generate(app, c.Dir, c.Output, c.SkipFailures)
}

func generate(app *App, dir, output string, skipFailures bool) error {
	b, err := app.builder(skipFailures)
	if err != nil {
		return err
	}

	records, err := b.BuildDir(app.ctx, dir)
	if err != nil {
		return err
	}
	if err := dataset.WriteTrainingFile(output, records); err != nil {
		return err
	}

	printKeyValue("training examples", len(records))
	printKeyValue("written to", output)
	printSummary(records)
	return nil
}

func printSummary(records []dataset.Record) {
	for _, s := range dataset.Summarize(records) {
		fmt.Println()
		printTitle(fmt.Sprintf("%s (%d files)", renderClass(s.Class), s.Count))
		for i, name := range features.Names {
			f := s.Features[i]
			printKeyValue(name, fmt.Sprintf("mean %.4g  std %.4g  range [%.4g, %.4g]", f.Mean, f.StdDev, f.Min, f.Max))
		}
	}
}

// TrainCmd generates training data then trains a model
type TrainCmd struct {
	Model        string `arg:"" help:"Model file to create"`
	Dir          string `arg:"" type:"existingdir" help:"Directory of labelled WAV files"`
	Data         string `default:"${training_file}" help:"Training data file to write"`
	SkipFailures bool   `help:"Skip files that fail to decode instead of aborting"`
}

func (c *TrainCmd) Run(app *App) error {
	if err := generate(app, c.Dir, c.Data, c.SkipFailures); err != nil {
		return err
	}

	svm := classifier.NewSVM(&app.config.Classifier)
	if err := svm.Train(app.ctx, c.Data, c.Model); err != nil {
		return err
	}
	printKeyValue("model", c.Model)
	return nil
}

// ClassifyCmd classifies audio files with a trained model
type ClassifyCmd struct {
	Model string   `arg:"" type:"existingfile" help:"Trained model file"`
	Files []string `arg:"" name:"files" type:"existingfile" help:"Audio files to classify"`
}

func (c *ClassifyCmd) Run(app *App) error {
	extractor, err := features.NewExtractor(&app.config.Features)
	if err != nil {
		return err
	}
	decoder := app.decoder()

	vectors := make([]features.FeatureVector, 0, len(c.Files))
	for _, path := range c.Files {
		fv, err := extractor.ExtractFile(app.ctx, decoder, path)
		if err != nil {
			return err
		}
		vectors = append(vectors, fv)
	}

	svm := classifier.NewSVM(&app.config.Classifier)
	predictions, err := svm.ClassifyVectors(app.ctx, c.Model, vectors, c.Files)
	if err != nil {
		return err
	}

	for i, p := range predictions {
		printKeyValue(filepath.Base(c.Files[i]), fmt.Sprintf("%s (%.4f)", renderClass(p.Class), p.Score))
	}
	return nil
}

// PlayCmd plays one file until it ends or Ctrl-C
type PlayCmd struct {
	File string `arg:"" type:"existingfile" help:"Audio file to play"`
}

func (c *PlayCmd) Run(app *App) error {
	data, err := app.decoder().DecodeFileContext(app.ctx, c.File)
	if err != nil {
		return err
	}

	printTitle(fmt.Sprintf("Playing %s (%s)", filepath.Base(c.File), data.Duration))

	player := playback.NewPlayer(&app.config.Playback, nil)
	if err := player.Play(app.ctx, data); err != nil {
		if app.ctx.Err() != nil {
			fmt.Println("Stopped")
			return nil
		}
		return err
	}
	return nil
}

// ExportCmd writes a directory's features to a parquet file
type ExportCmd struct {
	Dir          string `arg:"" type:"existingdir" help:"Directory of WAV files"`
	Output       string `arg:"" help:"Parquet output file"`
	SkipFailures bool   `help:"Skip files that fail to decode instead of aborting"`
}

func (c *ExportCmd) Run(app *App) error {
	b, err := app.builder(c.SkipFailures)
	if err != nil {
		return err
	}

	records, err := b.BuildDir(app.ctx, c.Dir)
	if err != nil {
		return err
	}
	if err := dataset.ExportParquet(c.Output, records); err != nil {
		return err
	}

	printKeyValue("rows", len(records))
	printKeyValue("written to", c.Output)
	printSummary(records)
	return nil
}
