package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/RyanBlaney/sonido-svm/config"
	"github.com/RyanBlaney/sonido-svm/dataset"
	"github.com/RyanBlaney/sonido-svm/logging"
	"github.com/alecthomas/kong"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Config   string           `short:"c" type:"path" help:"Path to YAML config file (optional)"`
	LogLevel string           `help:"Override the configured log level (debug, info, warn, error)"`
	Version  kong.VersionFlag `short:"v" help:"Show version information"`

	Features FeaturesCmd `cmd:"" help:"Print the feature vector of audio files"`
	List     ListCmd     `cmd:"" help:"List the WAV files in a directory with their labels"`
	Generate GenerateCmd `cmd:"" help:"Write training data for every WAV file in a directory"`
	Train    TrainCmd    `cmd:"" help:"Generate training data and train a model"`
	Classify ClassifyCmd `cmd:"" help:"Classify audio files as music or speech"`
	Play     PlayCmd     `cmd:"" help:"Play an audio file (Ctrl-C stops)"`
	Export   ExportCmd   `cmd:"" help:"Export a directory's features as parquet"`
}

// App is passed to every command's Run method
type App struct {
	ctx    context.Context
	config *config.Config
	logger logging.Logger
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("sonido-svm"),
		kong.Description("Music/speech feature extraction and SVM classification for WAV files"),
		kong.UsageOnError(),
		kong.Vars{
			"version":       version,
			"training_file": dataset.DefaultTrainingFile,
		},
	)

	cfg := config.Default()
	if cli.Config != "" {
		loaded, err := config.Load(cli.Config)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	logging.SetGlobalLogger(logger)
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer z.Sync()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &App{ctx: ctx, config: cfg, logger: logger}
	if err := kctx.Run(app); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}
