package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flavourai/backend/internal/config"
	"github.com/flavourai/backend/internal/engine"
	"github.com/flavourai/backend/internal/storage"
)

var version = "dev"

// globalOptions are shared by every subcommand.
type globalOptions struct {
	recipesPath string
	reviewsPath string
	jsonOutput  bool
	debug       bool
}

func newRootCommand() *cobra.Command {
	cfg := config.Load()
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "flavourctl",
		Short: "flavourctl - query the recipe recommendation engine",
		Long: `flavourctl loads the recipe and review tables and answers queries
against them from the command line.

It supports keyword search over recipe keywords, nutrient level filtering
ranked by a keyword classifier, and review statistics.`,
		Version:      version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.recipesPath, "recipes", cfg.Data.RecipesPath, "Path to the recipe table (CSV)")
	flags.StringVar(&opts.reviewsPath, "reviews", cfg.Data.ReviewsPath, "Path to the review table (CSV)")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newSearchCommand(cfg, opts))
	cmd.AddCommand(newFilterCommand(cfg, opts))
	cmd.AddCommand(newReviewsCommand(cfg, opts))

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

func newLogger(opts *globalOptions, out io.Writer) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.WarnLevel)
	if opts.debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger.WithField("service", "flavourctl")
}

// loadEngine reads the tables named by the global flags.
func loadEngine(cmd *cobra.Command, cfg *config.Config, opts *globalOptions) (*engine.Engine, error) {
	logger := newLogger(opts, cmd.ErrOrStderr())

	reviewsPath := opts.reviewsPath
	if _, err := os.Stat(reviewsPath); err != nil {
		logger.Debugf("Review table %s not available, continuing without reviews", reviewsPath)
		reviewsPath = ""
	}

	store, err := storage.NewCSVStorage(opts.recipesPath, reviewsPath, logger)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	// One-shot queries never repeat, so caching would only cost memory.
	engOpts := engine.OptionsFromConfig(cfg)
	engOpts.CacheEnabled = false
	return engine.Load(store, engOpts, logger)
}
