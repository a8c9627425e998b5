package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haivivi/pronounce/internal/config"
	"github.com/haivivi/pronounce/pkg/cli"
	"github.com/haivivi/pronounce/pkg/corpus"
	"github.com/haivivi/pronounce/pkg/storage"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	formatOutput string
	outputFile   string

	// Set by PersistentPreRunE.
	globalConfig *config.Config
	logger       *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pronounce",
	Short: "Pronunciation scoring against native reference recordings",
	Long: `pronounce - build reference corpora and grade learner recordings.

A corpus is built offline from one directory per native speaker, each holding
recordings named after their word (cat.ogg, hello.wav). Learner recordings
are scored by aligning their MFCC features with every reference of the word.

Configuration is read from ~/.pronounce/config.yaml unless --config is given.

Examples:
  # Build a corpus and publish word counts to the catalog
  pronounce build --src ./speakers --dst ./corpus --catalog ~/.pronounce/catalog

  # Grade a recording at tier A
  pronounce score --corpus ./corpus/features.corpus --word hello --tier A hello.webm

  # List words in an archive
  pronounce words --corpus ./corpus/features.corpus`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.pronounce/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&formatOutput, "output", "o", "", "output format: yaml, json or table")
	rootCmd.PersistentFlags().StringVar(&outputFile, "output-file", "", "write output to file instead of stdout")
}

func setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if _, err := cli.ParseFormat(formatOutput); err != nil {
		return err
	}

	path := configPath
	if path == "" {
		if paths, err := cli.NewPaths(); err == nil {
			path = paths.ConfigFile()
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	globalConfig = cfg
	logger.Debug("config loaded", "path", path)
	return nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// output writes result in the selected format, defaulting to def.
func output(result any, def cli.OutputFormat) error {
	format := def
	if formatOutput != "" {
		format = cli.OutputFormat(formatOutput)
	}
	return cli.Output(result, cli.OutputOptions{Format: format, File: outputFile})
}

// openCorpus loads the archive at path, or the configured archive when path
// is empty. A load failure is fatal for every command that scores.
func openCorpus(ctx context.Context, path string) (*corpus.Corpus, error) {
	if path != "" {
		fs, err := storage.NewLocal(filepath.Dir(path))
		if err != nil {
			return nil, err
		}
		return corpus.Load(ctx, fs, filepath.Base(path))
	}
	fs, err := storage.Open(ctx, globalConfig.Corpus.Storage)
	if err != nil {
		return nil, fmt.Errorf("open corpus storage: %w", err)
	}
	return corpus.Load(ctx, fs, globalConfig.Corpus.Archive)
}
