package commands

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/pronounce/pkg/audio/mfcc"
	"github.com/haivivi/pronounce/pkg/catalog"
	"github.com/haivivi/pronounce/pkg/cli"
	"github.com/haivivi/pronounce/pkg/corpus"
	"github.com/haivivi/pronounce/pkg/storage"
)

var (
	buildSrc     string
	buildDst     string
	buildCatalog string
	buildReport  string
	buildWorkers int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a reference corpus from speaker recordings",
	Long: `Build a reference corpus.

The source directory holds one subdirectory per speaker. Each recording is
named after its word; all recordings of a word are numbered in sorted
speaker and file order, copied to {word}{index}{ext} in the destination and
summarized in the feature archive.

Without --dst the configured corpus storage is used (local or S3).

Examples:
  pronounce build --src ./speakers --dst ./corpus
  pronounce build --src ./speakers --dst ./corpus --report report.yaml --workers 8`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildSrc, "src", "", "source directory with one subdirectory per speaker (required)")
	buildCmd.Flags().StringVar(&buildDst, "dst", "", "destination directory (default: configured corpus storage)")
	buildCmd.Flags().StringVar(&buildCatalog, "catalog", "", "catalog directory to publish word counts to")
	buildCmd.Flags().StringVar(&buildReport, "report", "", "write the build report to this file")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "speaker directories processed in parallel (default GOMAXPROCS)")
	buildCmd.MarkFlagRequired("src")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := globalConfig

	if info, err := os.Stat(buildSrc); err != nil || !info.IsDir() {
		return fmt.Errorf("source %q is not a directory", buildSrc)
	}

	var dst storage.FileStore
	var err error
	if buildDst != "" {
		dst, err = storage.NewLocal(buildDst)
	} else {
		dst, err = storage.Open(ctx, cfg.Corpus.Storage)
	}
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}

	ext, err := mfcc.New(cfg.Features)
	if err != nil {
		return err
	}

	var store catalog.Store
	if buildCatalog != "" || cfg.Catalog.Dir != "" || cfg.Catalog.InMemory {
		store, err = cfg.OpenCatalog(buildCatalog, logger)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	workers := buildWorkers
	if workers == 0 {
		workers = cfg.Build.Workers
	}
	archive := cfg.Corpus.Archive
	if buildDst != "" {
		archive = corpus.DefaultArchiveName
	}

	report, err := corpus.Build(ctx, corpus.BuildOptions{
		Source:      os.DirFS(buildSrc),
		Dest:        dst,
		Decoder:     cfg.Decoder(logger),
		Extractor:   ext,
		Trim:        cfg.Trim(),
		Catalog:     store,
		Workers:     workers,
		ArchiveName: archive,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	for _, s := range report.Skipped {
		cli.PrintWarning("skipped %s: %s", s.Path, s.Error)
	}
	cli.PrintSuccess("built %d entries for %d words in %s (build %s)",
		report.Entries, len(report.Counts), cli.FormatDuration(report.Duration), report.BuildID)
	cli.PrintSuccess("wrote %s (%s)", report.Archive, cli.FormatBytes(report.ArchiveBytes))

	if buildReport != "" {
		format := cli.FormatYAML
		if formatOutput != "" {
			format = cli.OutputFormat(formatOutput)
		}
		return cli.Output(report, cli.OutputOptions{Format: format, File: buildReport})
	}
	if IsVerbose() || formatOutput != "" {
		return output(countTable(report.Counts), cli.FormatTable)
	}
	return nil
}

// countTable renders word counts as a table.
type countTable map[string]int

func (c countTable) Header() []string { return []string{"WORD", "RECORDINGS"} }

func (c countTable) Rows() [][]string {
	words := make([]string, 0, len(c))
	for w := range c {
		words = append(words, w)
	}
	sort.Strings(words)
	rows := make([][]string, len(words))
	for i, w := range words {
		rows[i] = []string{w, strconv.Itoa(c[w])}
	}
	return rows
}
