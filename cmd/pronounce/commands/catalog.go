package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/pronounce/pkg/catalog"
	"github.com/haivivi/pronounce/pkg/cli"
)

var (
	catalogDir string
	catalogMin int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [word]",
	Short: "List recording counts from the catalog store",
	Long: `List the per-word recording counts published by the last build.

With a word argument only that word is shown. --min hides words with fewer
recordings, which is how the surrounding application decides whether a word
can be offered as an exercise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogDir, "catalog", "", "catalog directory (default: configured or ~/.pronounce/catalog)")
	catalogCmd.Flags().IntVar(&catalogMin, "min", 1, "minimum recordings for a word to be listed")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := catalogDir
	if dir == "" && globalConfig.Catalog.Dir == "" && !globalConfig.Catalog.InMemory {
		paths, err := cli.NewPaths()
		if err != nil {
			return err
		}
		if err := paths.EnsureCatalogDir(); err != nil {
			return err
		}
		dir = paths.CatalogDir()
	}
	store, err := globalConfig.OpenCatalog(dir, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		e, err := store.Get(ctx, args[0])
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("word %q is not in the catalog", args[0])
		}
		if err != nil {
			return err
		}
		return output(e, cli.FormatYAML)
	}

	var entries entryTable
	for e, err := range store.List(ctx) {
		if err != nil {
			return err
		}
		if e.Offerable(catalogMin) {
			entries = append(entries, e)
		}
	}
	return output(entries, cli.FormatTable)
}

// entryTable renders catalog entries as a table.
type entryTable []catalog.Entry

func (t entryTable) Header() []string {
	return []string{"WORD", "RECORDINGS", "BUILD", "UPDATED"}
}

func (t entryTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, e := range t {
		rows[i] = []string{e.Word, strconv.Itoa(e.Recordings), e.BuildID, e.UpdatedAt.Format("2006-01-02 15:04:05")}
	}
	return rows
}
