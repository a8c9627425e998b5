package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/pronounce/pkg/cli"
)

var wordsCorpus string

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "List the words of a corpus archive with their recording counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCorpus(cmd.Context(), wordsCorpus)
		if err != nil {
			return err
		}
		logger.Debug("corpus loaded", "build_id", c.BuildID(), "entries", c.Len(),
			"params", c.Params().Fingerprint())
		return output(countTable(c.Counts()), cli.FormatTable)
	},
}

func init() {
	wordsCmd.Flags().StringVar(&wordsCorpus, "corpus", "", "corpus archive (default: configured archive)")
	rootCmd.AddCommand(wordsCmd)
}
