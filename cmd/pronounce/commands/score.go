package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haivivi/pronounce/pkg/cli"
	"github.com/haivivi/pronounce/pkg/corpus"
	"github.com/haivivi/pronounce/pkg/pronounce"
)

var (
	scoreCorpus string
	scoreWord   string
	scoreTier   string
)

var scoreCmd = &cobra.Command{
	Use:   "score <audio-file>",
	Short: "Grade a recording of a word against the corpus",
	Long: `Grade a learner recording.

The recording may be WAV, Ogg (Opus or Vorbis), MP3, or anything ffmpeg can
read. The result is graded, no_speech, unavailable or rejected; only graded
results carry a pass/fail decision.

Examples:
  pronounce score --corpus ./corpus/features.corpus --word hello --tier A hello.webm
  pronounce score --word hello --tier C -o json hello.ogg`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreCorpus, "corpus", "", "corpus archive (default: configured archive)")
	scoreCmd.Flags().StringVar(&scoreWord, "word", "", "target word (required)")
	scoreCmd.Flags().StringVar(&scoreTier, "tier", "A", "difficulty tier: A, B or C")
	scoreCmd.MarkFlagRequired("word")
	rootCmd.AddCommand(scoreCmd)
}

// scoreOutput is the structured result of the score command.
type scoreOutput struct {
	Word     string              `json:"word" yaml:"word"`
	Response pronounce.Response  `json:"response" yaml:"response"`
	Decision *pronounce.Decision `json:"decision,omitempty" yaml:"decision,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	tier, err := pronounce.ParseTier(scoreTier)
	if err != nil {
		return err
	}
	audio, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	c, err := openCorpus(ctx, scoreCorpus)
	if err != nil {
		return err
	}
	opts, err := globalConfig.EvaluatorOptions(logger)
	if err != nil {
		return err
	}
	ev, err := pronounce.New(corpus.NewHolder(c), opts)
	if err != nil {
		return err
	}

	d, evalErr := ev.Evaluate(ctx, pronounce.Request{
		Word:          scoreWord,
		Tier:          tier,
		Audio:         audio,
		ContainerHint: filepath.Ext(args[0]),
	})
	resp := pronounce.Respond(d, evalErr)

	if formatOutput != "" {
		if err := output(scoreOutput{Word: scoreWord, Response: resp, Decision: d}, cli.FormatYAML); err != nil {
			return err
		}
	} else {
		v := cli.Verdict{
			Word:    scoreWord,
			Tier:    string(tier),
			Status:  string(resp.Status),
			Passed:  resp.Passed,
			Points:  resp.Points,
			Cost:    resp.RawCost,
			Message: resp.Message,
		}
		if d != nil {
			v.Threshold = d.Threshold
		}
		fmt.Println(v.Render(cli.NewStyles(cli.DefaultTheme)))
	}

	if resp.Status != pronounce.StatusGraded {
		return fmt.Errorf("not graded: %s", resp.Status)
	}
	return nil
}
