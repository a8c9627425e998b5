package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/pronounce/cmd/pronounce/internal/build"
	"github.com/haivivi/pronounce/pkg/audio/mfcc"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if formatOutput != "" {
			return output(build.Get(), "")
		}
		fmt.Println(build.String())
		if IsVerbose() {
			fmt.Printf("  go:       %s\n", build.Get().Go)
			fmt.Printf("  features: %s\n", mfcc.DefaultParams().Fingerprint())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
