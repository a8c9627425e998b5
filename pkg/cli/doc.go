// Package cli provides output helpers shared by the pronounce command-line
// tools.
//
// This package includes:
//   - Output formatting (YAML, JSON, table)
//   - Styled verdict lines for graded attempts
//   - Well-known directories under ~/.pronounce
//
// Example usage:
//
//	cli.Output(report, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
