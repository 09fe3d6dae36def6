package cmd

import (
	"post-sieve/feature/pipeline"

	"github.com/spf13/cobra"
)

var diffModifiedOnly bool

// diffCmd writes the new and changed records of a target snapshot.
var diffCmd = &cobra.Command{
	Use:   "diff <reference> <target> <output>",
	Short: "Write the records of target that are new or changed relative to reference",
	Long: `Compare a target JSONL snapshot against a reference snapshot and write every
record whose id is new or whose text changed to output. Records whose text is
identical are dropped, whatever their user or timestamp.

Inputs may be local paths or s3://bucket/key objects.

Examples:
  # New and changed posts
  diff june.jsonl july.jsonl july-diff.jsonl

  # Only posts that were edited
  diff june.jsonl july.jsonl edits.jsonl --modified-only`,
	Args: cobra.ExactArgs(3),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&diffModifiedOnly, "modified-only", false, "Only emit records that exist in reference with different text")
	RootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	a, err := bootstrap(false, nil, args[0], args[1])
	if err != nil {
		return err
	}
	defer a.log.Sync()

	_, err = a.files.Diff(ctx, pipeline.DiffArgs{
		Reference:    args[0],
		Target:       args[1],
		Output:       args[2],
		ModifiedOnly: diffModifiedOnly,
	})
	return err
}
