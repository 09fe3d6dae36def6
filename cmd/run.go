package cmd

import (
	"post-sieve/feature/pipeline"

	"github.com/spf13/cobra"
)

var (
	runOutput       string
	runDiffOutput   string
	runWorkers      int
	runModifiedOnly bool
)

// runCmd chains diff and classify.
var runCmd = &cobra.Command{
	Use:   "run <reference> <target>",
	Short: "Diff two snapshots and classify the new or changed records",
	Long: `Diff target against reference and classify each emitted record as soon as
the diff produces it. Nothing is buffered in between; --diff-output keeps a copy
of the diff.

Examples:
  run june.jsonl july.jsonl -o matches.jsonl --diff-output july-diff.jsonl`,
	Args: cobra.ExactArgs(2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Output JSONL file for matches (default stdout)")
	runCmd.Flags().StringVar(&runDiffOutput, "diff-output", "", "Also write the diff to this file")
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", 0, "Concurrent oracle calls (default dispatch.concurrency)")
	runCmd.Flags().BoolVar(&runModifiedOnly, "modified-only", false, "Only classify records that exist in reference with different text")
	RootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	a, err := bootstrap(true, workersOverride(cmd, runWorkers), args[0], args[1])
	if err != nil {
		return err
	}
	defer a.log.Sync()

	_, err = a.files.Run(ctx, pipeline.RunArgs{
		Reference:    args[0],
		Target:       args[1],
		Output:       runOutput,
		DiffOutput:   runDiffOutput,
		ModifiedOnly: runModifiedOnly,
	})
	return err
}
