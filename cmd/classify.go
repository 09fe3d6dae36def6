package cmd

import (
	"post-sieve/core/config"
	"post-sieve/feature/pipeline"

	"github.com/spf13/cobra"
)

var (
	classifyOutput  string
	classifyWorkers int
)

// classifyCmd runs every record of an input through the oracle.
var classifyCmd = &cobra.Command{
	Use:   "classify <input>",
	Short: "Classify every record of input and write the matches",
	Long: `Send every record of a JSONL input to the configured oracle and append the
records it judges a match to the output as soon as each verdict arrives.
Without --output the matches are written to stdout.

Examples:
  classify july-diff.jsonl -o matches.jsonl -w 8

  # Offline dry run
  ORACLE_PROVIDER=echo ORACLE_ECHO_KEYWORDS=remote classify posts.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyOutput, "output", "o", "", "Output JSONL file for matches (default stdout)")
	classifyCmd.Flags().IntVarP(&classifyWorkers, "workers", "w", 0, "Concurrent oracle calls (default dispatch.concurrency)")
	RootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	a, err := bootstrap(true, workersOverride(cmd, classifyWorkers), args[0])
	if err != nil {
		return err
	}
	defer a.log.Sync()

	_, err = a.files.Classify(ctx, pipeline.ClassifyArgs{
		Input:  args[0],
		Output: classifyOutput,
	})
	return err
}

// workersOverride applies a --workers flag on top of the loaded configuration.
func workersOverride(cmd *cobra.Command, workers int) func(*config.Config) {
	return func(cfg *config.Config) {
		if cmd.Flags().Changed("workers") {
			cfg.Dispatch.Concurrency = workers
		}
	}
}
