package cmd

import (
	"fmt"
	"os"

	"post-sieve/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "post-sieve",
	Short: "Incremental post diff and classification",
	Long: `post-sieve compares a snapshot of posts against a previous one and
classifies the new or changed posts with a language model, streaming the
matches to a JSONL file as they arrive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format at debug level gives readable ISO8601 timestamps for CLI users
		cfg := &logger.Config{
			Level:  "debug",
			Format: logger.FormatConsole,
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding .env and config.yaml")
}
