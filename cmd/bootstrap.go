package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"post-sieve/core/config"
	"post-sieve/core/logger"
	"post-sieve/core/oracle"
	"post-sieve/core/prompt"
	"post-sieve/core/source"
	"post-sieve/core/storage"
	"post-sieve/feature/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDir is where .env and config.yaml are looked up.
var configDir string

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	service *pipeline.Service
	files   *pipeline.Files
}

// bootstrap loads configuration, lets overrides adjust it, and builds the
// pipeline. The oracle is only built when withOracle is set. inputs are the
// locations the command will read; a storage client is created only when one
// of them is an s3:// object.
func bootstrap(withOracle bool, override func(*config.Config), inputs ...string) (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(log)

	var client oracle.Client
	if withOracle {
		if client, err = oracle.New(cfg.Oracle, log); err != nil {
			return nil, fmt.Errorf("failed to create oracle client: %w", err)
		}
	}

	prompts, err := prompt.Load(cfg.Oracle.PromptFile)
	if err != nil {
		return nil, err
	}

	var store storage.Client
	if source.NeedsStorage(inputs...) {
		if store, err = storage.NewClient(cfg.Storage); err != nil {
			return nil, err
		}
	}

	svc := pipeline.NewService(client, prompts, cfg.Dispatch, log)
	return &app{
		cfg:     cfg,
		log:     log,
		service: svc,
		files:   pipeline.NewFiles(svc, source.NewOpener(store), cfg.Dispatch.DurableWrites),
	}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
