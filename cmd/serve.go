package cmd

import (
	"post-sieve/core/loader"
	"post-sieve/core/logger"
	"post-sieve/core/middleware/auth"
	"post-sieve/core/middleware/rayid"
	"post-sieve/feature/pipeline"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves the diff and classify operations over HTTP, plus /healthz and /metrics.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	a, err := bootstrap(true, nil)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	srv := newServer(a)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Starting server", zap.String("port", a.cfg.Server.Port))
		errCh <- srv.Listen(a.cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server...")
	return srv.ShutdownWithTimeout(a.cfg.Server.ShutdownTimeout())
}

// newServer builds the Fiber app with middleware and routes.
func newServer(a *app) *fiber.App {
	srv := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             a.cfg.Server.BodyLimit(),
	})

	// RayID first so every later log line carries it
	srv.Use(rayid.New())

	srv.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(a.log, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	pipeline.RegisterPublicRoutes(srv)

	srv.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

	mgr := loader.NewManager(a.log)
	mgr.Register(pipeline.NewFeature(a.service))
	if err := mgr.LoadAll(srv); err != nil {
		a.log.Fatal("Failed to load features", zap.Error(err))
	}

	return srv
}
