package pipeline

import (
	"bytes"
	"errors"
	"mime/multipart"
	"strconv"

	"post-sieve/core/classify"
	"post-sieve/core/diff"
	"post-sieve/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the pipeline.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the pipeline routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/v1")
	group.Post("/diff", h.HandleDiff)
	group.Post("/classify", h.HandleClassify)
}

// RegisterPublicRoutes registers the routes served without authentication.
func RegisterPublicRoutes(app fiber.Router) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// HandleDiff diffs two uploaded JSONL files.
// Form files: reference, target. Query: modified_only=true.
func (h *Handler) HandleDiff(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	ref, err := formStream(c, "reference")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	target, err := formStream(c, "target")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	opts := diff.Options{ModifiedOnly: c.QueryBool("modified_only", false)}
	out := &classify.MemorySink{}

	report, err := h.service.Diff(c.Context(), ref, target, opts, out)
	if err != nil {
		l.Error("Diff failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"records": out.Records(),
		"report":  report,
	})
}

// HandleClassify classifies a JSONL request body.
// Query: concurrency=N overrides the configured worker count.
func (h *Handler) HandleClassify(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	workers := 0
	if raw := c.Query("concurrency"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "concurrency must be a positive integer"})
		}
		workers = n
	}

	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	out := &classify.MemorySink{}
	summary, err := h.service.Classify(c.Context(), Stream{Name: "request", Reader: bytes.NewReader(body)}, out, workers)
	if err != nil {
		l.Error("Classification failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   err.Error(),
			"summary": summary,
		})
	}

	return c.JSON(fiber.Map{
		"matches": out.Records(),
		"summary": summary,
	})
}

func formStream(c *fiber.Ctx, field string) (Stream, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return Stream{}, errors.New("missing form file: " + field)
	}
	f, err := openPart(fh)
	if err != nil {
		return Stream{}, err
	}
	return Stream{Name: fh.Filename, Reader: f}, nil
}

// openPart reads the upload fully; fasthttp may back it with a temp file that
// is removed when the request ends.
func openPart(fh *multipart.FileHeader) (*bytes.Reader, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, err
	}
	return bytes.NewReader(buf.Bytes()), nil
}
