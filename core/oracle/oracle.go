package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Client sends a prompt to a reasoning service and returns its text answer.
type Client interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrMissingAPIKey is returned when a remote provider has no credentials.
	ErrMissingAPIKey = errors.New("missing api key")
	// ErrResponseInvalid is returned when the response has an unexpected shape.
	ErrResponseInvalid = errors.New("response invalid")
	// ErrUnknownProvider is returned for an unsupported Config.Provider.
	ErrUnknownProvider = errors.New("unknown provider")
)

// UpstreamError describes a non-success HTTP answer from a provider.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream %d: %s", e.Provider, e.Status, e.Message)
}

// New builds the client selected by cfg.Provider, throttled when
// cfg.RequestsPerMinute is set.
func New(cfg Config, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		client Client
		err    error
	)
	switch cfg.Provider {
	case ProviderAnthropic, "":
		client, err = NewAnthropic(cfg, logger)
	case ProviderOpenAI:
		client, err = NewOpenAI(cfg, logger)
	case ProviderEcho:
		client = NewEcho(cfg.EchoKeywords)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithRateLimit(client, cfg.RequestsPerMinute), nil
}

func timeout(cfg Config) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// snippet keeps at most n runes of s.
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
