package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	anthropicAPIVersion   = "2023-06-01"
	anthropicDefaultURL   = "https://api.anthropic.com/v1/messages"
	anthropicDefaultModel = "claude-3-7-sonnet-20250219"
)

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Thinking  *anthropicThinking `json:"thinking,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicThinking struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Usage   *anthropicUsage    `json:"usage,omitempty"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Thinking string `json:"thinking,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Anthropic calls the Anthropic Messages API.
type Anthropic struct {
	hc        *http.Client
	url       string
	apiKey    string
	model     string
	system    string
	maxTokens int
	thinking  int
	logger    *zap.Logger
}

// NewAnthropic creates an Anthropic client from cfg.
func NewAnthropic(cfg Config, logger *zap.Logger) (*Anthropic, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("ANTHROPIC_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("anthropic: %w: set ORACLE_API_KEY or ANTHROPIC_API_KEY", ErrMissingAPIKey)
	}

	url := cfg.BaseURL
	if url == "" {
		url = anthropicDefaultURL
	}
	model := cfg.Model
	if model == "" {
		model = anthropicDefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	// max_tokens must leave room for the answer after the thinking budget.
	if cfg.ThinkingBudget > 0 && maxTokens <= cfg.ThinkingBudget {
		maxTokens = cfg.ThinkingBudget + 1024
	}

	return &Anthropic{
		hc:        &http.Client{Timeout: timeout(cfg)},
		url:       url,
		apiKey:    key,
		model:     model,
		system:    cfg.SystemPrompt,
		maxTokens: maxTokens,
		thinking:  cfg.ThinkingBudget,
		logger:    logger,
	}, nil
}

// Invoke sends prompt as a single user message and returns the final text block.
func (a *Anthropic) Invoke(ctx context.Context, prompt string) (string, error) {
	payload := anthropicRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    a.system,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	if a.thinking > 0 {
		payload.Thinking = &anthropicThinking{Type: "enabled", BudgetTokens: a.thinking}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("anthropic: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("anthropic: create request: %w", err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := a.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Provider: ProviderAnthropic, Status: resp.StatusCode, Message: snippet(strings.TrimSpace(string(raw)), 200)}
	}

	var out anthropicResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("anthropic: %w: %v", ErrResponseInvalid, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("anthropic: %s: %s", out.Error.Type, out.Error.Message)
	}
	if out.Usage != nil {
		a.logger.Debug("Oracle usage",
			zap.String("model", a.model),
			zap.Int("input_tokens", out.Usage.InputTokens),
			zap.Int("output_tokens", out.Usage.OutputTokens),
		)
	}
	if len(out.Content) == 0 {
		return "", fmt.Errorf("anthropic: %w: empty content", ErrResponseInvalid)
	}

	final := out.Content[len(out.Content)-1]
	if final.Type != "text" {
		return "", fmt.Errorf("anthropic: %w: final block is %q, not text", ErrResponseInvalid, final.Type)
	}
	return final.Text, nil
}
