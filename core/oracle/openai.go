package oracle

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const openAIDefaultModel = "gpt-4o-mini"

// OpenAI calls an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client    *openai.Client
	model     string
	system    string
	maxTokens int
	logger    *zap.Logger
}

// NewOpenAI creates an OpenAI client from cfg.
func NewOpenAI(cfg Config, logger *zap.Logger) (*OpenAI, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("openai: %w: set ORACLE_API_KEY or OPENAI_API_KEY", ErrMissingAPIKey)
	}

	occ := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		occ.BaseURL = cfg.BaseURL
	}
	occ.HTTPClient = &http.Client{Timeout: timeout(cfg)}

	model := cfg.Model
	if model == "" {
		model = openAIDefaultModel
	}

	return &OpenAI{
		client:    openai.NewClientWithConfig(occ),
		model:     model,
		system:    cfg.SystemPrompt,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}, nil
}

// Invoke sends prompt as a user message and returns the first choice.
func (o *OpenAI) Invoke(ctx context.Context, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if o.system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: o.system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	}
	if o.maxTokens > 0 {
		req.MaxCompletionTokens = o.maxTokens
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	o.logger.Debug("Oracle usage",
		zap.String("model", o.model),
		zap.Int("input_tokens", resp.Usage.PromptTokens),
		zap.Int("output_tokens", resp.Usage.CompletionTokens),
	)
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w: no choices", ErrResponseInvalid)
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("openai: %w: empty content (finish_reason=%s)", ErrResponseInvalid, resp.Choices[0].FinishReason)
	}
	return content, nil
}
