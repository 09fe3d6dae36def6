package oracle

// Config holds configuration for the oracle client.
type Config struct {
	// Provider selects the backend (anthropic, openai, echo).
	Provider string `mapstructure:"provider" default:"anthropic" validate:"oneof=anthropic openai echo"`
	// Model is the model identifier. Empty selects the provider default.
	Model string `mapstructure:"model" default:""`
	// APIKey authenticates requests. Falls back to ANTHROPIC_API_KEY / OPENAI_API_KEY.
	APIKey string `mapstructure:"api_key" default:""`
	// BaseURL overrides the provider endpoint.
	BaseURL string `mapstructure:"base_url" default:""`
	// MaxTokens caps the response length.
	MaxTokens int `mapstructure:"max_tokens" default:"2048" validate:"gte=1"`
	// ThinkingBudget enables extended thinking when > 0 (anthropic only).
	ThinkingBudget int `mapstructure:"thinking_budget" default:"1024" validate:"gte=0"`
	// SystemPrompt is sent as the system message.
	SystemPrompt string `mapstructure:"system_prompt" default:"You are a helpful assistant."`
	// TimeoutSeconds bounds a single request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"120"`
	// RequestsPerMinute throttles calls when > 0.
	RequestsPerMinute int `mapstructure:"requests_per_minute" default:"0" validate:"gte=0"`
	// PromptFile points to a text/template overriding the built-in prompt.
	PromptFile string `mapstructure:"prompt_file" default:""`
	// EchoKeywords is a comma separated keyword list for the echo provider.
	EchoKeywords string `mapstructure:"echo_keywords" default:""`
}

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderEcho      = "echo"
)
