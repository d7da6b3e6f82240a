// Package config loads and validates the service configuration from the
// environment. Configuration is read once at startup and treated as
// immutable afterwards.
package config

import "time"

// Config carries every runtime setting of the service.
type Config struct {
	// Upstream provider
	OpenRouterAPIKey string
	OpenRouterAPIURL string

	// Council composition
	CouncilModels []string
	ChairmanModel string

	// Persistence and server
	DataDir string
	Port    int

	// Timeouts
	APITimeout             time.Duration // per upstream LLM call
	TitleGenerationTimeout time.Duration // background title generation
	HTTPRequestTimeout     time.Duration // non-streaming request deadline
	HTTPKeepAliveTimeout   time.Duration // idle connection timeout

	// HTTP limits
	MaxRequestSizeBytes int64
	MaxConnections      int // 0 = unlimited

	// Rate limiting
	RateLimitEnabled               bool
	RateLimitWindow                time.Duration
	RateLimitMaxRequests           int
	RateLimitMaxWorkflowExecutions int

	// Token budgets; 0 means the provider default
	DefaultMaxTokens  int
	ChairmanMaxTokens int

	// MockMode swaps the real provider client for the deterministic mock
	// so the full stack runs without credentials.
	MockMode bool
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if !c.MockMode && c.OpenRouterAPIKey == "" {
		return &ValidationError{Field: "OPENROUTER_API_KEY", Message: "required unless MOCK_MODE is enabled"}
	}
	if len(c.CouncilModels) == 0 {
		return &ValidationError{Field: "COUNCIL_MODELS", Message: "at least one council model is required"}
	}
	if c.ChairmanModel == "" {
		return &ValidationError{Field: "CHAIRMAN_MODEL", Message: "a chairman model is required"}
	}
	if c.DataDir == "" {
		return &ValidationError{Field: "DATA_DIR", Message: "a data directory is required"}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ValidationError{Field: "PORT", Message: "must be between 1 and 65535"}
	}
	return nil
}
