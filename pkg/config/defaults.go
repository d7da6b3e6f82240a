package config

// Defaults applied when the corresponding environment variable is unset or
// unparseable.
const (
	DefaultOpenRouterAPIURL = "https://openrouter.ai/api/v1/chat/completions"
	DefaultChairmanModel    = "google/gemini-2.5-pro"
	DefaultDataDir          = "data/conversations"
	DefaultPort             = 8001

	DefaultAPITimeoutMs             = 120_000
	DefaultTitleGenerationTimeoutMs = 30_000
	DefaultHTTPRequestTimeoutMs     = 300_000
	DefaultHTTPKeepAliveTimeoutMs   = 65_000

	DefaultMaxRequestSizeBytes = int64(1 << 20) // 1 MiB
	DefaultMaxConnections      = 0              // unlimited

	DefaultRateLimitWindowMs              = 60_000
	DefaultRateLimitMaxRequests           = 100
	DefaultRateLimitMaxWorkflowExecutions = 10
)

// DefaultCouncilModels is the built-in four-model council used when
// COUNCIL_MODELS is unset.
var DefaultCouncilModels = []string{
	"openai/gpt-4o",
	"anthropic/claude-sonnet-4",
	"google/gemini-2.5-pro",
	"x-ai/grok-3",
}
