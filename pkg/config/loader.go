package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFromEnv reads every setting from the environment, applying defaults
// for anything unset. Malformed numeric or boolean values fall back to
// their defaults with a warning rather than failing startup; Validate
// decides what is actually fatal.
func LoadFromEnv() *Config {
	models := parseModelList(os.Getenv("COUNCIL_MODELS"))
	if len(models) == 0 {
		models = append([]string(nil), DefaultCouncilModels...)
	}

	return &Config{
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterAPIURL: getEnvOrDefault("OPENROUTER_API_URL", DefaultOpenRouterAPIURL),

		CouncilModels: models,
		ChairmanModel: getEnvOrDefault("CHAIRMAN_MODEL", DefaultChairmanModel),

		DataDir: getEnvOrDefault("DATA_DIR", DefaultDataDir),
		Port:    getEnvIntOrDefault("PORT", DefaultPort),

		APITimeout:             getEnvDurationMs("API_TIMEOUT_MS", DefaultAPITimeoutMs),
		TitleGenerationTimeout: getEnvDurationMs("TITLE_GENERATION_TIMEOUT_MS", DefaultTitleGenerationTimeoutMs),
		HTTPRequestTimeout:     getEnvDurationMs("HTTP_REQUEST_TIMEOUT_MS", DefaultHTTPRequestTimeoutMs),
		HTTPKeepAliveTimeout:   getEnvDurationMs("HTTP_KEEPALIVE_TIMEOUT_MS", DefaultHTTPKeepAliveTimeoutMs),

		MaxRequestSizeBytes: getEnvInt64OrDefault("HTTP_MAX_REQUEST_SIZE_BYTES", DefaultMaxRequestSizeBytes),
		MaxConnections:      getEnvIntOrDefault("HTTP_MAX_CONNECTIONS", DefaultMaxConnections),

		RateLimitEnabled:               getEnvBoolOrDefault("RATE_LIMIT_ENABLED", true),
		RateLimitWindow:                getEnvDurationMs("RATE_LIMIT_WINDOW_MS", DefaultRateLimitWindowMs),
		RateLimitMaxRequests:           getEnvIntOrDefault("RATE_LIMIT_MAX_REQUESTS", DefaultRateLimitMaxRequests),
		RateLimitMaxWorkflowExecutions: getEnvIntOrDefault("RATE_LIMIT_MAX_WORKFLOW_EXECUTIONS", DefaultRateLimitMaxWorkflowExecutions),

		DefaultMaxTokens:  getEnvIntOrDefault("DEFAULT_MAX_TOKENS", 0),
		ChairmanMaxTokens: getEnvIntOrDefault("CHAIRMAN_MAX_TOKENS", 0),

		MockMode: getEnvBoolOrDefault("MOCK_MODE", false),
	}
}

// parseModelList splits a comma-separated model list, trimming whitespace
// and dropping empty entries.
func parseModelList(raw string) []string {
	var models []string
	for _, part := range strings.Split(raw, ",") {
		if model := strings.TrimSpace(part); model != "" {
			models = append(models, model)
		}
	}
	return models
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return val
}

func getEnvInt64OrDefault(key string, defaultVal int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Invalid boolean in environment, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return val
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvIntOrDefault(key, defaultMs)) * time.Millisecond
}
