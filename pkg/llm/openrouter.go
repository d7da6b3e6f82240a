package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeready-toolchain/council/pkg/version"
)

// maxResponseSize caps provider response bodies to guard against unbounded
// reads from a misbehaving upstream.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// OpenRouterConfig carries the provider settings for the real client.
type OpenRouterConfig struct {
	APIKey           string
	APIURL           string
	Timeout          time.Duration // per-call wall clock cap
	DefaultMaxTokens int           // applied by QueryParallel; 0 = provider default
	Referer          string        // optional attribution header
	AppTitle         string        // optional attribution header
}

// OpenRouterClient talks to an OpenRouter-compatible chat-completions
// endpoint. Safe for concurrent use.
type OpenRouterClient struct {
	httpClient       *http.Client
	apiKey           string
	apiURL           string
	timeout          time.Duration
	defaultMaxTokens int
	referer          string
	appTitle         string
}

// NewOpenRouterClient builds the production client. The http.Client timeout
// is left slightly above the per-call timeout so context deadlines, not the
// transport, decide when a call is over.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	return &OpenRouterClient{
		httpClient:       &http.Client{Timeout: cfg.Timeout + 10*time.Second},
		apiKey:           cfg.APIKey,
		apiURL:           cfg.APIURL,
		timeout:          cfg.Timeout,
		defaultMaxTokens: cfg.DefaultMaxTokens,
		referer:          cfg.Referer,
		appTitle:         cfg.AppTitle,
	}
}

// chatRequest is the OpenRouter chat-completions request body.
type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

// chatResponse is the subset of the completion response we consume.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			Reasoning string `json:"reasoning"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// errorResponse is the provider's error envelope, parsed best-effort.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Query implements Client. Each call is bounded by the configured per-call
// timeout layered under the caller's context.
func (c *OpenRouterClient) Query(ctx context.Context, model string, messages []Message, maxTokens int) (*Response, error) {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reqBody := chatRequest{Model: model, Messages: messages}
	if maxTokens > 0 {
		reqBody.MaxTokens = maxTokens
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &UpstreamError{Model: model, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &UpstreamError{Model: model, Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", version.Full())
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.appTitle != "" {
		req.Header.Set("X-Title", c.appTitle)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return nil, &UpstreamError{
				Model:   model,
				Message: fmt.Sprintf("request timed out after %s", c.timeout),
				Timeout: true,
				Cause:   err,
			}
		}
		return nil, &UpstreamError{Model: model, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &UpstreamError{Model: model, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Model:      model,
			StatusCode: resp.StatusCode,
			Message:    providerErrorMessage(body),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &UpstreamError{Model: model, Message: "malformed response body", Cause: err}
	}
	if len(parsed.Choices) == 0 {
		return nil, &UpstreamError{Model: model, Message: "response contained no choices"}
	}

	msg := parsed.Choices[0].Message
	return &Response{Content: msg.Content, Reasoning: msg.Reasoning}, nil
}

// QueryParallel implements Client using the shared fan-out with the
// configured default token budget.
func (c *OpenRouterClient) QueryParallel(ctx context.Context, models []string, messages []Message) map[string]*Response {
	return queryParallel(ctx, c.Query, models, messages, c.defaultMaxTokens)
}

// providerErrorMessage extracts the provider's error text from an error
// body, falling back to a body snippet when the envelope does not parse.
func providerErrorMessage(body []byte) string {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	const snippet = 200
	if len(body) > snippet {
		body = body[:snippet]
	}
	if len(body) == 0 {
		return "upstream returned an error with an empty body"
	}
	return string(body)
}
