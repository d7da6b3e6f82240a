// Package llm provides the upstream model client used by workflow stages:
// a single-call Query and a parallel fan-out QueryParallel with per-model
// failure tolerance. The production client speaks the OpenRouter
// chat-completions protocol; a mock client backs offline development.
package llm

import "context"

// Message roles in the chat-completions protocol.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message sent to a model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is a model's reply. Reasoning is populated only by providers
// that return a separate reasoning trace.
type Response struct {
	Content   string
	Reasoning string
}

// Client is the upstream provider seam. Implementations must be safe for
// concurrent use; a single client is shared across requests.
type Client interface {
	// Query sends one completion request to model. maxTokens <= 0 leaves
	// the provider default in place. The call is bounded by the client's
	// configured per-call timeout layered under ctx.
	Query(ctx context.Context, model string, messages []Message, maxTokens int) (*Response, error)

	// QueryParallel fans out one Query per model and never fails as a
	// whole: the returned map has exactly one entry per input model, nil
	// for models whose query failed.
	QueryParallel(ctx context.Context, models []string, messages []Message) map[string]*Response
}

// SystemThenUser builds the common two-message prompt shape. system may be
// empty, in which case only the user message is sent.
func SystemThenUser(system, user string) []Message {
	if system == "" {
		return []Message{{Role: RoleUser, Content: user}}
	}
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}
