package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// labelPattern finds anonymized response labels inside a ranking prompt.
var labelPattern = regexp.MustCompile(`Response [A-Z]`)

// MockClient produces deterministic canned responses so the full stack runs
// without provider credentials. Ranking prompts get a well-formed FINAL
// RANKING section built from the labels present in the prompt, which keeps
// the downstream parser and aggregator exercised in mock mode.
type MockClient struct {
	latency time.Duration
}

// NewMockClient returns a mock with the given artificial per-call latency.
func NewMockClient(latency time.Duration) *MockClient {
	return &MockClient{latency: latency}
}

// Query implements Client.
func (m *MockClient) Query(ctx context.Context, model string, messages []Message, maxTokens int) (*Response, error) {
	if m.latency > 0 {
		select {
		case <-time.After(m.latency):
		case <-ctx.Done():
			return nil, &UpstreamError{Model: model, Message: "mock call canceled", Cause: ctx.Err()}
		}
	}

	prompt := lastUserContent(messages)
	switch {
	case strings.Contains(prompt, "FINAL RANKING"):
		return &Response{Content: m.rankingEvaluation(prompt)}, nil
	case strings.Contains(strings.ToLower(prompt), "synthesi"):
		return &Response{
			Content: fmt.Sprintf("After weighing every council answer and the peer rankings, "+
				"the combined view from %s is: the council broadly agrees, and the strongest "+
				"points from the top-ranked responses are merged here into a single answer.", model),
		}, nil
	case strings.Contains(strings.ToLower(prompt), "short title"):
		return &Response{Content: "Mock Council Session"}, nil
	default:
		return &Response{
			Content:   fmt.Sprintf("Mock answer from %s: this is a simulated council response to the question.", model),
			Reasoning: fmt.Sprintf("mock reasoning trace from %s", model),
		}, nil
	}
}

// QueryParallel implements Client.
func (m *MockClient) QueryParallel(ctx context.Context, models []string, messages []Message) map[string]*Response {
	return queryParallel(ctx, m.Query, models, messages, 0)
}

// rankingEvaluation builds an evaluation with a parseable FINAL RANKING
// section listing the distinct labels found in the prompt, reversed so the
// aggregate ordering differs from the presentation order.
func (m *MockClient) rankingEvaluation(prompt string) string {
	seen := map[string]bool{}
	var labels []string
	for _, l := range labelPattern.FindAllString(prompt, -1) {
		if !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return "No responses were provided to evaluate."
	}

	var b strings.Builder
	b.WriteString("Each response was reviewed for accuracy and depth.\n\nFINAL RANKING:\n")
	for i := range labels {
		fmt.Fprintf(&b, "%d. %s\n", i+1, labels[len(labels)-1-i])
	}
	return b.String()
}

func lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}
