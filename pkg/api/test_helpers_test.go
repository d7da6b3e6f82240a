package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/llm"
	"github.com/codeready-toolchain/council/pkg/models"
	"github.com/codeready-toolchain/council/pkg/ratelimit"
	"github.com/codeready-toolchain/council/pkg/store"
	"github.com/codeready-toolchain/council/pkg/template"
	"github.com/codeready-toolchain/council/pkg/workflow"
)

// Tokens used across handler tests. Both are shorter than the identity
// prefix, so the derived user IDs are the tokens themselves.
const (
	tokenAlice = "Bearer alice-token"
	tokenBob   = "Bearer bob-token"
)

// testServerConfig returns a config with generous limits so individual
// tests only tighten the knob they exercise.
func testServerConfig() *config.Config {
	return &config.Config{
		MockMode:      true,
		CouncilModels: []string{"model-a", "model-b", "model-c"},
		ChairmanModel: "chairman-model",
		DataDir:       "unused",
		Port:          8001,

		APITimeout:             5 * time.Second,
		TitleGenerationTimeout: time.Second,
		HTTPRequestTimeout:     5 * time.Second,
		HTTPKeepAliveTimeout:   5 * time.Second,

		MaxRequestSizeBytes: config.DefaultMaxRequestSizeBytes,

		RateLimitEnabled:               true,
		RateLimitWindow:                time.Minute,
		RateLimitMaxRequests:           1000,
		RateLimitMaxWorkflowExecutions: 1000,
	}
}

// newTestServer wires the full stack: file store in a temp dir, mock LLM
// client, council workflow, execution service, rate limiter.
func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	client := llm.NewMockClient(0)
	templates := template.NewRenderer()

	registry := workflow.NewRegistry()
	require.NoError(t, registry.Register(workflow.NewCouncilWorkflow(client, templates, cfg)))

	service := workflow.NewService(cfg, st, registry, client, templates)
	return NewServer(cfg, st, registry, service, ratelimit.NewLimiter(cfg.RateLimitEnabled))
}

// doRequest runs one request through the full middleware chain.
func doRequest(t *testing.T, s *Server, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// createConversation makes a conversation through the API and returns its ID.
func createConversation(t *testing.T, s *Server, token string) string {
	t.Helper()

	rec := doRequest(t, s, http.MethodPost, "/api/conversations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var conv models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	require.NotEmpty(t, conv.ID)
	return conv.ID
}

// executeBody builds the JSON body for the execute endpoint.
func executeBody(t *testing.T, content, workflowID string) *strings.Reader {
	t.Helper()

	b, err := json.Marshal(ExecuteRequest{Content: content, WorkflowID: workflowID})
	require.NoError(t, err)
	return strings.NewReader(string(b))
}

// errorMessage decodes the uniform {"error": ...} response body.
func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

// parseSSEFrames decodes every data: frame in an SSE response body.
func parseSSEFrames(t *testing.T, body string) []map[string]any {
	t.Helper()

	var frames []map[string]any
	for _, line := range strings.Split(body, "\n") {
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var frame map[string]any
		require.NoError(t, json.Unmarshal([]byte(data), &frame))
		frames = append(frames, frame)
	}
	return frames
}

// frameTypes projects the type field of each frame.
func frameTypes(frames []map[string]any) []string {
	types := make([]string, 0, len(frames))
	for _, frame := range frames {
		s, _ := frame["type"].(string)
		types = append(types, s)
	}
	return types
}
