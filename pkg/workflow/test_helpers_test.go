package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/llm"
	"github.com/codeready-toolchain/council/pkg/models"
	"github.com/codeready-toolchain/council/pkg/template"
)

// mockLLMClient is a test mock for llm.Client. Hooks override behavior per
// test; without hooks every model answers "answer from <model>".
type mockLLMClient struct {
	mu sync.Mutex

	queryFn    func(ctx context.Context, model string, messages []llm.Message, maxTokens int) (*llm.Response, error)
	parallelFn func(ctx context.Context, models []string, messages []llm.Message) map[string]*llm.Response

	queryCalls    []queryCall
	parallelCalls []parallelCall
}

type queryCall struct {
	model     string
	messages  []llm.Message
	maxTokens int
}

type parallelCall struct {
	models   []string
	messages []llm.Message
}

func (m *mockLLMClient) Query(ctx context.Context, model string, messages []llm.Message, maxTokens int) (*llm.Response, error) {
	m.mu.Lock()
	m.queryCalls = append(m.queryCalls, queryCall{model: model, messages: messages, maxTokens: maxTokens})
	m.mu.Unlock()

	if m.queryFn != nil {
		return m.queryFn(ctx, model, messages, maxTokens)
	}
	return &llm.Response{Content: "answer from " + model}, nil
}

func (m *mockLLMClient) QueryParallel(ctx context.Context, modelList []string, messages []llm.Message) map[string]*llm.Response {
	m.mu.Lock()
	m.parallelCalls = append(m.parallelCalls, parallelCall{models: modelList, messages: messages})
	m.mu.Unlock()

	if m.parallelFn != nil {
		return m.parallelFn(ctx, modelList, messages)
	}
	out := make(map[string]*llm.Response, len(modelList))
	for _, model := range modelList {
		out[model] = &llm.Response{Content: "answer from " + model}
	}
	return out
}

func (m *mockLLMClient) lastQuery() queryCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls[len(m.queryCalls)-1]
}

func (m *mockLLMClient) lastParallel() parallelCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parallelCalls[len(m.parallelCalls)-1]
}

// stubStage is a minimal Stage for executor and validator tests.
type stubStage struct {
	id          string
	deps        []string
	validateErr error
	executeFn   func(ctx context.Context, wfCtx *Context, deps map[string]StageResult) (StageResult, error)
}

func (s *stubStage) ID() string             { return s.id }
func (s *stubStage) Name() string           { return "Stage " + s.id }
func (s *stubStage) Type() string           { return "stub" }
func (s *stubStage) Description() string    { return "" }
func (s *stubStage) Dependencies() []string { return s.deps }
func (s *stubStage) Validate() error        { return s.validateErr }

func (s *stubStage) Execute(ctx context.Context, wfCtx *Context, deps map[string]StageResult) (StageResult, error) {
	if s.executeFn != nil {
		return s.executeFn(ctx, wfCtx, deps)
	}
	return StageResult{Data: s.id + " output"}, nil
}

// stubDefinition wraps stages in a valid definition envelope.
func stubDefinition(stages ...Stage) *Definition {
	return &Definition{
		ID:      "test-workflow",
		Name:    "Test Workflow",
		Version: "0.0.1",
		Stages:  stages,
	}
}

// testRenderer is shared across stage tests; the renderer is stateless.
var testRenderer = template.NewRenderer()

// testConfig returns a config with a three-model council, enough for
// workflow construction in tests.
func testConfig() *config.Config {
	return &config.Config{
		CouncilModels:          []string{"model-a", "model-b", "model-c"},
		ChairmanModel:          "chairman-model",
		TitleGenerationTimeout: 5 * time.Second,
	}
}

// parallelResult builds a dependency map holding a parallel query output,
// one successful answer per content entry. A nil content marks a failed
// model.
func parallelResult(answers map[string]*string, order []string) map[string]StageResult {
	out := ParallelQueryOutput{}
	for _, model := range order {
		answer := ModelAnswer{Model: model, Response: answers[model]}
		if answer.Response != nil {
			out.SuccessCount++
		} else {
			out.FailureCount++
		}
		out.Queries = append(out.Queries, answer)
	}
	return map[string]StageResult{
		StageIDParallelQuery: {Data: out},
	}
}

func strptr(s string) *string { return &s }

// memStore is an in-memory store.Store for service tests.
type memStore struct {
	mu    sync.Mutex
	convs map[string]*models.Conversation

	appendUserErr      error
	appendAssistantErr error
	updateTitleErr     error

	titleUpdates []string
}

func newMemStore() *memStore {
	return &memStore{convs: map[string]*models.Conversation{}}
}

func (s *memStore) CreateConversation(_ context.Context, id, userID string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := models.NewConversation(id, userID)
	s.convs[id] = conv
	return conv, nil
}

func (s *memStore) GetConversation(_ context.Context, id, userID string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, fmt.Errorf("not found: %s", id)
	}
	if userID != "" && conv.UserID != userID {
		return nil, fmt.Errorf("forbidden: %s", id)
	}
	copied := *conv
	copied.Messages = append([]models.Message(nil), conv.Messages...)
	return &copied, nil
}

func (s *memStore) AppendUserMessage(_ context.Context, id, content string) error {
	if s.appendUserErr != nil {
		return s.appendUserErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return fmt.Errorf("not found: %s", id)
	}
	conv.Messages = append(conv.Messages, models.NewUserMessage(content))
	return nil
}

func (s *memStore) AppendAssistantMessage(_ context.Context, id string, msg models.Message) error {
	if s.appendAssistantErr != nil {
		return s.appendAssistantErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return fmt.Errorf("not found: %s", id)
	}
	conv.Messages = append(conv.Messages, msg)
	return nil
}

func (s *memStore) UpdateTitle(_ context.Context, id, title string) error {
	if s.updateTitleErr != nil {
		return s.updateTitleErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return fmt.Errorf("not found: %s", id)
	}
	conv.Title = title
	s.titleUpdates = append(s.titleUpdates, title)
	return nil
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]models.ConversationMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ConversationMetadata
	for _, conv := range s.convs {
		if conv.UserID == userID {
			out = append(out, conv.Metadata())
		}
	}
	return out, nil
}

func (s *memStore) conversation(id string) *models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convs[id]
}
