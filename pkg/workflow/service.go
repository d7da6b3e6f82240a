package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/events"
	"github.com/codeready-toolchain/council/pkg/llm"
	"github.com/codeready-toolchain/council/pkg/models"
	"github.com/codeready-toolchain/council/pkg/store"
	"github.com/codeready-toolchain/council/pkg/template"
)

const (
	// persistTimeout bounds the storage commit that runs after execution,
	// detached from the request context.
	persistTimeout = 10 * time.Second

	// titleMaxTokens caps the chairman's title reply.
	titleMaxTokens = 64

	// maxTitleLength truncates overlong generated titles.
	maxTitleLength = 80
)

// ExecuteInput identifies one execution request.
type ExecuteInput struct {
	ConversationID string
	UserID         string
	Content        string
	WorkflowID     string
}

// Service runs workflows for conversations and persists the outcome. The
// HTTP layer stays thin: it authorizes the caller and opens the stream;
// the service records messages, executes, and commits results.
type Service struct {
	cfg       *config.Config
	store     store.Store
	registry  *Registry
	client    llm.Client
	templates *template.Renderer
	executor  *Executor
	logger    *slog.Logger
}

// NewService wires the execution service.
func NewService(cfg *config.Config, st store.Store, registry *Registry, client llm.Client, templates *template.Renderer) *Service {
	return &Service{
		cfg:       cfg,
		store:     st,
		registry:  registry,
		client:    client,
		templates: templates,
		executor:  NewExecutor(),
		logger:    slog.Default(),
	}
}

// Registry exposes the workflow catalog backing this service.
func (s *Service) Registry() *Registry {
	return s.registry
}

// ExecuteForConversation appends the user's message, runs the workflow,
// and commits the assistant message. The commit runs on a fresh context so
// a client that disconnected after the final stage still gets its result
// persisted. Failures outside stage execution surface as top-level error
// events; stage failures were already streamed by the executor.
func (s *Service) ExecuteForConversation(ctx context.Context, in ExecuteInput, sink events.ProgressSink) (*Result, error) {
	logger := s.logger.With("conversation_id", in.ConversationID, "workflow_id", in.WorkflowID)

	// 1. Resolve the workflow
	def, err := s.registry.Get(in.WorkflowID)
	if err != nil {
		s.emitError(sink, err.Error())
		return nil, err
	}

	// 2. Record the user's message before executing
	conv, err := s.store.GetConversation(ctx, in.ConversationID, "")
	if err != nil {
		s.emitError(sink, "conversation unavailable")
		return nil, err
	}
	firstExchange := len(conv.Messages) == 0

	if err := s.store.AppendUserMessage(ctx, in.ConversationID, in.Content); err != nil {
		logger.Error("Failed to record user message", "error", err)
		s.emitError(sink, "failed to record user message")
		return nil, err
	}

	// 3. Run the workflow
	result, err := s.executor.Execute(ctx, def, in.Content, sink)
	if err != nil {
		return nil, err
	}

	// 4. Commit the assistant message, detached from the request context
	persistCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	msg := assistantMessage(result)
	if err := s.store.AppendAssistantMessage(persistCtx, in.ConversationID, msg); err != nil {
		logger.Error("Failed to persist assistant message", "error", err)
		s.emitError(sink, "failed to persist assistant message")
		return nil, err
	}

	// 5. Name the conversation after its first full exchange
	if firstExchange {
		if syn, ok := synthesisFromResult(result); ok {
			go s.generateTitle(in.ConversationID, in.Content, syn.FinalAnswer)
		}
	}

	return result, nil
}

// assistantMessage projects the stage outputs into the persisted message
// shape. Stages absent from the result are simply omitted, so workflows
// without the full council shape still persist what they produced.
func assistantMessage(result *Result) models.Message {
	var stage1 []models.Stage1Response
	if out, ok := parallelFromResult(result); ok {
		stage1 = make([]models.Stage1Response, 0, len(out.Queries))
		for _, q := range out.Queries {
			stage1 = append(stage1, models.Stage1Response{Model: q.Model, Response: q.Response})
		}
	}

	var stage2 []models.Stage2Ranking
	if out, ok := rankingFromResult(result); ok {
		stage2 = make([]models.Stage2Ranking, 0, len(out.Rankings))
		for _, r := range out.Rankings {
			stage2 = append(stage2, models.Stage2Ranking{
				Model:         r.Model,
				Ranking:       r.RawEvaluation,
				ParsedRanking: r.ParsedRanking,
			})
		}
	}

	var stage3 *models.Stage3Synthesis
	if out, ok := synthesisFromResult(result); ok {
		stage3 = &models.Stage3Synthesis{Model: out.ChairmanModel, Response: out.FinalAnswer}
	}

	return models.NewAssistantMessage(stage1, stage2, stage3)
}

func parallelFromResult(result *Result) (ParallelQueryOutput, bool) {
	r, ok := result.StageResults[StageIDParallelQuery]
	if !ok {
		return ParallelQueryOutput{}, false
	}
	out, ok := r.Data.(ParallelQueryOutput)
	return out, ok
}

func rankingFromResult(result *Result) (PeerRankingOutput, bool) {
	r, ok := result.StageResults[StageIDPeerRanking]
	if !ok {
		return PeerRankingOutput{}, false
	}
	out, ok := r.Data.(PeerRankingOutput)
	return out, ok
}

func synthesisFromResult(result *Result) (SynthesisOutput, bool) {
	r, ok := result.StageResults[StageIDSynthesis]
	if !ok {
		return SynthesisOutput{}, false
	}
	out, ok := r.Data.(SynthesisOutput)
	return out, ok
}

// generateTitle asks the chairman for a short conversation title. It runs
// in the background with its own deadline; any failure leaves the default
// title in place.
func (s *Service) generateTitle(conversationID, userQuery, finalAnswer string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TitleGenerationTimeout)
	defer cancel()

	logger := s.logger.With("conversation_id", conversationID)

	prompt, err := s.templates.Render("title prompt", titlePromptTemplate, map[string]any{
		"userQuery":   userQuery,
		"finalAnswer": finalAnswer,
	})
	if err != nil {
		logger.Warn("Title generation skipped", "error", err)
		return
	}

	resp, err := s.client.Query(ctx, s.cfg.ChairmanModel, llm.SystemThenUser("", prompt), titleMaxTokens)
	if err != nil {
		logger.Warn("Title generation failed", "error", err)
		return
	}

	title := cleanTitle(resp.Content)
	if title == "" {
		logger.Warn("Title generation produced no usable text")
		return
	}
	if err := s.store.UpdateTitle(ctx, conversationID, title); err != nil {
		logger.Warn("Failed to save generated title", "error", err)
		return
	}
	logger.Info("Conversation titled", "title", title)
}

// cleanTitle normalizes model output into a single trimmed line.
func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	title = strings.Trim(title, `"'`)
	if len(title) > maxTitleLength {
		title = strings.TrimSpace(title[:maxTitleLength])
	}
	return title
}

// emitError sends a top-level error frame, best-effort.
func (s *Service) emitError(sink events.ProgressSink, msg string) {
	if sink == nil {
		return
	}
	if err := sink.Emit(events.NewError(msg)); err != nil {
		s.logger.Debug("Error event dropped", "error", err)
	}
}
