package workflow

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/council/pkg/llm"
	"github.com/codeready-toolchain/council/pkg/template"
)

// ModelAnswer is one council model's independent answer. Response is nil
// when the model failed or timed out.
type ModelAnswer struct {
	Model     string  `json:"model"`
	Response  *string `json:"response"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// ParallelQueryOutput is the output of the parallel query stage. Queries
// holds one entry per configured model, in configuration order, so the
// ranking stage can assign anonymization labels deterministically.
type ParallelQueryOutput struct {
	Queries      []ModelAnswer `json:"queries"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
}

// ParallelQueryConfig configures the parallel query stage.
type ParallelQueryConfig struct {
	// Models are the council members queried in parallel.
	Models []string

	// SystemPrompt, when set, is prepended to every model's messages.
	SystemPrompt string

	// UserPromptTemplate is a Liquid template rendered with {{ userQuery }}.
	// Empty means DefaultUserPromptTemplate.
	UserPromptTemplate string
}

// ParallelQueryStage fans the user's question out to every council model at
// once. Individual model failures are recorded, not fatal; the stage fails
// only when no model answered at all.
type ParallelQueryStage struct {
	baseStage
	client    llm.Client
	templates *template.Renderer
	config    ParallelQueryConfig
}

// NewParallelQueryStage builds the first council stage. It has no
// dependencies and always runs first.
func NewParallelQueryStage(client llm.Client, templates *template.Renderer, cfg ParallelQueryConfig) *ParallelQueryStage {
	return &ParallelQueryStage{
		baseStage: baseStage{
			id:          StageIDParallelQuery,
			name:        "Parallel Query",
			stageType:   "parallel-query",
			description: "Every council model answers the question independently",
		},
		client:    client,
		templates: templates,
		config:    cfg,
	}
}

// Validate implements Stage.
func (s *ParallelQueryStage) Validate() error {
	if len(s.config.Models) == 0 {
		return NewStageError(s.ID(), "no council models configured", nil)
	}
	if s.config.UserPromptTemplate != "" {
		if err := s.templates.Validate("user prompt", s.config.UserPromptTemplate); err != nil {
			return NewStageError(s.ID(), "invalid user prompt template", err)
		}
	}
	return nil
}

// Execute implements Stage. Results keep configuration order regardless of
// which model finished first.
func (s *ParallelQueryStage) Execute(ctx context.Context, wfCtx *Context, deps map[string]StageResult) (StageResult, error) {
	// 1. Render the per-model user prompt
	source := s.config.UserPromptTemplate
	if source == "" {
		source = DefaultUserPromptTemplate
	}
	prompt, err := s.templates.Render("user prompt", source, map[string]any{"userQuery": wfCtx.UserQuery})
	if err != nil {
		return StageResult{}, NewStageError(s.ID(), "failed to render user prompt", err)
	}

	// 2. Fan out to the council
	messages := llm.SystemThenUser(s.config.SystemPrompt, prompt)
	responses := s.client.QueryParallel(ctx, s.config.Models, messages)

	// 3. Assemble results in configuration order
	out := ParallelQueryOutput{Queries: make([]ModelAnswer, 0, len(s.config.Models))}
	for _, model := range s.config.Models {
		answer := ModelAnswer{Model: model}
		if resp := responses[model]; resp != nil {
			content := resp.Content
			answer.Response = &content
			answer.Reasoning = resp.Reasoning
			out.SuccessCount++
		} else {
			out.FailureCount++
		}
		out.Queries = append(out.Queries, answer)
	}

	if out.SuccessCount == 0 {
		return StageResult{}, NewStageError(s.ID(),
			fmt.Sprintf("all %d council models failed to answer", len(s.config.Models)), nil)
	}

	return StageResult{
		Data: out,
		Metadata: map[string]any{
			"success_count": out.SuccessCount,
			"failure_count": out.FailureCount,
		},
	}, nil
}
