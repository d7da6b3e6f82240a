package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/council/pkg/llm"
	"github.com/codeready-toolchain/council/pkg/template"
)

// SynthesisOutput is the output of the synthesis stage and the council's
// final answer to the user.
type SynthesisOutput struct {
	FinalAnswer   string `json:"finalAnswer"`
	Reasoning     string `json:"reasoning,omitempty"`
	ChairmanModel string `json:"chairmanModel"`
}

// SynthesisConfig configures the synthesis stage.
type SynthesisConfig struct {
	// ChairmanModel writes the final answer. It may, but need not, be a
	// council member.
	ChairmanModel string

	// SynthesisPromptTemplate is a Liquid template rendered with
	// {{ userQuery }}; it opens the chairman prompt. Empty means
	// DefaultSynthesisPromptTemplate.
	SynthesisPromptTemplate string

	// MaxTokens caps the chairman's reply. 0 means the provider default.
	MaxTokens int
}

// SynthesisStage de-anonymizes the council's answers, lays them next to
// the peer ranking, and asks a single chairman model for the final word.
// Unlike the earlier stages there is no fan-out and no partial tolerance:
// the chairman either answers or the workflow fails.
type SynthesisStage struct {
	baseStage
	client    llm.Client
	templates *template.Renderer
	config    SynthesisConfig
}

// NewSynthesisStage builds the third council stage.
func NewSynthesisStage(client llm.Client, templates *template.Renderer, cfg SynthesisConfig) *SynthesisStage {
	return &SynthesisStage{
		baseStage: baseStage{
			id:          StageIDSynthesis,
			name:        "Synthesis",
			stageType:   "synthesis",
			description: "The chairman merges the ranked answers into the final response",
			deps:        []string{StageIDParallelQuery, StageIDPeerRanking},
		},
		client:    client,
		templates: templates,
		config:    cfg,
	}
}

// Validate implements Stage.
func (s *SynthesisStage) Validate() error {
	if s.config.ChairmanModel == "" {
		return NewStageError(s.ID(), "no chairman model configured", nil)
	}
	if s.config.SynthesisPromptTemplate != "" {
		if err := s.templates.Validate("synthesis prompt", s.config.SynthesisPromptTemplate); err != nil {
			return NewStageError(s.ID(), "invalid synthesis prompt template", err)
		}
	}
	return nil
}

// Execute implements Stage.
func (s *SynthesisStage) Execute(ctx context.Context, wfCtx *Context, deps map[string]StageResult) (StageResult, error) {
	// 1. Collect both upstream outputs
	parallel, err := parallelOutput(deps)
	if err != nil {
		return StageResult{}, NewStageError(s.ID(), "parallel query output unavailable", err)
	}
	ranking, err := rankingOutput(deps)
	if err != nil {
		return StageResult{}, NewStageError(s.ID(), "peer ranking output unavailable", err)
	}

	// 2. Render the chairman prompt
	source := s.config.SynthesisPromptTemplate
	if source == "" {
		source = DefaultSynthesisPromptTemplate
	}
	opening, err := s.templates.Render("synthesis prompt", source, map[string]any{"userQuery": wfCtx.UserQuery})
	if err != nil {
		return StageResult{}, NewStageError(s.ID(), "failed to render synthesis prompt", err)
	}
	prompt := buildSynthesisPrompt(opening, parallel, ranking)

	// 3. One call to the chairman, no fan-out
	resp, err := s.client.Query(ctx, s.config.ChairmanModel, llm.SystemThenUser("", prompt), s.config.MaxTokens)
	if err != nil {
		return StageResult{}, NewStageError(s.ID(), "chairman query failed", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return StageResult{}, NewStageError(s.ID(), "chairman returned an empty answer", nil)
	}

	out := SynthesisOutput{
		FinalAnswer:   resp.Content,
		Reasoning:     resp.Reasoning,
		ChairmanModel: s.config.ChairmanModel,
	}
	return StageResult{
		Data: out,
		Metadata: map[string]any{
			"chairman_model": s.config.ChairmanModel,
		},
	}, nil
}

// buildSynthesisPrompt lays out the de-anonymized answers and the peer
// ranking for the chairman. The chairman, unlike the evaluators, sees
// which model wrote what.
func buildSynthesisPrompt(opening string, parallel ParallelQueryOutput, ranking PeerRankingOutput) string {
	answers, _ := labelAnswers(parallel.Queries)

	var b strings.Builder
	b.WriteString(opening)
	b.WriteString("\n\nThe council's answers:\n")
	for _, a := range answers {
		model := ranking.LabelToModel[a.label]
		if model == "" {
			model = a.model
		}
		fmt.Fprintf(&b, "\n%s (%s):\n%s\n", a.label, model, a.content)
	}

	b.WriteString("\nThe council's peer ranking, best first:\n")
	for i, agg := range ranking.AggregateRankings {
		fmt.Fprintf(&b, "%d. %s (average rank %.2f from %d rankings)\n", i+1, agg.Model, agg.AverageRank, agg.RankingsCount)
	}

	b.WriteString("\n")
	b.WriteString(synthesisInstructions)
	return b.String()
}

// rankingOutput extracts the typed peer ranking output from dependency
// results.
func rankingOutput(deps map[string]StageResult) (PeerRankingOutput, error) {
	result, ok := deps[StageIDPeerRanking]
	if !ok {
		return PeerRankingOutput{}, fmt.Errorf("missing result for stage %q", StageIDPeerRanking)
	}
	out, ok := result.Data.(PeerRankingOutput)
	if !ok {
		return PeerRankingOutput{}, fmt.Errorf("unexpected data type %T for stage %q", result.Data, StageIDPeerRanking)
	}
	return out, nil
}
