package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/council/pkg/llm"
	"github.com/codeready-toolchain/council/pkg/template"
)

// ModelRanking is one evaluator's verdict: the raw evaluation text plus
// the label order extracted from it. ParsedRanking is empty when the text
// contained nothing parseable.
type ModelRanking struct {
	Model         string   `json:"model"`
	RawEvaluation string   `json:"rawEvaluation"`
	ParsedRanking []string `json:"parsedRanking"`
}

// PeerRankingOutput is the output of the peer ranking stage. LabelToModel
// is the anonymization key: it maps each "Response X" label to the model
// that wrote the answer.
type PeerRankingOutput struct {
	LabelToModel      map[string]string  `json:"labelToModel"`
	Rankings          []ModelRanking     `json:"rankings"`
	AggregateRankings []AggregateRanking `json:"aggregateRankings"`
}

// PeerRankingConfig configures the peer ranking stage.
type PeerRankingConfig struct {
	// Models are the evaluators. Usually the same set as the council.
	Models []string

	// RankingPromptTemplate is a Liquid template rendered with
	// {{ userQuery }}; it opens the evaluator prompt. Empty means
	// DefaultRankingPromptTemplate. The anonymized response block and the
	// ranking instructions are always appended after it.
	RankingPromptTemplate string
}

// PeerRankingStage anonymizes the first-stage answers and has every
// evaluator rank them. Evaluators see labels only, never model names, so
// no model can favor itself or a reputation.
type PeerRankingStage struct {
	baseStage
	client    llm.Client
	templates *template.Renderer
	config    PeerRankingConfig
}

// NewPeerRankingStage builds the second council stage.
func NewPeerRankingStage(client llm.Client, templates *template.Renderer, cfg PeerRankingConfig) *PeerRankingStage {
	return &PeerRankingStage{
		baseStage: baseStage{
			id:          StageIDPeerRanking,
			name:        "Peer Ranking",
			stageType:   "peer-ranking",
			description: "Each model ranks the anonymized answers of its peers",
			deps:        []string{StageIDParallelQuery},
		},
		client:    client,
		templates: templates,
		config:    cfg,
	}
}

// Validate implements Stage.
func (s *PeerRankingStage) Validate() error {
	if len(s.config.Models) == 0 {
		return NewStageError(s.ID(), "no evaluator models configured", nil)
	}
	if s.config.RankingPromptTemplate != "" {
		if err := s.templates.Validate("ranking prompt", s.config.RankingPromptTemplate); err != nil {
			return NewStageError(s.ID(), "invalid ranking prompt template", err)
		}
	}
	return nil
}

// Execute implements Stage. The stage fails only when not a single
// evaluator produced parseable ranking content.
func (s *PeerRankingStage) Execute(ctx context.Context, wfCtx *Context, deps map[string]StageResult) (StageResult, error) {
	// 1. Anonymize the successful first-stage answers
	parallel, err := parallelOutput(deps)
	if err != nil {
		return StageResult{}, NewStageError(s.ID(), "parallel query output unavailable", err)
	}
	answers, labelToModel := labelAnswers(parallel.Queries)
	if len(answers) == 0 {
		return StageResult{}, NewStageError(s.ID(), "no successful answers to rank", nil)
	}

	// 2. Render the evaluator prompt
	source := s.config.RankingPromptTemplate
	if source == "" {
		source = DefaultRankingPromptTemplate
	}
	opening, err := s.templates.Render("ranking prompt", source, map[string]any{"userQuery": wfCtx.UserQuery})
	if err != nil {
		return StageResult{}, NewStageError(s.ID(), "failed to render ranking prompt", err)
	}
	prompt := buildRankingPrompt(opening, answers)

	// 3. Every evaluator judges the same anonymized set
	responses := s.client.QueryParallel(ctx, s.config.Models, llm.SystemThenUser("", prompt))

	// 4. Parse the verdicts, in configuration order
	var rankings []ModelRanking
	parseable := 0
	for _, model := range s.config.Models {
		resp := responses[model]
		if resp == nil {
			continue
		}
		parsed := ParseRanking(resp.Content)
		if len(parsed) > 0 {
			parseable++
		}
		rankings = append(rankings, ModelRanking{
			Model:         model,
			RawEvaluation: resp.Content,
			ParsedRanking: parsed,
		})
	}
	if parseable == 0 {
		return StageResult{}, NewStageError(s.ID(), "no evaluator produced a parseable ranking", nil)
	}

	out := PeerRankingOutput{
		LabelToModel:      labelToModel,
		Rankings:          rankings,
		AggregateRankings: AggregateRankings(rankings, labelToModel),
	}
	return StageResult{
		Data: out,
		Metadata: map[string]any{
			"evaluator_count": len(rankings),
			"ranked_models":   len(out.AggregateRankings),
		},
	}, nil
}

// labeledAnswer pairs an anonymization label with the model behind it.
type labeledAnswer struct {
	label   string
	model   string
	content string
}

// labelAnswers assigns labels to the successful answers, in the order the
// models were configured: the first success becomes "Response A". The
// returned map is the labelToModel key published to later stages.
func labelAnswers(queries []ModelAnswer) ([]labeledAnswer, map[string]string) {
	var labeled []labeledAnswer
	labelToModel := make(map[string]string)
	for _, q := range queries {
		if q.Response == nil {
			continue
		}
		label := labelForIndex(len(labeled))
		labeled = append(labeled, labeledAnswer{label: label, model: q.Model, content: *q.Response})
		labelToModel[label] = q.Model
	}
	return labeled, labelToModel
}

// buildRankingPrompt appends the anonymized response block and the fixed
// ranking instructions to the rendered opening.
func buildRankingPrompt(opening string, answers []labeledAnswer) string {
	var b strings.Builder
	b.WriteString(opening)
	b.WriteString("\n\nThe responses:\n")
	for _, a := range answers {
		fmt.Fprintf(&b, "\n%s:\n%s\n", a.label, a.content)
	}
	b.WriteString("\n")
	b.WriteString(rankingInstructions)
	return b.String()
}

// parallelOutput extracts the typed parallel query output from dependency
// results.
func parallelOutput(deps map[string]StageResult) (ParallelQueryOutput, error) {
	result, ok := deps[StageIDParallelQuery]
	if !ok {
		return ParallelQueryOutput{}, fmt.Errorf("missing result for stage %q", StageIDParallelQuery)
	}
	out, ok := result.Data.(ParallelQueryOutput)
	if !ok {
		return ParallelQueryOutput{}, fmt.Errorf("unexpected data type %T for stage %q", result.Data, StageIDParallelQuery)
	}
	return out, nil
}
