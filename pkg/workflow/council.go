package workflow

import (
	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/llm"
	"github.com/codeready-toolchain/council/pkg/template"
)

// CouncilWorkflowID identifies the built-in deliberation workflow.
const CouncilWorkflowID = "llm-council"

// NewCouncilWorkflow assembles the built-in three-stage council: every
// model answers, every model ranks the anonymized answers, the chairman
// synthesizes the final response.
func NewCouncilWorkflow(client llm.Client, templates *template.Renderer, cfg *config.Config) *Definition {
	return &Definition{
		ID:          CouncilWorkflowID,
		Name:        "LLM Council",
		Version:     "1.0.0",
		Description: "Council models answer independently, anonymously rank each other's answers, and a chairman delivers the final response",
		Stages: []Stage{
			NewParallelQueryStage(client, templates, ParallelQueryConfig{
				Models: cfg.CouncilModels,
			}),
			NewPeerRankingStage(client, templates, PeerRankingConfig{
				Models: cfg.CouncilModels,
			}),
			NewSynthesisStage(client, templates, SynthesisConfig{
				ChairmanModel: cfg.ChairmanModel,
				MaxTokens:     cfg.ChairmanMaxTokens,
			}),
		},
	}
}
