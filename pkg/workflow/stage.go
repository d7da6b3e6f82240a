// Package workflow implements the DAG-based deliberation engine: stage
// contracts, definition validation and topological planning, the sequential
// executor with progress events, the three council stages, and the ranking
// aggregation that feeds synthesis.
package workflow

import "context"

// Canonical stage IDs of the council workflow. Dependencies are declared
// against these.
const (
	StageIDParallelQuery = "parallel-query"
	StageIDPeerRanking   = "peer-ranking"
	StageIDSynthesis     = "synthesis"
)

// StageResult is a stage's typed output. Data is opaque to the executor;
// stages that consume a dependency are trusted to agree on its shape.
// Metadata is surfaced verbatim in stage_complete events.
type StageResult struct {
	Data     any
	Metadata map[string]any
}

// Stage is a unit of work inside a workflow.
//
// Implementations declare their inputs via Dependencies; the executor
// materializes the matching StageResults before calling Execute. Execute
// must honor ctx cancellation in its upstream calls and must not retain
// wfCtx or deps past its return. Failures are *StageExecutionError.
type Stage interface {
	// ID is unique within a workflow and referenced by Dependencies of
	// downstream stages.
	ID() string

	// Name is the human-readable stage name shown in progress events.
	Name() string

	// Type is an opaque catalog tag. The executor never dispatches on it.
	Type() string

	// Description is a short summary for catalog and DAG views.
	Description() string

	// Dependencies lists the stage IDs whose results this stage consumes.
	Dependencies() []string

	// Validate checks static configuration without executing.
	Validate() error

	// Execute runs the stage with the results of its dependencies.
	Execute(ctx context.Context, wfCtx *Context, deps map[string]StageResult) (StageResult, error)
}

// baseStage carries the descriptive fields shared by all stages.
type baseStage struct {
	id          string
	name        string
	stageType   string
	description string
	deps        []string
}

func (s *baseStage) ID() string          { return s.id }
func (s *baseStage) Name() string        { return s.name }
func (s *baseStage) Type() string        { return s.stageType }
func (s *baseStage) Description() string { return s.description }

func (s *baseStage) Dependencies() []string {
	out := make([]string, len(s.deps))
	copy(out, s.deps)
	return out
}
