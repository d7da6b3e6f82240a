package workflow

import "time"

// Settings are optional per-workflow execution knobs. MaxRetries is
// reserved: it is carried but not acted on until a retry policy exists.
type Settings struct {
	TimeoutMs        int  `json:"timeoutMs,omitempty"`
	MaxRetries       int  `json:"maxRetries,omitempty"`
	StreamingEnabled bool `json:"streamingEnabled,omitempty"`
}

// Definition is an identified, versioned collection of stages. Valid
// definitions have a unique non-empty ID, name, and version, at least one
// stage, unique stage IDs, dependencies that name stages in the same
// workflow, and an acyclic dependency graph. Plan enforces all of this.
type Definition struct {
	ID          string
	Name        string
	Version     string
	Description string
	Stages      []Stage
	Settings    *Settings
}

// Metadata is the catalog projection of a definition.
type Metadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	StageCount  int    `json:"stageCount"`
}

// Metadata projects the definition for list responses.
func (d *Definition) Metadata() Metadata {
	return Metadata{
		ID:          d.ID,
		Name:        d.Name,
		Version:     d.Version,
		Description: d.Description,
		StageCount:  len(d.Stages),
	}
}

// stageByID returns the stage with the given ID, if any.
func (d *Definition) stageByID(id string) (Stage, bool) {
	for _, s := range d.Stages {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

// Result summarizes a completed execution.
type Result struct {
	WorkflowID      string                 `json:"workflow_id"`
	WorkflowVersion string                 `json:"workflow_version"`
	StageResults    map[string]StageResult `json:"stage_results"`
	Metadata        map[string]any         `json:"metadata,omitempty"`
	ExecutionTimeMs int64                  `json:"execution_time_ms"`
	StartedAt       time.Time              `json:"started_at"`
	CompletedAt     time.Time              `json:"completed_at"`
}
