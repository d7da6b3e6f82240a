package events

import "time"

// StageStartPayload is emitted when the executor dispatches a stage.
type StageStartPayload struct {
	Type      string `json:"type"`       // always EventTypeStageStart
	StageID   string `json:"stage_id"`   // workflow-unique stage ID
	StageName string `json:"stage_name"` // human-readable name
	Timestamp string `json:"timestamp"`  // RFC3339Nano
}

func (p StageStartPayload) EventType() string { return EventTypeStageStart }

// NewStageStart builds a stage_start event stamped with the current time.
func NewStageStart(stageID, stageName string) StageStartPayload {
	return StageStartPayload{
		Type:      EventTypeStageStart,
		StageID:   stageID,
		StageName: stageName,
		Timestamp: timestamp(),
	}
}

// StageCompletePayload is emitted when a stage succeeds. Data carries the
// stage output verbatim; Metadata is the stage's result metadata, if any.
type StageCompletePayload struct {
	Type      string         `json:"type"`     // always EventTypeStageComplete
	StageID   string         `json:"stage_id"` // workflow-unique stage ID
	Data      any            `json:"data,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp string         `json:"timestamp"` // RFC3339Nano
}

func (p StageCompletePayload) EventType() string { return EventTypeStageComplete }

// NewStageComplete builds a stage_complete event stamped with the current time.
func NewStageComplete(stageID string, data any, metadata map[string]any) StageCompletePayload {
	return StageCompletePayload{
		Type:      EventTypeStageComplete,
		StageID:   stageID,
		Data:      data,
		Metadata:  metadata,
		Timestamp: timestamp(),
	}
}

// StageErrorPayload is emitted when a stage fails; it terminates the stream.
type StageErrorPayload struct {
	Type      string `json:"type"`      // always EventTypeStageError
	StageID   string `json:"stage_id"`  // workflow-unique stage ID
	Error     string `json:"error"`     // failure description
	Timestamp string `json:"timestamp"` // RFC3339Nano
}

func (p StageErrorPayload) EventType() string { return EventTypeStageError }

// NewStageError builds a stage_error event stamped with the current time.
func NewStageError(stageID, errMsg string) StageErrorPayload {
	return StageErrorPayload{
		Type:      EventTypeStageError,
		StageID:   stageID,
		Error:     errMsg,
		Timestamp: timestamp(),
	}
}

// WorkflowCompletePayload is the terminal event of a successful execution.
type WorkflowCompletePayload struct {
	Type            string `json:"type"`              // always EventTypeWorkflowComplete
	WorkflowID      string `json:"workflow_id"`       // executed workflow
	Status          string `json:"status"`            // always "completed"
	ExecutionTimeMs int64  `json:"execution_time_ms"` // wall clock duration
	Timestamp       string `json:"timestamp"`         // RFC3339Nano
}

func (p WorkflowCompletePayload) EventType() string { return EventTypeWorkflowComplete }

// NewWorkflowComplete builds the terminal workflow_complete event.
func NewWorkflowComplete(workflowID string, executionTimeMs int64) WorkflowCompletePayload {
	return WorkflowCompletePayload{
		Type:            EventTypeWorkflowComplete,
		WorkflowID:      workflowID,
		Status:          "completed",
		ExecutionTimeMs: executionTimeMs,
		Timestamp:       timestamp(),
	}
}

// ErrorPayload is the top-level error frame for failures outside stage
// execution (validation, storage commit).
type ErrorPayload struct {
	Type      string `json:"type"`      // always EventTypeError
	Error     string `json:"error"`     // failure description
	Timestamp string `json:"timestamp"` // RFC3339Nano
}

func (p ErrorPayload) EventType() string { return EventTypeError }

// NewError builds a top-level error event stamped with the current time.
func NewError(errMsg string) ErrorPayload {
	return ErrorPayload{
		Type:      EventTypeError,
		Error:     errMsg,
		Timestamp: timestamp(),
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
