package workflow

import (
	"errors"
	"fmt"
)

// ErrWorkflowNotFound is returned by Registry.Get for unknown workflow IDs.
var ErrWorkflowNotFound = errors.New("workflow not found")

// StageExecutionError reports a stage that failed during validation or
// execution. The executor aborts the workflow and returns it unmodified.
type StageExecutionError struct {
	StageID string
	Message string
	Cause   error
}

func (e *StageExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stage %q: %s: %v", e.StageID, e.Message, e.Cause)
	}
	return fmt.Sprintf("stage %q: %s", e.StageID, e.Message)
}

func (e *StageExecutionError) Unwrap() error {
	return e.Cause
}

// NewStageError wraps cause into a StageExecutionError for stageID.
func NewStageError(stageID, message string, cause error) *StageExecutionError {
	return &StageExecutionError{StageID: stageID, Message: message, Cause: cause}
}

// DefinitionError reports a structurally invalid workflow definition:
// missing identity fields, duplicate stage IDs, or a dependency that names
// no stage in the workflow (MissingDependency set).
type DefinitionError struct {
	WorkflowID        string
	MissingDependency string
	Message           string
}

func (e *DefinitionError) Error() string {
	if e.WorkflowID != "" {
		return fmt.Sprintf("workflow %q: %s", e.WorkflowID, e.Message)
	}
	return fmt.Sprintf("workflow definition: %s", e.Message)
}
