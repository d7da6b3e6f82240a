package api

// Request body caps, enforced before any storage or upstream work.
const (
	maxContentLength    = 100_000
	maxWorkflowIDLength = 255
)

// ExecuteRequest is the body of POST /api/conversations/:id/execute/stream.
type ExecuteRequest struct {
	Content    string `json:"content"`
	WorkflowID string `json:"workflowId"`
}
