package api

import (
	"github.com/codeready-toolchain/council/pkg/workflow"
)

// HealthResponse is returned by GET /.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// WorkflowDetailResponse is returned by GET /api/workflows/:id.
type WorkflowDetailResponse struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description,omitempty"`
	DAG         workflow.DAG `json:"dag"`
}

// ErrorResponse is the uniform error body for non-streaming failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
