package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/council/pkg/llm"
	"github.com/codeready-toolchain/council/pkg/ratelimit"
	"github.com/codeready-toolchain/council/pkg/store"
	"github.com/codeready-toolchain/council/pkg/workflow"
)

// httpError pairs an HTTP status code with a client-safe message.
type httpError struct {
	Code    int
	Message string
}

func (e *httpError) Error() string { return e.Message }

func newHTTPError(code int, message string) *httpError {
	return &httpError{Code: code, Message: message}
}

// mapServiceError maps domain errors to HTTP error responses.
func mapServiceError(err error) *httpError {
	var validErr *store.ValidationError
	if errors.As(err, &validErr) {
		return newHTTPError(http.StatusBadRequest, validErr.Error())
	}
	if errors.Is(err, store.ErrForbidden) {
		return newHTTPError(http.StatusForbidden, "conversation belongs to another user")
	}
	if errors.Is(err, store.ErrNotFound) {
		return newHTTPError(http.StatusNotFound, "conversation not found")
	}
	if errors.Is(err, workflow.ErrWorkflowNotFound) {
		return newHTTPError(http.StatusNotFound, "workflow not found")
	}

	var rlErr *ratelimit.Error
	if errors.As(err, &rlErr) {
		return newHTTPError(http.StatusTooManyRequests, rlErr.Error())
	}

	var upErr *llm.UpstreamError
	if errors.As(err, &upErr) {
		return newHTTPError(upErr.HTTPStatus(), upErr.Error())
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return newHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newHTTPError(http.StatusGatewayTimeout, "request timed out")
	}

	// Workflow definitions are registered server-side, so a definition
	// error reaching a request is an internal fault, not caller input.
	var defErr *workflow.DefinitionError
	if errors.As(err, &defErr) {
		return newHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	return newHTTPError(http.StatusInternalServerError, "Internal server error")
}

// respondError renders a domain error as {"error": message} and stops the
// handler chain. Server errors are logged with the request ID so a user
// report can be matched to a log line.
func respondError(c *gin.Context, err error) {
	he := mapServiceError(err)
	if he.Code >= http.StatusInternalServerError {
		slog.Error("Request failed", "request_id", requestIDFrom(c), "error", err)
	}
	abortWithError(c, he.Code, he.Message)
}

// abortWithError writes the uniform error body and stops the handler chain.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, &ErrorResponse{Error: message})
}
