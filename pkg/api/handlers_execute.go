package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/council/pkg/events"
	"github.com/codeready-toolchain/council/pkg/workflow"
)

// executeWorkflowHandler handles POST /api/conversations/:id/execute/stream.
// Everything that can fail with a clean HTTP status happens before the
// stream opens; after that, failures travel as SSE error frames.
func (s *Server) executeWorkflowHandler(c *gin.Context) {
	// 1. Validate conversation ID
	conversationID := c.Param("id")
	if conversationID == "" {
		abortWithError(c, http.StatusBadRequest, "conversation id is required")
		return
	}

	// 2. Bind and validate the request body
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Content == "" {
		abortWithError(c, http.StatusBadRequest, "content is required")
		return
	}
	if len(req.Content) > maxContentLength {
		abortWithError(c, http.StatusBadRequest, "content exceeds maximum length of 100,000 characters")
		return
	}
	if req.WorkflowID == "" {
		abortWithError(c, http.StatusBadRequest, "workflowId is required")
		return
	}
	if len(req.WorkflowID) > maxWorkflowIDLength {
		abortWithError(c, http.StatusBadRequest, "workflowId exceeds maximum length of 255 characters")
		return
	}

	// 3. Authorize and resolve while a status code can still be sent
	userID := userIDFrom(c)
	if _, err := s.store.GetConversation(c.Request.Context(), conversationID, userID); err != nil {
		respondError(c, err)
		return
	}
	if !s.registry.Has(req.WorkflowID) {
		abortWithError(c, http.StatusNotFound, "workflow not found")
		return
	}

	// 4. Open the event stream
	sink, err := events.NewSSESink(c.Writer)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "streaming is not supported")
		return
	}
	defer sink.Close()
	c.Writer.WriteHeader(http.StatusOK)

	// 5. Execute; progress, results, and failures all arrive via the
	// stream from here on
	_, err = s.workflows.ExecuteForConversation(c.Request.Context(), workflow.ExecuteInput{
		ConversationID: conversationID,
		UserID:         userID,
		Content:        req.Content,
		WorkflowID:     req.WorkflowID,
	}, sink)
	if err != nil {
		slog.Warn("Workflow execution failed",
			"conversation_id", conversationID,
			"workflow_id", req.WorkflowID,
			"request_id", requestIDFrom(c),
			"error", err)
	}
}

// respondBindError distinguishes oversized bodies from malformed ones.
func respondBindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		abortWithError(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	abortWithError(c, http.StatusBadRequest, "invalid request body")
}
