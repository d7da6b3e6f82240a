package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// listConversationsHandler handles GET /api/conversations. Only the
// caller's own conversations are listed.
func (s *Server) listConversationsHandler(c *gin.Context) {
	list, err := s.store.ListByUser(c.Request.Context(), userIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// createConversationHandler handles POST /api/conversations.
func (s *Server) createConversationHandler(c *gin.Context) {
	conv, err := s.store.CreateConversation(c.Request.Context(), uuid.NewString(), userIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// getConversationHandler handles GET /api/conversations/:id.
func (s *Server) getConversationHandler(c *gin.Context) {
	conversationID := c.Param("id")
	if conversationID == "" {
		abortWithError(c, http.StatusBadRequest, "conversation id is required")
		return
	}

	conv, err := s.store.GetConversation(c.Request.Context(), conversationID, userIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}
