package api

import (
	"github.com/gin-gonic/gin"
)

// registerRoutes wires the middleware chain and the route table.
//
//	GET  /                                      health
//	GET  /api/conversations                     list caller's conversations
//	POST /api/conversations                     create a conversation
//	GET  /api/conversations/:id                 fetch one conversation
//	GET  /api/workflows                         list workflows
//	GET  /api/workflows/:id                     workflow detail with DAG
//	POST /api/conversations/:id/execute/stream  run a workflow (SSE)
func (s *Server) registerRoutes(r *gin.Engine) {
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(s.requestLogger())
	r.Use(securityHeaders())
	r.Use(corsHeaders())

	r.GET("/", s.healthHandler)

	api := r.Group("/api")
	api.Use(s.authenticate())
	api.Use(bodyLimit(s.cfg.MaxRequestSizeBytes))
	api.Use(s.rateLimitGeneral())

	api.GET("/conversations", s.requestTimeout(), s.listConversationsHandler)
	api.POST("/conversations", s.requestTimeout(), s.createConversationHandler)
	api.GET("/conversations/:id", s.requestTimeout(), s.getConversationHandler)
	api.GET("/workflows", s.requestTimeout(), s.listWorkflowsHandler)
	api.GET("/workflows/:id", s.requestTimeout(), s.getWorkflowHandler)

	// The execute stream carries no generic request timeout: it is bounded
	// by the per-call upstream timeout and by client disconnect.
	api.POST("/conversations/:id/execute/stream", s.rateLimitWorkflow(), s.executeWorkflowHandler)
}
