package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/council/pkg/workflow"
)

// listWorkflowsHandler handles GET /api/workflows.
func (s *Server) listWorkflowsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.registry.List())
}

// getWorkflowHandler handles GET /api/workflows/:id. The response carries
// the laid-out DAG so frontends can render the stage graph directly.
func (s *Server) getWorkflowHandler(c *gin.Context) {
	workflowID := c.Param("id")
	if workflowID == "" {
		abortWithError(c, http.StatusBadRequest, "workflow id is required")
		return
	}

	def, err := s.registry.Get(workflowID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, &WorkflowDetailResponse{
		ID:          def.ID,
		Name:        def.Name,
		Version:     def.Version,
		Description: def.Description,
		DAG:         workflow.ToDAG(def),
	})
}
