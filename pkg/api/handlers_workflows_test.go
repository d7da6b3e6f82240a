package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/council/pkg/workflow"
)

func TestListWorkflows(t *testing.T) {
	s := newTestServer(t, testServerConfig())

	rec := doRequest(t, s, http.MethodGet, "/api/workflows", tokenAlice, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []workflow.Metadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, workflow.CouncilWorkflowID, list[0].ID)
	assert.Equal(t, "LLM Council", list[0].Name)
	assert.Equal(t, 3, list[0].StageCount)
}

func TestGetWorkflowDetail(t *testing.T) {
	s := newTestServer(t, testServerConfig())

	rec := doRequest(t, s, http.MethodGet, "/api/workflows/llm-council", tokenAlice, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var detail WorkflowDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, workflow.CouncilWorkflowID, detail.ID)
	assert.Equal(t, "LLM Council", detail.Name)
	assert.Equal(t, "1.0.0", detail.Version)

	require.Len(t, detail.DAG.Nodes, 3)
	require.Len(t, detail.DAG.Edges, 3)
	assert.Equal(t, workflow.StageIDParallelQuery, detail.DAG.Nodes[0].ID)
	assert.Equal(t, workflow.StageIDSynthesis, detail.DAG.Nodes[2].ID)
}

func TestGetWorkflowNotFound(t *testing.T) {
	s := newTestServer(t, testServerConfig())

	rec := doRequest(t, s, http.MethodGet, "/api/workflows/ghost", tokenAlice, nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "workflow not found", errorMessage(t, rec))
}
