//go:build e2e

package e2e

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type documentPayload struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Summary     string `json:"summary,omitempty"`
	Status      string `json:"status"`
}

type chunkPayload struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id"`
	ChunkIndex   int    `json:"chunk_index"`
	Content      string `json:"content"`
	HasEmbedding bool   `json:"has_embedding"`
}

func TestDocumentLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	content := []byte(strings.Repeat("The quarterly report covers revenue and churn. ", 20))

	resp, err := env.UploadDocument("report.txt", content, env.AuthToken)
	require.NoError(t, err)

	var doc documentPayload
	require.NoError(t, json.Unmarshal(resp.Data, &doc))
	assert.Equal(t, "report.txt", doc.Filename)
	assert.Equal(t, "completed", doc.Status)
	assert.NotEmpty(t, doc.Summary)

	// chunks exist and carry embeddings
	resp, err = env.Get("/documents/"+doc.ID+"/chunks", env.AuthToken)
	require.NoError(t, err)

	var chunkList struct {
		Items []chunkPayload `json:"items"`
		Total int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &chunkList))
	require.NotEmpty(t, chunkList.Items)
	for _, chunk := range chunkList.Items {
		assert.Equal(t, doc.ID, chunk.DocumentID)
		assert.True(t, chunk.HasEmbedding)
	}

	// per-document stats line up with the chunk listing
	resp, err = env.Get("/documents/"+doc.ID+"/stats", env.AuthToken)
	require.NoError(t, err)

	var stats struct {
		TotalChunks    int64 `json:"total_chunks"`
		EmbeddedChunks int64 `json:"embedded_chunks"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, int64(chunkList.Total), stats.TotalChunks)
	assert.Equal(t, stats.TotalChunks, stats.EmbeddedChunks)

	// delete removes the document and its chunks
	_, err = env.Delete("/documents/"+doc.ID, env.AuthToken)
	require.NoError(t, err)

	_, err = env.Get("/documents/"+doc.ID, env.AuthToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSearchAndAsk(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	_, err := env.UploadDocument("pricing.txt",
		[]byte("Our pricing model is usage based. Customers pay per processed document."), env.AuthToken)
	require.NoError(t, err)

	_, err = env.UploadDocument("oncall.txt",
		[]byte("The oncall rotation changes every Monday. Escalations go to the platform team."), env.AuthToken)
	require.NoError(t, err)

	resp, err := env.Post("/search", map[string]interface{}{"query": "pricing model usage"}, env.AuthToken)
	require.NoError(t, err)

	var searchResp struct {
		Results []chunkPayload `json:"results"`
		Total   int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &searchResp))
	require.NotEmpty(t, searchResp.Results)
	assert.Contains(t, searchResp.Results[0].Content, "pricing")

	resp, err = env.Post("/ask", map[string]interface{}{"question": "How does pricing work?"}, env.AuthToken)
	require.NoError(t, err)

	var askResp struct {
		Answer  string         `json:"answer"`
		Sources []chunkPayload `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &askResp))
	assert.Contains(t, askResp.Answer, "How does pricing work?")
	assert.NotEmpty(t, askResp.Sources)
}

func TestRejectsUnauthenticatedAndUnsupported(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	// missing token
	_, err := env.Get("/documents", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	// bad token
	_, err = env.Get("/documents", "not-a-jwt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	// unsupported content type is rejected before anything is stored
	_, err = env.UploadDocument("image.png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, env.AuthToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "415")

	resp, err := env.Get("/documents", env.AuthToken)
	require.NoError(t, err)

	var listResp struct {
		Items []documentPayload `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &listResp))
	assert.Empty(t, listResp.Items)
}
