package wikipedia_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/pkg/llmutils"
	"github.com/effective-security/agentdemo/tools/wikipedia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rest_v1/page/summary/Artificial_intelligence", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":   "Artificial intelligence",
			"extract": "Artificial intelligence (AI) is the capability of computational systems to perform tasks typically associated with human intelligence.",
			"content_urls": map[string]any{
				"desktop": map[string]any{
					"page": "https://en.wikipedia.org/wiki/Artificial_intelligence",
				},
			},
		})
	}))
	defer server.Close()

	ctx := context.Background()

	tool, err := wikipedia.New()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	assert.Equal(t, wikipedia.ToolName, tool.Name())
	assert.Contains(t, tool.Description(), "Wikipedia")
	assert.NotNil(t, tool.Parameters())

	_, err = tool.Call(ctx, "plain string")
	assert.True(t, errors.Is(err, chatmodel.ErrFailedUnmarshalInput))

	input := &wikipedia.SummaryRequest{Query: "Artificial intelligence"}

	resp, err := tool.Run(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "Artificial intelligence", resp.Title)
	assert.Contains(t, resp.String(), "Read more: https://en.wikipedia.org/wiki/Artificial_intelligence")

	resp2, err := tool.Call(ctx, llmutils.ToJSON(input))
	require.NoError(t, err)
	assert.Contains(t, resp2, `"title":"Artificial intelligence"`)
}

func Test_Tool_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	tool, err := wikipedia.New()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	_, err = tool.Run(context.Background(), &wikipedia.SummaryRequest{Query: "No Such Page"})
	assert.EqualError(t, err, `no Wikipedia summary found for "No Such Page"`)
}
