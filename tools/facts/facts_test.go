package facts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/effective-security/agentdemo/tools/facts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/random.json", r.URL.Path)
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"text": "Bananas are berries, but strawberries are not.",
		})
	}))
	defer server.Close()

	ctx := context.Background()

	tool, err := facts.New()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithNinjasKey("").WithHTTPClient(server.Client())

	assert.Equal(t, facts.ToolName, tool.Name())
	assert.NotNil(t, tool.Parameters())

	resp, err := tool.Run(ctx, &facts.FactRequest{})
	require.NoError(t, err)
	assert.Equal(t, "uselessfacts", resp.Source)
	assert.Contains(t, resp.String(), "Bananas")

	out, err := tool.Call(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, out, `"source":"uselessfacts"`)
}

func Test_Tool_Ninjas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/facts", r.URL.Path)
		assert.Equal(t, "testkey", r.Header.Get("X-Api-Key"))

		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"fact": "Honey never spoils."},
		})
	}))
	defer server.Close()

	tool, err := facts.New()
	require.NoError(t, err)
	tool.WithNinjasURL(server.URL).WithNinjasKey("testkey").WithHTTPClient(server.Client())

	resp, err := tool.Run(context.Background(), &facts.FactRequest{})
	require.NoError(t, err)
	assert.Equal(t, "api-ninjas", resp.Source)
	assert.Equal(t, "Honey never spoils.", resp.Fact)
}

func Test_Tool_Fallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tool, err := facts.New()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithNinjasKey("").WithHTTPClient(server.Client())

	resp, err := tool.Run(context.Background(), &facts.FactRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Fallback)
	assert.NotEmpty(t, resp.Fact)
}
