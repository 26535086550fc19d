package jokes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/effective-security/agentdemo/tools/jokes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/joke/Programming", r.URL.Path)
		assert.True(t, r.URL.Query().Has("safe-mode"))
		assert.Equal(t, "single", r.URL.Query().Get("type"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":    false,
			"category": "Programming",
			"type":     "single",
			"joke":     "There are only 10 kinds of people in this world: those who know binary and those who don't.",
		})
	}))
	defer server.Close()

	ctx := context.Background()

	tool, err := jokes.New()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	assert.Equal(t, jokes.ToolName, tool.Name())
	assert.NotNil(t, tool.Parameters())

	resp, err := tool.Run(ctx, &jokes.JokeRequest{})
	require.NoError(t, err)
	assert.False(t, resp.Fallback)
	assert.Contains(t, resp.String(), "binary")

	out, err := tool.Call(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, out, `"category":"Programming"`)
}

func Test_Tool_TwoPart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":    false,
			"category": "Misc",
			"type":     "twopart",
			"setup":    "Why did the chicken cross the road?",
			"delivery": "To get to the other side.",
		})
	}))
	defer server.Close()

	tool, err := jokes.New()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	resp, err := tool.Run(context.Background(), &jokes.JokeRequest{Category: "Misc"})
	require.NoError(t, err)
	assert.Equal(t, "Why did the chicken cross the road?\nTo get to the other side.", resp.Joke)
}

func Test_Tool_Fallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	server.Close()

	tool, err := jokes.New()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(http.DefaultClient)

	resp, err := tool.Run(context.Background(), &jokes.JokeRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Fallback)
	assert.NotEmpty(t, resp.Joke)
}
