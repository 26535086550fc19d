package openaiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3/responses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CreateResponse(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"resp_1","status":"completed","model":"gpt-4o"}`))
	}))
	defer srv.Close()

	c, err := New(ProviderOpenAI, "gpt-4o", "test-token", srv.URL, "", "", nil, nil)
	require.NoError(t, err)

	resp, err := c.CreateResponse(context.Background(), &responses.ResponseNewParams{})
	require.NoError(t, err)
	assert.Equal(t, "resp_1", resp.ID)

	// Model and max output tokens are defaulted from the client
	assert.Equal(t, "gpt-4o", gotReq["model"])
	assert.EqualValues(t, DefaultMaxTokens, gotReq["max_output_tokens"])
}

func Test_CreateResponse_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad input","type":"invalid_request"}}`))
	}))
	defer srv.Close()

	c, err := New(ProviderOpenAI, "gpt-4o", "test-token", srv.URL, "", "", nil, nil)
	require.NoError(t, err)

	_, err = c.CreateResponse(context.Background(), &responses.ResponseNewParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 400")
	assert.Contains(t, err.Error(), "bad input")
}
