package llms

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageJSON_SingleText(t *testing.T) {
	t.Parallel()
	m := MessageFromTextParts(RoleHuman, "hello")
	bs, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"human","text":"hello"}`, string(bs))

	var back Message
	require.NoError(t, json.Unmarshal(bs, &back))
	assert.Equal(t, m, back)
}

func TestMessageJSON_Parts(t *testing.T) {
	t.Parallel()
	m := Message{
		Role: RoleAI,
		Parts: []ContentPart{
			TextPart("let me check"),
			ToolCall{
				ID:   "call_1",
				Type: "function",
				FunctionCall: &FunctionCall{
					Name:      "GetWeather",
					Arguments: `{"location":"London"}`,
				},
			},
		},
	}
	bs, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(bs), `"type":"tool_call"`)

	var back Message
	require.NoError(t, json.Unmarshal(bs, &back))
	if diff := cmp.Diff(m, back); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMessageJSON_ToolResponse(t *testing.T) {
	t.Parallel()
	m := MessageFromToolResponse(RoleTool, ToolCallResponse{
		ToolCallID: "call_1",
		Name:       "GetWeather",
		Content:    "London: 18C, cloudy",
	})
	bs, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(bs), `"type":"tool_response"`)

	var back Message
	require.NoError(t, json.Unmarshal(bs, &back))
	assert.Equal(t, m, back)
}

func TestMessageJSON_UnknownPart(t *testing.T) {
	t.Parallel()
	var m Message
	err := json.Unmarshal([]byte(`{"role":"ai","parts":[{"type":"bogus"}]}`), &m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content part type")
}
