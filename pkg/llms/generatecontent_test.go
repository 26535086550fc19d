package llms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageFromTextParts(t *testing.T) {
	t.Parallel()
	m := MessageFromTextParts(RoleHuman, "hello", "world")
	assert.Equal(t, RoleHuman, m.Role)
	require.Len(t, m.Parts, 2)
	assert.Equal(t, TextContent{Text: "hello"}, m.Parts[0])
	assert.Equal(t, TextContent{Text: "world"}, m.Parts[1])
}

func TestMessageFromToolCalls(t *testing.T) {
	t.Parallel()
	tc := ToolCall{
		ID:   "call_1",
		Type: "function",
		FunctionCall: &FunctionCall{
			Name:      "Calculate",
			Arguments: `{"expression":"1+2"}`,
		},
	}
	m := MessageFromToolCalls(RoleAI, tc)
	assert.Equal(t, RoleAI, m.Role)
	require.Len(t, m.Parts, 1)
	got, ok := m.Parts[0].(ToolCall)
	require.True(t, ok)
	assert.Equal(t, "call_1", got.ID)
	assert.Equal(t, "Calculate", got.FunctionCall.Name)
	assert.Contains(t, got.String(), "call_1")
	assert.Contains(t, got.String(), "Calculate")
}

func TestMessageFromToolResponse(t *testing.T) {
	t.Parallel()
	m := MessageFromToolResponse(RoleTool, ToolCallResponse{
		ToolCallID: "call_1",
		Name:       "Calculate",
		Content:    "3",
	})
	assert.Equal(t, RoleTool, m.Role)
	require.Len(t, m.Parts, 1)
	got, ok := m.Parts[0].(ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "3", got.Content)
	assert.Contains(t, got.String(), "call_1")
}

func TestMessage_GetContent(t *testing.T) {
	t.Parallel()
	m := MessageFromTextParts(RoleAI, "line one", "line two")
	assert.Equal(t, "line one\nline two", m.GetContent())

	m = Message{
		Role: RoleAI,
		Parts: []ContentPart{
			TextPart("calling tool"),
			ToolCall{
				ID:           "call_1",
				Type:         "function",
				FunctionCall: &FunctionCall{Name: "GetJoke", Arguments: "{}"},
			},
		},
	}
	content := m.GetContent()
	assert.Contains(t, content, "calling tool")
	assert.Contains(t, content, "Tool Call: ")
	assert.Contains(t, content, "GetJoke")

	m = MessageFromToolResponse(RoleTool, ToolCallResponse{ToolCallID: "call_1", Name: "GetJoke", Content: "ha"})
	assert.Contains(t, m.GetContent(), "Tool Response: ")
}

func TestProviderCapabilities(t *testing.T) {
	t.Parallel()
	assert.True(t, ProviderOpenAI.Supports(CapabilityFunctionCalling))
	assert.True(t, ProviderOpenAI.Supports(CapabilityJSONSchemaStrict))
	assert.True(t, ProviderAnthropic.Supports(CapabilityFunctionCalling))
	assert.False(t, ProviderAnthropic.Supports(CapabilityJSONSchema))
	assert.True(t, ProviderPerplexity.Supports(CapabilityJSONSchema))
	assert.False(t, ProviderPerplexity.Supports(CapabilityFunctionCalling))
	assert.False(t, ProviderAzureAD.Supports(CapabilityFunctionCalling))
	assert.False(t, ProviderType("UNKNOWN").Supports(CapabilityText))
}
