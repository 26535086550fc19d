package anthropic_test

import (
	"encoding/json"
	"testing"

	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/effective-security/agentdemo/pkg/llms/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		opts        []anthropic.Option
		wantErr     bool
		errContains string
	}{
		{
			name:        "missing token",
			opts:        []anthropic.Option{anthropic.WithModel("claude-sonnet-4-20250514")},
			wantErr:     true,
			errContains: "missing API key",
		},
		{
			name:        "missing model",
			opts:        []anthropic.Option{anthropic.WithToken("fake-token")},
			wantErr:     true,
			errContains: "model is required",
		},
		{
			name: "valid configuration",
			opts: []anthropic.Option{
				anthropic.WithToken("fake-token"),
				anthropic.WithModel("claude-sonnet-4-20250514"),
			},
		},
		{
			name: "with custom base URL",
			opts: []anthropic.Option{
				anthropic.WithToken("fake-token"),
				anthropic.WithModel("claude-sonnet-4-20250514"),
				anthropic.WithBaseURL("https://custom.anthropic.com"),
			},
		},
		{
			name: "with beta header",
			opts: []anthropic.Option{
				anthropic.WithToken("fake-token"),
				anthropic.WithModel("claude-sonnet-4-20250514"),
				anthropic.WithAnthropicBetaHeader("beta-feature-1"),
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "missing token" {
				t.Setenv("ANTHROPIC_API_KEY", "")
			}
			allm, err := anthropic.New(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, allm)
			} else {
				require.NoError(t, err)
				require.NotNil(t, allm)
				assert.NotNil(t, allm.Client)
				assert.Equal(t, "claude-sonnet-4-20250514", allm.GetName())
				assert.Equal(t, llms.ProviderAnthropic, allm.GetProviderType())
			}
		})
	}
}

func TestProcessMessages(t *testing.T) {
	t.Parallel()

	msgs := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "You are helpful."),
		llms.MessageFromTextParts(llms.RoleSystem, "Be brief."),
		llms.MessageFromTextParts(llms.RoleHuman, "What is the weather in London?"),
		llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
			ID:           "call_1",
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: "GetWeather", Arguments: `{"location":"London"}`},
		}),
		llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
			ToolCallID: "call_1",
			Name:       "GetWeather",
			Content:    "18C, cloudy",
		}),
	}

	sdkMessages, systemPrompt, err := anthropic.ProcessMessages(msgs)
	require.NoError(t, err)
	// System messages are concatenated into the system prompt
	assert.Equal(t, "You are helpful.\nBe brief.", systemPrompt)
	// Human, AI tool call, and tool response remain in the conversation
	require.Len(t, sdkMessages, 3)

	// Empty messages are skipped
	sdkMessages, _, err = anthropic.ProcessMessages([]llms.Message{{Role: llms.RoleHuman}})
	require.NoError(t, err)
	assert.Empty(t, sdkMessages)

	// Unknown role fails
	_, _, err = anthropic.ProcessMessages([]llms.Message{
		llms.MessageFromTextParts("bogus", "text"),
	})
	require.Error(t, err)
}

func TestHandleAIMessage_InvalidToolArguments(t *testing.T) {
	t.Parallel()

	_, err := anthropic.HandleAIMessage(llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
		ID:           "call_1",
		Type:         "function",
		FunctionCall: &llms.FunctionCall{Name: "GetWeather", Arguments: "{not json"},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal tool call arguments")
}

func TestToTools(t *testing.T) {
	t.Parallel()

	got, err := anthropic.ToTools(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	tools := []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "GetWeather",
				Description: "Get current weather",
				Parameters: map[string]any{
					"properties": map[string]any{
						"location": map[string]any{"type": "string"},
					},
					"required": []string{"location"},
				},
			},
		},
	}
	got, err = anthropic.ToTools(tools)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].OfTool)
	assert.Equal(t, "GetWeather", got[0].OfTool.Name)
	assert.Equal(t, []string{"location"}, got[0].OfTool.InputSchema.Required)

	// Unsupported parameter type fails
	bad := []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:       "Broken",
				Parameters: json.RawMessage(`{}`),
			},
		},
	}
	_, err = anthropic.ToTools(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported tool parameters type")
}
