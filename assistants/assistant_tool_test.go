package assistants_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/assistants"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/encoding"
	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/effective-security/agentdemo/pkg/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_AssistantTool(t *testing.T) {
	model := &fakeModel{
		provider: llms.ProviderOpenAI,
		name:     "fake-model",
		generate: func(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
			return textResponse(`{"content":"Paris"}`), nil
		},
	}

	sysprompt := prompts.NewPromptTemplate("You are a helpful assistant.\n", nil)
	agent := assistants.NewAssistant[chatmodel.OutputResult](model, sysprompt,
		assistants.WithMode(encoding.ModeJSONSchema),
	).WithName("Geo Assistant").
		WithDescription("Answers geography questions.")

	tool, err := assistants.NewAssistantTool[chatmodel.InputRequest, chatmodel.OutputResult](agent)
	require.NoError(t, err)

	assert.Equal(t, "Geo Assistant", tool.Name())
	assert.Equal(t, "Answers geography questions.", tool.Description())
	assert.NotNil(t, tool.Parameters())

	tool.WithName("Geo").WithDescription("Geography tool.")
	assert.Equal(t, "Geo", tool.Name())
	assert.Equal(t, "Geography tool.", tool.Description())

	ctx, err := chatmodel.SetChatID(context.Background(), "chat1")
	require.NoError(t, err)

	_, err = tool.Call(ctx, "{bad json")
	assert.True(t, errors.Is(err, chatmodel.ErrFailedUnmarshalInput))

	res, err := tool.Call(ctx, `{"input":"What is the capital of France?"}`)
	require.NoError(t, err)
	assert.Contains(t, res, "Paris")
}
