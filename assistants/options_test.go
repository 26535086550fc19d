package assistants_test

import (
	"testing"

	"github.com/effective-security/agentdemo/assistants"
	"github.com/effective-security/agentdemo/encoding"
	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/effective-security/agentdemo/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewConfig(t *testing.T) {
	cfg := assistants.NewConfig()
	assert.Equal(t, encoding.ModeDefault, cfg.Mode)
	assert.Equal(t, assistants.DefaultMaxMessages, cfg.MaxMessages)
	assert.Nil(t, cfg.Store)
	assert.Empty(t, cfg.GetCallOptions())
}

func Test_Config_Apply(t *testing.T) {
	memstore := store.NewMemoryStore()
	cfg := assistants.NewConfig(
		assistants.WithStore(memstore),
		assistants.WithMode(encoding.ModeYAML),
		assistants.WithMaxToolCalls(5),
		assistants.WithMaxLength(1024),
	)
	assert.Equal(t, encoding.ModeYAML, cfg.Mode)
	assert.Equal(t, 5, cfg.MaxToolCalls)
	assert.Equal(t, 1024, cfg.MaxLength)

	// Apply returns a copy, the original is unchanged
	cfg2 := cfg.Apply(assistants.WithMaxToolCalls(7), assistants.WithSkipMessageHistory(true))
	assert.Equal(t, 7, cfg2.MaxToolCalls)
	assert.True(t, cfg2.SkipMessageHistory)
	assert.Equal(t, 5, cfg.MaxToolCalls)
	assert.False(t, cfg.SkipMessageHistory)
}

func Test_Config_GetCallOptions(t *testing.T) {
	cfg := assistants.NewConfig(
		assistants.WithModel("gpt-test"),
		assistants.WithMaxTokens(512),
		assistants.WithTemperature(0.2),
		assistants.WithTopP(0.9),
		assistants.WithSeed(42),
		assistants.WithStopWords([]string{"stop"}),
		assistants.WithToolChoice("auto"),
		assistants.WithTool(llms.Tool{
			Type:     "function",
			Function: &llms.FunctionDefinition{Name: "test"},
		}),
	)

	callOpts := cfg.GetCallOptions()
	require.Equal(t, 8, len(callOpts))

	var opts llms.CallOptions
	for _, opt := range callOpts {
		opt(&opts)
	}
	assert.Equal(t, "gpt-test", opts.Model)
	assert.Equal(t, 512, opts.MaxTokens)
	assert.Equal(t, 0.2, opts.Temperature)
	assert.Equal(t, 0.9, opts.TopP)
	assert.Equal(t, 42, opts.Seed)
	assert.Equal(t, []string{"stop"}, opts.StopWords)
	assert.Equal(t, "auto", opts.ToolChoice)
	require.Equal(t, 1, len(opts.Tools))
	assert.Equal(t, "test", opts.Tools[0].Function.Name)
}
