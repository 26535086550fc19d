package llmfactory_test

import (
	"context"
	"testing"

	"github.com/effective-security/agentdemo/pkg/llmfactory"
	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	provider string
	model    string
}

func (f *fakeLLM) GetProviderType() llms.ProviderType {
	return llms.ProviderType(f.provider)
}

func (f *fakeLLM) GetName() string {
	return f.model
}

func (f *fakeLLM) GenerateContent(_ context.Context, _ []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return nil, nil
}

func useFakeLLM(t *testing.T) {
	t.Helper()
	llmfactory.NewLLM = func(cfg *llmfactory.ProviderConfig, preferredModels ...string) (llms.Model, error) {
		return &fakeLLM{provider: cfg.Name, model: cfg.FindModel(preferredModels...)}, nil
	}
	t.Cleanup(func() {
		llmfactory.NewLLM = llmfactory.CreateLLM
	})
}

func Test_Factory(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fakekey")
	t.Setenv("AZURE_API_KEY", "fakekey")
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")
	t.Setenv("PERPLEXITY_TOKEN", "fakekey")

	cfg, err := llmfactory.LoadConfig("testdata/llm.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Providers)

	useFakeLLM(t)

	f := llmfactory.New(cfg)
	model, err := f.DefaultModel()
	require.NoError(t, err)
	fm := model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPEN_AI", fm.provider)

	// ModelByName with single model
	model, err = f.ModelByName("gpt-4-mini")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4-mini", fm.model)
	assert.Equal(t, "OPEN_AI", fm.provider)

	// ModelByName with multiple preferred models
	model, err = f.ModelByName("gpt-4-unknown", "gpt-41-mini")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-41-mini", fm.model)
	assert.Equal(t, "AZURE", fm.provider)

	// Non-existent models fall back to the default
	model, err = f.ModelByName("non-existent-model")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPEN_AI", fm.provider)

	model, err = f.ModelByType("OPENAI")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPEN_AI", fm.provider)

	model, err = f.ModelByType("ANTHROPIC")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "claude-sonnet-4-20250514", fm.model)
	assert.Equal(t, "ANTHROPIC", fm.provider)

	model, err = f.ModelByType("PERPLEXITY")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "sonar", fm.model)

	model, err = f.ModelByType("AZURE")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-41", fm.model)

	// ToolModel with a specific tool
	model, err = f.ToolModel("web_search")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4-mini", fm.model)

	// ToolModel with an unknown tool uses the default mapping
	model, err = f.ToolModel("non-existent-tool")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)

	// AssistantModel with a specific assistant
	model, err = f.AssistantModel("orchestrator")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-41-mini", fm.model)
	assert.Equal(t, "AZURE", fm.provider)

	// AssistantModel with an unknown assistant uses the default mapping
	model, err = f.AssistantModel("non-existent-assistant")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)

	_, err = f.ModelByType("UNSUPPORTED")
	assert.EqualError(t, err, "provider not found for type: UNSUPPORTED")

	// Invalid default provider falls back to the first
	invalidCfg := &llmfactory.Config{
		DefaultProvider: "non-existent",
		Providers:       cfg.Providers,
	}
	model, err = llmfactory.New(invalidCfg).DefaultModel()
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPEN_AI", fm.provider)
}

func Test_Load(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fakekey")
	t.Setenv("AZURE_API_KEY", "fakekey")
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")
	t.Setenv("PERPLEXITY_TOKEN", "fakekey")

	f, err := llmfactory.Load("testdata/llm.yaml")
	require.NoError(t, err)
	require.NotNil(t, f)

	_, err = llmfactory.Load("testdata/non-existent.yaml")
	require.Error(t, err)
}

func Test_LoadConfig(t *testing.T) {
	// Empty location returns an empty config
	cfg, err := llmfactory.LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Providers)

	_, err = llmfactory.LoadConfig("testdata/non-existent.yaml")
	require.Error(t, err)

	_, err = llmfactory.LoadConfig("testdata/invalid.yaml")
	require.Error(t, err)
}

func Test_EmptyConfig(t *testing.T) {
	f := llmfactory.New(&llmfactory.Config{})

	_, err := f.DefaultModel()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no providers configured")

	_, err = f.ModelByType("OPENAI")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider not found for type: OPENAI")

	_, err = f.ModelByName("gpt-4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no providers configured")

	_, err = f.ToolModel("web_search")
	require.Error(t, err)

	_, err = f.AssistantModel("orchestrator")
	require.Error(t, err)
}

func Test_ModelCaching(t *testing.T) {
	cfg := &llmfactory.Config{
		Providers: []*llmfactory.ProviderConfig{
			{
				Name: "OPEN_AI",
				OpenAI: llmfactory.OpenAIConfig{
					APIType: "OPENAI",
				},
				AvailableModels: []string{"gpt-4o", "gpt-4-mini"},
				DefaultModel:    "gpt-4o",
			},
		},
	}

	useFakeLLM(t)

	f := llmfactory.New(cfg)

	model1, err := f.ModelByType("OPENAI")
	require.NoError(t, err)
	model2, err := f.ModelByType("OPENAI")
	require.NoError(t, err)
	assert.Same(t, model1, model2)

	model3, err := f.ModelByName("gpt-4-mini")
	require.NoError(t, err)
	model4, err := f.ModelByName("gpt-4-mini")
	require.NoError(t, err)
	assert.Same(t, model3, model4)
}

func Test_ProviderConfigFindModel(t *testing.T) {
	cfg := &llmfactory.ProviderConfig{
		AvailableModels: []string{"gpt-4", "gpt-4-mini", "gpt-3.5-turbo"},
		DefaultModel:    "gpt-4",
	}

	assert.Equal(t, "gpt-4-mini", cfg.FindModel("gpt-4-mini"))
	assert.Equal(t, "gpt-4-mini", cfg.FindModel("gpt-4-mini", "gpt-3.5-turbo"))
	assert.Equal(t, "gpt-4", cfg.FindModel("non-existent-model"))
	assert.Equal(t, "gpt-4", cfg.FindModel())

	cfg.AvailableModels = nil
	assert.Equal(t, "gpt-4", cfg.FindModel("gpt-4-mini"))
}
