package main

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/assistants"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/pkg/llmfactory"
	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/effective-security/agentdemo/pkg/prompts"
	"github.com/effective-security/agentdemo/store"
	"github.com/effective-security/agentdemo/tools"
	"github.com/effective-security/agentdemo/tools/calculator"
	"github.com/effective-security/agentdemo/tools/currency"
	"github.com/effective-security/agentdemo/tools/facts"
	"github.com/effective-security/agentdemo/tools/jokes"
	"github.com/effective-security/agentdemo/tools/sysinfo"
	"github.com/effective-security/agentdemo/tools/weather"
	"github.com/effective-security/agentdemo/tools/websearch"
	"github.com/effective-security/agentdemo/tools/wikipedia"
	"github.com/effective-security/xlog"
)

const assistantName = "Demo Assistant"

const systemPromptTemplate = `You are a helpful assistant with access to tools for currency
conversion, weather, jokes, random facts, Wikipedia summaries, web search,
arithmetic, and system information. Today is {{ date }}.

Use tools when they can answer the question, and answer directly otherwise.
Be concise and accurate. If a tool returns an error, relay it to the user
instead of guessing.
`

// systemPrompt returns the launcher system prompt and its inputs.
func systemPrompt() (prompts.FormatPrompter, map[string]any) {
	tpl := prompts.NewJinjaPromptTemplate(systemPromptTemplate, []string{"date"})
	inputs := map[string]any{
		"date": time.Now().Format("Monday, January 2, 2006"),
	}
	return tpl, inputs
}

// loadModel builds the LLM from the config file, falling back to
// environment-configured providers when no config is given.
func loadModel() (llms.Model, error) {
	cfg, err := llmfactory.LoadConfig(cfgPath)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load config")
	}

	if len(cfg.Providers) == 0 {
		cfg.Providers = defaultProviders()
	}
	if len(cfg.Providers) == 0 {
		return nil, errors.New("no LLM providers configured: set OPENAI_API_KEY or ANTHROPIC_API_KEY, or provide --cfg")
	}

	f := llmfactory.New(cfg)
	if modelName != "" {
		return f.ModelByName(modelName)
	}
	return f.AssistantModel(assistantName)
}

// defaultProviders derives a provider list from API keys in the environment.
func defaultProviders() []*llmfactory.ProviderConfig {
	var providers []*llmfactory.ProviderConfig
	if os.Getenv("OPENAI_API_KEY") != "" {
		providers = append(providers, &llmfactory.ProviderConfig{
			Name:   "openai",
			OpenAI: llmfactory.OpenAIConfig{APIType: "OPENAI"},
		})
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		providers = append(providers, &llmfactory.ProviderConfig{
			Name:         "anthropic",
			DefaultModel: "claude-sonnet-4-20250514",
			OpenAI:       llmfactory.OpenAIConfig{APIType: "ANTHROPIC"},
		})
	}
	return providers
}

// loadTools constructs every tool whose configuration is satisfied.
// Tools with missing API keys are skipped with a warning.
func loadTools() []tools.ITool {
	var list []tools.ITool

	add := func(name string, tool tools.ITool, err error) {
		if err != nil {
			logger.KV(xlog.WARNING, "status", "tool_disabled", "tool", name, "err", err.Error())
			return
		}
		list = append(list, tool)
	}

	calcTool, err := calculator.New()
	add(calculator.ToolName, calcTool, err)
	currencyTool, err := currency.New()
	add(currency.ToolName, currencyTool, err)
	weatherTool, err := weather.New()
	add(weather.ToolName, weatherTool, err)
	jokesTool, err := jokes.New()
	add(jokes.ToolName, jokesTool, err)
	factsTool, err := facts.New()
	add(facts.ToolName, factsTool, err)
	wikiTool, err := wikipedia.New()
	add(wikipedia.ToolName, wikiTool, err)
	searchTool, err := websearch.New()
	add(websearch.ToolName, searchTool, err)
	infoTool, err := sysinfo.New()
	add(sysinfo.ToolName, infoTool, err)

	return list
}

// buildAssistant wires the model, tools, history store and callbacks.
func buildAssistant(msgStore store.MessageStore, callback assistants.Callback) (*assistants.Assistant[chatmodel.OutputResult], error) {
	model, err := loadModel()
	if err != nil {
		return nil, err
	}

	sysprompt, promptInputs := systemPrompt()
	opts := []assistants.Option{
		assistants.WithPromptInput(promptInputs),
	}
	if msgStore != nil {
		opts = append(opts, assistants.WithStore(msgStore))
	}
	if callback != nil {
		opts = append(opts, assistants.WithCallback(callback))
	}

	agent := assistants.NewAssistant[chatmodel.OutputResult](model, sysprompt, opts...).
		WithName(assistantName).
		WithDescription("An assistant that answers questions using demo REST-API tools.").
		WithTools(loadTools()...)

	return agent, nil
}
