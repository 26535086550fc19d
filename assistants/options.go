package assistants

import (
	"context"

	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/encoding"
	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/effective-security/agentdemo/pkg/schema"
	"github.com/effective-security/agentdemo/store"
)

// Run loop limits, overridable per assistant or per call.
const (
	DefaultMaxRetries     = 3
	DefaultMaxToolCalls   = 16
	DefaultMaxMessages    = 100
	DefaultMaxContentSize = 1 << 20
)

// Option is a function that can be used to modify the behavior of the Agent Config.
type Option func(*Config)

type Config struct {
	// Model is the model to use in an LLM call.
	Model    string
	modelSet bool

	// MaxTokens is the maximum number of tokens to generate to use in an LLM call.
	MaxTokens    int
	maxTokensSet bool

	// Temperature is the temperature for sampling to use in an LLM call, between 0 and 1.
	Temperature    float64
	temperatureSet bool

	// StopWords is a list of words to stop on to use in an LLM call.
	StopWords    []string
	stopWordsSet bool

	// TopP is the cumulative probability for top-p sampling in an LLM call.
	TopP    float64
	toppSet bool

	// Seed is a seed for deterministic sampling in an LLM call.
	Seed    int
	seedSet bool

	// Tools is a list of tool definitions passed to the LLM.
	Tools    []llms.Tool
	toolsSet bool

	// ToolChoice can be "none", "auto" (the default behavior), or a specific tool.
	ToolChoice    any
	toolChoiceSet bool

	// StreamingFunc is a function to be called for each chunk of a streaming response.
	// Return an error to stop streaming early.
	StreamingFunc func(ctx context.Context, chunk []byte) error

	// ResponseFormat instructs the provider to return structured output.
	ResponseFormat *schema.ResponseFormat

	// CallbackHandler receives run progress notifications.
	CallbackHandler Callback

	//
	// Below are the options for the Assistant, not related to LLM call
	//

	// Store keeps the chat message history. When nil, no history is kept.
	Store store.MessageStore

	PromptInput        map[string]any
	Examples           chatmodel.FewShotExamples
	Mode               encoding.Mode
	SkipMessageHistory bool
	SkipToolHistory    bool
	IsGeneric          bool

	// MaxToolCalls limits the total tool calls per run.
	MaxToolCalls int
	// MaxMessages limits the messages sent to the LLM per run.
	MaxMessages int
	// MaxLength limits the total content bytes sent to the LLM per run.
	MaxLength int
}

func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Mode:        encoding.ModeDefault,
		MaxMessages: DefaultMaxMessages,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Apply returns a copy of the config with the options applied.
func (c *Config) Apply(opts ...Option) *Config {
	cfg := *c
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithMode is an option that allows to specify the encoding mode.
func WithMode(mode encoding.Mode) Option {
	return func(o *Config) {
		o.Mode = mode
	}
}

// WithStore is an option that allows to specify the message store.
func WithStore(store store.MessageStore) Option {
	return func(o *Config) {
		o.Store = store
	}
}

// WithExamples is an option that allows to specify the few-shot examples for the system prompt.
func WithExamples(examples chatmodel.FewShotExamples) Option {
	return func(o *Config) {
		o.Examples = examples
	}
}

// WithSkipMessageHistory is an option that allows to skip adding Assistant messages to History.
func WithSkipMessageHistory(skip bool) Option {
	return func(o *Config) {
		o.SkipMessageHistory = skip
	}
}

// WithSkipToolHistory is an option that allows to skip adding tool calls to History.
func WithSkipToolHistory(skip bool) Option {
	return func(o *Config) {
		o.SkipToolHistory = skip
	}
}

// WithGenericRole is an option that marks run messages with the generic role,
// used when an assistant is called as a tool of another assistant.
func WithGenericRole(generic bool) Option {
	return func(o *Config) {
		o.IsGeneric = generic
	}
}

// WithPromptInput is an option that allows the user to specify the system prompt input.
func WithPromptInput(input map[string]any) Option {
	return func(o *Config) {
		o.PromptInput = input
	}
}

// WithModel is an option for LLM.Call.
func WithModel(model string) Option {
	return func(o *Config) {
		o.Model = model
		o.modelSet = true
	}
}

// WithMaxTokens is an option for LLM.Call.
func WithMaxTokens(maxTokens int) Option {
	return func(o *Config) {
		o.MaxTokens = maxTokens
		o.maxTokensSet = true
	}
}

// WithTemperature is an option for LLM.Call.
func WithTemperature(temperature float64) Option {
	return func(o *Config) {
		o.Temperature = temperature
		o.temperatureSet = true
	}
}

// WithStreamingFunc is an option for LLM.Call that allows streaming responses.
func WithStreamingFunc(streamingFunc func(ctx context.Context, chunk []byte) error) Option {
	return func(o *Config) {
		o.StreamingFunc = streamingFunc
	}
}

// WithTopP	will add an option to use top-p sampling for LLM.Call.
func WithTopP(topP float64) Option {
	return func(o *Config) {
		o.TopP = topP
		o.toppSet = true
	}
}

// WithSeed will add an option to use deterministic sampling for LLM.Call.
func WithSeed(seed int) Option {
	return func(o *Config) {
		o.Seed = seed
		o.seedSet = true
	}
}

// WithStopWords is an option for setting the stop words for LLM.Call.
func WithStopWords(stopWords []string) Option {
	return func(o *Config) {
		o.StopWords = stopWords
		o.stopWordsSet = true
	}
}

// WithCallback allows setting a custom Callback Handler.
func WithCallback(callbackHandler Callback) Option {
	return func(o *Config) {
		o.CallbackHandler = callbackHandler
	}
}

// WithTools is an option for LLM.Call.
func WithTools(tools []llms.Tool) Option {
	return func(o *Config) {
		o.Tools = tools
		o.toolsSet = true
	}
}

// WithTool is an option for LLM.Call.
func WithTool(tool llms.Tool) Option {
	return func(o *Config) {
		o.Tools = append(o.Tools, tool)
		o.toolsSet = true
	}
}

// WithToolChoice is an option for LLM.Call.
func WithToolChoice(choice any) Option {
	return func(o *Config) {
		o.ToolChoice = choice
		o.toolChoiceSet = true
	}
}

// WithMaxToolCalls limits the total tool calls per run.
func WithMaxToolCalls(limit int) Option {
	return func(o *Config) {
		o.MaxToolCalls = limit
	}
}

// WithMaxMessages limits the messages sent to the LLM per run.
func WithMaxMessages(limit int) Option {
	return func(o *Config) {
		o.MaxMessages = limit
	}
}

// WithMaxLength limits the total content bytes sent to the LLM per run.
func WithMaxLength(limit int) Option {
	return func(o *Config) {
		o.MaxLength = limit
	}
}

func (c *Config) GetCallOptions(options ...Option) []llms.CallOption {
	cfg := c.Apply(options...)

	var callOptions []llms.CallOption
	if cfg.modelSet {
		callOptions = append(callOptions, llms.WithModel(cfg.Model))
	}
	if cfg.maxTokensSet {
		callOptions = append(callOptions, llms.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.temperatureSet {
		callOptions = append(callOptions, llms.WithTemperature(cfg.Temperature))
	}
	if cfg.stopWordsSet {
		callOptions = append(callOptions, llms.WithStopWords(cfg.StopWords))
	}
	if cfg.toppSet {
		callOptions = append(callOptions, llms.WithTopP(cfg.TopP))
	}
	if cfg.seedSet {
		callOptions = append(callOptions, llms.WithSeed(cfg.Seed))
	}
	if cfg.toolsSet {
		callOptions = append(callOptions, llms.WithTools(cfg.Tools))
	}
	if cfg.toolChoiceSet {
		callOptions = append(callOptions, llms.WithToolChoice(cfg.ToolChoice))
	}
	if cfg.ResponseFormat != nil {
		callOptions = append(callOptions, llms.WithResponseFormat(cfg.ResponseFormat))
	}
	if cfg.StreamingFunc != nil {
		callOptions = append(callOptions, llms.WithStreamingFunc(cfg.StreamingFunc))
	}

	return callOptions
}
