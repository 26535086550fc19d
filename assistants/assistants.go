package assistants

import (
	"context"
	"fmt"
	"strings"

	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/effective-security/agentdemo/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentdemo", "assistants")

// CallInput is the input for a single assistant call.
type CallInput struct {
	// Input is the user question or instruction.
	Input string
	// PromptInputs are extra values for the system prompt template.
	PromptInputs map[string]any
	// Messages are extra messages appended after the user message.
	Messages []llms.Message
	// Options override the assistant configuration for this call.
	Options []Option
}

type IAssistant interface {
	// Name returns the name of the Assistant.
	Name() string
	// Description returns the description of the Assistant, to be used
	// in the prompt of other Assistants or LLMs.
	Description() string
	// FormatPrompt renders the system prompt with the given values.
	FormatPrompt(values map[string]any) (llms.PromptValue, error)
	// GetPromptInputVariables returns the variables the system prompt expects.
	GetPromptInputVariables() []string
	// GetTools returns the tools registered with the Assistant.
	GetTools() []tools.ITool

	Call(ctx context.Context, input *CallInput) (*llms.ContentResponse, error)
}

// TypeableAssistant is an assistant with a typed output.
type TypeableAssistant[O any] interface {
	IAssistant
	// Run executes the assistant and parses the final answer into output.
	Run(ctx context.Context, input *CallInput, output *O) (*llms.ContentResponse, error)
}

// Callback receives notifications about the assistant run progress.
type Callback interface {
	OnAssistantStart(ctx context.Context, assistant IAssistant, input string)
	OnAssistantEnd(ctx context.Context, assistant IAssistant, input string, resp *llms.ContentResponse, messages []llms.Message)
	OnAssistantError(ctx context.Context, assistant IAssistant, input string, err error, messages []llms.Message)
	OnAssistantLLMCallStart(ctx context.Context, assistant IAssistant, llm llms.Model, messages []llms.Message)
	OnAssistantLLMCallEnd(ctx context.Context, assistant IAssistant, llm llms.Model, resp *llms.ContentResponse)
	OnAssistantLLMParseError(ctx context.Context, assistant IAssistant, input string, response string, err error)
	OnToolStart(ctx context.Context, tool tools.ITool, assistant string, input string)
	OnToolEnd(ctx context.Context, tool tools.ITool, assistant string, input string, output string)
	OnToolError(ctx context.Context, tool tools.ITool, assistant string, input string, err error)
	OnToolNotFound(ctx context.Context, assistant IAssistant, tool string)
}

// GetDescriptions returns a markdown list of assistant names and descriptions.
func GetDescriptions(list ...IAssistant) string {
	var ts strings.Builder
	for _, item := range list {
		ts.WriteString(fmt.Sprintf("- `%s`: %s\n", item.Name(), item.Description()))
	}
	return ts.String()
}

func MapAssistants(list ...IAssistant) map[string]IAssistant {
	if len(list) == 0 {
		return nil
	}
	m := make(map[string]IAssistant, len(list))
	for _, a := range list {
		m[a.Name()] = a
	}
	return m
}
