// Package prompts renders system and chat prompts from templates.
// Go text/template syntax is the default; a Jinja renderer is provided for
// prompts ported from frameworks that template with Jinja.
package prompts

import (
	"github.com/effective-security/agentdemo/pkg/llms"
)

// FormatPrompter is an interface for formatting a map of values into a prompt.
type FormatPrompter interface {
	FormatPrompt(values map[string]any) (llms.PromptValue, error)
	GetInputVariables() []string
}

// MessageFormatter is an interface for formatting a map of values into a list
// of messages.
type MessageFormatter interface {
	FormatMessages(values map[string]any) ([]llms.Message, error)
	GetInputVariables() []string
}
