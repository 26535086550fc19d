package prompts

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/pkg/llms"
)

var _ FormatPrompter = (*ChatPromptTemplate)(nil)

// ChatPromptTemplate is a prompt template for chat messages.
type ChatPromptTemplate struct {
	// Messages is a list of the messages to be formatted.
	Messages []MessageFormatter
}

// NewChatPromptTemplate creates a new chat prompt template from a list of
// message formatters.
func NewChatPromptTemplate(messages []MessageFormatter) ChatPromptTemplate {
	return ChatPromptTemplate{
		Messages: messages,
	}
}

// FormatPrompt formats the messages into a chat prompt value.
func (p ChatPromptTemplate) FormatPrompt(values map[string]any) (llms.PromptValue, error) {
	formatted := ChatPromptValue{}
	for _, m := range p.Messages {
		curFormatted, err := m.FormatMessages(values)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to format chat messages")
		}
		formatted = append(formatted, curFormatted...)
	}
	return formatted, nil
}

// GetInputVariables returns the combined input variables of all messages.
func (p ChatPromptTemplate) GetInputVariables() []string {
	seen := map[string]struct{}{}
	var vars []string
	for _, m := range p.Messages {
		for _, v := range m.GetInputVariables() {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				vars = append(vars, v)
			}
		}
	}
	return vars
}

type messagePromptTemplate struct {
	role   llms.Role
	prompt PromptTemplate
}

var _ MessageFormatter = (*messagePromptTemplate)(nil)

func (p messagePromptTemplate) FormatMessages(values map[string]any) ([]llms.Message, error) {
	text, err := p.prompt.Format(values)
	if err != nil {
		return nil, err
	}
	return []llms.Message{llms.MessageFromTextParts(p.role, text)}, nil
}

func (p messagePromptTemplate) GetInputVariables() []string {
	return p.prompt.InputVariables
}

// NewSystemMessagePromptTemplate creates a new system message prompt template.
func NewSystemMessagePromptTemplate(template string, inputVariables []string) MessageFormatter {
	return messagePromptTemplate{
		role:   llms.RoleSystem,
		prompt: NewPromptTemplate(template, inputVariables),
	}
}

// NewHumanMessagePromptTemplate creates a new human message prompt template.
func NewHumanMessagePromptTemplate(template string, inputVariables []string) MessageFormatter {
	return messagePromptTemplate{
		role:   llms.RoleHuman,
		prompt: NewPromptTemplate(template, inputVariables),
	}
}

// NewAIMessagePromptTemplate creates a new AI message prompt template.
func NewAIMessagePromptTemplate(template string, inputVariables []string) MessageFormatter {
	return messagePromptTemplate{
		role:   llms.RoleAI,
		prompt: NewPromptTemplate(template, inputVariables),
	}
}
