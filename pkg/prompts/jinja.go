package prompts

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/nikolalohinski/gonja"
)

var _ FormatPrompter = (*JinjaPromptTemplate)(nil)

// JinjaPromptTemplate renders prompts with Jinja syntax ({{ var }}),
// for prompts ported from agent frameworks that template with Jinja.
type JinjaPromptTemplate struct {
	// Template is the prompt template.
	Template string
	// InputVariables is a list of variable names the prompt template expects.
	InputVariables []string
}

// NewJinjaPromptTemplate returns a new Jinja prompt template.
func NewJinjaPromptTemplate(text string, inputVars []string) JinjaPromptTemplate {
	return JinjaPromptTemplate{
		Template:       text,
		InputVariables: inputVars,
	}
}

// Format renders the template with the given values.
func (p JinjaPromptTemplate) Format(values map[string]any) (string, error) {
	if err := checkInputVariables(values, p.InputVariables); err != nil {
		return "", err
	}
	tpl, err := gonja.FromString(p.Template)
	if err != nil {
		return "", errors.WithMessage(err, "failed to parse jinja prompt template")
	}
	out, err := tpl.Execute(gonja.Context(values))
	if err != nil {
		return "", errors.WithMessage(err, "failed to render jinja prompt template")
	}
	return out, nil
}

// FormatPrompt implements the FormatPrompter interface.
func (p JinjaPromptTemplate) FormatPrompt(values map[string]any) (llms.PromptValue, error) {
	formatted, err := p.Format(values)
	if err != nil {
		return nil, err
	}
	return StringPromptValue(formatted), nil
}

// GetInputVariables returns the input variables the prompt expects.
func (p JinjaPromptTemplate) GetInputVariables() []string {
	return p.InputVariables
}
