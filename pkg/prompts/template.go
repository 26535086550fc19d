package prompts

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/pkg/llms"
)

var _ llms.PromptValue = StringPromptValue("")

// StringPromptValue is a prompt value that is a string.
type StringPromptValue string

func (v StringPromptValue) String() string {
	return string(v)
}

// Messages returns a single-element Message slice.
func (v StringPromptValue) Messages() []llms.Message {
	return []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, string(v)),
	}
}

var _ FormatPrompter = (*PromptTemplate)(nil)

// PromptTemplate is a Go text/template prompt with sprig functions,
// checked against a list of required input variables.
type PromptTemplate struct {
	// Template is the prompt template.
	Template string
	// InputVariables is a list of variable names the prompt template expects.
	InputVariables []string
	// PartialVariables represents a map of variable names to values or functions
	// that return values. If the value is a function, it will be called when the
	// prompt template is rendered.
	PartialVariables map[string]any

	tmpl *template.Template
}

// NewPromptTemplate returns a new prompt template.
func NewPromptTemplate(text string, inputVars []string) PromptTemplate {
	return PromptTemplate{
		Template:       text,
		InputVariables: inputVars,
	}
}

// Format renders the template with the given values.
func (p PromptTemplate) Format(values map[string]any) (string, error) {
	resolved, err := resolvePartialValues(p.PartialVariables, values)
	if err != nil {
		return "", err
	}
	if err := checkInputVariables(resolved, p.InputVariables); err != nil {
		return "", err
	}

	tmpl := p.tmpl
	if tmpl == nil {
		tmpl, err = template.New("prompt").
			Funcs(sprig.TxtFuncMap()).
			Option("missingkey=zero").
			Parse(p.Template)
		if err != nil {
			return "", errors.WithMessage(err, "failed to parse prompt template")
		}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, resolved); err != nil {
		return "", errors.WithMessage(err, "failed to render prompt template")
	}
	return sb.String(), nil
}

// FormatPrompt implements the FormatPrompter interface.
func (p PromptTemplate) FormatPrompt(values map[string]any) (llms.PromptValue, error) {
	formatted, err := p.Format(values)
	if err != nil {
		return nil, err
	}
	return StringPromptValue(formatted), nil
}

// GetInputVariables returns the input variables the prompt expects.
func (p PromptTemplate) GetInputVariables() []string {
	return p.InputVariables
}

func resolvePartialValues(partials map[string]any, values map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(partials)+len(values))
	for name, value := range partials {
		switch v := value.(type) {
		case string:
			resolved[name] = v
		case func() string:
			resolved[name] = v()
		default:
			return nil, errors.Newf("unsupported partial variable type: %T", value)
		}
	}
	for name, value := range values {
		resolved[name] = value
	}
	return resolved, nil
}

func checkInputVariables(values map[string]any, expected []string) error {
	for _, name := range expected {
		if _, ok := values[name]; !ok {
			return errors.Newf("missing prompt input variable: %q", name)
		}
	}
	return nil
}
