package prompts

import (
	"testing"

	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptTemplate_Format(t *testing.T) {
	t.Parallel()

	p := NewPromptTemplate("Hello {{.name}}, welcome to {{.place}}.", []string{"name", "place"})
	out, err := p.Format(map[string]any{"name": "Alice", "place": "Wonderland"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Alice, welcome to Wonderland.", out)

	// Missing input variable
	_, err = p.Format(map[string]any{"name": "Alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing prompt input variable: "place"`)

	// Sprig functions are available
	p = NewPromptTemplate(`{{ .name | upper }}`, []string{"name"})
	out, err = p.Format(map[string]any{"name": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "ALICE", out)
}

func TestPromptTemplate_PartialVariables(t *testing.T) {
	t.Parallel()

	p := NewPromptTemplate("{{.greeting}}, {{.name}}!", []string{"greeting", "name"})
	p.PartialVariables = map[string]any{
		"greeting": "Hello",
		"name":     func() string { return "Bob" },
	}
	out, err := p.Format(nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, Bob!", out)

	// Explicit values override partials
	out, err = p.Format(map[string]any{"name": "Carol"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Carol!", out)

	// Unsupported partial type
	p.PartialVariables = map[string]any{"greeting": 42}
	_, err = p.Format(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported partial variable type")
}

func TestPromptTemplate_FormatPrompt(t *testing.T) {
	t.Parallel()

	p := NewPromptTemplate("Say {{.word}}.", []string{"word"})
	value, err := p.FormatPrompt(map[string]any{"word": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Say hi.", value.String())
	require.Len(t, value.Messages(), 1)
	assert.Equal(t, llms.RoleHuman, value.Messages()[0].Role)

	assert.Equal(t, []string{"word"}, p.GetInputVariables())
}

func TestJinjaPromptTemplate(t *testing.T) {
	t.Parallel()

	p := NewJinjaPromptTemplate("Hello {{ name }}!", []string{"name"})
	out, err := p.Format(map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada!", out)

	_, err = p.Format(map[string]any{})
	require.Error(t, err)

	value, err := p.FormatPrompt(map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada!", value.String())
}
