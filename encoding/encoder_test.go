package encoding_test

import (
	"testing"

	"github.com/effective-security/agentdemo/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type SearchType string

const (
	Web   SearchType = "web"
	Image SearchType = "image"
	Video SearchType = "video"
)

type Search struct {
	Topic string     `json:"topic" jsonschema:"title=Topic,description=Topic of the search,example=golang" fake:"golang"`
	Query string     `json:"query" jsonschema:"title=Query,description=Query to search for relevant content,example=what is golang" fake:"what is golang"`
	Type  SearchType `json:"type"  jsonschema:"title=Type,description=Type of search,default=web,enum=web,enum=image,enum=video" fake:"web"`
}

func Test_JSON_Encoding(t *testing.T) {
	e, err := encoding.PredefinedSchemaEncoder(encoding.ModeJSON, Search{})
	require.NoError(t, err)

	got := e.GetFormatInstructions()
	assert.Contains(t, got, "Respond with JSON in the following JSON schema:")
	assert.Contains(t, got, "```json")
	assert.Contains(t, got, `"topic"`)
	assert.Contains(t, got, `"Query to search for relevant content"`)
	assert.Contains(t, got, "Make sure to return an instance of the JSON, not the schema itself.")

	var out Search
	err = e.Unmarshal([]byte("```json\n{\"topic\":\"go\",\"query\":\"what is go\",\"type\":\"web\"}\n```"), &out)
	require.NoError(t, err)
	assert.Equal(t, "go", out.Topic)
	assert.Equal(t, Web, out.Type)
}

func Test_YAML_Encoding(t *testing.T) {
	e, err := encoding.PredefinedSchemaEncoder(encoding.ModeYAML, Search{})
	require.NoError(t, err)

	exp := `
Respond with YAML in the following YAML schema without comments:
` + "```yaml" + `
topic: golang
query: what is golang
type: web
` + "```" + `
Make sure to return an instance of the YAML, not the schema itself.
`

	assert.Equal(t, exp, e.GetFormatInstructions())

	var out Search
	err = e.Unmarshal([]byte("topic: go\nquery: what is go\ntype: image\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, Image, out.Type)
}

func Test_TOML_Encoding(t *testing.T) {
	e, err := encoding.PredefinedSchemaEncoder(encoding.ModeTOML, Search{})
	require.NoError(t, err)

	exp := `
Respond with TOML in the following TOML schema:
` + "```toml" + `
Topic = "golang"
Query = "what is golang"
Type = "web"
` + "```" + `
Make sure to return an instance of the TOML, not the schema itself.
`

	assert.Equal(t, exp, e.GetFormatInstructions())
}

func Test_PlainText_Encoding(t *testing.T) {
	e, err := encoding.PredefinedSchemaEncoder(encoding.ModePlainText, "")
	require.NoError(t, err)
	assert.Empty(t, e.GetFormatInstructions())

	var out string
	err = e.Unmarshal([]byte("plain answer"), &out)
	require.NoError(t, err)
	assert.Equal(t, "plain answer", out)
}

func Test_UnknownMode(t *testing.T) {
	_, err := encoding.PredefinedSchemaEncoder(encoding.ModeCustom, Search{})
	require.Error(t, err)
	assert.Equal(t, "no predefined encoder", err.Error())
}
