package chatmodel

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/pkg/llmutils"
	"github.com/invopop/jsonschema"
)

// InputRequest is a generic input for assistants and tools that take a
// free-form question.
type InputRequest struct {
	Input string `json:"input" yaml:"input" jsonschema:"title=Input,description=The question or request for the assistant."`
}

var (
	// value receiver, so both InputRequest and *InputRequest satisfy the interface
	_ ContentProvider = InputRequest{}
	_ InputParser     = (*InputRequest)(nil)
)

func NewInputRequest(input string) *InputRequest {
	return &InputRequest{Input: input}
}

// GetContent gets the content of the message for the chat history
func (r InputRequest) GetContent() string {
	return r.Input
}

// ParseInput parses raw model arguments, accepting both a JSON object and a
// bare string.
func (r *InputRequest) ParseInput(input string) error {
	cleaned := llmutils.CleanJSON([]byte(input))
	if err := json.Unmarshal(cleaned, r); err != nil {
		return errors.WithStack(ErrFailedUnmarshalInput)
	}
	return nil
}

func (InputRequest) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Title = "Input Request"
}

// OutputResult is a generic plain-content result for assistants.
type OutputResult struct {
	Content string `json:"content" yaml:"content" jsonschema:"title=Content,description=The content of the response."`
}

var _ ContentProvider = (*OutputResult)(nil)

func NewOutputResult(content string) *OutputResult {
	return &OutputResult{Content: content}
}

// GetContent gets the content of the message for the chat history
func (r OutputResult) GetContent() string {
	return r.Content
}

// IBaseResult allows assistants to attach clarifications to typed results.
type IBaseResult interface {
	SetConfidence(string)
	SetClarification(string)
	SetReasoning(string)
}

// BaseClarificationResult is embedded in typed results that carry
// confidence, clarification and reasoning alongside the payload.
type BaseClarificationResult struct {
	Confidence    string `json:"confidence,omitempty" yaml:"confidence,omitempty" jsonschema:"title=Confidence,description=The confidence level of the response: High|Medium|Low."`
	Clarification string `json:"clarification,omitempty" yaml:"clarification,omitempty" jsonschema:"title=Clarification,description=A clarification question when the request is ambiguous."`
	Reasoning     string `json:"reasoning,omitempty" yaml:"reasoning,omitempty" jsonschema:"title=Reasoning,description=The reasoning behind the response."`
}

var _ IBaseResult = (*BaseClarificationResult)(nil)

func (r *BaseClarificationResult) SetConfidence(v string) {
	r.Confidence = v
}

func (r *BaseClarificationResult) SetClarification(v string) {
	r.Clarification = v
}

func (r *BaseClarificationResult) SetReasoning(v string) {
	r.Reasoning = v
}
