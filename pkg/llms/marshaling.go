package llms

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// messageJSON is the serialized form of a Message with a single text part.
type messageJSON struct {
	Role Role   `json:"role"`
	Text string `json:"text,omitempty"`
}

// messagePartsJSON is the serialized form of a Message with multiple or
// non-text parts.
type messagePartsJSON struct {
	Role  Role       `json:"role"`
	Parts []partJSON `json:"parts,omitempty"`
}

// partJSON is a polymorphic content part envelope.
type partJSON struct {
	Type         string            `json:"type"`
	Text         string            `json:"text,omitempty"`
	ToolCall     *ToolCall         `json:"tool_call,omitempty"`
	ToolResponse *ToolCallResponse `json:"tool_response,omitempty"`
}

const (
	partTypeText         = "text"
	partTypeToolCall     = "tool_call"
	partTypeToolResponse = "tool_response"
)

// MarshalJSON implements json.Marshaler for Message.
func (m Message) MarshalJSON() ([]byte, error) {
	// Single text part can be simplified.
	if len(m.Parts) == 1 {
		if tp, ok := m.Parts[0].(TextContent); ok {
			return json.Marshal(messageJSON{
				Role: m.Role,
				Text: tp.Text,
			})
		}
	}

	out := messagePartsJSON{Role: m.Role}
	for _, p := range m.Parts {
		switch typ := p.(type) {
		case TextContent:
			out.Parts = append(out.Parts, partJSON{Type: partTypeText, Text: typ.Text})
		case ToolCall:
			tc := typ
			out.Parts = append(out.Parts, partJSON{Type: partTypeToolCall, ToolCall: &tc})
		case ToolCallResponse:
			tr := typ
			out.Parts = append(out.Parts, partJSON{Type: partTypeToolResponse, ToolResponse: &tr})
		default:
			return nil, errors.Newf("unsupported content part type: %T", p)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler for Message.
func (m *Message) UnmarshalJSON(data []byte) error {
	var simple messageJSON
	if err := json.Unmarshal(data, &simple); err != nil {
		return errors.WithStack(err)
	}

	m.Role = simple.Role
	m.Parts = nil

	if simple.Text != "" {
		m.Parts = []ContentPart{TextContent{Text: simple.Text}}
		return nil
	}

	var withParts messagePartsJSON
	if err := json.Unmarshal(data, &withParts); err != nil {
		return errors.WithStack(err)
	}

	for _, p := range withParts.Parts {
		switch p.Type {
		case partTypeText:
			m.Parts = append(m.Parts, TextContent{Text: p.Text})
		case partTypeToolCall:
			if p.ToolCall == nil {
				return errors.New("tool_call part without tool_call payload")
			}
			m.Parts = append(m.Parts, *p.ToolCall)
		case partTypeToolResponse:
			if p.ToolResponse == nil {
				return errors.New("tool_response part without tool_response payload")
			}
			m.Parts = append(m.Parts, *p.ToolResponse)
		default:
			return errors.Newf("unsupported content part type: %q", p.Type)
		}
	}
	return nil
}
