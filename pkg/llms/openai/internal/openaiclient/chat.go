package openaiclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/pkg/schema"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentdemo", "openai")

// ChatRequest is a request to the chat completions endpoint.
type ChatRequest struct {
	Model       string         `json:"model"`
	Messages    []*ChatMessage `json:"messages"`
	Temperature *float64       `json:"temperature,omitempty"`
	TopP        *float64       `json:"top_p,omitempty"`
	N           int            `json:"n,omitempty"`
	StopWords   []string       `json:"stop,omitempty"`
	Seed        int            `json:"seed,omitempty"`

	MaxCompletionTokens int `json:"max_completion_tokens,omitempty"`

	Tools      []Tool `json:"tools,omitempty"`
	ToolChoice any    `json:"tool_choice,omitempty"`

	Metadata       map[string]any         `json:"metadata,omitempty"`
	ResponseFormat *schema.ResponseFormat `json:"response_format,omitempty"`

	// Stream is set when a StreamingFunc is provided.
	Stream bool `json:"stream,omitempty"`

	StreamingFunc func(ctx context.Context, chunk []byte) error `json:"-"`
}

// streamChunk is a single server-sent event of a streaming chat response.
type streamChunk struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Role      string     `json:"role"`
			Content   string     `json:"content"`
			ToolCalls []ToolCall `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage,omitempty"`
}

// ChatMessage is a message in a chat request.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Tool is a tool to use in a chat request.
type Tool struct {
	Type     ToolType           `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition is a definition of a function that can be called by the model.
type FunctionDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters"`
	Strict      bool   `json:"strict,omitempty"`
}

// ToolCall is a call to a tool.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     ToolType     `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction is a function in a tool call.
type ToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatCompletionResponse is a response from the chat completions endpoint.
type ChatCompletionResponse struct {
	ID      string                  `json:"id"`
	Created int64                   `json:"created"`
	Model   string                  `json:"model"`
	Choices []*ChatCompletionChoice `json:"choices"`
	Usage   Usage                   `json:"usage"`
}

// ChatCompletionChoice is a choice in a chat completion response.
type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage reports token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CreateChat creates chat request.
func (c *Client) CreateChat(ctx context.Context, r *ChatRequest) (*ChatCompletionResponse, error) {
	if r.Model == "" {
		if c.Model == "" {
			r.Model = DefaultChatModel
		} else {
			r.Model = c.Model
		}
	}
	resp, err := c.createChat(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp, nil
}

func (c *Client) createChat(ctx context.Context, payload *ChatRequest) (*ChatCompletionResponse, error) {
	payload.Stream = payload.StreamingFunc != nil

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}

	u := c.buildURL("/chat/completions", payload.Model)
	logger.ContextKV(ctx, xlog.DEBUG, "url", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	c.setHeaders(req)

	r, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer func() { _ = r.Body.Close() }()

	if r.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("API returned unexpected status code: %d", r.StatusCode)
		if r.StatusCode == http.StatusNotFound {
			msg += ": url: " + u
		}
		var errResp errorMessage
		if err := json.NewDecoder(r.Body).Decode(&errResp); err != nil {
			return nil, errors.New(msg)
		}
		return nil, errors.Errorf("%s: %s", msg, errResp.Error.Message)
	}

	if payload.Stream {
		return parseStreamingChatResponse(ctx, r.Body, payload.StreamingFunc)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}

	var resp ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return &resp, nil
}

// parseStreamingChatResponse reads server-sent events, forwards each content
// delta to streamingFunc and accumulates the full response.
func parseStreamingChatResponse(ctx context.Context, body io.Reader, streamingFunc func(ctx context.Context, chunk []byte) error) (*ChatCompletionResponse, error) {
	resp := &ChatCompletionResponse{}
	contents := map[int]*strings.Builder{}
	choices := map[int]*ChatCompletionChoice{}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		data, found := strings.CutPrefix(line, "data:")
		if !found {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, errors.Wrap(err, "decode stream event")
		}
		if chunk.ID != "" {
			resp.ID = chunk.ID
			resp.Created = chunk.Created
			resp.Model = chunk.Model
		}
		if chunk.Usage != nil {
			resp.Usage = *chunk.Usage
		}

		for _, c := range chunk.Choices {
			choice := choices[c.Index]
			if choice == nil {
				choice = &ChatCompletionChoice{Index: c.Index}
				choices[c.Index] = choice
				contents[c.Index] = &strings.Builder{}
			}
			if c.Delta.Role != "" {
				choice.Message.Role = c.Delta.Role
			}
			if c.FinishReason != "" {
				choice.FinishReason = c.FinishReason
			}
			choice.Message.ToolCalls = append(choice.Message.ToolCalls, c.Delta.ToolCalls...)

			if c.Delta.Content != "" {
				contents[c.Index].WriteString(c.Delta.Content)
				if err := streamingFunc(ctx, []byte(c.Delta.Content)); err != nil {
					return nil, errors.Wrap(err, "streaming func returned an error")
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read stream")
	}

	for i := 0; i < len(choices); i++ {
		choice := choices[i]
		if choice == nil {
			break
		}
		choice.Message.Content = contents[i].String()
		resp.Choices = append(resp.Choices, choice)
	}
	return resp, nil
}
