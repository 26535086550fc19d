// Package jokes provides a random joke tool backed by JokeAPI v2.
// Safe mode is always requested. When the API is unreachable the tool
// serves one of a few built-in jokes instead of failing.
package jokes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/pkg/llmutils"
	"github.com/effective-security/agentdemo/pkg/metricskey"
	"github.com/effective-security/agentdemo/pkg/schema"
	"github.com/effective-security/agentdemo/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentdemo", "jokes")

const ToolName = "GetJoke"

const (
	DefaultBaseURL  = "https://v2.jokeapi.dev"
	DefaultCategory = "Programming"
)

var fallbackJokes = []string{
	"Why do programmers prefer dark mode? Because light attracts bugs!",
	"How many programmers does it take to change a light bulb? None, that's a hardware problem!",
	"Why do Java developers wear glasses? Because they don't C#!",
}

// JokeRequest represents the tool input.
type JokeRequest struct {
	Category string `json:"category,omitempty" yaml:"category,omitempty" jsonschema:"title=Category,description=The joke category: Programming|Misc|Pun|Any. Defaults to Programming."`
}

// JokeResult represents a joke.
type JokeResult struct {
	Joke     string `json:"joke" yaml:"joke" jsonschema:"title=Joke,description=The joke text."`
	Category string `json:"category,omitempty" yaml:"category,omitempty" jsonschema:"title=Category,description=The category of the joke."`
	Fallback bool   `json:"fallback,omitempty" yaml:"fallback,omitempty" jsonschema:"title=Fallback,description=True when the joke was served from the built-in fallback list."`
}

var _ chatmodel.ContentProvider = (*JokeResult)(nil)

func (r *JokeResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *JokeResult) String() string {
	return r.Joke
}

// Tool fetches a random joke.
type Tool struct {
	name        string
	description string
	funcParams  any

	baseURL    string
	httpClient *http.Client
}

var _ tools.Tool[JokeRequest, JokeResult] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(JokeRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &Tool{
		name:        ToolName,
		description: "Gets a random safe-mode joke from JokeAPI. Defaults to programming jokes.",
		funcParams:  sc.Parameters,
		baseURL:     DefaultBaseURL,
		httpClient:  http.DefaultClient,
	}
	return tool, nil
}

func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = baseURL
	return t
}

func (t *Tool) WithHTTPClient(client *http.Client) *Tool {
	t.httpClient = client
	return t
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

type jokeResponse struct {
	Error    bool   `json:"error"`
	Category string `json:"category"`
	Type     string `json:"type"`
	Joke     string `json:"joke"`
	Setup    string `json:"setup"`
	Delivery string `json:"delivery"`
}

// Run fetches a joke, falling back to a built-in joke on any API failure.
// It never returns an error for transport failures.
func (t *Tool) Run(ctx context.Context, req *JokeRequest) (*JokeResult, error) {
	category := req.Category
	if category == "" {
		category = DefaultCategory
	}

	res, err := t.fetch(ctx, category)
	if err != nil {
		logger.ContextKV(ctx, xlog.WARNING, "reason", "joke_api_failed", "err", err.Error())
		metricskey.StatsToolAPIFallbacks.IncrCounter(1, ToolName)
		return &JokeResult{
			Joke:     fallbackJokes[rand.Intn(len(fallbackJokes))],
			Category: DefaultCategory,
			Fallback: true,
		}, nil
	}
	return res, nil
}

func (t *Tool) fetch(ctx context.Context, category string) (*JokeResult, error) {
	u := fmt.Sprintf("%s/joke/%s?safe-mode&type=single", strings.TrimSuffix(t.baseURL, "/"), category)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch joke")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("joke API returned unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	var data jokeResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}
	if data.Error {
		return nil, errors.New("joke API reported an error")
	}

	joke := data.Joke
	if data.Type == "twopart" {
		joke = data.Setup + "\n" + data.Delivery
	}

	return &JokeResult{
		Joke:     joke,
		Category: data.Category,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req JokeRequest
	if input != "" {
		if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
			return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
		}
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}
