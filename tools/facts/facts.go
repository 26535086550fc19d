// Package facts provides a random fact tool. It uses API Ninjas when an
// API_NINJAS_KEY is configured, otherwise the free uselessfacts API. When
// no source is reachable the tool serves one of a few built-in facts
// instead of failing.
package facts

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"os"
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

var logger = xlog.NewPackageLogger("github.com/effective-security/agentdemo", "facts")

const ToolName = "GetRandomFact"

const (
	DefaultBaseURL      = "https://uselessfacts.jsph.pl"
	DefaultNinjasURL    = "https://api.api-ninjas.com"
	defaultUserAgent    = "agentdemo/1.0"
	apiNinjasEnvVarName = "API_NINJAS_KEY"
)

var fallbackFacts = []string{
	"The first computer bug was an actual bug, a moth trapped in a Harvard Mark II computer in 1947.",
	"Python was named after the British comedy group Monty Python, not the snake.",
	"The term 'debugging' was popularized by Admiral Grace Hopper in the 1940s.",
	"The first programmer was Ada Lovelace, who wrote the first algorithm for Charles Babbage's Analytical Engine in 1843.",
	"The '@' symbol was used in email addresses for the first time by Ray Tomlinson in 1971.",
}

// FactRequest represents the tool input. No arguments are required.
type FactRequest struct {
	Language string `json:"language,omitempty" yaml:"language,omitempty" jsonschema:"title=Language,description=The language of the fact. Defaults to en."`
}

// FactResult represents a random fact.
type FactResult struct {
	Fact     string `json:"fact" yaml:"fact" jsonschema:"title=Fact,description=The fact text."`
	Source   string `json:"source,omitempty" yaml:"source,omitempty" jsonschema:"title=Source,description=The API the fact was fetched from."`
	Fallback bool   `json:"fallback,omitempty" yaml:"fallback,omitempty" jsonschema:"title=Fallback,description=True when the fact was served from the built-in fallback list."`
}

var _ chatmodel.ContentProvider = (*FactResult)(nil)

func (r *FactResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *FactResult) String() string {
	return r.Fact
}

// Tool fetches a random fact.
type Tool struct {
	name        string
	description string
	funcParams  any

	baseURL    string
	ninjasURL  string
	ninjasKey  string
	httpClient *http.Client
}

var _ tools.Tool[FactRequest, FactResult] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(FactRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &Tool{
		name:        ToolName,
		description: "Gets a random trivia fact.",
		funcParams:  sc.Parameters,
		baseURL:     DefaultBaseURL,
		ninjasURL:   DefaultNinjasURL,
		ninjasKey:   os.Getenv(apiNinjasEnvVarName),
		httpClient:  http.DefaultClient,
	}
	return tool, nil
}

func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = baseURL
	return t
}

func (t *Tool) WithNinjasURL(baseURL string) *Tool {
	t.ninjasURL = baseURL
	return t
}

func (t *Tool) WithNinjasKey(apiKey string) *Tool {
	t.ninjasKey = apiKey
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

// Run fetches a random fact, falling back to a built-in fact on any API
// failure. It never returns an error for transport failures.
func (t *Tool) Run(ctx context.Context, req *FactRequest) (*FactResult, error) {
	var res *FactResult
	var err error
	if t.ninjasKey != "" {
		res, err = t.fetchNinjas(ctx)
	} else {
		res, err = t.fetchUseless(ctx, req.Language)
	}
	if err != nil {
		logger.ContextKV(ctx, xlog.WARNING, "reason", "fact_api_failed", "err", err.Error())
		metricskey.StatsToolAPIFallbacks.IncrCounter(1, ToolName)
		return &FactResult{
			Fact:     fallbackFacts[rand.Intn(len(fallbackFacts))],
			Fallback: true,
		}, nil
	}
	return res, nil
}

func (t *Tool) fetchUseless(ctx context.Context, language string) (*FactResult, error) {
	if language == "" {
		language = "en"
	}
	u := strings.TrimSuffix(t.baseURL, "/") + "/random.json?language=" + language

	body, err := t.get(ctx, u, nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}
	if data.Text == "" {
		return nil, errors.New("fact API returned empty text")
	}

	return &FactResult{
		Fact:   data.Text,
		Source: "uselessfacts",
	}, nil
}

func (t *Tool) fetchNinjas(ctx context.Context) (*FactResult, error) {
	u := strings.TrimSuffix(t.ninjasURL, "/") + "/v1/facts"

	body, err := t.get(ctx, u, map[string]string{"X-Api-Key": t.ninjasKey})
	if err != nil {
		return nil, err
	}

	var data []struct {
		Fact string `json:"fact"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}
	if len(data) == 0 || data[0].Fact == "" {
		return nil, errors.New("fact API returned no facts")
	}

	return &FactResult{
		Fact:   data[0].Fact,
		Source: "api-ninjas",
	}, nil
}

func (t *Tool) get(ctx context.Context, u string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch fact")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fact API returned unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req FactRequest
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
