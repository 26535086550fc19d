// Package wikipedia provides an article summary tool backed by the
// Wikipedia REST v1 page summary endpoint.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/pkg/llmutils"
	"github.com/effective-security/agentdemo/pkg/schema"
	"github.com/effective-security/agentdemo/tools"
)

const ToolName = "SearchWikipedia"

const (
	DefaultBaseURL   = "https://en.wikipedia.org"
	defaultUserAgent = "agentdemo/1.0"
)

// SummaryRequest represents the tool input.
type SummaryRequest struct {
	Query string `json:"query" yaml:"query" jsonschema:"title=Query,description=The topic to look up on Wikipedia."`
}

// SummaryResult represents an article summary.
type SummaryResult struct {
	Title   string `json:"title" yaml:"title" jsonschema:"title=Title,description=The title of the article."`
	Extract string `json:"extract" yaml:"extract" jsonschema:"title=Extract,description=The summary text of the article."`
	URL     string `json:"url,omitempty" yaml:"url,omitempty" jsonschema:"title=URL,description=The link to the full article."`
}

var _ chatmodel.ContentProvider = (*SummaryResult)(nil)

func (r *SummaryResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *SummaryResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Wikipedia - %s:\n%s\n", r.Title, r.Extract)
	if r.URL != "" {
		fmt.Fprintf(&b, "\nRead more: %s\n", r.URL)
	}
	return b.String()
}

// Tool looks up article summaries on Wikipedia.
type Tool struct {
	name        string
	description string
	funcParams  any

	baseURL    string
	httpClient *http.Client
}

var _ tools.Tool[SummaryRequest, SummaryResult] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(SummaryRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &Tool{
		name:        ToolName,
		description: "Looks up a topic on Wikipedia and returns the article summary.",
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

type summaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

func (t *Tool) Run(ctx context.Context, req *SummaryRequest) (*SummaryResult, error) {
	if req.Query == "" {
		return nil, errors.New("invalid request: empty query")
	}

	// the summary endpoint expects underscores instead of spaces
	title := strings.ReplaceAll(req.Query, " ", "_")
	u := fmt.Sprintf("%s/api/rest_v1/page/summary/%s",
		strings.TrimSuffix(t.baseURL, "/"), url.PathEscape(title))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("User-Agent", defaultUserAgent)

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch summary")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Errorf("no Wikipedia summary found for %q", req.Query)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("Wikipedia API returned unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	var data summaryResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}
	if data.Extract == "" {
		return nil, errors.Errorf("no Wikipedia summary found for %q", req.Query)
	}

	return &SummaryResult{
		Title:   data.Title,
		Extract: data.Extract,
		URL:     data.ContentURLs.Desktop.Page,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req SummaryRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}
