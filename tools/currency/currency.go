// Package currency provides a currency conversion tool backed by the
// ExchangeRate-API. The free v4 endpoint is used by default; when an
// EXCHANGE_API_KEY is configured, the keyed v6 pair endpoint is used
// instead.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/pkg/llmutils"
	"github.com/effective-security/agentdemo/pkg/schema"
	"github.com/effective-security/agentdemo/tools"
)

const ToolName = "ConvertCurrency"

const (
	DefaultBaseURL      = "https://api.exchangerate-api.com/v4"
	DefaultKeyedBaseURL = "https://v6.exchangerate-api.com/v6"

	apiKeyEnvVarName = "EXCHANGE_API_KEY"
)

// ConvertRequest represents the tool input.
type ConvertRequest struct {
	Amount       float64 `json:"amount" yaml:"amount" jsonschema:"title=Amount,description=The amount of money to convert."`
	FromCurrency string  `json:"from_currency" yaml:"from_currency" jsonschema:"title=From Currency,description=The 3-letter code of the currency to convert from, e.g. USD."`
	ToCurrency   string  `json:"to_currency" yaml:"to_currency" jsonschema:"title=To Currency,description=The 3-letter code of the currency to convert to, e.g. EUR."`
}

// ConvertResult represents the conversion response.
type ConvertResult struct {
	Amount          float64 `json:"amount" yaml:"amount" jsonschema:"title=Amount,description=The original amount."`
	FromCurrency    string  `json:"from_currency" yaml:"from_currency" jsonschema:"title=From Currency,description=The currency converted from."`
	ToCurrency      string  `json:"to_currency" yaml:"to_currency" jsonschema:"title=To Currency,description=The currency converted to."`
	Rate            float64 `json:"rate" yaml:"rate" jsonschema:"title=Rate,description=The exchange rate used."`
	ConvertedAmount float64 `json:"converted_amount" yaml:"converted_amount" jsonschema:"title=Converted Amount,description=The converted amount."`
}

var _ chatmodel.ContentProvider = (*ConvertResult)(nil)

func (r *ConvertResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *ConvertResult) String() string {
	return fmt.Sprintf("%.2f %s = %.2f %s (Rate: %.4f)",
		r.Amount, r.FromCurrency, r.ConvertedAmount, r.ToCurrency, r.Rate)
}

// Tool converts an amount between two currencies.
type Tool struct {
	name        string
	description string
	funcParams  any

	baseURL      string
	keyedBaseURL string
	apiKey       string
	httpClient   *http.Client
}

var _ tools.Tool[ConvertRequest, ConvertResult] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(ConvertRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &Tool{
		name:         ToolName,
		description:  "Converts an amount of money from one currency to another using live exchange rates.",
		funcParams:   sc.Parameters,
		baseURL:      DefaultBaseURL,
		keyedBaseURL: DefaultKeyedBaseURL,
		apiKey:       os.Getenv(apiKeyEnvVarName),
		httpClient:   http.DefaultClient,
	}
	return tool, nil
}

func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = baseURL
	return t
}

func (t *Tool) WithKeyedBaseURL(baseURL string) *Tool {
	t.keyedBaseURL = baseURL
	return t
}

func (t *Tool) WithAPIKey(apiKey string) *Tool {
	t.apiKey = apiKey
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

// latestRatesResponse is the free v4 API response format.
type latestRatesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// pairResponse is the keyed v6 API response format.
type pairResponse struct {
	Result         string  `json:"result"`
	ErrorType      string  `json:"error-type"`
	ConversionRate float64 `json:"conversion_rate"`
}

func (t *Tool) Run(ctx context.Context, req *ConvertRequest) (*ConvertResult, error) {
	if req.FromCurrency == "" || req.ToCurrency == "" {
		return nil, errors.New("invalid request: from_currency and to_currency are required")
	}

	from := strings.ToUpper(req.FromCurrency)
	to := strings.ToUpper(req.ToCurrency)

	var rate float64
	var err error
	if t.apiKey != "" {
		rate, err = t.pairRate(ctx, from, to)
	} else {
		rate, err = t.latestRate(ctx, from, to)
	}
	if err != nil {
		return nil, err
	}

	return &ConvertResult{
		Amount:          req.Amount,
		FromCurrency:    from,
		ToCurrency:      to,
		Rate:            rate,
		ConvertedAmount: req.Amount * rate,
	}, nil
}

func (t *Tool) latestRate(ctx context.Context, from, to string) (float64, error) {
	u := fmt.Sprintf("%s/latest/%s", strings.TrimSuffix(t.baseURL, "/"), from)
	var res latestRatesResponse
	if err := t.getJSON(ctx, u, nil, &res); err != nil {
		return 0, err
	}
	rate, ok := res.Rates[to]
	if !ok {
		return 0, errors.Errorf("could not find exchange rate for %s to %s", from, to)
	}
	return rate, nil
}

func (t *Tool) pairRate(ctx context.Context, from, to string) (float64, error) {
	u := fmt.Sprintf("%s/%s/pair/%s/%s", strings.TrimSuffix(t.keyedBaseURL, "/"), t.apiKey, from, to)
	var res pairResponse
	if err := t.getJSON(ctx, u, nil, &res); err != nil {
		return 0, err
	}
	if res.Result != "success" {
		return 0, errors.Errorf("exchange rate API error: %s", res.ErrorType)
	}
	return res.ConversionRate, nil
}

func (t *Tool) getJSON(ctx context.Context, u string, headers map[string]string, ret any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to fetch exchange rate")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("exchange rate API returned unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}
	if err := json.Unmarshal(body, ret); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req ConvertRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}
