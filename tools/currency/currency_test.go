package currency_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/pkg/llmutils"
	"github.com/effective-security/agentdemo/tools/currency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/latest/USD", r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"base": "USD",
			"rates": map[string]float64{
				"EUR": 0.85,
				"GBP": 0.73,
			},
		})
	}))
	defer server.Close()

	ctx := context.Background()

	tool, err := currency.New()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithAPIKey("").WithHTTPClient(server.Client())

	assert.Equal(t, currency.ToolName, tool.Name())
	assert.Contains(t, tool.Description(), "currency")
	assert.NotNil(t, tool.Parameters())

	_, err = tool.Call(ctx, "plain string")
	assert.True(t, errors.Is(err, chatmodel.ErrFailedUnmarshalInput))
	assert.EqualError(t, err, "failed to unmarshal input: check the schema and try again")

	input := &currency.ConvertRequest{
		Amount:       1000,
		FromCurrency: "usd",
		ToCurrency:   "eur",
	}

	resp, err := tool.Run(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "1000.00 USD = 850.00 EUR (Rate: 0.8500)", resp.String())
	assert.InDelta(t, 850, resp.ConvertedAmount, 0.001)

	resp2, err := tool.Call(ctx, llmutils.ToJSON(input))
	require.NoError(t, err)
	exp := `{"amount":1000,"from_currency":"USD","to_currency":"EUR","rate":0.85,"converted_amount":850}`
	assert.Equal(t, exp, resp2)

	_, err = tool.Run(ctx, &currency.ConvertRequest{Amount: 1, FromCurrency: "USD", ToCurrency: "XXX"})
	assert.EqualError(t, err, "could not find exchange rate for USD to XXX")
}

func Test_Tool_Keyed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/testkey/pair/USD/EUR", r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"result":          "success",
			"conversion_rate": 0.9,
		})
	}))
	defer server.Close()

	tool, err := currency.New()
	require.NoError(t, err)
	tool.WithKeyedBaseURL(server.URL).WithAPIKey("testkey").WithHTTPClient(server.Client())

	resp, err := tool.Run(context.Background(), &currency.ConvertRequest{
		Amount:       100,
		FromCurrency: "USD",
		ToCurrency:   "EUR",
	})
	require.NoError(t, err)
	assert.InDelta(t, 90, resp.ConvertedAmount, 0.001)
}
