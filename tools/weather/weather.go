// Package weather provides a current-weather tool backed by the
// WeatherStack API. A WEATHERSTACK_API_KEY is required.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/pkg/llmutils"
	"github.com/effective-security/agentdemo/pkg/schema"
	"github.com/effective-security/agentdemo/tools"
)

const ToolName = "GetWeather"

const (
	DefaultBaseURL = "http://api.weatherstack.com"

	apiKeyEnvVarName = "WEATHERSTACK_API_KEY"
)

var ErrMissingAPIKey = errors.New("weather API key not configured, set WEATHERSTACK_API_KEY")

// WeatherRequest represents the tool input.
type WeatherRequest struct {
	Location string `json:"location" yaml:"location" jsonschema:"title=Location,description=The city or place to get the current weather for."`
	Celsius  bool   `json:"celsius,omitempty" yaml:"celsius,omitempty" jsonschema:"title=Celsius,description=Report the temperature in Celsius instead of Fahrenheit."`
}

// WeatherResult represents the current weather at a location.
type WeatherResult struct {
	Location    string `json:"location" yaml:"location" jsonschema:"title=Location,description=The resolved location name."`
	Country     string `json:"country" yaml:"country" jsonschema:"title=Country,description=The country of the location."`
	Description string `json:"description" yaml:"description" jsonschema:"title=Description,description=The weather description."`
	Temperature int    `json:"temperature" yaml:"temperature" jsonschema:"title=Temperature,description=The current temperature."`
	FeelsLike   int    `json:"feels_like" yaml:"feels_like" jsonschema:"title=Feels Like,description=The perceived temperature."`
	Humidity    int    `json:"humidity" yaml:"humidity" jsonschema:"title=Humidity,description=The humidity percentage."`
	WindSpeed   int    `json:"wind_speed" yaml:"wind_speed" jsonschema:"title=Wind Speed,description=The wind speed in km/h."`
	Units       string `json:"units" yaml:"units" jsonschema:"title=Units,description=The temperature units, C or F."`
}

var _ chatmodel.ContentProvider = (*WeatherResult)(nil)

func (r *WeatherResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *WeatherResult) String() string {
	return fmt.Sprintf("Weather in %s, %s:\n  %s\n  Temperature: %d°%s (feels like %d°%s)\n  Humidity: %d%%, Wind: %d km/h",
		r.Location, r.Country, r.Description,
		r.Temperature, r.Units, r.FeelsLike, r.Units,
		r.Humidity, r.WindSpeed)
}

// Tool reports the current weather for a location.
type Tool struct {
	name        string
	description string
	funcParams  any

	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ tools.Tool[WeatherRequest, WeatherResult] = (*Tool)(nil)

func New() (*Tool, error) {
	apiKey := os.Getenv(apiKeyEnvVarName)
	if apiKey == "" {
		return nil, errors.WithStack(ErrMissingAPIKey)
	}

	sc, err := schema.New(reflect.TypeOf(WeatherRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &Tool{
		name:        ToolName,
		description: "Gets the current weather at the given location using the WeatherStack API.",
		funcParams:  sc.Parameters,
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
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

type currentResponse struct {
	Error *struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		Temperature         int      `json:"temperature"`
		WeatherDescriptions []string `json:"weather_descriptions"`
		WindSpeed           int      `json:"wind_speed"`
		Humidity            int      `json:"humidity"`
		FeelsLike           int      `json:"feelslike"`
	} `json:"current"`
}

func (t *Tool) Run(ctx context.Context, req *WeatherRequest) (*WeatherResult, error) {
	if req.Location == "" {
		return nil, errors.New("invalid request: empty location")
	}

	units := "f"
	unitLabel := "F"
	if req.Celsius {
		units = "m"
		unitLabel = "C"
	}

	q := url.Values{}
	q.Set("access_key", t.apiKey)
	q.Set("query", req.Location)
	q.Set("units", units)
	u := fmt.Sprintf("%s/current?%s", strings.TrimSuffix(t.baseURL, "/"), q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch weather")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("weather API returned unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	var data currentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}
	if data.Error != nil {
		return nil, errors.Errorf("weather API error: %s", data.Error.Info)
	}

	description := ""
	if len(data.Current.WeatherDescriptions) > 0 {
		description = data.Current.WeatherDescriptions[0]
	}

	return &WeatherResult{
		Location:    data.Location.Name,
		Country:     data.Location.Country,
		Description: description,
		Temperature: data.Current.Temperature,
		FeelsLike:   data.Current.FeelsLike,
		Humidity:    data.Current.Humidity,
		WindSpeed:   data.Current.WindSpeed,
		Units:       unitLabel,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req WeatherRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}
