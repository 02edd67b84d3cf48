package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
)

const (
	DefaultBaseURL     = "https://api.openweathermap.org/data/2.5"
	forecastTimeLayout = "2006-01-02 15:04:05"
)

const responseBodyReadLimit int64 = 1024

var (
	errAPIKeyRequired = errors.New("openweather api key is required")
	// ErrRateLimited is returned without calling upstream when the local budget is spent.
	ErrRateLimited = errors.New("openweather request budget exhausted")
)

// Client calls the OpenWeather 2.5 current and forecast endpoints in metric units.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithRateLimit caps outbound calls to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	client := &Client{
		apiKey:     key,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Conditions is one observation, either current or a forecast slot.
type Conditions struct {
	Time        time.Time
	Temperature float64
	Humidity    int
	WindSpeed   float64
	Condition   string
	Description string
	Icon        string
}

type Current struct {
	Conditions
	City    string
	Country string
}

type apiConditions struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

func (a apiConditions) toConditions() Conditions {
	out := Conditions{
		Temperature: a.Main.Temp,
		Humidity:    a.Main.Humidity,
		WindSpeed:   a.Wind.Speed,
	}
	if len(a.Weather) > 0 {
		out.Condition = a.Weather[0].Main
		out.Description = a.Weather[0].Description
		out.Icon = a.Weather[0].Icon
	}
	return out
}

// Current fetches /weather for city,country.
func (c *Client) Current(ctx context.Context, city, country string) (*Current, error) {
	var body struct {
		apiConditions
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
	}
	if err := c.get(ctx, "weather", city, country, &body); err != nil {
		return nil, err
	}
	if len(body.Weather) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "openweather returned no conditions")
	}
	return &Current{Conditions: body.toConditions(), City: body.Name, Country: body.Sys.Country}, nil
}

// Forecast fetches the 3-hourly /forecast list for city,country.
func (c *Client) Forecast(ctx context.Context, city, country string) ([]Conditions, error) {
	var body struct {
		List []struct {
			apiConditions
			DtTxt string `json:"dt_txt"`
		} `json:"list"`
	}
	if err := c.get(ctx, "forecast", city, country, &body); err != nil {
		return nil, err
	}
	out := make([]Conditions, 0, len(body.List))
	for _, item := range body.List {
		ts, err := time.Parse(forecastTimeLayout, item.DtTxt)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse forecast timestamp")
		}
		cond := item.toConditions()
		cond.Time = ts
		out = append(out, cond)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path, city, country string, dst any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "openweather client not configured")
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return ErrRateLimited
	}

	query := url.Values{}
	query.Set("q", fmt.Sprintf("%s,%s", city, country))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path+"?"+query.Encode(), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build openweather request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute openweather request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "openweather request failed")
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode openweather response")
	}
	return nil
}
