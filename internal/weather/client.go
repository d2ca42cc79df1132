// Package weather fetches current conditions from the OpenWeatherMap
// current-weather endpoint. Temperatures are always requested in Celsius;
// unit conversion is a formatting concern.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Current is the subset of the provider response the formatter renders.
type Current struct {
	Temperature float64 // Celsius
	FeelsLike   float64
	TempMin     float64
	TempMax     float64
	Humidity    int
	Description string // e.g. "clear sky"
	WindSpeed   float64 // m/s
	Clouds      int     // percent
	City        string
	Country     string
}

// Client talks to the weather provider. The zero timeout falls back to 10s.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client. baseURL may be empty to use the production endpoint;
// tests point it at a local server.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// apiResponse mirrors the provider's JSON shape. The "cod" field is a number
// on success and a string on errors, so it is decoded leniently.
type apiResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// FetchCurrent returns current conditions for city,country using the given
// API key. Provider-reported failures (non-2xx) surface as an error carrying
// the provider's message.
func (c *Client) FetchCurrent(ctx context.Context, apiKey, city, country string) (*Current, error) {
	q := url.Values{}
	q.Set("q", city+","+country)
	q.Set("appid", apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("weather response read failed: %w", err)
	}

	var out apiResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &out) == nil && out.Message != "" {
			return nil, fmt.Errorf("weather provider: %s", out.Message)
		}
		return nil, fmt.Errorf("weather provider: status %s", resp.Status)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("weather response decode failed: %w", err)
	}

	cur := &Current{
		Temperature: out.Main.Temp,
		FeelsLike:   out.Main.FeelsLike,
		TempMin:     out.Main.TempMin,
		TempMax:     out.Main.TempMax,
		Humidity:    out.Main.Humidity,
		WindSpeed:   out.Wind.Speed,
		Clouds:      out.Clouds.All,
		City:        out.Name,
		Country:     out.Sys.Country,
	}
	if cur.City == "" {
		cur.City = city
	}
	if cur.Country == "" {
		cur.Country = country
	}
	if len(out.Weather) > 0 {
		cur.Description = out.Weather[0].Description
	}
	return cur, nil
}
