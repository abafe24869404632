// server/internal/weather/client.go
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// ErrWeatherUnavailable is returned for any transport failure or non-success
// response from the weather oracle.
var ErrWeatherUnavailable = errors.New("weather service unavailable")

// Observation is a point-in-time weather reading at a coordinate.
type Observation struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Temperature float64 `json:"temperature"` // Celsius
	Condition   string  `json:"condition"`   // e.g. "Rain"
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"` // m/s
	Rainfall    float64 `json:"rainfall"`   // mm over the last hour
	Icon        string  `json:"icon"`
	Timestamp   int64   `json:"timestamp"`
}

// Client calls an OpenWeatherMap-compatible oracle. Advisory only: nothing in
// the dispatch core reads weather.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type owmResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Dt int64 `json:"dt"`
}

// Current fetches the current conditions at a coordinate.
func (c *Client) Current(ctx context.Context, lat, lng float64) (*Observation, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: oracle returned status %d", ErrWeatherUnavailable, resp.StatusCode)
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrWeatherUnavailable, err)
	}

	obs := &Observation{
		Latitude:    lat,
		Longitude:   lng,
		Temperature: body.Main.Temp,
		Humidity:    body.Main.Humidity,
		WindSpeed:   body.Wind.Speed,
		Rainfall:    body.Rain.OneHour,
		Timestamp:   body.Dt,
	}
	if len(body.Weather) > 0 {
		obs.Condition = body.Weather[0].Main
		obs.Description = body.Weather[0].Description
		obs.Icon = body.Weather[0].Icon
	}
	return obs, nil
}

// RouteWeather is sampled conditions along a route geometry.
type RouteWeather struct {
	Points         []Observation `json:"points"`
	AverageTemp    float64       `json:"average_temperature"`
	MaxRainfall    float64       `json:"max_rainfall"`
	SampledPoints  int           `json:"sampled_points"`
	FailedSamples  int           `json:"failed_samples"`
}

// maxRouteSamples bounds oracle calls per route, same idea as the resolver's
// candidate fanout.
const maxRouteSamples = 5

// AlongRoute samples weather at up to maxRouteSamples evenly spaced points of
// a [lng, lat] coordinate sequence. Failed samples are skipped.
func (c *Client) AlongRoute(ctx context.Context, coords [][]float64) (*RouteWeather, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: empty route", ErrWeatherUnavailable)
	}

	step := 1
	samples := len(coords)
	if samples > maxRouteSamples {
		samples = maxRouteSamples
		step = (len(coords) - 1) / (maxRouteSamples - 1)
	}

	out := &RouteWeather{}
	var tempSum float64
	for i := 0; i < samples; i++ {
		idx := i * step
		if idx >= len(coords) {
			idx = len(coords) - 1
		}
		lng, lat := coords[idx][0], coords[idx][1]

		obs, err := c.Current(ctx, lat, lng)
		if err != nil {
			c.log.Warn().Float64("lat", lat).Float64("lng", lng).Err(err).Msg("weather sample failed")
			out.FailedSamples++
			continue
		}
		out.Points = append(out.Points, *obs)
		tempSum += obs.Temperature
		if obs.Rainfall > out.MaxRainfall {
			out.MaxRainfall = obs.Rainfall
		}
	}

	out.SampledPoints = len(out.Points)
	if out.SampledPoints == 0 {
		return nil, fmt.Errorf("%w: all samples failed", ErrWeatherUnavailable)
	}
	out.AverageTemp = tempSum / float64(out.SampledPoints)
	return out, nil
}
