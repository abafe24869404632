// server/internal/routing/client.go
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrRoutingUnavailable is returned for any transport failure or non-success
// response from the routing oracle. Callers must not default around it.
var ErrRoutingUnavailable = errors.New("routing service unavailable")

// Point is a latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteSummary carries the raw distance/duration plus presentation helpers.
// Selection logic must only ever use the raw meter/second values.
type RouteSummary struct {
	Distance          float64 `json:"distance"` // meters
	Duration          float64 `json:"duration"` // seconds
	DistanceKm        float64 `json:"distance_km"`
	DurationMin       float64 `json:"duration_min"`
	DistanceFormatted string  `json:"distance_formatted"`
	DurationFormatted string  `json:"duration_formatted"`
}

// Geometry is a GeoJSON LineString.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"` // [lng, lat] pairs
}

// Route is a routing-oracle result between two points. Ephemeral: computed on
// demand, never authoritative state.
type Route struct {
	Summary     RouteSummary `json:"summary"`
	Start       Point        `json:"start"`
	End         Point        `json:"end"`
	Geometry    Geometry     `json:"geometry"`
	Coordinates [][]float64  `json:"coordinates"` // raw [lng, lat] pairs for direct use
}

// Router computes a driving route between two points.
type Router interface {
	Route(ctx context.Context, origin, dest Point) (*Route, error)
}

// Client calls an OSRM-compatible routing oracle. Synchronous, no retry; the
// HTTP client timeout bounds every call.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type osrmResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route fetches the driving route from origin to dest.
func (c *Client) Route(ctx context.Context, origin, dest Point) (*Route, error) {
	url := fmt.Sprintf(
		"%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, origin.Lng, origin.Lat, dest.Lng, dest.Lat,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoutingUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoutingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: oracle returned status %d", ErrRoutingUnavailable, resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrRoutingUnavailable, err)
	}
	if len(body.Routes) == 0 {
		return nil, fmt.Errorf("%w: no routes in response", ErrRoutingUnavailable)
	}

	r := body.Routes[0]
	coords := r.Geometry.Coordinates
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: empty geometry", ErrRoutingUnavailable)
	}

	route := &Route{
		Summary: RouteSummary{
			Distance:          r.Distance,
			Duration:          r.Duration,
			DistanceKm:        math.Round(r.Distance/10) / 100,
			DurationMin:       math.Round(r.Duration/6) / 10,
			DistanceFormatted: FormatDistance(r.Distance),
			DurationFormatted: FormatDuration(r.Duration),
		},
		Start:       Point{Lat: coords[0][1], Lng: coords[0][0]},
		End:         Point{Lat: coords[len(coords)-1][1], Lng: coords[len(coords)-1][0]},
		Geometry:    Geometry{Type: "LineString", Coordinates: coords},
		Coordinates: coords,
	}
	return route, nil
}
