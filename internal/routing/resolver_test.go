// server/internal/routing/resolver_test.go
package routing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"disaster-relief-api-server/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRouter answers Route calls from a canned table keyed by destination.
type fakeRouter struct {
	routes map[Point]*Route
	errs   map[Point]error
	calls  []Point
}

func (f *fakeRouter) Route(ctx context.Context, origin, dest Point) (*Route, error) {
	f.calls = append(f.calls, dest)
	if err, ok := f.errs[dest]; ok {
		return nil, err
	}
	if route, ok := f.routes[dest]; ok {
		return route, nil
	}
	return nil, fmt.Errorf("%w: no canned route", ErrRoutingUnavailable)
}

func routeWithDistance(meters float64) *Route {
	return &Route{Summary: RouteSummary{Distance: meters, Duration: meters / 10}}
}

func centreAt(id string, lat, lng float64) models.ReliefCentre {
	return models.ReliefCentre{CentreID: id, Name: id, Latitude: lat, Longitude: lng}
}

func TestHaversine(t *testing.T) {
	// Guduvancherry to Chengalpattu, roughly 15 km apart.
	d := Haversine(12.8449, 80.0400, 12.6939, 79.9757)
	assert.InDelta(t, 18.2, d, 1.0)

	assert.Zero(t, Haversine(12.5, 80.0, 12.5, 80.0))
}

func TestResolveNoCentres(t *testing.T) {
	resolver := NewResolver(&fakeRouter{}, zerolog.Nop())

	_, err := resolver.Resolve(context.Background(), Point{Lat: 12.8, Lng: 80.0}, nil)
	assert.ErrorIs(t, err, ErrNoCentresAvailable)
}

func TestResolvePicksMinimumRealDistance(t *testing.T) {
	// Centre B is geometrically farther than A but closer by road.
	a := centreAt("RC-A", 12.81, 80.01)
	b := centreAt("RC-B", 12.85, 80.05)

	router := &fakeRouter{routes: map[Point]*Route{
		{Lat: a.Latitude, Lng: a.Longitude}: routeWithDistance(9000),
		{Lat: b.Latitude, Lng: b.Longitude}: routeWithDistance(6500),
	}}
	resolver := NewResolver(router, zerolog.Nop())

	sel, err := resolver.Resolve(context.Background(), Point{Lat: 12.80, Lng: 80.00}, []models.ReliefCentre{a, b})
	require.NoError(t, err)

	assert.Equal(t, "RC-B", sel.Centre.CentreID)
	assert.Equal(t, 6500.0, sel.Route.Summary.Distance)
	assert.Len(t, sel.Candidates, 2)
}

func TestResolveBoundsCandidateFanout(t *testing.T) {
	origin := Point{Lat: 12.80, Lng: 80.00}

	// Six centres in increasing geometric distance; rank 6 must never be routed.
	var centres []models.ReliefCentre
	router := &fakeRouter{routes: map[Point]*Route{}}
	for i := 1; i <= 6; i++ {
		c := centreAt(fmt.Sprintf("RC-%d", i), 12.80+float64(i)*0.01, 80.00)
		centres = append(centres, c)
		router.routes[Point{Lat: c.Latitude, Lng: c.Longitude}] = routeWithDistance(float64(i) * 1000)
	}
	resolver := NewResolver(router, zerolog.Nop())

	sel, err := resolver.Resolve(context.Background(), origin, centres)
	require.NoError(t, err)

	assert.Equal(t, "RC-1", sel.Centre.CentreID)
	assert.Len(t, router.calls, 5)
	assert.Len(t, sel.Candidates, 5)
	for _, dest := range router.calls {
		assert.NotEqual(t, Point{Lat: 12.86, Lng: 80.00}, dest, "sixth-ranked centre must not be routed")
	}
}

func TestResolveSkipsFailedCandidates(t *testing.T) {
	a := centreAt("RC-A", 12.81, 80.01)
	b := centreAt("RC-B", 12.83, 80.03)

	router := &fakeRouter{
		routes: map[Point]*Route{
			{Lat: b.Latitude, Lng: b.Longitude}: routeWithDistance(8000),
		},
		errs: map[Point]error{
			{Lat: a.Latitude, Lng: a.Longitude}: errors.New("boom"),
		},
	}
	resolver := NewResolver(router, zerolog.Nop())

	sel, err := resolver.Resolve(context.Background(), Point{Lat: 12.80, Lng: 80.00}, []models.ReliefCentre{a, b})
	require.NoError(t, err)

	assert.Equal(t, "RC-B", sel.Centre.CentreID)

	// The failed candidate stays in the result list with its error.
	var failed int
	for _, cand := range sel.Candidates {
		if cand.Err != nil {
			failed++
			assert.Nil(t, cand.Route)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestResolveAllCandidatesFailed(t *testing.T) {
	a := centreAt("RC-A", 12.81, 80.01)
	b := centreAt("RC-B", 12.83, 80.03)

	router := &fakeRouter{errs: map[Point]error{
		{Lat: a.Latitude, Lng: a.Longitude}: errors.New("boom"),
		{Lat: b.Latitude, Lng: b.Longitude}: errors.New("boom"),
	}}
	resolver := NewResolver(router, zerolog.Nop())

	_, err := resolver.Resolve(context.Background(), Point{Lat: 12.80, Lng: 80.00}, []models.ReliefCentre{a, b})
	assert.ErrorIs(t, err, ErrAllCandidatesFailed)
}
