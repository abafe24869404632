// server/internal/routing/resolver.go
package routing

import (
	"context"
	"errors"
	"math"
	"sort"

	"disaster-relief-api-server/internal/models"

	"github.com/rs/zerolog"
)

var (
	// ErrNoCentresAvailable is returned when the candidate set is empty.
	ErrNoCentresAvailable = errors.New("no relief centres available")
	// ErrAllCandidatesFailed is returned when no candidate yielded a route.
	ErrAllCandidatesFailed = errors.New("failed to route to any relief centre")
)

// maxCandidates bounds exact-routing oracle calls regardless of fleet size.
// Haversine pre-filters; only the closest few get a real route. A centre that
// is geometrically farther but closer by road than rank 5 is never considered;
// that is a documented approximation, not a defect.
const maxCandidates = 5

const earthRadiusKm = 6371

// Haversine returns the great-circle distance between two points in kilometers.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dlat := (lat2 - lat1) * math.Pi / 180
	dlng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusKm * c
}

// CandidateResult records the outcome of one exact-routing attempt. Failed
// candidates are skipped during selection but kept for observability.
type CandidateResult struct {
	Centre   models.ReliefCentre
	ApproxKm float64
	Route    *Route
	Err      error
}

// Selection is the resolved nearest centre with its winning route.
type Selection struct {
	Centre     models.ReliefCentre
	Route      *Route
	Candidates []CandidateResult
}

// Resolver picks the relief centre with minimum real travel distance from a
// point, under a bounded oracle-call fanout.
type Resolver struct {
	router Router
	log    zerolog.Logger
}

func NewResolver(router Router, log zerolog.Logger) *Resolver {
	return &Resolver{router: router, log: log}
}

// Resolve selects the nearest centre by real driving distance.
func (r *Resolver) Resolve(ctx context.Context, point Point, centres []models.ReliefCentre) (*Selection, error) {
	if len(centres) == 0 {
		return nil, ErrNoCentresAvailable
	}

	results := make([]CandidateResult, 0, len(centres))
	for _, centre := range centres {
		results = append(results, CandidateResult{
			Centre:   centre,
			ApproxKm: Haversine(point.Lat, point.Lng, centre.Latitude, centre.Longitude),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ApproxKm < results[j].ApproxKm
	})

	if len(results) > maxCandidates {
		results = results[:maxCandidates]
	}

	for i := range results {
		route, err := r.router.Route(ctx, point, Point{
			Lat: results[i].Centre.Latitude,
			Lng: results[i].Centre.Longitude,
		})
		if err != nil {
			// Skip this candidate, keep trying the rest.
			results[i].Err = err
			r.log.Warn().
				Str("centre", results[i].Centre.CentreID).
				Str("name", results[i].Centre.Name).
				Err(err).
				Msg("routing failed for candidate centre")
			continue
		}
		results[i].Route = route
	}

	var best *CandidateResult
	for i := range results {
		if results[i].Route == nil {
			continue
		}
		if best == nil || results[i].Route.Summary.Distance < best.Route.Summary.Distance {
			best = &results[i]
		}
	}
	if best == nil {
		return nil, ErrAllCandidatesFailed
	}

	return &Selection{Centre: best.Centre, Route: best.Route, Candidates: results}, nil
}
