// server/internal/dispatch/tracking.go
package dispatch

import (
	"context"
	"errors"
	"time"

	"disaster-relief-api-server/internal/routing"
)

// TrackingView is the point-in-time view a requester polls: request status,
// last-known volunteer position, and a best-effort fresh route/ETA.
type TrackingView struct {
	RequestID        string  `json:"request_id"`
	Status           string  `json:"status"`
	RequesterName    string  `json:"requester_name,omitempty"`
	RequesterPhone   string  `json:"requester_phone,omitempty"`
	VictimLatitude   float64 `json:"victim_latitude"`
	VictimLongitude  float64 `json:"victim_longitude"`
	ReliefCentreID   string  `json:"relief_centre_id"`
	ReliefCentreName string  `json:"relief_centre_name,omitempty"`

	VolunteerName      string         `json:"volunteer_name,omitempty"`
	VolunteerLatitude  *float64       `json:"volunteer_latitude,omitempty"`
	VolunteerLongitude *float64       `json:"volunteer_longitude,omitempty"`
	LocationUpdatedAt  string         `json:"location_updated_at,omitempty"`
	RouteToVictim      *routing.Route `json:"route_to_victim,omitempty"`
	ETAMinutes         *float64       `json:"eta_minutes,omitempty"`
}

// AuthorizeTracking checks that the requester owns the request, without
// building a full view. Used by the tracking websocket on subscribe.
func (s *Service) AuthorizeTracking(ctx context.Context, rctx RequesterContext, requestID string) error {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.RequesterID != rctx.DeviceID {
		return ErrNotYourRequest
	}
	return nil
}

// Track builds the tracking view for the requester owning the request.
//
// The view is always valid without a route: ETA is best-effort, and a routing
// failure here is swallowed, never surfaced to the caller.
func (s *Service) Track(ctx context.Context, rctx RequesterContext, requestID string) (*TrackingView, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != rctx.DeviceID {
		return nil, ErrNotYourRequest
	}

	view := &TrackingView{
		RequestID:       req.RequestID,
		Status:          req.Status.String(),
		RequesterName:   rctx.FullName,
		RequesterPhone:  rctx.Phone,
		VictimLatitude:  req.Latitude,
		VictimLongitude: req.Longitude,
		ReliefCentreID:  req.CentreID,
	}
	if centre, err := s.store.GetCentre(ctx, req.CentreID); err == nil {
		view.ReliefCentreName = centre.Name
	}

	d, err := s.store.GetDispatchByRequest(ctx, requestID)
	if errors.Is(err, ErrDispatchNotFound) {
		// Still PENDING: no volunteer, no location, no ETA.
		return view, nil
	}
	if err != nil {
		return nil, err
	}

	if vol, err := s.store.GetUser(ctx, d.VolunteerID); err == nil {
		view.VolunteerName = vol.Name
	}
	view.VolunteerLatitude = d.VolunteerLatitude
	view.VolunteerLongitude = d.VolunteerLongitude
	if d.LocationUpdatedAt != nil {
		view.LocationUpdatedAt = d.LocationUpdatedAt.Format(time.RFC3339)
	}

	if d.VolunteerLatitude != nil && d.VolunteerLongitude != nil {
		route, err := s.router.Route(ctx,
			routing.Point{Lat: *d.VolunteerLatitude, Lng: *d.VolunteerLongitude},
			routing.Point{Lat: req.Latitude, Lng: req.Longitude},
		)
		if err != nil {
			s.log.Warn().Str("request", requestID).Err(err).Msg("tracking route unavailable, omitting ETA")
		} else {
			eta := route.Summary.Duration / 60
			view.RouteToVictim = route
			view.ETAMinutes = &eta
		}
	}

	return view, nil
}
