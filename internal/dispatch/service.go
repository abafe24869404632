// server/internal/dispatch/service.go
package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"disaster-relief-api-server/internal/models"
	"disaster-relief-api-server/internal/routing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VolunteerContext is a validated volunteer identity, built once at the HTTP
// boundary from the bearer token. The state machine never re-derives roles.
type VolunteerContext struct {
	UserID string
	Name   string
}

// RequesterContext is a validated requester (victim) identity, resolved from
// the opaque device token.
type RequesterContext struct {
	DeviceID string
	FullName string
	Phone    string
}

// Service is the dispatch state machine. Transitions are forward-only:
//
//	request:  PENDING -> ACCEPTED -> IN_PROGRESS -> COMPLETED
//	dispatch:            ASSIGNED -> IN_PROGRESS -> COMPLETED
//
// Accept serialization relies on the Store's uniqueness guards, not on
// application-level locking.
type Service struct {
	store  Store
	router routing.Router
	log    zerolog.Logger
}

func NewService(store Store, router routing.Router, log zerolog.Logger) *Service {
	return &Service{store: store, router: router, log: log}
}

func newDispatchID() string {
	return "DP-" + strings.ToUpper(uuid.New().String()[:8])
}

// ResolveRequester turns a device token into a RequesterContext.
func (s *Service) ResolveRequester(ctx context.Context, deviceID string) (RequesterContext, error) {
	requester, err := s.store.GetRequesterByDevice(ctx, deviceID)
	if err != nil {
		return RequesterContext{}, ErrInvalidDevice
	}
	return RequesterContext{
		DeviceID: requester.DeviceID,
		FullName: requester.FullName,
		Phone:    requester.Phone,
	}, nil
}

// Accept assigns the volunteer to a PENDING request, creating its dispatch.
// Exactly one concurrent Accept per request can succeed; the losers get
// ErrAlreadyDispatched from the storage uniqueness guard.
func (s *Service) Accept(ctx context.Context, vctx VolunteerContext, requestID string) (*models.Dispatch, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestPending {
		return nil, ErrRequestNotPending
	}

	// One active dispatch per volunteer. The partial unique index backs this
	// check up under concurrency.
	if _, err := s.store.GetActiveDispatchByVolunteer(ctx, vctx.UserID); err == nil {
		return nil, ErrVolunteerBusy
	} else if !errors.Is(err, ErrDispatchNotFound) {
		return nil, err
	}

	d := &models.Dispatch{
		DispatchID:  newDispatchID(),
		RequestID:   req.RequestID,
		VolunteerID: vctx.UserID,
		AssignedAt:  time.Now().UTC(),
		Status:      models.DispatchAssigned,
	}
	if err := s.store.CreateDispatch(ctx, d); err != nil {
		return nil, err
	}

	if err := s.store.TransitionRequest(ctx, req.RequestID, models.RequestPending, models.RequestAccepted); err != nil {
		// The dispatch insert won, so this CAS should not fail; surface it
		// rather than leaving the pair silently inconsistent.
		s.log.Error().Str("request", req.RequestID).Err(err).Msg("request transition failed after dispatch creation")
		return nil, err
	}

	s.log.Info().
		Str("request", req.RequestID).
		Str("dispatch", d.DispatchID).
		Str("volunteer", vctx.UserID).
		Msg("request accepted")
	return d, nil
}

// UpdateStatus advances the dispatch (and its request) to IN_PROGRESS or
// COMPLETED. Only the owning volunteer holds a dispatch for the request, so a
// non-owner caller sees ErrDispatchNotFound.
func (s *Service) UpdateStatus(ctx context.Context, vctx VolunteerContext, requestID string, target string) error {
	d, err := s.store.GetDispatchByRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if d.VolunteerID != vctx.UserID {
		return ErrDispatchNotFound
	}

	var (
		dispatchFrom, dispatchTo models.DispatchStatus
		requestFrom, requestTo   models.RequestStatus
	)
	switch models.DispatchStatus(target) {
	case models.DispatchInProgress:
		dispatchFrom, dispatchTo = models.DispatchAssigned, models.DispatchInProgress
		requestFrom, requestTo = models.RequestAccepted, models.RequestInProgress
	case models.DispatchCompleted:
		dispatchFrom, dispatchTo = models.DispatchInProgress, models.DispatchCompleted
		requestFrom, requestTo = models.RequestInProgress, models.RequestCompleted
	default:
		return ErrInvalidStatus
	}

	if d.Status != dispatchFrom {
		return ErrInvalidTransition
	}

	if err := s.store.TransitionDispatch(ctx, d.DispatchID, dispatchFrom, dispatchTo); err != nil {
		if errors.Is(err, ErrConflict) {
			return ErrInvalidTransition
		}
		return err
	}
	if err := s.store.TransitionRequest(ctx, requestID, requestFrom, requestTo); err != nil {
		s.log.Error().Str("request", requestID).Err(err).Msg("request transition failed after dispatch transition")
		return err
	}

	s.log.Info().
		Str("request", requestID).
		Str("dispatch", d.DispatchID).
		Str("status", target).
		Msg("dispatch status updated")
	return nil
}

// UpdateLocation records the volunteer's current position on an active
// dispatch and returns the dispatch. Updates are last-write-wins: concurrent
// out-of-order reports are accepted, the stored value is whichever write lands
// last.
func (s *Service) UpdateLocation(ctx context.Context, vctx VolunteerContext, dispatchID string, lat, lng float64) (*models.Dispatch, error) {
	d, err := s.store.GetDispatch(ctx, dispatchID)
	if err != nil {
		return nil, err
	}
	if d.VolunteerID != vctx.UserID {
		return nil, ErrNotOwner
	}
	if d.Status.IsTerminal() {
		return nil, ErrDispatchTerminal
	}

	// The store re-checks status inside the write, so a completion landing
	// after the read above still cannot put coordinates onto a terminal
	// dispatch.
	at := time.Now().UTC()
	if err := s.store.SetDispatchLocation(ctx, dispatchID, lat, lng, at); err != nil {
		return nil, err
	}
	d.VolunteerLatitude = &lat
	d.VolunteerLongitude = &lng
	d.LocationUpdatedAt = &at
	return d, nil
}

// MyActiveDispatch returns the volunteer's single ASSIGNED/IN_PROGRESS
// dispatch, or nil when there is none.
func (s *Service) MyActiveDispatch(ctx context.Context, vctx VolunteerContext) (*models.Dispatch, error) {
	d, err := s.store.GetActiveDispatchByVolunteer(ctx, vctx.UserID)
	if errors.Is(err, ErrDispatchNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
