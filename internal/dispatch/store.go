// server/internal/dispatch/store.go
package dispatch

import (
	"context"
	"time"

	"disaster-relief-api-server/internal/models"
)

// Store is the persistence boundary of the dispatch state machine.
//
// Implementations must uphold two constraints atomically, not via prior reads:
//   - at most one dispatch per request (CreateDispatch returns
//     ErrAlreadyDispatched on violation)
//   - at most one active dispatch per volunteer (CreateDispatch returns
//     ErrVolunteerBusy on violation)
//
// Transition* methods are compare-and-swap: they succeed only when the entity
// is still in the expected `from` state, returning ErrConflict otherwise.
type Store interface {
	GetRequest(ctx context.Context, requestID string) (*models.ReliefRequest, error)
	TransitionRequest(ctx context.Context, requestID string, from, to models.RequestStatus) error

	CreateDispatch(ctx context.Context, d *models.Dispatch) error
	GetDispatch(ctx context.Context, dispatchID string) (*models.Dispatch, error)
	GetDispatchByRequest(ctx context.Context, requestID string) (*models.Dispatch, error)
	GetActiveDispatchByVolunteer(ctx context.Context, volunteerID string) (*models.Dispatch, error)
	TransitionDispatch(ctx context.Context, dispatchID string, from, to models.DispatchStatus) error
	// SetDispatchLocation writes only while the dispatch is ASSIGNED or
	// IN_PROGRESS, returning ErrDispatchTerminal otherwise. The status check
	// belongs to the write itself, not to a prior read.
	SetDispatchLocation(ctx context.Context, dispatchID string, lat, lng float64, at time.Time) error

	GetRequesterByDevice(ctx context.Context, deviceID string) (*models.Requester, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetCentre(ctx context.Context, centreID string) (*models.ReliefCentre, error)
}
