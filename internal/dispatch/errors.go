// server/internal/dispatch/errors.go
package dispatch

import "errors"

// Sentinel errors for the dispatch lifecycle. Handlers map these to HTTP
// status codes; the service never speaks HTTP.
var (
	ErrRequestNotFound  = errors.New("relief request not found")
	ErrDispatchNotFound = errors.New("dispatch not found")
	ErrCentreNotFound   = errors.New("relief centre not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidDevice    = errors.New("unknown device")

	// ErrRequestNotPending: accept requires a PENDING request.
	ErrRequestNotPending = errors.New("request is no longer pending")
	// ErrAlreadyDispatched: a dispatch already exists for the request. Raised
	// by the storage-level uniqueness guard, so concurrent accepts cannot both win.
	ErrAlreadyDispatched = errors.New("request already accepted by a volunteer")
	// ErrVolunteerBusy: the volunteer already has an active dispatch.
	ErrVolunteerBusy = errors.New("volunteer already has an active dispatch")

	ErrNotOwner       = errors.New("not your dispatch")
	ErrNotYourRequest = errors.New("not your request")

	ErrInvalidStatus     = errors.New("invalid status value")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDispatchTerminal  = errors.New("dispatch is in a terminal state")

	// ErrConflict: a compare-and-swap transition found unexpected state.
	ErrConflict = errors.New("concurrent modification conflict")
)
