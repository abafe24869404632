// server/internal/models/dispatch.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DispatchStatus is the lifecycle state of a dispatch.
// CANCELLED is reserved for administrative cancellation; no flow reaches it yet.
type DispatchStatus string

const (
	DispatchPending    DispatchStatus = "PENDING"
	DispatchAssigned   DispatchStatus = "ASSIGNED"
	DispatchInProgress DispatchStatus = "IN_PROGRESS"
	DispatchCompleted  DispatchStatus = "COMPLETED"
	DispatchCancelled  DispatchStatus = "CANCELLED"
)

func (s DispatchStatus) IsValid() bool {
	switch s {
	case DispatchPending, DispatchAssigned, DispatchInProgress, DispatchCompleted, DispatchCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether the dispatch still binds the volunteer.
func (s DispatchStatus) IsActive() bool {
	return s == DispatchAssigned || s == DispatchInProgress
}

// IsTerminal reports whether no further mutation is permitted.
func (s DispatchStatus) IsTerminal() bool {
	return s == DispatchCompleted || s == DispatchCancelled
}

func (s DispatchStatus) String() string {
	return string(s)
}

// Dispatch binds one relief request to exactly one volunteer. The volunteer
// reference is immutable once assigned; a dispatch is never reassigned.
type Dispatch struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	DispatchID  string             `bson:"dispatchID" json:"id"` // e.g. "DP-1A2B3C4D"
	RequestID   string             `bson:"requestID" json:"request_id"`
	VolunteerID string             `bson:"volunteerID" json:"volunteer_id"`
	AssignedAt  time.Time          `bson:"assignedAt" json:"assigned_at"`
	Status      DispatchStatus     `bson:"status" json:"status"`

	// Last-known volunteer position, set by location updates.
	VolunteerLatitude  *float64   `bson:"volunteerLatitude,omitempty" json:"volunteer_latitude,omitempty"`
	VolunteerLongitude *float64   `bson:"volunteerLongitude,omitempty" json:"volunteer_longitude,omitempty"`
	LocationUpdatedAt  *time.Time `bson:"locationUpdatedAt,omitempty" json:"location_updated_at,omitempty"`
}
