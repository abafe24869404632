// server/internal/models/relief_request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the lifecycle state of a relief request.
// Transitions are forward-only: PENDING -> ACCEPTED -> IN_PROGRESS -> COMPLETED.
type RequestStatus string

const (
	RequestPending    RequestStatus = "PENDING"
	RequestAccepted   RequestStatus = "ACCEPTED"
	RequestInProgress RequestStatus = "IN_PROGRESS"
	RequestCompleted  RequestStatus = "COMPLETED"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestInProgress, RequestCompleted:
		return true
	default:
		return false
	}
}

func (s RequestStatus) String() string {
	return string(s)
}

// ReliefRequest is a help request submitted by a requester against a centre.
// At most one non-cancelled dispatch may reference a request at any time.
type ReliefRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RequestID    string             `bson:"requestID" json:"id"` // e.g. "RR-1A2B3C4D"
	RequesterID  string             `bson:"requesterDeviceID" json:"requester_device_id"`
	CentreID     string             `bson:"centreID" json:"relief_centre_id"`
	RequestType  string             `bson:"requestType" json:"request_type"` // e.g. "supplies"
	Supplies     []string           `bson:"supplies" json:"supplies"`        // ["food", "medical", ...]
	UrgencyLevel int                `bson:"urgencyLevel" json:"urgency_level"` // 1..5
	Status       RequestStatus      `bson:"status" json:"status"`
	Latitude     float64            `bson:"latitude" json:"latitude"`
	Longitude    float64            `bson:"longitude" json:"longitude"`
	CreatedAt    time.Time          `bson:"createdAt" json:"created_at"`
}
