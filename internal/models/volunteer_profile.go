// server/internal/models/volunteer_profile.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Volunteer availability.
const (
	AvailabilityAvailable = "AVAILABLE"
	AvailabilityBusy      = "BUSY"
)

// VolunteerProfile links a volunteer user to a home relief centre.
// Maintained outside the dispatch core; the core only reads it when assigning.
type VolunteerProfile struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID      string             `bson:"userID" json:"user_id"`
	CentreID    string             `bson:"centreID" json:"relief_centre_id"`
	VehicleType string             `bson:"vehicleType,omitempty" json:"vehicle_type,omitempty"`
	Availability string            `bson:"availability" json:"availability"` // AVAILABLE, BUSY
}
