// server/internal/models/relief_centre.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReliefCentre is a fixed aid-distribution point. The dispatch core only ever
// reads centres; mutation is admin-only.
type ReliefCentre struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	CentreID  string             `bson:"centreID" json:"id"` // e.g. "RC-1A2B3C4D"
	Name      string             `bson:"name" json:"name"`
	Latitude  float64            `bson:"latitude" json:"latitude"`
	Longitude float64            `bson:"longitude" json:"longitude"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
