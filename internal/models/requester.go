// server/internal/models/requester.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Requester is a victim identified by a device token stored client-side.
// No password; name and phone are collected on first submission.
type Requester struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	DeviceID  string             `bson:"deviceID" json:"device_id"` // UUID string, unique
	FullName  string             `bson:"fullName" json:"full_name"`
	Phone     string             `bson:"phone" json:"phone"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}
