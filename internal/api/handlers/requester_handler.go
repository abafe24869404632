// server/internal/api/handlers/requester_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"disaster-relief-api-server/internal/database"
	"disaster-relief-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type RequesterHandler struct {
	DB *mongo.Database
}

type RegisterDeviceRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	// DeviceID is optional: the client sends its stored token, or omits it to
	// receive a fresh one.
	DeviceID string `json:"device_id"`
}

// RegisterDevice creates or updates a requester identity, idempotently.
// Victims have no credential; the device token anchors their identity.
func (h *RequesterHandler) RegisterDevice(c *gin.Context) {
	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = uuid.New().String()
	}

	collection := h.DB.Collection(database.CollRequesters)

	var existing models.Requester
	err := collection.FindOne(context.Background(), bson.M{"deviceID": deviceID}).Decode(&existing)
	if err == nil {
		_, err = collection.UpdateOne(context.Background(),
			bson.M{"deviceID": deviceID},
			bson.M{"$set": bson.M{
				"fullName":  req.FullName,
				"phone":     req.Phone,
				"updatedAt": time.Now().UTC(),
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update requester"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"device_id": deviceID,
			"full_name": req.FullName,
			"phone":     req.Phone,
		})
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for requester"})
		return
	}

	now := time.Now().UTC()
	requester := models.Requester{
		DeviceID:  deviceID,
		FullName:  req.FullName,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := collection.InsertOne(context.Background(), requester); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create requester"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device_id": deviceID,
		"full_name": req.FullName,
		"phone":     req.Phone,
	})
}
