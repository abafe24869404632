// server/internal/api/handlers/relief_centre_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"disaster-relief-api-server/internal/database"
	"disaster-relief-api-server/internal/models"
	"disaster-relief-api-server/internal/routing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReliefCentreHandler struct {
	DB       *mongo.Database
	Resolver *routing.Resolver
}

// Coordinates bind as pointers so required does not reject a valid 0.
type CreateCentreRequest struct {
	Name      string   `json:"name" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

type NearestCentreRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

// GetAllCentres lists all relief centres. Public: victims pick from this list.
func (h *ReliefCentreHandler) GetAllCentres(c *gin.Context) {
	collection := h.DB.Collection(database.CollReliefCentres)

	cursor, err := collection.Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query relief centres"})
		return
	}
	defer cursor.Close(context.Background())

	var centres []models.ReliefCentre
	if err = cursor.All(context.Background(), &centres); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode relief centres"})
		return
	}

	if centres == nil {
		centres = []models.ReliefCentre{}
	}

	c.JSON(http.StatusOK, centres)
}

// Nearest resolves the nearest centre by real driving distance.
func (h *ReliefCentreHandler) Nearest(c *gin.Context) {
	var req NearestCentreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection(database.CollReliefCentres)
	cursor, err := collection.Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query relief centres"})
		return
	}
	defer cursor.Close(context.Background())

	var centres []models.ReliefCentre
	if err = cursor.All(context.Background(), &centres); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode relief centres"})
		return
	}

	selection, err := h.Resolver.Resolve(c.Request.Context(),
		routing.Point{Lat: *req.Latitude, Lng: *req.Longitude}, centres)
	if err != nil {
		switch {
		case errors.Is(err, routing.ErrNoCentresAvailable):
			c.JSON(http.StatusNotFound, gin.H{"error": "No relief centres available"})
		case errors.Is(err, routing.ErrAllCandidatesFailed):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Routing service error: failed to route to any relief centre"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve nearest centre"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"relief_centre":      selection.Centre,
		"route":              selection.Route,
		"distance":           selection.Route.Summary.Distance,
		"duration":           selection.Route.Summary.Duration,
		"distance_formatted": selection.Route.Summary.DistanceFormatted,
		"duration_formatted": selection.Route.Summary.DurationFormatted,
	})
}

// CreateCentre adds a relief centre. Admin only.
func (h *ReliefCentreHandler) CreateCentre(c *gin.Context) {
	var req CreateCentreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	centre := models.ReliefCentre{
		CentreID:  "RC-" + strings.ToUpper(uuid.New().String()[:8]),
		Name:      req.Name,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := h.DB.Collection(database.CollReliefCentres).InsertOne(context.Background(), centre); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create relief centre"})
		return
	}

	c.JSON(http.StatusCreated, centre)
}

// UpdateCentre updates a relief centre. Admin only.
func (h *ReliefCentreHandler) UpdateCentre(c *gin.Context) {
	centreID := c.Param("id")

	var req CreateCentreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.DB.Collection(database.CollReliefCentres).UpdateOne(context.Background(),
		bson.M{"centreID": centreID},
		bson.M{"$set": bson.M{
			"name":      req.Name,
			"latitude":  *req.Latitude,
			"longitude": *req.Longitude,
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update relief centre"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Relief centre not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Relief centre updated successfully"})
}

// DeleteCentre removes a relief centre. Admin only.
func (h *ReliefCentreHandler) DeleteCentre(c *gin.Context) {
	centreID := c.Param("id")

	res, err := h.DB.Collection(database.CollReliefCentres).
		DeleteOne(context.Background(), bson.M{"centreID": centreID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete relief centre"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Relief centre not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Relief centre deleted successfully"})
}
