// server/internal/api/handlers/relief_request_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"disaster-relief-api-server/internal/database"
	"disaster-relief-api-server/internal/dispatch"
	"disaster-relief-api-server/internal/models"
	"disaster-relief-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReliefRequestHandler struct {
	DB      *mongo.Database
	Service *dispatch.Service
	Hub     *socket.Hub
}

// Coordinates bind as pointers: 0 is a valid latitude/longitude, so required
// must distinguish absent from zero.
type CreateReliefRequest struct {
	DeviceID       string   `json:"device_id" binding:"required"`
	ReliefCentreID string   `json:"relief_centre_id" binding:"required"`
	Latitude       *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude      *float64 `json:"longitude" binding:"required,min=-180,max=180"`
	Supplies       []string `json:"supplies" binding:"required"`
	UrgencyLevel   int      `json:"urgency_level" binding:"omitempty,min=1,max=5"`
	RequestType    string   `json:"request_type"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type LocationUpdateRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

// ReliefRequestView is a request enriched with requester contact details for
// the volunteer queue.
type ReliefRequestView struct {
	models.ReliefRequest
	RequesterName  string `json:"requester_name"`
	RequesterPhone string `json:"requester_phone"`
}

func (h *ReliefRequestHandler) volunteerContext(c *gin.Context) dispatch.VolunteerContext {
	return dispatch.VolunteerContext{
		UserID: c.GetString("user_id"),
		Name:   c.GetString("user_name"),
	}
}

// CreateRequest submits a new help request. The device must be registered
// first; the request starts PENDING with no dispatch.
func (h *ReliefRequestHandler) CreateRequest(c *gin.Context) {
	var req CreateReliefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var requester models.Requester
	err := h.DB.Collection(database.CollRequesters).
		FindOne(context.Background(), bson.M{"deviceID": req.DeviceID}).Decode(&requester)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid device_id"})
		return
	}

	centreCount, err := h.DB.Collection(database.CollReliefCentres).
		CountDocuments(context.Background(), bson.M{"centreID": req.ReliefCentreID})
	if err != nil || centreCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Relief centre not found"})
		return
	}

	urgency := req.UrgencyLevel
	if urgency == 0 {
		urgency = 3
	}
	requestType := req.RequestType
	if requestType == "" {
		requestType = "supplies"
	}

	newRequest := models.ReliefRequest{
		RequestID:    "RR-" + strings.ToUpper(uuid.New().String()[:8]),
		RequesterID:  requester.DeviceID,
		CentreID:     req.ReliefCentreID,
		RequestType:  requestType,
		Supplies:     req.Supplies,
		UrgencyLevel: urgency,
		Status:       models.RequestPending,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := h.DB.Collection(database.CollReliefRequests).InsertOne(context.Background(), newRequest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create relief request"})
		return
	}

	c.JSON(http.StatusCreated, newRequest)
}

// GetAllRequests lists requests for the volunteer queue, optionally filtered
// by status and centre, enriched with requester contact details.
func (h *ReliefRequestHandler) GetAllRequests(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		if !models.RequestStatus(status).IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
			return
		}
		filter["status"] = status
	}
	if centre := c.Query("centre"); centre != "" {
		filter["centreID"] = centre
	}

	cursor, err := h.DB.Collection(database.CollReliefRequests).Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query relief requests"})
		return
	}
	defer cursor.Close(context.Background())

	var requests []models.ReliefRequest
	if err = cursor.All(context.Background(), &requests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode relief requests"})
		return
	}

	views := make([]ReliefRequestView, 0, len(requests))
	requesters := map[string]models.Requester{}
	for _, req := range requests {
		requester, ok := requesters[req.RequesterID]
		if !ok {
			if err := h.DB.Collection(database.CollRequesters).
				FindOne(context.Background(), bson.M{"deviceID": req.RequesterID}).Decode(&requester); err == nil {
				requesters[req.RequesterID] = requester
			}
		}
		views = append(views, ReliefRequestView{
			ReliefRequest:  req,
			RequesterName:  requester.FullName,
			RequesterPhone: requester.Phone,
		})
	}

	c.JSON(http.StatusOK, views)
}

// Accept lets a volunteer claim a PENDING request.
func (h *ReliefRequestHandler) Accept(c *gin.Context) {
	requestID := c.Param("id")

	d, err := h.Service.Accept(c.Request.Context(), h.volunteerContext(c), requestID)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		case errors.Is(err, dispatch.ErrRequestNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Request is no longer pending"})
		case errors.Is(err, dispatch.ErrAlreadyDispatched):
			c.JSON(http.StatusConflict, gin.H{"error": "Request already accepted by a volunteer"})
		case errors.Is(err, dispatch.ErrVolunteerBusy):
			c.JSON(http.StatusConflict, gin.H{"error": "You already have an active dispatch"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "dispatch_id": d.DispatchID, "request_id": d.RequestID})
}

// UpdateStatus advances the owned dispatch to IN_PROGRESS or COMPLETED.
func (h *ReliefRequestHandler) UpdateStatus(c *gin.Context) {
	requestID := c.Param("id")

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Service.UpdateStatus(c.Request.Context(), h.volunteerContext(c), requestID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrDispatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Dispatch not found"})
		case errors.Is(err, dispatch.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		case errors.Is(err, dispatch.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status transition"})
		case errors.Is(err, dispatch.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Request was modified concurrently"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "status": req.Status})
}

// UpdateLocation records the volunteer's position on an active dispatch and
// pushes it to tracking subscribers.
func (h *ReliefRequestHandler) UpdateLocation(c *gin.Context) {
	dispatchID := c.Param("id")

	var req LocationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.Service.UpdateLocation(c.Request.Context(), h.volunteerContext(c), dispatchID, *req.Latitude, *req.Longitude)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrDispatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Dispatch not found"})
		case errors.Is(err, dispatch.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your dispatch"})
		case errors.Is(err, dispatch.ErrDispatchTerminal):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Dispatch is already completed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		}
		return
	}

	h.Hub.Publish(d.RequestID, socket.LocationEvent{
		Type:       "location",
		RequestID:  d.RequestID,
		DispatchID: d.DispatchID,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		UpdatedAt:  d.LocationUpdatedAt.Format(time.RFC3339),
	})

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MyActiveDispatch returns the volunteer's in-flight dispatch so the UI can
// resume after a refresh.
func (h *ReliefRequestHandler) MyActiveDispatch(c *gin.Context) {
	d, err := h.Service.MyActiveDispatch(c.Request.Context(), h.volunteerContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query active dispatch"})
		return
	}
	if d == nil {
		c.JSON(http.StatusOK, gin.H{"request_id": nil, "dispatch_id": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"request_id": d.RequestID, "dispatch_id": d.DispatchID})
}

// Tracking serves the requester's point-in-time view of their request.
func (h *ReliefRequestHandler) Tracking(c *gin.Context) {
	requestID := c.Param("id")

	deviceID := c.Query("device_id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_id is required"})
		return
	}

	rctx, err := h.Service.ResolveRequester(c.Request.Context(), deviceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid device_id"})
		return
	}

	view, err := h.Service.Track(c.Request.Context(), rctx, requestID)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		case errors.Is(err, dispatch.ErrNotYourRequest):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your request"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build tracking view"})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}
