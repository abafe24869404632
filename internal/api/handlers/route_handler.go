// server/internal/api/handlers/route_handler.go
package handlers

import (
	"errors"
	"net/http"

	"disaster-relief-api-server/internal/routing"

	"github.com/gin-gonic/gin"
)

type RouteHandler struct {
	Router routing.Router
}

// Coordinates bind as pointers so required does not reject a valid 0.
type ComputeRouteRequest struct {
	StartLat *float64 `json:"start_lat" binding:"required,min=-90,max=90"`
	StartLng *float64 `json:"start_lng" binding:"required,min=-180,max=180"`
	EndLat   *float64 `json:"end_lat" binding:"required,min=-90,max=90"`
	EndLng   *float64 `json:"end_lng" binding:"required,min=-180,max=180"`
}

// ComputeRoute returns the driving route between two arbitrary points, for
// clients drawing a path outside the dispatch flow.
func (h *RouteHandler) ComputeRoute(c *gin.Context) {
	var req ComputeRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := h.Router.Route(c.Request.Context(),
		routing.Point{Lat: *req.StartLat, Lng: *req.StartLng},
		routing.Point{Lat: *req.EndLat, Lng: *req.EndLng},
	)
	if err != nil {
		if errors.Is(err, routing.ErrRoutingUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Routing service unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute route"})
		return
	}

	c.JSON(http.StatusOK, route)
}
