// server/internal/api/handlers/weather_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"disaster-relief-api-server/internal/weather"

	"github.com/gin-gonic/gin"
)

type WeatherHandler struct {
	Client *weather.Client
}

// Coordinates bind as pointers so required does not reject a valid 0.
type WeatherRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

type RouteWeatherRequest struct {
	Coordinates [][]float64 `json:"coordinates" binding:"required"`
}

func (h *WeatherHandler) respond(c *gin.Context, lat, lng float64) {
	obs, err := h.Client.Current(c.Request.Context(), lat, lng)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch weather data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"weather": obs,
		"safety":  weather.AssessSafety(*obs),
	})
}

// Current returns conditions and a travel advisory for a point (query params).
func (h *WeatherHandler) Current(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid latitude"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid longitude"})
		return
	}
	h.respond(c, lat, lng)
}

// CurrentByBody is the POST variant of Current.
func (h *WeatherHandler) CurrentByBody(c *gin.Context) {
	var req WeatherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, *req.Latitude, *req.Longitude)
}

// RouteWeather samples conditions along a route geometry.
func (h *WeatherHandler) RouteWeather(c *gin.Context) {
	var req RouteWeatherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Coordinates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates must not be empty"})
		return
	}

	result, err := h.Client.AlongRoute(c.Request.Context(), req.Coordinates)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch route weather"})
		return
	}

	c.JSON(http.StatusOK, result)
}
