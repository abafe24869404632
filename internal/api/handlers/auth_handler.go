// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"disaster-relief-api-server/internal/auth"
	"disaster-relief-api-server/internal/database"
	"disaster-relief-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuthHandler struct {
	DB        *mongo.Database
	JWTSecret []byte
	JWTExpiry time.Duration
}

type RegisterRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Role           string `json:"role" binding:"required"`
	Phone          string `json:"phone"`
	ReliefCentreID string `json:"relief_centre_id"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a volunteer account. Admins are seed-only.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Role != models.RoleVolunteer {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only volunteer registration is allowed here"})
		return
	}

	users := h.DB.Collection(database.CollUsers)
	count, err := users.CountDocuments(context.Background(), bson.M{"email": req.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for user"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	if req.ReliefCentreID != "" {
		centreCount, err := h.DB.Collection(database.CollReliefCentres).
			CountDocuments(context.Background(), bson.M{"centreID": req.ReliefCentreID})
		if err != nil || centreCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Relief centre not found"})
			return
		}
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	newUser := models.User{
		UserID:       "VOL-" + strings.ToUpper(uuid.New().String()[:8]),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         models.RoleVolunteer,
		Phone:        req.Phone,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := users.InsertOne(context.Background(), newUser); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// Home-centre affiliation, read later when assigning.
	if req.ReliefCentreID != "" {
		profile := models.VolunteerProfile{
			UserID:       newUser.UserID,
			CentreID:     req.ReliefCentreID,
			Availability: models.AvailabilityAvailable,
		}
		if _, err := h.DB.Collection(database.CollVolunteerProfiles).InsertOne(context.Background(), profile); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create volunteer profile"})
			return
		}
	}

	c.JSON(http.StatusCreated, newUser)
}

// Login authenticates a staff user and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Collection(database.CollUsers).
		FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
		return
	}

	token, err := auth.GenerateJWT(h.JWTSecret, h.JWTExpiry, user.UserID, user.Email, user.Name, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	err := h.DB.Collection(database.CollUsers).
		FindOne(context.Background(), bson.M{"userID": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	c.JSON(http.StatusOK, user)
}
