package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/middleware"
	"github.com/fourarental/rental-booking-backend/internal/models"
)

// ProfileHandler handles the user profile endpoints
type ProfileHandler struct {
	userRepo *database.UserRepository
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(userRepo *database.UserRepository) *ProfileHandler {
	return &ProfileHandler{userRepo: userRepo}
}

// GetProfile returns the authenticated user's profile
// @Summary Get my profile
// @Tags Profile
// @Produce json
// @Success 200 {object} models.User "User profile"
// @Failure 404 {object} map[string]interface{} "User not found"
// @Security BearerAuth
// @Router /api/v1/user/profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.userRepo.GetUserByID(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile
// @Summary Update my profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.User "Updated profile"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Security BearerAuth
// @Router /api/v1/user/profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.UpdateProfile(userCtx.UserID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}
