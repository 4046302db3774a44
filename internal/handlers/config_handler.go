package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fourarental/rental-booking-backend/internal/services"
)

// ConfigHandler serves the public booking policy
type ConfigHandler struct {
	policy *services.BookingConfigService
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(policy *services.BookingConfigService) *ConfigHandler {
	return &ConfigHandler{policy: policy}
}

// GetBookingConfig returns the booking policy clients validate against
// @Summary Get booking configuration
// @Description Booking lead time, advance window and fee policy used by the booking form
// @Tags Config
// @Produce json
// @Success 200 {object} models.BookingPolicy "Booking policy"
// @Router /api/v1/booking-config [get]
func (h *ConfigHandler) GetBookingConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.policy.Get(c.Request.Context()))
}
