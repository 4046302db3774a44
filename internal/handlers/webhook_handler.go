package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fourarental/rental-booking-backend/internal/models"
	"github.com/fourarental/rental-booking-backend/internal/services"
	"github.com/fourarental/rental-booking-backend/internal/utils"
)

// WebhookHandler handles the payment gateway's webhook callbacks
type WebhookHandler struct {
	bookingService *services.BookingService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(bookingService *services.BookingService) *WebhookHandler {
	return &WebhookHandler{bookingService: bookingService}
}

// PaymentWebhook processes a payment notification
// @Summary Payment webhook
// @Description Signed payment notification from the checkout gateway
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param request body models.PaymentWebhookRequest true "Payment notification"
// @Success 200 {object} map[string]interface{} "Acknowledged"
// @Failure 401 {object} map[string]interface{} "Invalid signature"
// @Router /api/v1/payments/webhook [post]
func (h *WebhookHandler) PaymentWebhook(c *gin.Context) {
	var req models.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.bookingService.HandlePaymentWebhook(&req, utils.GetRealIP(c)); err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "invalid webhook signature"):
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
		case strings.Contains(msg, "not found"):
			c.JSON(http.StatusNotFound, gin.H{"error": msg})
		case strings.Contains(msg, "unknown payment status"):
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
