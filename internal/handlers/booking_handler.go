package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fourarental/rental-booking-backend/internal/middleware"
	"github.com/fourarental/rental-booking-backend/internal/models"
	"github.com/fourarental/rental-booking-backend/internal/services"
	"github.com/fourarental/rental-booking-backend/internal/utils"
)

// BookingHandler handles the my-bookings endpoints
type BookingHandler struct {
	bookingService *services.BookingService
	receiptService *services.ReceiptService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, receiptService *services.ReceiptService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		receiptService: receiptService,
	}
}

// ListBookings returns the user's bookings
// @Summary List my bookings
// @Tags Bookings
// @Produce json
// @Success 200 {object} models.BookingListResponse "Booking list"
// @Security BearerAuth
// @Router /api/v1/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.bookingService.GetUserBookings(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetBooking returns one booking
// @Summary Get booking details
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking "Booking details"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Security BearerAuth
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx, bookingID, ok := h.bookingParams(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(bookingID, userCtx.UserID)
	if err != nil {
		c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels a booking before pickup
// @Summary Cancel a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body models.CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} models.Booking "Cancelled booking"
// @Failure 409 {object} map[string]interface{} "Booking can no longer be cancelled"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx, bookingID, ok := h.bookingParams(c)
	if !ok {
		return
	}

	var req models.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	booking, err := h.bookingService.CancelBooking(
		bookingID, userCtx.UserID, req.Reason,
		utils.GetRealIP(c), c.Request.UserAgent(),
	)
	if err != nil {
		c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetReceipt returns the booking receipt as a PDF
// @Summary Download booking receipt
// @Tags Bookings
// @Produce application/pdf
// @Param id path string true "Booking ID"
// @Success 200 {file} file "Receipt PDF"
// @Failure 409 {object} map[string]interface{} "Receipt not available"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/receipt [get]
func (h *BookingHandler) GetReceipt(c *gin.Context) {
	userCtx, bookingID, ok := h.bookingParams(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(bookingID, userCtx.UserID)
	if err != nil {
		c.JSON(bookingErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	pdf, err := h.receiptService.Generate(booking)
	if err != nil {
		if strings.Contains(err.Error(), "only available") {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=receipt-"+booking.BookingReference+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// bookingParams extracts the auth context and booking ID
func (h *BookingHandler) bookingParams(c *gin.Context) (middleware.UserContext, uuid.UUID, bool) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return middleware.UserContext{}, uuid.Nil, false
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return middleware.UserContext{}, uuid.Nil, false
	}

	return userCtx, bookingID, true
}

// bookingErrorStatus maps booking service errors to HTTP status codes
func bookingErrorStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "unauthorized"):
		return http.StatusForbidden
	case strings.Contains(msg, "no longer"):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
