package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fourarental/rental-booking-backend/internal/middleware"
	"github.com/fourarental/rental-booking-backend/internal/services"
	"github.com/fourarental/rental-booking-backend/internal/utils"
	"github.com/fourarental/rental-booking-backend/internal/wizard"
)

// WizardHandler handles the booking wizard session endpoints
type WizardHandler struct {
	wizardService   *services.WizardService
	checkoutService *services.CheckoutService
}

// NewWizardHandler creates a new WizardHandler
func NewWizardHandler(wizardService *services.WizardService, checkoutService *services.CheckoutService) *WizardHandler {
	return &WizardHandler{
		wizardService:   wizardService,
		checkoutService: checkoutService,
	}
}

// CreateSessionRequest is the payload for opening a wizard session
type CreateSessionRequest struct {
	VehicleID string `json:"vehicle_id" binding:"required"`
}

// CreateSession opens a booking wizard session for a vehicle
// @Summary Open a booking wizard session
// @Tags Wizard
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "Session request"
// @Success 201 {object} services.SessionState "Wizard state"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Vehicle not found"
// @Security BearerAuth
// @Router /api/v1/wizard/sessions [post]
func (h *WizardHandler) CreateSession(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	state, err := h.wizardService.OpenSession(c.Request.Context(), userCtx.UserID, vehicleID)
	if err != nil {
		c.JSON(wizardErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, state)
}

// GetSession returns the current wizard state
// @Summary Get wizard session state
// @Tags Wizard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionState "Wizard state"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Security BearerAuth
// @Router /api/v1/wizard/sessions/{id} [get]
func (h *WizardHandler) GetSession(c *gin.Context) {
	userCtx, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	state, err := h.wizardService.GetState(c.Request.Context(), sessionID, userCtx.UserID)
	if err != nil {
		c.JSON(wizardErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

// DeleteSession discards a wizard session. Sessions holding driver data
// past the first step require confirm=true.
// @Summary Discard a wizard session
// @Tags Wizard
// @Produce json
// @Param id path string true "Session ID"
// @Param confirm query bool false "Confirm discarding entered data"
// @Success 200 {object} map[string]interface{} "Session discarded"
// @Failure 409 {object} map[string]interface{} "Confirmation required"
// @Security BearerAuth
// @Router /api/v1/wizard/sessions/{id} [delete]
func (h *WizardHandler) DeleteSession(c *gin.Context) {
	userCtx, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	confirm := c.Query("confirm") == "true"

	if err := h.wizardService.Close(sessionID, userCtx.UserID, confirm); err != nil {
		if strings.Contains(err.Error(), "confirmation required") {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(wizardErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session discarded"})
}

// ApplyAction applies one form action to the wizard draft
// @Summary Apply a wizard action
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body wizard.Action true "Action"
// @Success 200 {object} services.SessionState "Wizard state"
// @Failure 400 {object} map[string]interface{} "Invalid action"
// @Security BearerAuth
// @Router /api/v1/wizard/sessions/{id}/actions [post]
func (h *WizardHandler) ApplyAction(c *gin.Context) {
	userCtx, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var action wizard.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := action.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.wizardService.ApplyAction(c.Request.Context(), sessionID, userCtx.UserID, action)
	if err != nil {
		c.JSON(wizardErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

// Continue advances the wizard to the next step
// @Summary Advance the wizard
// @Tags Wizard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionState "Wizard state"
// @Failure 409 {object} map[string]interface{} "Step not complete"
// @Security BearerAuth
// @Router /api/v1/wizard/sessions/{id}/continue [post]
func (h *WizardHandler) Continue(c *gin.Context) {
	userCtx, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	state, err := h.wizardService.Continue(c.Request.Context(), sessionID, userCtx.UserID)
	if err != nil {
		c.JSON(wizardErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

// Back moves the wizard one step backward
// @Summary Move the wizard back one step
// @Tags Wizard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionState "Wizard state"
// @Failure 409 {object} map[string]interface{} "Cannot go back"
// @Security BearerAuth
// @Router /api/v1/wizard/sessions/{id}/back [post]
func (h *WizardHandler) Back(c *gin.Context) {
	userCtx, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	state, err := h.wizardService.Back(c.Request.Context(), sessionID, userCtx.UserID)
	if err != nil {
		c.JSON(wizardErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

// Submit runs the checkout submission protocol for the session
// @Summary Submit the booking for checkout
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body services.SubmitRequest false "Submission payload"
// @Success 200 {object} services.SubmitResult "Checkout redirect"
// @Failure 429 {object} map[string]interface{} "Too many attempts"
// @Failure 502 {object} map[string]interface{} "Submission failed"
// @Security BearerAuth
// @Router /api/v1/wizard/sessions/{id}/submit [post]
func (h *WizardHandler) Submit(c *gin.Context) {
	userCtx, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req services.SubmitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	result, err := h.checkoutService.Submit(
		c.Request.Context(), sessionID, userCtx.UserID, &req,
		utils.GetRealIP(c), c.Request.UserAgent(),
	)
	if err != nil {
		var limitErr *services.SubmissionLimitError
		if errors.As(err, &limitErr) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": limitErr.Message})
			return
		}
		if err.Error() == services.ErrSubmissionFailed {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(wizardErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// sessionParams extracts the auth context and session ID, writing the
// error response itself when either is missing
func (h *WizardHandler) sessionParams(c *gin.Context) (middleware.UserContext, uuid.UUID, bool) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return middleware.UserContext{}, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return middleware.UserContext{}, uuid.Nil, false
	}

	return userCtx, sessionID, true
}

// wizardErrorStatus maps service errors to HTTP status codes
func wizardErrorStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "unauthorized"):
		return http.StatusForbidden
	case strings.Contains(msg, "not ready"),
		strings.Contains(msg, "not complete"),
		strings.Contains(msg, "still loading"),
		strings.Contains(msg, "cannot go back"),
		strings.Contains(msg, "in progress"):
		return http.StatusConflict
	case strings.Contains(msg, "not available"),
		strings.Contains(msg, "invalid"),
		strings.Contains(msg, "must be"),
		strings.Contains(msg, "cannot be empty"),
		strings.Contains(msg, "at most"):
		return http.StatusBadRequest
	case strings.Contains(msg, "try again"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
