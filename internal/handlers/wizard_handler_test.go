package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWizardSessionParams_InvalidSessionID(t *testing.T) {
	handler := NewWizardHandler(nil, nil)

	c, w := setupAuthenticatedContext(uuid.New(), "renter@example.com")
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wizard/sessions/not-a-uuid", nil)

	handler.GetSession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWizardSessionParams_Unauthenticated(t *testing.T) {
	handler := NewWizardHandler(nil, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wizard/sessions/x", nil)

	handler.GetSession(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateSession_MissingVehicleID(t *testing.T) {
	handler := NewWizardHandler(nil, nil)

	c, w := setupAuthenticatedContext(uuid.New(), "renter@example.com")
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wizard/sessions", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateSession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWizardErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"Session Not Found", errors.New("session not found"), http.StatusNotFound},
		{"Ownership", errors.New("unauthorized: session belongs to another user"), http.StatusForbidden},
		{"Not Ready", errors.New("booking is not ready to submit"), http.StatusConflict},
		{"Step Incomplete", errors.New("current step is not complete"), http.StatusConflict},
		{"Pricing Loading", errors.New("pricing is still loading"), http.StatusConflict},
		{"Back Blocked", errors.New("cannot go back from this step"), http.StatusConflict},
		{"Submit In Progress", errors.New("submission already in progress"), http.StatusConflict},
		{"Vehicle Unavailable", errors.New("vehicle is not available"), http.StatusBadRequest},
		{"Validation", errors.New("pickup date must be on or after today"), http.StatusBadRequest},
		{"Upstream Failure", errors.New("Unable to load pricing. Please try again."), http.StatusServiceUnavailable},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, wizardErrorStatus(tt.err))
		})
	}
}
