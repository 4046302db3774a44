package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fourarental/rental-booking-backend/internal/services"
)

// DeliveryHandler handles the public delivery city and location endpoints
type DeliveryHandler struct {
	delivery *services.DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(delivery *services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{delivery: delivery}
}

// GetCities returns the cities delivery is offered in
// @Summary List delivery cities
// @Tags Delivery
// @Produce json
// @Success 200 {object} map[string]interface{} "City list"
// @Failure 503 {object} map[string]interface{} "Delivery options unavailable"
// @Router /api/v1/delivery/cities [get]
func (h *DeliveryHandler) GetCities(c *gin.Context) {
	cities, err := h.delivery.GetCities()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

// GetCityLocations returns the delivery locations within a city
// @Summary List delivery locations for a city
// @Tags Delivery
// @Produce json
// @Param city path string true "City name"
// @Success 200 {object} map[string]interface{} "Location list"
// @Failure 503 {object} map[string]interface{} "Delivery options unavailable"
// @Router /api/v1/delivery/cities/{city}/locations [get]
func (h *DeliveryHandler) GetCityLocations(c *gin.Context) {
	city := c.Param("city")
	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "City is required"})
		return
	}

	locations, err := h.delivery.GetLocationsByCity(city)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"city":      city,
		"locations": locations,
	})
}
