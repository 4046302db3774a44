package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/models"
	"github.com/fourarental/rental-booking-backend/internal/services"
)

// VehicleHandler handles the public vehicle catalog endpoints
type VehicleHandler struct {
	vehicleRepo  *database.VehicleRepository
	availability *services.AvailabilityService
}

// NewVehicleHandler creates a new VehicleHandler
func NewVehicleHandler(vehicleRepo *database.VehicleRepository, availability *services.AvailabilityService) *VehicleHandler {
	return &VehicleHandler{
		vehicleRepo:  vehicleRepo,
		availability: availability,
	}
}

// ListVehicles returns the available vehicle catalog
// @Summary List available vehicles
// @Description List available vehicles with optional category, seat count and daily rate filters
// @Tags Vehicles
// @Produce json
// @Param category query string false "Vehicle category"
// @Param seats query int false "Minimum seat count"
// @Param max_daily query number false "Maximum daily rate"
// @Success 200 {object} map[string]interface{} "Vehicle list"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	filter := models.ListVehiclesFilter{
		Category: c.Query("category"),
	}
	if seats := c.Query("seats"); seats != "" {
		if n, err := strconv.Atoi(seats); err == nil {
			filter.Seats = n
		}
	}
	if maxDaily := c.Query("max_daily"); maxDaily != "" {
		if v, err := strconv.ParseFloat(maxDaily, 64); err == nil {
			filter.MaxDaily = v
		}
	}

	vehicles, err := h.vehicleRepo.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vehicles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles": vehicles,
		"total":    len(vehicles),
	})
}

// GetVehicle returns a single vehicle
// @Summary Get vehicle details
// @Tags Vehicles
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} models.Vehicle "Vehicle details"
// @Failure 404 {object} map[string]interface{} "Vehicle not found"
// @Router /api/v1/vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	vehicle, err := h.vehicleRepo.GetByID(vehicleID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vehicle"})
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// GetVehicleAvailability returns the vehicle's blocked dates
// @Summary Get vehicle availability
// @Description List blocked dates for a vehicle with the reason each date is blocked
// @Tags Vehicles
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} map[string]interface{} "Blocked dates"
// @Failure 404 {object} map[string]interface{} "Vehicle not found"
// @Router /api/v1/vehicles/{id}/availability [get]
func (h *VehicleHandler) GetVehicleAvailability(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	if _, err := h.vehicleRepo.GetByID(vehicleID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vehicle"})
		return
	}

	index, err := h.availability.BuildIndex(vehicleID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicle_id":    vehicleID,
		"blocked_dates": index.Blocked,
		"fetched_at":    index.FetchedAt,
	})
}
