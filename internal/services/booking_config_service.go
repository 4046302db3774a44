package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fourarental/rental-booking-backend/internal/config"
	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/models"
)

const bookingConfigCacheKey = "booking_config:v1"

// BookingConfigService serves the booking policy with a short-TTL Redis
// cache in front of the booking_config table. Cache misses and Redis
// failures fall through to the table; a table failure falls back to the
// configured defaults so the wizard never hard-fails on policy reads.
type BookingConfigService struct {
	repo     *database.BookingConfigRepository
	redis    *redis.Client
	cacheTTL time.Duration
	defaults models.BookingPolicy
	logger   *logrus.Logger
}

// NewBookingConfigService creates a new BookingConfigService
func NewBookingConfigService(
	repo *database.BookingConfigRepository,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *logrus.Logger,
) *BookingConfigService {
	return &BookingConfigService{
		repo:     repo,
		redis:    redisClient,
		cacheTTL: cfg.Redis.ConfigCacheTTL,
		defaults: models.BookingPolicy{
			MinLeadTimeHours:       cfg.Booking.MinLeadTimeHours,
			MaxAdvanceDays:         cfg.Booking.MaxAdvanceDays,
			MinRentalDays:          cfg.Booking.MinRentalDays,
			WeeklyThresholdDays:    7,
			MonthlyThresholdDays:   28,
			AdditionalDriverFee:    cfg.Booking.AdditionalDriverFee,
			StudentDiscountPercent: cfg.Booking.StudentDiscountPercent,
			MaxAdditionalDrivers:   3,
			StorePickupAddress:     cfg.Booking.StorePickupAddress,
		},
		logger: logger,
	}
}

// Get returns the current booking policy
func (s *BookingConfigService) Get(ctx context.Context) *models.BookingPolicy {
	// 1. Try the cache
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, bookingConfigCacheKey).Result()
		if err == nil {
			var policy models.BookingPolicy
			if jsonErr := json.Unmarshal([]byte(cached), &policy); jsonErr == nil {
				return &policy
			}
		} else if err != redis.Nil {
			s.logger.WithError(err).Warn("Booking config cache read failed")
		}
	}

	// 2. Read the table
	policy, err := s.repo.Get()
	if err != nil {
		s.logger.WithError(err).Warn("Booking config read failed, using defaults")
		fallback := s.defaults
		return &fallback
	}

	// 3. Refill the cache, fire-and-forget
	if s.redis != nil {
		if data, jsonErr := json.Marshal(policy); jsonErr == nil {
			if err := s.redis.Set(ctx, bookingConfigCacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.WithError(err).Debug("Booking config cache write failed")
			}
		}
	}

	return policy
}

// Invalidate drops the cached policy so the next read hits the table
func (s *BookingConfigService) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, bookingConfigCacheKey).Err(); err != nil {
		s.logger.WithError(err).Debug("Booking config cache invalidation failed")
	}
}
