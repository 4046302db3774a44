package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// DriverInfoStore caches the primary driver's non-sensitive fields in
// Redis so an interrupted wizard session can be reseeded. Every write is
// best-effort: storage failures are logged and swallowed, never surfaced
// to the renter. Email is excluded from the snapshot.
type DriverInfoStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewDriverInfoStore creates a new DriverInfoStore
func NewDriverInfoStore(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *DriverInfoStore {
	return &DriverInfoStore{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

func driverInfoKey(userID uuid.UUID) string {
	return fmt.Sprintf("driver_info:%s", userID)
}

// Save persists the snapshot, best-effort
func (s *DriverInfoStore) Save(ctx context.Context, userID uuid.UUID, snapshot models.DriverInfoSnapshot) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, driverInfoKey(userID), data, s.ttl).Err(); err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
		}).WithError(err).Debug("Driver info snapshot write failed")
	}
}

// Load returns the cached snapshot, or nil when none exists. Failures
// are treated as a miss; the snapshot is advisory, never authoritative.
func (s *DriverInfoStore) Load(ctx context.Context, userID uuid.UUID) *models.DriverInfoSnapshot {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(ctx, driverInfoKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.WithFields(logrus.Fields{
				"user_id": userID,
			}).WithError(err).Debug("Driver info snapshot read failed")
		}
		return nil
	}

	var snapshot models.DriverInfoSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil
	}

	return &snapshot
}

// Clear removes the snapshot after a successful submission
func (s *DriverInfoStore) Clear(ctx context.Context, userID uuid.UUID) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Del(ctx, driverInfoKey(userID)).Err(); err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
		}).WithError(err).Debug("Driver info snapshot clear failed")
	}
}
