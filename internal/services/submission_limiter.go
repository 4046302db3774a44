package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// SubmissionLimitError is returned when a user submits too quickly
type SubmissionLimitError struct {
	Message string
}

func (e *SubmissionLimitError) Error() string {
	return e.Message
}

// SubmissionLimiter throttles checkout submissions per user. Automated
// clients hammering the submit endpoint get a flat refusal rather than
// checkout sessions.
type SubmissionLimiter struct {
	limiters map[uuid.UUID]*limiterEntry
	mu       sync.Mutex

	perMinute int
	burst     int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSubmissionLimiter creates a limiter allowing perMinute submissions
// with the given burst
func NewSubmissionLimiter(perMinute, burst int) *SubmissionLimiter {
	if perMinute <= 0 {
		perMinute = 5
	}
	if burst <= 0 {
		burst = 1
	}

	l := &SubmissionLimiter{
		limiters:  make(map[uuid.UUID]*limiterEntry),
		perMinute: perMinute,
		burst:     burst,
	}

	go l.cleanup()

	return l
}

// Allow checks whether the user may submit now
func (l *SubmissionLimiter) Allow(userID uuid.UUID) error {
	l.mu.Lock()
	entry, exists := l.limiters[userID]
	if !exists {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(l.perMinute)/60.0), l.burst),
		}
		l.limiters[userID] = entry
	}
	entry.lastSeen = time.Now()
	l.mu.Unlock()

	if !entry.limiter.Allow() {
		return &SubmissionLimitError{
			Message: "Too many booking attempts. Please wait a moment and try again.",
		}
	}

	return nil
}

// cleanup drops limiters for users idle over ten minutes
func (l *SubmissionLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		l.mu.Lock()
		for id, entry := range l.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(l.limiters, id)
			}
		}
		l.mu.Unlock()
	}
}
