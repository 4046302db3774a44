package wizard

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// Session holds one renter's in-progress booking. The draft is owned
// exclusively by its session; it is discarded on close and becomes a
// durable Booking only through checkout submission.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	VehicleID uuid.UUID `json:"vehicle_id"`

	// Vehicle snapshot taken when the session opens, carried into the
	// booking row at submission
	VehicleName     string `json:"vehicle_name"`
	VehicleImageURL string `json:"vehicle_image_url,omitempty"`

	Draft      models.BookingDraft `json:"draft"`
	Step       Step                `json:"step"`
	Submitting bool                `json:"submitting"`

	// Derived remote state
	Availability   *models.AvailabilityIndex `json:"availability,omitempty"`
	Pricing        *models.BookingTotal      `json:"pricing,omitempty"`
	PricingLoading bool                      `json:"pricing_loading"`
	PricingError   string                    `json:"pricing_error,omitempty"`

	// Delivery locations for the currently selected city
	Locations        []models.DeliveryLocation `json:"locations,omitempty"`
	LocationsLoading bool                      `json:"locations_loading"`
	LocationsError   string                    `json:"locations_error,omitempty"`

	// Monotonic generations for last-write-wins on in-flight fetches.
	// A response carrying a stale generation is discarded.
	pricingGen   uint64
	locationsGen uint64

	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`

	mu sync.Mutex
}

// Lock takes the session's mutex; callers hold it across a read-modify-
// write of the draft and derived state
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's mutex
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch records activity for the idle sweeper. Caller must hold the lock.
func (s *Session) Touch() {
	s.LastActivity = time.Now()
}

// BeginPricingFetch marks pricing as loading and returns the generation
// the eventual response must present. Caller must hold the lock.
func (s *Session) BeginPricingFetch() uint64 {
	s.pricingGen++
	s.PricingLoading = true
	s.PricingError = ""
	return s.pricingGen
}

// CompletePricingFetch installs a pricing response unless a newer fetch
// has started since. Returns false for discarded stale responses.
// Caller must hold the lock.
func (s *Session) CompletePricingFetch(gen uint64, total *models.BookingTotal, userErr string) bool {
	if gen != s.pricingGen {
		return false
	}
	s.PricingLoading = false
	if userErr != "" {
		s.Pricing = nil
		s.PricingError = userErr
		return true
	}
	s.Pricing = total
	s.PricingError = ""
	return true
}

// InvalidatePricing clears the snapshot without starting a fetch, used
// when dates become invalid. Caller must hold the lock.
func (s *Session) InvalidatePricing() {
	s.pricingGen++
	s.Pricing = nil
	s.PricingLoading = false
	s.PricingError = ""
}

// BeginLocationsFetch marks the city's locations as loading and returns
// the generation for the response. Caller must hold the lock.
func (s *Session) BeginLocationsFetch() uint64 {
	s.locationsGen++
	s.LocationsLoading = true
	s.LocationsError = ""
	return s.locationsGen
}

// CompleteLocationsFetch installs a locations response unless superseded.
// Caller must hold the lock.
func (s *Session) CompleteLocationsFetch(gen uint64, locations []models.DeliveryLocation, userErr string) bool {
	if gen != s.locationsGen {
		return false
	}
	s.LocationsLoading = false
	if userErr != "" {
		s.Locations = nil
		s.LocationsError = userErr
		return true
	}
	s.Locations = locations
	s.LocationsError = ""
	return true
}

// StepInputs assembles the predicate inputs from the session's current
// derived state. Caller must hold the lock.
func (s *Session) StepInputs(policy *models.BookingPolicy, now time.Time) StepInputs {
	dv := ValidateDates(s.Draft.PickupDate, s.Draft.ReturnDate, policy, now)

	in := StepInputs{
		DateValidation: dv,
		PricingLoaded:  s.Pricing != nil,
		PricingLoading: s.PricingLoading,
	}
	if dv.IsValid && s.Availability != nil {
		in.Conflicts = DetectConflicts(s.Availability, s.Draft.PickupDate, s.Draft.ReturnDate)
	}
	return in
}

// Manager owns the active wizard sessions. Sessions live in memory only
// and are swept after the configured idle TTL.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	ttl    time.Duration
	logger *logrus.Logger
	stop   chan struct{}
	once   sync.Once
}

// NewManager creates a session manager and starts its idle sweeper
func NewManager(ttl, sweepInterval time.Duration, logger *logrus.Logger) *Manager {
	m := &Manager{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		logger:   logger,
		stop:     make(chan struct{}),
	}

	go m.sweep(sweepInterval)

	return m
}

// Create opens a new session for a user and vehicle
func (m *Manager) Create(userID, vehicleID uuid.UUID, draft models.BookingDraft) *Session {
	session := &Session{
		ID:           uuid.New(),
		UserID:       userID,
		VehicleID:    vehicleID,
		Draft:        draft,
		Step:         StepDates,
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session
}

// Get returns a session, enforcing ownership
func (m *Manager) Get(sessionID, userID uuid.UUID) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("unauthorized: session belongs to another user")
	}

	return session, nil
}

// Delete discards a session
func (m *Manager) Delete(sessionID uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Stop terminates the idle sweeper
func (m *Manager) Stop() {
	m.once.Do(func() { close(m.stop) })
}

// sweep periodically drops sessions idle past the TTL
func (m *Manager) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-m.ttl)
			expired := []uuid.UUID{}

			m.mu.Lock()
			for id, session := range m.sessions {
				session.Lock()
				idle := session.LastActivity.Before(cutoff)
				session.Unlock()
				if idle {
					delete(m.sessions, id)
					expired = append(expired, id)
				}
			}
			m.mu.Unlock()

			if len(expired) > 0 {
				m.logger.WithFields(logrus.Fields{
					"expired_sessions": len(expired),
				}).Info("Swept idle wizard sessions")
			}
		}
	}
}
