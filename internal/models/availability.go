package models

import "time"

// ============================================================================
// AVAILABILITY / BLOCKED DATES
// ============================================================================

// BlockReasonKind categorizes why a calendar date is unavailable.
// Conflict detection branches on the kind, never on the detail text.
type BlockReasonKind string

const (
	BlockKindBooking BlockReasonKind = "booking" // Existing booking overlaps this date
	BlockKindHoliday BlockReasonKind = "holiday" // Store holiday
	BlockKindClosure BlockReasonKind = "closure" // Ad-hoc store closure
)

// BlockReason is the structured reason a date is blocked
type BlockReason struct {
	Kind   BlockReasonKind `json:"kind"`
	Detail string          `json:"detail"`
}

// IsBookingConflict reports whether this block represents a genuine
// double-booking rather than a holiday or closure
func (r BlockReason) IsBookingConflict() bool {
	return r.Kind == BlockKindBooking
}

// BlockedDate is one unavailable calendar date for a vehicle
type BlockedDate struct {
	Date   string      `json:"date"` // "2006-01-02"
	Reason BlockReason `json:"reason"`
}

// AvailabilityIndex is a per-vehicle blocked-date oracle, built once per
// wizard session and queried synchronously during conflict checks
type AvailabilityIndex struct {
	VehicleID string                 `json:"vehicle_id"`
	Blocked   map[string]BlockReason `json:"blocked"` // date "2006-01-02" -> reason
	FetchedAt time.Time              `json:"fetched_at"`
}

// IsDateBlocked reports whether the given date is unavailable
func (a *AvailabilityIndex) IsDateBlocked(date string) bool {
	if a == nil {
		return false
	}
	_, ok := a.Blocked[date]
	return ok
}

// GetBlockedReason returns the block reason for a date, or nil if the
// date is available
func (a *AvailabilityIndex) GetBlockedReason(date string) *BlockReason {
	if a == nil {
		return nil
	}
	if r, ok := a.Blocked[date]; ok {
		return &r
	}
	return nil
}

// RangeConflict describes a booking-kind block strictly inside a selected
// date range. It surfaces as a single range-level warning naming the first
// conflicting date.
type RangeConflict struct {
	FirstConflictDate string `json:"first_conflict_date"`
	Detail            string `json:"detail"`
}
