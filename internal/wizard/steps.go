package wizard

import (
	"github.com/fourarental/rental-booking-backend/internal/models"
)

// Step is the wizard's progress position
type Step int

const (
	StepDates        Step = 1 // Dates & location
	StepDrivers      Step = 2 // Driver details
	StepConfirmation Step = 3 // Review & submit
	StepSubmitted    Step = 4 // Terminal: checkout session created
)

// StepInputs bundles the derived state the validity predicates need
// beyond the draft itself
type StepInputs struct {
	DateValidation models.DateValidationResult
	Conflicts      ConflictResult
	PricingLoaded  bool
	PricingLoading bool
}

// CanContinue reports whether the wizard may advance from the given step.
// Progression is always refused while pricing is being refetched so a
// stale snapshot can never be carried forward.
func CanContinue(step Step, draft *models.BookingDraft, in StepInputs) bool {
	if in.PricingLoading {
		return false
	}

	switch step {
	case StepDates:
		return step1Valid(draft, in)
	case StepDrivers:
		return step2Valid(draft)
	case StepConfirmation:
		// Submission is the terminal action; its only gate is a resolved
		// pricing snapshot
		return in.PricingLoaded
	default:
		return false
	}
}

// CanGoBack reports whether the back action is permitted
func CanGoBack(step Step, submitting bool) bool {
	if submitting {
		return false
	}
	return step > StepDates && step < StepSubmitted
}

// NeedsDiscardConfirmation reports whether closing the wizard must be
// confirmed before its state is thrown away
func NeedsDiscardConfirmation(step Step, draft *models.BookingDraft) bool {
	return step > StepDates && step < StepSubmitted && draft.HasDriverData()
}

func step1Valid(draft *models.BookingDraft, in StepInputs) bool {
	if !in.DateValidation.IsValid {
		return false
	}
	if !in.PricingLoaded {
		return false
	}
	if in.Conflicts.HasBlockingConflict() {
		return false
	}
	if draft.PickupType == models.PickupTypeDelivery {
		if draft.DeliveryCity == "" || draft.DeliveryLocationID == "" || draft.DeliveryTimeSlot == "" {
			return false
		}
	}
	return true
}

func step2Valid(draft *models.BookingDraft) bool {
	return draft.PrimaryDriver.IsComplete()
}
