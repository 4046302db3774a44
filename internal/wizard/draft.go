package wizard

import (
	"fmt"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// Reducer applies named actions to a booking draft. Every action performs
// its minimal update plus any cascading resets in the same application, so
// no caller ever observes a half-consistent draft. Applying the same
// action with the same value twice reports no change and triggers no
// further resets.
type Reducer struct {
	// StoreAddress is the fixed pickup-location string used while
	// pickup type is "store"
	StoreAddress string
}

// NewReducer creates a reducer bound to the store's pickup address
func NewReducer(storeAddress string) *Reducer {
	return &Reducer{StoreAddress: storeAddress}
}

// Apply mutates a copy of the draft according to the action and returns
// it together with whether anything actually changed
func (r *Reducer) Apply(draft models.BookingDraft, action Action) (models.BookingDraft, bool, error) {
	if err := action.Validate(); err != nil {
		return draft, false, err
	}

	switch action.Type {

	case ActionSetPickupDate:
		if draft.PickupDate == action.Value {
			return draft, false, nil
		}
		draft.PickupDate = action.Value
		return draft, true, nil

	case ActionSetReturnDate:
		if draft.ReturnDate == action.Value {
			return draft, false, nil
		}
		draft.ReturnDate = action.Value
		return draft, true, nil

	case ActionSetStudent:
		if draft.IsStudent == action.Flag {
			return draft, false, nil
		}
		draft.IsStudent = action.Flag
		if !action.Flag {
			draft.StudentIDURL = ""
		}
		return draft, true, nil

	case ActionSetStudentIDURL:
		if draft.StudentIDURL == action.Value {
			return draft, false, nil
		}
		draft.StudentIDURL = action.Value
		return draft, true, nil

	case ActionSetPickupType:
		pt := models.PickupType(action.Value)
		if draft.PickupType == pt {
			return draft, false, nil
		}
		draft.PickupType = pt
		// Switching type resets the delivery selection and slot in the
		// same update, never in a follow-up
		draft.DeliveryCity = ""
		draft.DeliveryLocationID = ""
		draft.DeliveryFee = 0
		draft.DeliveryTimeSlot = ""
		if pt == models.PickupTypeStore {
			draft.PickupLocation = r.StoreAddress
		} else {
			draft.PickupLocation = ""
		}
		return draft, true, nil

	case ActionSetCity:
		if draft.PickupType != models.PickupTypeDelivery {
			return draft, false, fmt.Errorf("cannot select a city for store pickup")
		}
		if draft.DeliveryCity == action.Value {
			return draft, false, nil
		}
		draft.DeliveryCity = action.Value
		// Changing city clears everything downstream of it
		draft.DeliveryLocationID = ""
		draft.DeliveryFee = 0
		draft.DeliveryTimeSlot = ""
		draft.PickupLocation = ""
		return draft, true, nil

	case ActionSetDeliveryLocation:
		if draft.PickupType != models.PickupTypeDelivery {
			return draft, false, fmt.Errorf("cannot select a delivery location for store pickup")
		}
		if draft.DeliveryCity == "" {
			return draft, false, fmt.Errorf("select a city first")
		}
		if draft.DeliveryLocationID == action.Value {
			return draft, false, nil
		}
		draft.DeliveryLocationID = action.Value
		draft.DeliveryFee = action.Fee
		draft.PickupLocation = action.Display
		// Slot options belong to the location, so a new location clears
		// the old slot
		draft.DeliveryTimeSlot = ""
		return draft, true, nil

	case ActionSetDeliveryTimeSlot:
		if draft.DeliveryLocationID == "" {
			return draft, false, fmt.Errorf("select a delivery location first")
		}
		if draft.DeliveryTimeSlot == action.Value {
			return draft, false, nil
		}
		draft.DeliveryTimeSlot = action.Value
		return draft, true, nil

	case ActionSetPrimaryField:
		changed, err := setDriverField(&draft.PrimaryDriver, action.Field, action.Value)
		return draft, changed, err

	case ActionSetAdditionalField:
		if action.DriverIndex >= len(draft.AdditionalDrivers) {
			return draft, false, fmt.Errorf("no additional driver at index %d", action.DriverIndex)
		}
		drivers := cloneDrivers(draft.AdditionalDrivers)
		d := &drivers[action.DriverIndex]
		changed, err := setDriverField(&d.DriverData, action.Field, action.Value)
		if err != nil {
			return draft, false, err
		}
		// Directly editing an address field breaks the copied-address
		// link to the primary driver
		if changed && d.SameAddressAsPrimary && isAddressField(action.Field) {
			d.SameAddressAsPrimary = false
		}
		if changed {
			draft.AdditionalDrivers = drivers
		}
		return draft, changed, nil

	case ActionToggleSameAddress:
		if action.DriverIndex >= len(draft.AdditionalDrivers) {
			return draft, false, fmt.Errorf("no additional driver at index %d", action.DriverIndex)
		}
		drivers := cloneDrivers(draft.AdditionalDrivers)
		d := &drivers[action.DriverIndex]
		if d.SameAddressAsPrimary == action.Flag {
			return draft, false, nil
		}
		d.SameAddressAsPrimary = action.Flag
		if action.Flag {
			// Point-in-time copy of the primary's address, not a live
			// mirror; later primary edits do not propagate
			d.Address = draft.PrimaryDriver.Address
			d.City = draft.PrimaryDriver.City
			d.ZipCode = draft.PrimaryDriver.ZipCode
		}
		draft.AdditionalDrivers = drivers
		return draft, true, nil

	case ActionAddDriver:
		drivers := cloneDrivers(draft.AdditionalDrivers)
		draft.AdditionalDrivers = append(drivers, models.AdditionalDriver{})
		return draft, true, nil

	case ActionRemoveDriver:
		if action.DriverIndex >= len(draft.AdditionalDrivers) {
			return draft, false, fmt.Errorf("no additional driver at index %d", action.DriverIndex)
		}
		drivers := cloneDrivers(draft.AdditionalDrivers)
		draft.AdditionalDrivers = append(drivers[:action.DriverIndex], drivers[action.DriverIndex+1:]...)
		return draft, true, nil

	default:
		return draft, false, fmt.Errorf("unknown action type: %s", action.Type)
	}
}

// setDriverField sets one named field on a driver record
func setDriverField(d *models.DriverData, field, value string) (bool, error) {
	var target *string

	switch field {
	case "first_name":
		target = &d.FirstName
	case "last_name":
		target = &d.LastName
	case "email":
		target = &d.Email
	case "phone":
		target = &d.Phone
	case "date_of_birth":
		target = &d.DateOfBirth
	case "license_number":
		target = &d.LicenseNumber
	case "license_state":
		target = &d.LicenseState
	case "address":
		target = &d.Address
	case "city":
		target = &d.City
	case "zip_code":
		target = &d.ZipCode
	default:
		return false, fmt.Errorf("unknown driver field: %s", field)
	}

	if *target == value {
		return false, nil
	}
	*target = value
	return true, nil
}

// isAddressField reports whether a driver field participates in the
// same-address-as-primary copy
func isAddressField(field string) bool {
	switch field {
	case "address", "city", "zip_code":
		return true
	}
	return false
}

// cloneDrivers copies the additional-driver slice so applying an action
// never aliases the caller's draft
func cloneDrivers(drivers []models.AdditionalDriver) []models.AdditionalDriver {
	out := make([]models.AdditionalDriver, len(drivers))
	copy(out, drivers)
	return out
}
