package wizard

import "fmt"

// ActionType identifies a draft mutation
type ActionType string

const (
	ActionSetPickupDate        ActionType = "set_pickup_date"
	ActionSetReturnDate        ActionType = "set_return_date"
	ActionSetStudent           ActionType = "set_student"
	ActionSetStudentIDURL      ActionType = "set_student_id_url"
	ActionSetPickupType        ActionType = "set_pickup_type"
	ActionSetCity              ActionType = "set_city"
	ActionSetDeliveryLocation  ActionType = "set_delivery_location"
	ActionSetDeliveryTimeSlot  ActionType = "set_delivery_time_slot"
	ActionSetPrimaryField      ActionType = "set_primary_driver_field"
	ActionSetAdditionalField   ActionType = "set_additional_driver_field"
	ActionToggleSameAddress    ActionType = "toggle_same_address"
	ActionAddDriver            ActionType = "add_driver"
	ActionRemoveDriver         ActionType = "remove_driver"
)

// Action is one named draft mutation. Which fields are read depends on
// the type: Value carries dates, city, slot, URLs and field values; Flag
// carries booleans; Field and DriverIndex address driver records.
//
// For set_delivery_location the caller resolves the location before
// applying, so Fee and Display arrive pre-resolved and the reducer stays
// pure.
type Action struct {
	Type        ActionType `json:"type" binding:"required"`
	Value       string     `json:"value,omitempty"`
	Flag        bool       `json:"flag,omitempty"`
	Field       string     `json:"field,omitempty"`
	DriverIndex int        `json:"driver_index,omitempty"`

	// Resolved delivery location data (set_delivery_location only)
	Fee     float64 `json:"fee,omitempty"`
	Display string  `json:"display,omitempty"`
}

// Validate checks the action shape before it reaches the reducer
func (a *Action) Validate() error {
	switch a.Type {
	case ActionSetPickupDate, ActionSetReturnDate, ActionSetStudentIDURL,
		ActionSetCity, ActionSetDeliveryLocation, ActionSetDeliveryTimeSlot:
		// Value may be blank (clearing a selection)
		return nil
	case ActionSetPickupType:
		if a.Value != "store" && a.Value != "delivery" {
			return fmt.Errorf("pickup type must be store or delivery")
		}
		return nil
	case ActionSetStudent, ActionAddDriver:
		return nil
	case ActionSetPrimaryField:
		if a.Field == "" {
			return fmt.Errorf("field is required")
		}
		return nil
	case ActionSetAdditionalField:
		if a.Field == "" {
			return fmt.Errorf("field is required")
		}
		if a.DriverIndex < 0 {
			return fmt.Errorf("driver_index must be non-negative")
		}
		return nil
	case ActionToggleSameAddress, ActionRemoveDriver:
		if a.DriverIndex < 0 {
			return fmt.Errorf("driver_index must be non-negative")
		}
		return nil
	default:
		return fmt.Errorf("unknown action type: %s", a.Type)
	}
}
