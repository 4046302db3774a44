package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/models"
	"github.com/fourarental/rental-booking-backend/internal/wizard"
	"github.com/fourarental/rental-booking-backend/pkg/validator"
)

// WizardService orchestrates booking wizard sessions: it opens sessions
// seeded from the profile and the cached driver snapshot, applies draft
// actions with their dependent refetches, and drives step progression.
type WizardService struct {
	sessions     *wizard.Manager
	vehicles     *database.VehicleRepository
	users        *database.UserRepository
	pricing      *PricingService
	availability *AvailabilityService
	delivery     *DeliveryService
	policy       *BookingConfigService
	driverInfo   *DriverInfoStore
	validator    *validator.DriverValidator
	logger       *logrus.Logger
}

// NewWizardService creates a new WizardService
func NewWizardService(
	sessions *wizard.Manager,
	vehicles *database.VehicleRepository,
	users *database.UserRepository,
	pricing *PricingService,
	availability *AvailabilityService,
	delivery *DeliveryService,
	policy *BookingConfigService,
	driverInfo *DriverInfoStore,
	logger *logrus.Logger,
) *WizardService {
	return &WizardService{
		sessions:     sessions,
		vehicles:     vehicles,
		users:        users,
		pricing:      pricing,
		availability: availability,
		delivery:     delivery,
		policy:       policy,
		driverInfo:   driverInfo,
		validator:    validator.NewDriverValidator(),
		logger:       logger,
	}
}

// SessionState is the wizard state returned to the client after every
// operation: the draft, the derived flags, and what actions are allowed
type SessionState struct {
	SessionID uuid.UUID           `json:"session_id"`
	VehicleID uuid.UUID           `json:"vehicle_id"`
	Step      wizard.Step         `json:"step"`
	Draft     models.BookingDraft `json:"draft"`

	DateValidation models.DateValidationResult `json:"date_validation"`
	Conflicts      wizard.ConflictResult       `json:"conflicts"`

	Pricing        *models.BookingTotal `json:"pricing,omitempty"`
	PricingLoading bool                 `json:"pricing_loading"`
	PricingError   string               `json:"pricing_error,omitempty"`

	Locations        []models.DeliveryLocation `json:"locations,omitempty"`
	LocationsLoading bool                      `json:"locations_loading"`
	LocationsError   string                    `json:"locations_error,omitempty"`

	CanContinue        bool `json:"can_continue"`
	CanGoBack          bool `json:"can_go_back"`
	RequiresCloseGuard bool `json:"requires_close_guard"`
}

// OpenSession starts a wizard session for a vehicle. The draft is seeded
// from the user's profile and then the cached driver snapshot, and the
// vehicle's availability index is fetched once for the session's life.
func (s *WizardService) OpenSession(ctx context.Context, userID, vehicleID uuid.UUID) (*SessionState, error) {
	// 1. Validate the vehicle
	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("vehicle not found")
		}
		s.logger.WithError(err).Error("Failed to load vehicle")
		return nil, fmt.Errorf("unable to start booking. Please try again")
	}
	if vehicle.Status != models.VehicleStatusAvailable {
		return nil, fmt.Errorf("vehicle is not available for booking")
	}

	policy := s.policy.Get(ctx)

	// 2. Seed the draft: store pickup by default, profile first, then the
	// cached snapshot on top
	draft := models.BookingDraft{
		VehicleID:      vehicleID.String(),
		PickupType:     models.PickupTypeStore,
		PickupLocation: policy.StorePickupAddress,
	}

	if user, err := s.users.GetUserByID(userID); err == nil {
		seedDriverFromProfile(&draft.PrimaryDriver, user)
	}
	if snapshot := s.driverInfo.Load(ctx, userID); snapshot != nil {
		snapshot.ApplyTo(&draft.PrimaryDriver)
	}

	// 3. Availability index, fetched once per session
	index, err := s.availability.BuildIndex(vehicleID)
	if err != nil {
		return nil, err
	}

	session := s.sessions.Create(userID, vehicleID, draft)
	session.Lock()
	session.VehicleName = vehicle.Name
	if vehicle.ImageURL.Valid {
		session.VehicleImageURL = vehicle.ImageURL.String
	}
	session.Availability = index
	state := s.buildState(session, policy)
	session.Unlock()

	return state, nil
}

// GetState returns the current wizard state
func (s *WizardService) GetState(ctx context.Context, sessionID, userID uuid.UUID) (*SessionState, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	policy := s.policy.Get(ctx)

	session.Lock()
	defer session.Unlock()
	return s.buildState(session, policy), nil
}

// ApplyAction applies one draft action, runs its cascading resets, and
// kicks off any dependent refetches (pricing, city locations)
func (s *WizardService) ApplyAction(ctx context.Context, sessionID, userID uuid.UUID, action wizard.Action) (*SessionState, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	policy := s.policy.Get(ctx)
	reducer := wizard.NewReducer(policy.StorePickupAddress)

	session.Lock()
	defer session.Unlock()

	if session.Submitting {
		return nil, fmt.Errorf("submission in progress")
	}

	// Resolve delivery locations before the reducer sees the action so
	// the fee and display string arrive pre-validated
	if action.Type == wizard.ActionSetDeliveryLocation && action.Value != "" {
		location, err := s.delivery.ResolveLocation(action.Value, session.Draft.DeliveryCity)
		if err != nil {
			return nil, err
		}
		action.Fee = location.Fee
		action.Display = location.DisplayString()
	}

	if action.Type == wizard.ActionAddDriver && len(session.Draft.AdditionalDrivers) >= policy.MaxAdditionalDrivers {
		return nil, fmt.Errorf("a booking allows at most %d additional drivers", policy.MaxAdditionalDrivers)
	}

	before := pricingInputsOf(session)

	draft, changed, err := reducer.Apply(session.Draft, action)
	if err != nil {
		return nil, err
	}

	session.Draft = draft
	session.Touch()

	if changed {
		// Fire-and-forget driver snapshot; storage failures never break
		// the form
		go s.driverInfo.Save(context.WithoutCancel(ctx), userID, models.SnapshotFromDriver(draft.PrimaryDriver))

		s.refreshDerived(session, policy, before, action)
	}

	return s.buildState(session, policy), nil
}

// Continue advances the wizard one step if the current step's validity
// predicate passes
func (s *WizardService) Continue(ctx context.Context, sessionID, userID uuid.UUID) (*SessionState, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	policy := s.policy.Get(ctx)

	session.Lock()
	defer session.Unlock()

	in := session.StepInputs(policy, time.Now())
	if !wizard.CanContinue(session.Step, &session.Draft, in) {
		if in.PricingLoading {
			return nil, fmt.Errorf("pricing is still loading")
		}
		return nil, fmt.Errorf("current step is not complete")
	}

	// Leaving the drivers step requires the entered fields to be well
	// formed, not merely present
	if session.Step == wizard.StepDrivers {
		if err := s.validateDrivers(&session.Draft); err != nil {
			return nil, err
		}
	}

	if session.Step < wizard.StepConfirmation {
		session.Step++
	}
	session.Touch()

	return s.buildState(session, policy), nil
}

// Back moves the wizard one step backward
func (s *WizardService) Back(ctx context.Context, sessionID, userID uuid.UUID) (*SessionState, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	policy := s.policy.Get(ctx)

	session.Lock()
	defer session.Unlock()

	if !wizard.CanGoBack(session.Step, session.Submitting) {
		return nil, fmt.Errorf("cannot go back from this step")
	}

	session.Step--
	session.Touch()

	return s.buildState(session, policy), nil
}

// Close discards a session. When the wizard holds unsaved driver data
// past step one, the caller must pass confirm=true.
func (s *WizardService) Close(sessionID, userID uuid.UUID, confirm bool) error {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return err
	}

	session.Lock()
	guard := wizard.NeedsDiscardConfirmation(session.Step, &session.Draft)
	session.Unlock()

	if guard && !confirm {
		return fmt.Errorf("confirmation required: unsaved booking data will be discarded")
	}

	s.sessions.Delete(sessionID)
	return nil
}

// refreshDerived re-triggers the fetches whose inputs the action
// changed. Responses carry the generation issued here; stale ones are
// discarded. Caller must hold the session lock.
func (s *WizardService) refreshDerived(session *wizard.Session, policy *models.BookingPolicy, before pricingInputs, action wizard.Action) {
	// City change: refetch the city's locations
	if action.Type == wizard.ActionSetCity && session.Draft.DeliveryCity != "" {
		gen := session.BeginLocationsFetch()
		city := session.Draft.DeliveryCity

		go func() {
			locations, err := s.delivery.GetLocationsByCity(city)
			userErr := ""
			if err != nil {
				userErr = err.Error()
			}

			session.Lock()
			defer session.Unlock()
			session.CompleteLocationsFetch(gen, locations, userErr)
		}()
	}

	// Pricing: refetch when any of the five inputs changed and the
	// dates validate; otherwise drop the stale snapshot
	after := pricingInputsOf(session)
	if after == before {
		return
	}

	dv := wizard.ValidateDates(session.Draft.PickupDate, session.Draft.ReturnDate, policy, time.Now())
	if !dv.IsValid {
		session.InvalidatePricing()
		return
	}

	vehicleID := session.VehicleID
	gen := session.BeginPricingFetch()
	inputs := PricingInputs{
		VehicleID:             vehicleID,
		PickupDate:            after.pickupDate,
		ReturnDate:            after.returnDate,
		IsStudent:             after.isStudent,
		DeliveryFee:           after.deliveryFee,
		AdditionalDriverCount: after.driverCount,
	}

	go func() {
		total, err := s.pricing.Calculate(inputs)
		userErr := ""
		if err != nil {
			userErr = err.Error()
		}

		session.Lock()
		defer session.Unlock()
		session.CompletePricingFetch(gen, total, userErr)
	}()
}

// buildState assembles the response DTO. Caller must hold the lock.
func (s *WizardService) buildState(session *wizard.Session, policy *models.BookingPolicy) *SessionState {
	in := session.StepInputs(policy, time.Now())

	return &SessionState{
		SessionID:          session.ID,
		VehicleID:          session.VehicleID,
		Step:               session.Step,
		Draft:              session.Draft,
		DateValidation:     in.DateValidation,
		Conflicts:          in.Conflicts,
		Pricing:            session.Pricing,
		PricingLoading:     session.PricingLoading,
		PricingError:       session.PricingError,
		Locations:          session.Locations,
		LocationsLoading:   session.LocationsLoading,
		LocationsError:     session.LocationsError,
		CanContinue:        wizard.CanContinue(session.Step, &session.Draft, in),
		CanGoBack:          wizard.CanGoBack(session.Step, session.Submitting),
		RequiresCloseGuard: wizard.NeedsDiscardConfirmation(session.Step, &session.Draft),
	}
}

// validateDrivers checks the entered driver fields for format errors
func (s *WizardService) validateDrivers(draft *models.BookingDraft) error {
	if err := s.validateDriverFields("primary driver", draft.PrimaryDriver); err != nil {
		return err
	}
	for i, d := range draft.AdditionalDrivers {
		label := fmt.Sprintf("additional driver %d", i+1)
		if err := s.validateDriverFields(label, d.DriverData); err != nil {
			return err
		}
	}
	return nil
}

func (s *WizardService) validateDriverFields(label string, d models.DriverData) error {
	if _, err := s.validator.ValidatePhone(d.Phone); err != nil {
		return fmt.Errorf("%s: %s", label, err.Error())
	}
	if err := s.validator.ValidateZip(d.ZipCode); err != nil {
		return fmt.Errorf("%s: %s", label, err.Error())
	}
	if _, err := s.validator.ValidateLicenseState(d.LicenseState); err != nil {
		return fmt.Errorf("%s: %s", label, err.Error())
	}
	if err := s.validator.ValidateDateOfBirth(d.DateOfBirth, time.Now()); err != nil {
		return fmt.Errorf("%s: %s", label, err.Error())
	}
	return nil
}

// pricingInputs is the comparable tuple a pricing snapshot depends on
type pricingInputs struct {
	pickupDate  string
	returnDate  string
	isStudent   bool
	deliveryFee float64
	driverCount int
}

func pricingInputsOf(session *wizard.Session) pricingInputs {
	return pricingInputs{
		pickupDate:  session.Draft.PickupDate,
		returnDate:  session.Draft.ReturnDate,
		isStudent:   session.Draft.IsStudent,
		deliveryFee: session.Draft.DeliveryFee,
		driverCount: len(session.Draft.AdditionalDrivers),
	}
}

// seedDriverFromProfile copies stored profile fields into an empty draft
// driver; blanks stay blank
func seedDriverFromProfile(driver *models.DriverData, user *models.User) {
	driver.Email = user.Email
	if user.FirstName.Valid {
		driver.FirstName = user.FirstName.String
	}
	if user.LastName.Valid {
		driver.LastName = user.LastName.String
	}
	if user.Phone.Valid {
		driver.Phone = user.Phone.String
	}
	if user.DateOfBirth.Valid {
		driver.DateOfBirth = user.DateOfBirth.String
	}
	if user.LicenseNumber.Valid {
		driver.LicenseNumber = user.LicenseNumber.String
	}
	if user.LicenseState.Valid {
		driver.LicenseState = user.LicenseState.String
	}
	if user.Address.Valid {
		driver.Address = user.Address.String
	}
	if user.City.Valid {
		driver.City = user.City.String
	}
	if user.ZipCode.Valid {
		driver.ZipCode = user.ZipCode.String
	}
}
