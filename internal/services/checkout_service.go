package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/models"
	"github.com/fourarental/rental-booking-backend/internal/wizard"
	"github.com/fourarental/rental-booking-backend/pkg/checkout"
)

// ErrSubmissionFailed is the single user-safe message for any submission
// failure. The cause is logged and audited, never surfaced.
const ErrSubmissionFailed = "Unable to complete your booking. Please try again."

// profileSaveTimeout bounds the best-effort profile sync during
// submission. The checkout redirect never waits longer than this.
const profileSaveTimeout = 3 * time.Second

// CheckoutService runs the submission protocol: it turns a confirmed
// wizard draft into a pending booking and a checkout session
type CheckoutService struct {
	sessions   *wizard.Manager
	bookings   *database.BookingRepository
	users      *database.UserRepository
	gateway    *checkout.Client
	policy     *BookingConfigService
	driverInfo *DriverInfoStore
	limiter    *SubmissionLimiter
	audit      *AuditService
	logger     *logrus.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	sessions *wizard.Manager,
	bookings *database.BookingRepository,
	users *database.UserRepository,
	gateway *checkout.Client,
	policy *BookingConfigService,
	driverInfo *DriverInfoStore,
	limiter *SubmissionLimiter,
	audit *AuditService,
	logger *logrus.Logger,
) *CheckoutService {
	return &CheckoutService{
		sessions:   sessions,
		bookings:   bookings,
		users:      users,
		gateway:    gateway,
		policy:     policy,
		driverInfo: driverInfo,
		limiter:    limiter,
		audit:      audit,
		logger:     logger,
	}
}

// SubmitRequest is the payload for the submit endpoint. Website is a
// honeypot field no human ever fills in.
type SubmitRequest struct {
	Website string `json:"website"`
}

// SubmitResult carries the redirect target after a successful submission
type SubmitResult struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	CheckoutURL      string    `json:"checkout_url"`
}

// Submit runs the full submission protocol for a wizard session
func (s *CheckoutService) Submit(ctx context.Context, sessionID, userID uuid.UUID, req *SubmitRequest, ipAddress, userAgent string) (*SubmitResult, error) {
	// 1. Honeypot. A filled-in field means a bot; refuse with the same
	// generic error a real failure produces.
	if req != nil && req.Website != "" {
		if err := s.audit.LogHoneypotTrip(userID, ipAddress, userAgent); err != nil {
			s.logger.WithError(err).Warn("Failed to audit honeypot trip")
		}
		return nil, fmt.Errorf(ErrSubmissionFailed)
	}

	// 2. Rate limit
	if err := s.limiter.Allow(userID); err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	bookingPolicy := s.policy.Get(ctx)

	// 3. Validate the session is submittable and take the submit lock
	session.Lock()
	if session.Submitting {
		session.Unlock()
		return nil, fmt.Errorf("submission already in progress")
	}
	if session.Step != wizard.StepConfirmation {
		session.Unlock()
		return nil, fmt.Errorf("booking is not ready to submit")
	}

	in := session.StepInputs(bookingPolicy, time.Now())
	if !in.DateValidation.IsValid || in.Conflicts.HasBlockingConflict() || session.Pricing == nil {
		session.Unlock()
		return nil, fmt.Errorf("booking is not ready to submit")
	}

	session.Submitting = true
	draft := session.Draft
	pricing := *session.Pricing
	vehicleName := session.VehicleName
	vehicleImageURL := session.VehicleImageURL
	session.Unlock()

	result, err := s.submit(ctx, session, userID, draft, pricing, vehicleName, vehicleImageURL, ipAddress, userAgent)

	session.Lock()
	session.Submitting = false
	if err == nil {
		session.Step = wizard.StepSubmitted
	}
	session.Unlock()

	return result, err
}

// submit performs the steps after validation. Any failure is audited
// and collapsed into the generic submission error.
func (s *CheckoutService) submit(ctx context.Context, session *wizard.Session, userID uuid.UUID, draft models.BookingDraft, pricing models.BookingTotal, vehicleName, vehicleImageURL, ipAddress, userAgent string) (*SubmitResult, error) {
	// 4. Best-effort profile sync, raced against a hard timeout. A slow
	// or failed save is logged; the submission proceeds regardless.
	s.syncProfile(ctx, userID, draft.PrimaryDriver)

	reference, err := GenerateBookingReference()
	if err != nil {
		return nil, s.fail(userID, session.ID, "", ipAddress, userAgent, "reference generation failed", err)
	}

	// 5. Open the checkout session
	gatewayReq := buildSessionRequest(reference, &draft, &pricing, vehicleName, vehicleImageURL)
	gatewayResp, err := s.gateway.CreateSession(gatewayReq)
	if err != nil {
		return nil, s.fail(userID, session.ID, reference, ipAddress, userAgent, "checkout session creation failed", err)
	}

	// 6. Record the pending booking
	booking, err := buildBooking(reference, userID, &draft, &pricing, vehicleName, vehicleImageURL, gatewayResp.SessionID)
	if err != nil {
		return nil, s.fail(userID, session.ID, reference, ipAddress, userAgent, "booking assembly failed", err)
	}
	if err := s.bookings.Create(booking); err != nil {
		return nil, s.fail(userID, session.ID, reference, ipAddress, userAgent, "booking insert failed", err)
	}

	// 7. The cached driver snapshot has served its purpose
	s.driverInfo.Clear(context.WithoutCancel(ctx), userID)

	if err := s.audit.LogCheckoutSubmission(userID, session.ID, reference, ipAddress, userAgent, true, ""); err != nil {
		s.logger.WithError(err).Warn("Failed to audit checkout submission")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_reference": reference,
		"total_amount":      pricing.TotalAmount,
	}).Info("Checkout session created")

	return &SubmitResult{
		BookingID:        booking.ID,
		BookingReference: reference,
		CheckoutURL:      gatewayResp.URL,
	}, nil
}

// fail logs and audits a submission failure, returning the generic error
func (s *CheckoutService) fail(userID, sessionID uuid.UUID, reference, ipAddress, userAgent, reason string, cause error) error {
	s.logger.WithFields(logrus.Fields{
		"user_id":           userID,
		"booking_reference": reference,
	}).WithError(cause).Error("Checkout submission failed: " + reason)

	if err := s.audit.LogCheckoutSubmission(userID, sessionID, reference, ipAddress, userAgent, false, reason); err != nil {
		s.logger.WithError(err).Warn("Failed to audit checkout submission")
	}

	return fmt.Errorf(ErrSubmissionFailed)
}

// syncProfile writes the primary driver's fields back to the profile,
// waiting at most profileSaveTimeout before moving on
func (s *CheckoutService) syncProfile(ctx context.Context, userID uuid.UUID, driver models.DriverData) {
	req := &models.UpdateProfileRequest{
		FirstName:     driver.FirstName,
		LastName:      driver.LastName,
		Phone:         driver.Phone,
		DateOfBirth:   driver.DateOfBirth,
		LicenseNumber: driver.LicenseNumber,
		LicenseState:  driver.LicenseState,
		Address:       driver.Address,
		City:          driver.City,
		ZipCode:       driver.ZipCode,
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.users.UpdateProfile(userID, req)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"user_id": userID,
			}).WithError(err).Warn("Profile sync during submission failed")
		}
	case <-time.After(profileSaveTimeout):
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
		}).Warn("Profile sync during submission timed out")
	case <-ctx.Done():
	}
}

// buildSessionRequest flattens the draft and pricing snapshot into the
// gateway payload. Pricing fields are copied verbatim, never recomputed.
func buildSessionRequest(reference string, draft *models.BookingDraft, pricing *models.BookingTotal, vehicleName, vehicleImageURL string) *checkout.SessionRequest {
	req := &checkout.SessionRequest{
		BookingReference: reference,

		VehicleID:       draft.VehicleID,
		VehicleName:     vehicleName,
		VehicleImageURL: vehicleImageURL,

		PickupDate: draft.PickupDate,
		ReturnDate: draft.ReturnDate,

		PickupType:       string(draft.PickupType),
		PickupLocation:   draft.PickupLocation,
		DeliveryCity:     draft.DeliveryCity,
		DeliveryTimeSlot: draft.DeliveryTimeSlot,
		DeliveryFee:      pricing.DeliveryFee,

		RentalDays:           pricing.RentalDays,
		RentalType:           string(pricing.RentalType),
		BaseRate:             pricing.BaseRate,
		BaseCost:             pricing.BaseCost,
		AdditionalDriverCost: pricing.AdditionalDriverCost,
		StudentDiscount:      pricing.StudentDiscount,
		Subtotal:             pricing.Subtotal,
		TaxAmount:            pricing.TaxAmount,
		TotalAmount:          pricing.TotalAmount,
		Currency:             pricing.Currency,

		IsStudent:     draft.IsStudent,
		StudentIDURL:  draft.StudentIDURL,
		PrimaryDriver: driverPayload(draft.PrimaryDriver),
	}

	for _, d := range draft.AdditionalDrivers {
		req.AdditionalDrivers = append(req.AdditionalDrivers, driverPayload(d.DriverData))
	}

	return req
}

// driverPayload strips wizard-only state from a driver record
func driverPayload(d models.DriverData) checkout.DriverPayload {
	return checkout.DriverPayload{
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Email:         d.Email,
		Phone:         d.Phone,
		DateOfBirth:   d.DateOfBirth,
		LicenseNumber: d.LicenseNumber,
		LicenseState:  d.LicenseState,
		Address:       d.Address,
		City:          d.City,
		ZipCode:       d.ZipCode,
	}
}

// buildBooking assembles the pending booking row
func buildBooking(reference string, userID uuid.UUID, draft *models.BookingDraft, pricing *models.BookingTotal, vehicleName, vehicleImageURL, checkoutSessionID string) (*models.Booking, error) {
	vehicleID, err := uuid.Parse(draft.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id: %w", err)
	}
	pickupAt, err := time.Parse(time.RFC3339, draft.PickupDate)
	if err != nil {
		return nil, fmt.Errorf("invalid pickup date: %w", err)
	}
	returnAt, err := time.Parse(time.RFC3339, draft.ReturnDate)
	if err != nil {
		return nil, fmt.Errorf("invalid return date: %w", err)
	}

	booking := &models.Booking{
		ID:               uuid.New(),
		BookingReference: reference,
		UserID:           userID,

		VehicleID:       vehicleID,
		VehicleName:     vehicleName,
		VehicleImageURL: nullString(vehicleImageURL),

		PickupDate: pickupAt,
		ReturnDate: returnAt,

		PickupType:       draft.PickupType,
		PickupLocation:   draft.PickupLocation,
		DeliveryCity:     nullString(draft.DeliveryCity),
		DeliveryFee:      pricing.DeliveryFee,
		DeliveryTimeSlot: nullString(draft.DeliveryTimeSlot),

		IsStudent:   draft.IsStudent,
		Pricing:     *pricing,
		TotalAmount: pricing.TotalAmount,

		Drivers: models.BookingDrivers{
			Primary: draft.PrimaryDriver,
		},

		Status:            models.BookingStatusPendingPayment,
		PaymentStatus:     models.PaymentStatusPending,
		CheckoutSessionID: nullString(checkoutSessionID),
	}

	if draft.DeliveryLocationID != "" {
		locationID, err := uuid.Parse(draft.DeliveryLocationID)
		if err != nil {
			return nil, fmt.Errorf("invalid delivery location id: %w", err)
		}
		booking.DeliveryLocation = uuid.NullUUID{UUID: locationID, Valid: true}
	}

	for _, d := range draft.AdditionalDrivers {
		booking.Drivers.Additional = append(booking.Drivers.Additional, d.DriverData)
	}

	return booking, nil
}

func nullString(s string) models.NullString {
	ns := models.NullString{}
	if s != "" {
		ns.Valid = true
		ns.String = s
	}
	return ns
}
