package service

import (
	"context"
	"time"

	"shala/internal/apperr"
	"shala/internal/database"
	"shala/internal/logger"
	"shala/internal/metrics"
	"shala/internal/models"
)

const txAttempts = 3

// BookingService owns the booking lifecycle and the class seat counter. All
// booked_count mutation in the system goes through here.
type BookingService struct {
	bookingStore BookingStore
	classStore   ClassStore
	packageStore UserPackageStore
	settings     SettingsStore
	notifier     Notifier
	now          func() time.Time
}

func NewBookingService(bookingStore BookingStore, classStore ClassStore, packageStore UserPackageStore, settings SettingsStore, notifier Notifier) *BookingService {
	return &BookingService{
		bookingStore: bookingStore,
		classStore:   classStore,
		packageStore: packageStore,
		settings:     settings,
		notifier:     notifier,
		now:          time.Now,
	}
}

// Create books a seat for the user. The capacity check and the counter
// increment run under a row lock inside the store, so N concurrent requests
// for the last seat produce exactly one confirmed booking.
func (s *BookingService) Create(ctx context.Context, userID int64, req *models.CreateBookingRequest) (*models.Booking, error) {
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	class, err := s.classStore.GetByID(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	if class == nil || class.IsCancelled {
		return nil, apperr.NotFound("class_not_found", "class does not exist")
	}

	existing, err := s.bookingStore.GetActiveByUserAndClass(ctx, userID, req.ClassID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.BookingConflicts.WithLabelValues("already_booked").Inc()
		return nil, apperr.Conflict("already_booked", "an active booking already exists for this class")
	}

	// Self-service cutoff applies to paid bookings only; package-credit and
	// admin-entered flows are exempt per studio policy.
	if req.Kind == models.BookingKindPaid {
		cutoff := time.Duration(settings.BookingCutoffMinutes) * time.Minute
		if s.now().After(class.StartsAt.Add(-cutoff)) {
			return nil, apperr.Invalid("cutoff_passed", "booking window for this class has closed")
		}
	}

	booking := &models.Booking{
		UserID:  userID,
		ClassID: req.ClassID,
		Kind:    req.Kind,
	}

	var creditConsumed bool
	if req.Kind == models.BookingKindPackageCredit {
		if req.UserPackageID == nil {
			return nil, apperr.Invalid("user_package_required", "a user package id is required for credit bookings")
		}
		up, err := s.packageStore.GetByID(ctx, *req.UserPackageID)
		if err != nil {
			return nil, err
		}
		if up == nil {
			return nil, apperr.NotFound("user_package_not_found", "user package does not exist")
		}
		if up.UserID != userID {
			return nil, apperr.Forbidden("not_owner", "user package belongs to another user")
		}
		if up.Status != models.UserPackageActive || up.Expired(s.now()) {
			return nil, apperr.Invalid("package_not_usable", "user package is not active")
		}
		booking.UserPackageID = req.UserPackageID

		// Unlimited packages carry no counter; credit packages spend one
		// atomically before the seat is taken.
		if up.CreditsRemaining != nil {
			if err := s.packageStore.ConsumeCredit(ctx, up.ID); err != nil {
				if apperr.IsKind(err, apperr.KindConflict) {
					metrics.BookingConflicts.WithLabelValues("no_credits_remaining").Inc()
				}
				return nil, err
			}
			creditConsumed = true
		}
	}

	err = database.WithRetry(ctx, txAttempts, func() error {
		return s.bookingStore.CreateConfirmed(ctx, booking)
	})
	if err != nil {
		// The seat was never taken; put the spent credit back.
		if creditConsumed {
			if refundErr := s.packageStore.RefundCredit(ctx, *booking.UserPackageID); refundErr != nil {
				logger.WithContext(ctx).Error("Failed to refund credit after booking failure",
					"error", refundErr,
					"user_package_id", *booking.UserPackageID)
			}
		}
		if apperr.IsKind(err, apperr.KindConflict) {
			metrics.BookingConflicts.WithLabelValues(apperr.CodeOf(err)).Inc()
		}
		return nil, err
	}

	metrics.BookingsCreated.Inc()

	event := models.BookingCreatedEvent{
		BookingID: booking.ID,
		ClassID:   booking.ClassID,
		UserID:    booking.UserID,
		Kind:      booking.Kind,
		Timestamp: s.now(),
	}
	if err := s.notifier.Publish(models.EventBookingCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking created event",
			"error", err,
			"booking_id", booking.ID,
			"event_type", models.EventBookingCreated)
	}

	return booking, nil
}

// Cancel releases a booking. Cancelling an already cancelled booking returns
// success and moves nothing, so retried requests are harmless.
func (s *BookingService) Cancel(ctx context.Context, bookingID, requestingUserID int64) error {
	booking, err := s.bookingStore.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		return apperr.NotFound("booking_not_found", "booking does not exist")
	}
	if booking.UserID != requestingUserID {
		return apperr.Forbidden("not_owner", "booking belongs to another user")
	}
	if booking.Status == models.BookingCancelled {
		return nil
	}

	var cancelled bool
	err = database.WithRetry(ctx, txAttempts, func() error {
		var err error
		cancelled, err = s.bookingStore.CancelAndRelease(ctx, booking)
		return err
	})
	if err != nil {
		return err
	}
	if !cancelled {
		// Lost the race with another cancel request; terminal state is the
		// same either way.
		return nil
	}

	metrics.BookingsCancelled.Inc()

	event := models.BookingCancelledEvent{
		BookingID: booking.ID,
		ClassID:   booking.ClassID,
		UserID:    booking.UserID,
		Reason:    "user cancellation",
		Timestamp: s.now(),
	}
	if err := s.notifier.Publish(models.EventBookingCancelled, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking cancelled event",
			"error", err,
			"booking_id", booking.ID,
			"event_type", models.EventBookingCancelled)
	}

	return nil
}

// List returns the user's bookings, newest first.
func (s *BookingService) List(ctx context.Context, userID int64) ([]models.Booking, error) {
	return s.bookingStore.ListByUser(ctx, userID)
}
