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

// PaymentService reviews submitted payments. Approval activates the linked
// user package in the same transaction as the status flip; notification is
// fire and forget.
type PaymentService struct {
	paymentStore PaymentStore
	notifier     Notifier
	now          func() time.Time
}

func NewPaymentService(paymentStore PaymentStore, notifier Notifier) *PaymentService {
	return &PaymentService{
		paymentStore: paymentStore,
		notifier:     notifier,
		now:          time.Now,
	}
}

// Approve verifies the payment and grants the credits. Re-approving an
// already verified payment succeeds without side effects.
func (s *PaymentService) Approve(ctx context.Context, paymentID, approverID int64) error {
	var payment *models.Payment
	err := database.WithRetry(ctx, txAttempts, func() error {
		var err error
		payment, _, err = s.paymentStore.Approve(ctx, paymentID)
		return err
	})
	if err != nil {
		return err
	}

	metrics.PaymentsVerified.Inc()

	event := models.PaymentVerifiedEvent{
		PaymentID:     payment.ID,
		UserPackageID: payment.UserPackageID,
		UserID:        payment.UserID,
		ApproverID:    approverID,
		Timestamp:     s.now(),
	}
	if err := s.notifier.Publish(models.EventPaymentVerified, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish payment verified event",
			"error", err,
			"payment_id", payment.ID,
			"event_type", models.EventPaymentVerified)
	}

	return nil
}

// Reject marks the payment rejected and leaves the user package pending; the
// admin decides its disposition separately. Repeat rejection is a no-op.
func (s *PaymentService) Reject(ctx context.Context, paymentID, approverID int64, reason *string) error {
	var payment *models.Payment
	err := database.WithRetry(ctx, txAttempts, func() error {
		var err error
		payment, _, err = s.paymentStore.Reject(ctx, paymentID)
		return err
	})
	if err != nil {
		return err
	}

	metrics.PaymentsRejected.Inc()

	event := models.PaymentRejectedEvent{
		PaymentID:     payment.ID,
		UserPackageID: payment.UserPackageID,
		UserID:        payment.UserID,
		ApproverID:    approverID,
		Timestamp:     s.now(),
	}
	if reason != nil {
		event.Reason = *reason
	}
	if err := s.notifier.Publish(models.EventPaymentRejected, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish payment rejected event",
			"error", err,
			"payment_id", payment.ID,
			"event_type", models.EventPaymentRejected)
	}

	return nil
}

// Record appends a manual admin payment entry to the history log.
func (s *PaymentService) Record(ctx context.Context, req *models.RecordPaymentRequest) (*models.Payment, error) {
	if req.AmountCents <= 0 {
		return nil, apperr.Invalid("invalid_amount", "payment amount must be positive")
	}

	payment := &models.Payment{
		UserID:        req.UserID,
		UserPackageID: req.UserPackageID,
		AmountCents:   req.AmountCents,
		Method:        req.Method,
		LogStatus:     models.PaymentLogRecorded,
		PaidAt:        s.now(),
		EvidenceURL:   req.EvidenceURL,
		Note:          req.Note,
	}
	if err := s.paymentStore.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}
