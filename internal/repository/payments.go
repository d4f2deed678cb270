package repository

import (
	"context"
	"database/sql"

	"shala/internal/apperr"
	"shala/internal/database"
	"shala/internal/models"
)

type PaymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, user_id, user_package_id, amount_cents, method, log_status, paid_at, evidence_url, note, created_at`

func scanPayment(row interface{ Scan(...any) error }, p *models.Payment) error {
	return row.Scan(
		&p.ID,
		&p.UserID,
		&p.UserPackageID,
		&p.AmountCents,
		&p.Method,
		&p.LogStatus,
		&p.PaidAt,
		&p.EvidenceURL,
		&p.Note,
		&p.CreatedAt,
	)
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO payments (user_id, user_package_id, amount_cents, method, log_status, paid_at, evidence_url, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		payment.UserID,
		payment.UserPackageID,
		payment.AmountCents,
		payment.Method,
		payment.LogStatus,
		payment.PaidAt,
		payment.EvidenceURL,
		payment.Note,
	).Scan(&payment.ID, &payment.CreatedAt)
	return database.MapError(err)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	payment := &models.Payment{}
	err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id), payment)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapError(err)
	}
	return payment, nil
}

// lockPayment reads the payment and its linked user package under row locks,
// in a fixed order, so concurrent verdicts on the same payment serialize.
func lockPayment(ctx context.Context, tx *sql.Tx, paymentID int64) (*models.Payment, *models.UserPackage, error) {
	payment := &models.Payment{}
	err := scanPayment(tx.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, paymentID), payment)
	if database.IsNoRows(err) {
		return nil, nil, apperr.NotFound("payment_not_found", "payment does not exist")
	}
	if err != nil {
		return nil, nil, database.MapError(err)
	}

	if payment.UserPackageID == nil {
		return payment, nil, nil
	}

	up := &models.UserPackage{}
	err = scanUserPackage(tx.QueryRowContext(ctx,
		`SELECT `+userPackageColumns+` FROM user_packages WHERE id = $1 FOR UPDATE`,
		*payment.UserPackageID), up)
	if database.IsNoRows(err) {
		return nil, nil, apperr.NotFound("user_package_not_found", "linked user package does not exist")
	}
	if err != nil {
		return nil, nil, database.MapError(err)
	}
	return payment, up, nil
}

// Approve marks the payment verified and activates the linked user package in
// one transaction. Re-approval of an already verified payment is a no-op;
// approving a rejected payment is refused, both verdicts being terminal.
func (r *PaymentRepository) Approve(ctx context.Context, paymentID int64) (*models.Payment, *models.UserPackage, error) {
	var payment *models.Payment
	var up *models.UserPackage
	err := r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		var err error
		payment, up, err = lockPayment(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		switch payment.LogStatus {
		case models.PaymentLogVerified:
			return nil
		case models.PaymentLogRejected:
			return apperr.Conflict("payment_rejected", "payment was already rejected")
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE payments SET log_status = $1 WHERE id = $2`,
			models.PaymentLogVerified, payment.ID)
		if err != nil {
			return database.MapError(err)
		}
		payment.LogStatus = models.PaymentLogVerified

		if up != nil {
			newStatus := up.Status
			if newStatus == models.UserPackagePendingActivation {
				newStatus = models.UserPackageActive
			}
			_, err = tx.ExecContext(ctx, `
				UPDATE user_packages
				SET payment_status = $1, amount_paid_cents = amount_due_cents,
				    status = $2, updated_at = NOW()
				WHERE id = $3`,
				models.PaymentVerified, newStatus, up.ID)
			if err != nil {
				return database.MapError(err)
			}
			up.PaymentStatus = models.PaymentVerified
			up.AmountPaidCents = up.AmountDueCents
			up.Status = newStatus
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return payment, up, nil
}

// Reject marks the payment rejected. The user package stays
// pending_activation; disposition is a separate admin decision. Repeat
// rejection is a no-op, rejecting a verified payment is refused.
func (r *PaymentRepository) Reject(ctx context.Context, paymentID int64) (*models.Payment, *models.UserPackage, error) {
	var payment *models.Payment
	var up *models.UserPackage
	err := r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		var err error
		payment, up, err = lockPayment(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		switch payment.LogStatus {
		case models.PaymentLogRejected:
			return nil
		case models.PaymentLogVerified:
			return apperr.Conflict("payment_verified", "payment was already verified")
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE payments SET log_status = $1 WHERE id = $2`,
			models.PaymentLogRejected, payment.ID)
		if err != nil {
			return database.MapError(err)
		}
		payment.LogStatus = models.PaymentLogRejected

		if up != nil {
			_, err = tx.ExecContext(ctx, `
				UPDATE user_packages
				SET payment_status = $1, updated_at = NOW()
				WHERE id = $2`,
				models.PaymentRejected, up.ID)
			if err != nil {
				return database.MapError(err)
			}
			up.PaymentStatus = models.PaymentRejected
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return payment, up, nil
}
