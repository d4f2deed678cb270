package repository

import (
	"context"
	"time"

	"shala/internal/apperr"
	"shala/internal/database"
	"shala/internal/models"
)

type UserPackageRepository struct {
	db *database.DB
}

func NewUserPackageRepository(db *database.DB) *UserPackageRepository {
	return &UserPackageRepository{db: db}
}

const userPackageColumns = `id, user_id, package_id, credits_remaining, status, start_at, expire_at,
	payment_method, payment_status, amount_due_cents, amount_paid_cents, created_at, updated_at`

func scanUserPackage(row interface{ Scan(...any) error }, up *models.UserPackage) error {
	return row.Scan(
		&up.ID,
		&up.UserID,
		&up.PackageID,
		&up.CreditsRemaining,
		&up.Status,
		&up.StartAt,
		&up.ExpireAt,
		&up.PaymentMethod,
		&up.PaymentStatus,
		&up.AmountDueCents,
		&up.AmountPaidCents,
		&up.CreatedAt,
		&up.UpdatedAt,
	)
}

func (r *UserPackageRepository) Create(ctx context.Context, up *models.UserPackage) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_packages
			(user_id, package_id, credits_remaining, status, start_at, expire_at,
			 payment_method, payment_status, amount_due_cents, amount_paid_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		up.UserID,
		up.PackageID,
		up.CreditsRemaining,
		up.Status,
		up.StartAt,
		up.ExpireAt,
		up.PaymentMethod,
		up.PaymentStatus,
		up.AmountDueCents,
		up.AmountPaidCents,
	).Scan(&up.ID, &up.CreatedAt, &up.UpdatedAt)
	return database.MapError(err)
}

func (r *UserPackageRepository) GetByID(ctx context.Context, id int64) (*models.UserPackage, error) {
	up := &models.UserPackage{}
	err := scanUserPackage(r.db.QueryRowContext(ctx,
		`SELECT `+userPackageColumns+` FROM user_packages WHERE id = $1`, id), up)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapError(err)
	}
	return up, nil
}

func (r *UserPackageRepository) ListByUser(ctx context.Context, userID int64) ([]models.UserPackage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userPackageColumns+`
		FROM user_packages
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, database.MapError(err)
	}
	defer rows.Close()

	var packages []models.UserPackage
	for rows.Next() {
		var up models.UserPackage
		if err := scanUserPackage(rows, &up); err != nil {
			return nil, database.MapError(err)
		}
		packages = append(packages, up)
	}
	return packages, database.MapError(rows.Err())
}

// ConsumeCredit spends one credit as a single conditional statement so the
// check and the decrement cannot interleave with a concurrent consumer.
// Unlimited packages (credits_remaining IS NULL) are not touched here; the
// service treats them as a no-op before calling.
func (r *UserPackageRepository) ConsumeCredit(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_packages
		SET credits_remaining = credits_remaining - 1, updated_at = NOW()
		WHERE id = $1 AND credits_remaining IS NOT NULL AND credits_remaining > 0`, id)
	if err != nil {
		return database.MapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return database.MapError(err)
	}
	if affected == 0 {
		return apperr.Conflict("no_credits_remaining", "package has no credits left")
	}
	return nil
}

// RefundCredit returns one credit. No ceiling against the original allotment
// is applied; see the settings documentation for the policy discussion.
func (r *UserPackageRepository) RefundCredit(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_packages
		SET credits_remaining = credits_remaining + 1, updated_at = NOW()
		WHERE id = $1 AND credits_remaining IS NOT NULL`, id)
	return database.MapError(err)
}

// MarkExpired flips long-expired rows to the stored 'expired' status for
// reporting. Read paths never rely on this; usability is computed from
// expire_at.
func (r *UserPackageRepository) MarkExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_packages
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expire_at < $3`,
		models.UserPackageExpired, models.UserPackageActive, before)
	if err != nil {
		return 0, database.MapError(err)
	}
	affected, err := res.RowsAffected()
	return affected, database.MapError(err)
}
