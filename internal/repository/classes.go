package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shala/internal/apperr"
	"shala/internal/database"
	"shala/internal/models"
)

type ClassRepository struct {
	db *database.DB
}

func NewClassRepository(db *database.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `id, title, category, starts_at, ends_at, capacity, booked_count, is_cancelled, price_cents, created_at, updated_at`

func scanClass(row interface{ Scan(...any) error }, c *models.ClassSession) error {
	return row.Scan(
		&c.ID,
		&c.Title,
		&c.Category,
		&c.StartsAt,
		&c.EndsAt,
		&c.Capacity,
		&c.BookedCount,
		&c.IsCancelled,
		&c.PriceCents,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func (r *ClassRepository) Create(ctx context.Context, class *models.ClassSession) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO class_sessions (title, category, starts_at, ends_at, capacity, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, booked_count, is_cancelled, created_at, updated_at`,
		class.Title,
		class.Category,
		class.StartsAt,
		class.EndsAt,
		class.Capacity,
		class.PriceCents,
	).Scan(&class.ID, &class.BookedCount, &class.IsCancelled, &class.CreatedAt, &class.UpdatedAt)
	return database.MapError(err)
}

func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.ClassSession, error) {
	class := &models.ClassSession{}
	err := scanClass(r.db.QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM class_sessions WHERE id = $1`, id), class)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapError(err)
	}
	return class, nil
}

// List returns scheduled sessions matching the filters, soonest first.
func (r *ClassRepository) List(ctx context.Context, req *models.ListClassesRequest) ([]models.ClassSession, error) {
	query := `SELECT ` + classColumns + ` FROM class_sessions WHERE is_cancelled = FALSE`
	var args []interface{}
	argIndex := 1

	if req.Start != nil {
		query += fmt.Sprintf(" AND starts_at >= $%d", argIndex)
		args = append(args, *req.Start)
		argIndex++
	}
	if req.End != nil {
		query += fmt.Sprintf(" AND starts_at <= $%d", argIndex)
		args = append(args, *req.End)
		argIndex++
	}
	if req.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, *req.Category)
		argIndex++
	}

	query += " ORDER BY starts_at ASC"

	if req.Page > 0 && req.PageSize > 0 {
		offset := (req.Page - 1) * req.PageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, req.PageSize, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err)
	}
	defer rows.Close()

	var classes []models.ClassSession
	for rows.Next() {
		var c models.ClassSession
		if err := scanClass(rows, &c); err != nil {
			return nil, database.MapError(err)
		}
		classes = append(classes, c)
	}
	return classes, database.MapError(rows.Err())
}

// CancelCascade soft-deletes a session and unwinds every confirmed booking in
// the same transaction: bookings flip to cancelled, credit-funded ones refund
// their credit, and the seat counter resets to zero.
func (r *ClassRepository) CancelCascade(ctx context.Context, classID int64) (bookingsCancelled int, err error) {
	err = r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		var isCancelled bool
		err := tx.QueryRowContext(ctx, `
			SELECT is_cancelled FROM class_sessions WHERE id = $1 FOR UPDATE`,
			classID).Scan(&isCancelled)
		if database.IsNoRows(err) {
			return apperr.NotFound("class_not_found", "class does not exist")
		}
		if err != nil {
			return database.MapError(err)
		}
		if isCancelled {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE user_packages up
			SET credits_remaining = up.credits_remaining + 1, updated_at = NOW()
			FROM bookings b
			WHERE b.user_package_id = up.id
			  AND b.class_id = $1
			  AND b.status = $2
			  AND b.kind = $3
			  AND up.credits_remaining IS NOT NULL`,
			classID, models.BookingConfirmed, models.BookingKindPackageCredit)
		if err != nil {
			return database.MapError(err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE bookings
			SET status = $1, cancelled_at = NOW(), updated_at = NOW()
			WHERE class_id = $2 AND status = $3`,
			models.BookingCancelled, classID, models.BookingConfirmed)
		if err != nil {
			return database.MapError(err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return database.MapError(err)
		}
		bookingsCancelled = int(affected)

		_, err = tx.ExecContext(ctx, `
			UPDATE class_sessions
			SET is_cancelled = TRUE, booked_count = 0, updated_at = NOW()
			WHERE id = $1`, classID)
		return database.MapError(err)
	})
	return bookingsCancelled, err
}
