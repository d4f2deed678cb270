package repository

import (
	"context"
	"database/sql"

	"shala/internal/apperr"
	"shala/internal/database"
	"shala/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, user_id, class_id, status, kind, user_package_id, cancelled_at, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }, b *models.Booking) error {
	return row.Scan(
		&b.ID,
		&b.UserID,
		&b.ClassID,
		&b.Status,
		&b.Kind,
		&b.UserPackageID,
		&b.CancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

// CreateConfirmed atomically seats a booking: the class row is locked before
// the capacity read so concurrent requests for the last seat serialize, and
// the counter increment commits together with the booking insert or not at
// all.
func (r *BookingRepository) CreateConfirmed(ctx context.Context, booking *models.Booking) error {
	err := r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		var capacity, bookedCount int
		var isCancelled bool
		err := tx.QueryRowContext(ctx, `
			SELECT capacity, booked_count, is_cancelled
			FROM class_sessions
			WHERE id = $1
			FOR UPDATE`, booking.ClassID).Scan(&capacity, &bookedCount, &isCancelled)
		if database.IsNoRows(err) {
			return apperr.NotFound("class_not_found", "class does not exist")
		}
		if err != nil {
			return database.MapError(err)
		}
		if isCancelled {
			return apperr.NotFound("class_not_found", "class has been cancelled")
		}
		if bookedCount >= capacity {
			return apperr.Conflict("class_full", "class is fully booked")
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO bookings (user_id, class_id, status, kind, user_package_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+bookingColumns,
			booking.UserID,
			booking.ClassID,
			models.BookingConfirmed,
			booking.Kind,
			booking.UserPackageID,
		).Scan(
			&booking.ID,
			&booking.UserID,
			&booking.ClassID,
			&booking.Status,
			&booking.Kind,
			&booking.UserPackageID,
			&booking.CancelledAt,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			mapped := database.MapError(err)
			if apperr.IsKind(mapped, apperr.KindConflict) {
				return apperr.Conflict("already_booked", "an active booking already exists for this class")
			}
			return mapped
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE class_sessions
			SET booked_count = booked_count + 1, updated_at = NOW()
			WHERE id = $1`, booking.ClassID)
		return database.MapError(err)
	})
	return err
}

// CancelAndRelease flips the booking to cancelled and returns the seat in one
// transaction. The conditional update makes repeat cancellation a no-op:
// cancelled=false is returned and no counter moves. A credit-funded booking
// refunds one credit to its originating package.
func (r *BookingRepository) CancelAndRelease(ctx context.Context, booking *models.Booking) (cancelled bool, err error) {
	err = r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE bookings
			SET status = $1, cancelled_at = NOW(), updated_at = NOW()
			WHERE id = $2 AND status = $3`,
			models.BookingCancelled, booking.ID, models.BookingConfirmed)
		if err != nil {
			return database.MapError(err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return database.MapError(err)
		}
		if affected == 0 {
			return nil
		}
		cancelled = true

		_, err = tx.ExecContext(ctx, `
			UPDATE class_sessions
			SET booked_count = GREATEST(booked_count - 1, 0), updated_at = NOW()
			WHERE id = $1`, booking.ClassID)
		if err != nil {
			return database.MapError(err)
		}

		if booking.Kind == models.BookingKindPackageCredit && booking.UserPackageID != nil {
			_, err = tx.ExecContext(ctx, `
				UPDATE user_packages
				SET credits_remaining = credits_remaining + 1, updated_at = NOW()
				WHERE id = $1 AND credits_remaining IS NOT NULL`, *booking.UserPackageID)
			if err != nil {
				return database.MapError(err)
			}
		}
		return nil
	})
	return cancelled, err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking := &models.Booking{}
	err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id), booking)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapError(err)
	}
	return booking, nil
}

func (r *BookingRepository) GetActiveByUserAndClass(ctx context.Context, userID, classID int64) (*models.Booking, error) {
	booking := &models.Booking{}
	err := scanBooking(r.db.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_id = $1 AND class_id = $2 AND status = $3`,
		userID, classID, models.BookingConfirmed), booking)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapError(err)
	}
	return booking, nil
}

// ListUserIDsByClass returns the distinct members who ever booked the class,
// cancelled bookings included. Used for session-wide notices after a cascade
// cancellation has already flipped the rows.
func (r *BookingRepository) ListUserIDsByClass(ctx context.Context, classID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM bookings WHERE class_id = $1`, classID)
	if err != nil {
		return nil, database.MapError(err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, database.MapError(err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, database.MapError(rows.Err())
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, database.MapError(err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, database.MapError(err)
		}
		bookings = append(bookings, b)
	}
	return bookings, database.MapError(rows.Err())
}
