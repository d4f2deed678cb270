package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createClassSessionsTable,
		createBookingsTable,
		createPackagesTable,
		createUserPackagesTable,
		createPaymentsTable,
		createSettingsTable,
		createClassStartsAtIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    surname VARCHAR(100) NOT NULL,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createClassSessionsTable = `
CREATE TABLE IF NOT EXISTS class_sessions (
    id SERIAL PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    category VARCHAR(50) NOT NULL,
    starts_at TIMESTAMPTZ NOT NULL,
    ends_at TIMESTAMPTZ NOT NULL,
    capacity INTEGER NOT NULL,
    booked_count INTEGER NOT NULL DEFAULT 0,
    is_cancelled BOOLEAN NOT NULL DEFAULT FALSE,
    price_cents BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (capacity >= 0),
    CHECK (booked_count >= 0 AND booked_count <= capacity),
    CHECK (price_cents >= 0),
    CHECK (category IN ('class', 'workshop', 'retreat', 'special-event', 'teacher-training'))
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id),
    class_id INTEGER NOT NULL REFERENCES class_sessions(id),
    status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
    kind VARCHAR(20) NOT NULL DEFAULT 'paid',
    user_package_id INTEGER,
    cancelled_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (status IN ('confirmed', 'cancelled')),
    CHECK (kind IN ('paid', 'package-credit'))
);
CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_user_class_idx
ON bookings (user_id, class_id) WHERE status = 'confirmed';`

const createPackagesTable = `
CREATE TABLE IF NOT EXISTS packages (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    type VARCHAR(20) NOT NULL,
    credits INTEGER,
    duration_days INTEGER NOT NULL,
    price_cents BIGINT NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (type IN ('credit', 'unlimited')),
    CHECK (duration_days > 0),
    CHECK (price_cents >= 0),
    CHECK (type != 'credit' OR credits IS NOT NULL)
);`

const createUserPackagesTable = `
CREATE TABLE IF NOT EXISTS user_packages (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id),
    package_id INTEGER NOT NULL REFERENCES packages(id),
    credits_remaining INTEGER,
    status VARCHAR(30) NOT NULL DEFAULT 'pending_activation',
    start_at TIMESTAMPTZ NOT NULL,
    expire_at TIMESTAMPTZ NOT NULL,
    payment_method VARCHAR(50) NOT NULL,
    payment_status VARCHAR(30) NOT NULL,
    amount_due_cents BIGINT NOT NULL DEFAULT 0,
    amount_paid_cents BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (status IN ('pending_activation', 'active', 'expired')),
    CHECK (payment_status IN ('unpaid', 'pending_verification', 'partial', 'verified', 'rejected')),
    CHECK (credits_remaining IS NULL OR credits_remaining >= 0)
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id),
    user_package_id INTEGER REFERENCES user_packages(id),
    amount_cents BIGINT NOT NULL,
    method VARCHAR(50) NOT NULL,
    log_status VARCHAR(20) NOT NULL DEFAULT 'recorded',
    paid_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    evidence_url TEXT,
    note TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (log_status IN ('recorded', 'verified', 'rejected'))
);`

const createSettingsTable = `
CREATE TABLE IF NOT EXISTS settings (
    key VARCHAR(100) PRIMARY KEY,
    value JSONB NOT NULL,
    version BIGINT NOT NULL DEFAULT 1,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createClassStartsAtIndex = `
CREATE INDEX IF NOT EXISTS class_sessions_starts_at_idx
ON class_sessions (starts_at);`
