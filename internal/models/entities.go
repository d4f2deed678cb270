package models

import (
	"time"
)

// ClassCategory is the kind of scheduled session.
type ClassCategory string

const (
	CategoryClass           ClassCategory = "class"
	CategoryWorkshop        ClassCategory = "workshop"
	CategoryRetreat         ClassCategory = "retreat"
	CategorySpecialEvent    ClassCategory = "special-event"
	CategoryTeacherTraining ClassCategory = "teacher-training"
)

// ValidCategory reports whether c is one of the known class categories.
func ValidCategory(c ClassCategory) bool {
	switch c {
	case CategoryClass, CategoryWorkshop, CategoryRetreat, CategorySpecialEvent, CategoryTeacherTraining:
		return true
	}
	return false
}

// BookingStatus is the booking lifecycle state. confirmed -> cancelled is the
// only legal transition; cancelled is terminal.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// BookingKind says how the seat was paid for.
type BookingKind string

const (
	BookingKindPaid          BookingKind = "paid"
	BookingKindPackageCredit BookingKind = "package-credit"
)

// PackageType distinguishes credit bundles from unlimited passes.
type PackageType string

const (
	PackageTypeCredit    PackageType = "credit"
	PackageTypeUnlimited PackageType = "unlimited"
)

// UserPackageStatus is the stored lifecycle state of a purchased package.
// Expiry is computed from expire_at on read, not stored as a transition.
type UserPackageStatus string

const (
	UserPackagePendingActivation UserPackageStatus = "pending_activation"
	UserPackageActive            UserPackageStatus = "active"
	UserPackageExpired           UserPackageStatus = "expired"
)

// PaymentStatus tracks verification of the money owed for a user package.
// pending_verification | partial | unpaid -> verified | rejected, both terminal.
type PaymentStatus string

const (
	PaymentUnpaid              PaymentStatus = "unpaid"
	PaymentPendingVerification PaymentStatus = "pending_verification"
	PaymentPartial             PaymentStatus = "partial"
	PaymentVerified            PaymentStatus = "verified"
	PaymentRejected            PaymentStatus = "rejected"
)

// Terminal reports whether no further payment-status transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentVerified || s == PaymentRejected
}

// PaymentLogStatus is the state of an append-only payment history row.
type PaymentLogStatus string

const (
	PaymentLogRecorded PaymentLogStatus = "recorded"
	PaymentLogVerified PaymentLogStatus = "verified"
	PaymentLogRejected PaymentLogStatus = "rejected"
)

// User represents an account in the system.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

// ClassSession is a scheduled class with a fixed seat capacity.
// booked_count is mutated only through the booking service and always
// satisfies 0 <= booked_count <= capacity.
type ClassSession struct {
	ID          int64         `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Category    ClassCategory `json:"category" db:"category"`
	StartsAt    time.Time     `json:"starts_at" db:"starts_at"`
	EndsAt      time.Time     `json:"ends_at" db:"ends_at"`
	Capacity    int           `json:"capacity" db:"capacity"`
	BookedCount int           `json:"booked_count" db:"booked_count"`
	IsCancelled bool          `json:"is_cancelled" db:"is_cancelled"`
	PriceCents  int64         `json:"price_cents" db:"price_cents"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// Full reports whether every seat is taken.
func (c *ClassSession) Full() bool {
	return c.BookedCount >= c.Capacity
}

// Booking is a seat held by a user in a class session. Rows are never
// deleted; cancellation is a status flip.
type Booking struct {
	ID            int64         `json:"id" db:"id"`
	UserID        int64         `json:"user_id" db:"user_id"`
	ClassID       int64         `json:"class_id" db:"class_id"`
	Status        BookingStatus `json:"status" db:"status"`
	Kind          BookingKind   `json:"kind" db:"kind"`
	UserPackageID *int64        `json:"user_package_id,omitempty" db:"user_package_id"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// Package is admin-owned catalog data describing a purchasable bundle.
type Package struct {
	ID           int64       `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Type         PackageType `json:"type" db:"type"`
	Credits      *int        `json:"credits" db:"credits"` // nil for unlimited
	DurationDays int         `json:"duration_days" db:"duration_days"`
	PriceCents   int64       `json:"price_cents" db:"price_cents"`
	IsActive     bool        `json:"is_active" db:"is_active"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// UserPackage is a purchased package instance owned by one user.
type UserPackage struct {
	ID               int64             `json:"id" db:"id"`
	UserID           int64             `json:"user_id" db:"user_id"`
	PackageID        int64             `json:"package_id" db:"package_id"`
	CreditsRemaining *int              `json:"credits_remaining" db:"credits_remaining"`
	Status           UserPackageStatus `json:"status" db:"status"`
	StartAt          time.Time         `json:"start_at" db:"start_at"`
	ExpireAt         time.Time         `json:"expire_at" db:"expire_at"`
	PaymentMethod    string            `json:"payment_method" db:"payment_method"`
	PaymentStatus    PaymentStatus     `json:"payment_status" db:"payment_status"`
	AmountDueCents   int64             `json:"amount_due_cents" db:"amount_due_cents"`
	AmountPaidCents  int64             `json:"amount_paid_cents" db:"amount_paid_cents"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
}

// Expired reports whether the package is past its expiry instant. This is
// the derived state: stored status is not consulted.
func (p *UserPackage) Expired(now time.Time) bool {
	return now.After(p.ExpireAt)
}

// Usable reports whether the package can fund a booking at the given time.
func (p *UserPackage) Usable(now time.Time) bool {
	if p.Status != UserPackageActive || p.Expired(now) {
		return false
	}
	if p.CreditsRemaining != nil && *p.CreditsRemaining <= 0 {
		return false
	}
	return true
}

// Payment is an append-only history row. Only log_status is ever mutated.
type Payment struct {
	ID            int64            `json:"id" db:"id"`
	UserID        int64            `json:"user_id" db:"user_id"`
	UserPackageID *int64           `json:"user_package_id,omitempty" db:"user_package_id"`
	AmountCents   int64            `json:"amount_cents" db:"amount_cents"`
	Method        string           `json:"method" db:"method"`
	LogStatus     PaymentLogStatus `json:"log_status" db:"log_status"`
	PaidAt        time.Time        `json:"paid_at" db:"paid_at"`
	EvidenceURL   *string          `json:"evidence_url,omitempty" db:"evidence_url"`
	Note          *string          `json:"note,omitempty" db:"note"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// Settings is the persisted business configuration, loaded as an immutable
// snapshot per request so call paths see one consistent version.
type Settings struct {
	BookingCutoffMinutes int                 `json:"booking_cutoff_minutes"`
	PaymentMethods       map[string][]string `json:"payment_methods"`
	Version              int64               `json:"version"`
}

// MethodEnabled reports whether a payment method is accepted for a product type.
func (s *Settings) MethodEnabled(productType, method string) bool {
	methods, ok := s.PaymentMethods[productType]
	if !ok {
		return false
	}
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

// DefaultSettings returns the configuration used when no row has been stored.
func DefaultSettings() *Settings {
	return &Settings{
		BookingCutoffMinutes: 180,
		PaymentMethods: map[string][]string{
			"class_booking":    {"cash", "bank_transfer"},
			"workshop":         {"cash", "bank_transfer"},
			"teacher_training": {"bank_transfer"},
			"packages":         {"cash", "bank_transfer"},
		},
	}
}
