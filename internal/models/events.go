package models

import "time"

// Subjects for notification dispatch. Consumers subscribe to these to send
// email/WhatsApp notices; publishers never block on delivery.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventClassCancelled   = "class.cancelled"
	EventPackagePurchased = "package.purchased"
	EventPaymentVerified  = "payment.verified"
	EventPaymentRejected  = "payment.rejected"
)

// BookingCreatedEvent is published after a booking commits.
type BookingCreatedEvent struct {
	BookingID int64       `json:"booking_id"`
	ClassID   int64       `json:"class_id"`
	UserID    int64       `json:"user_id"`
	Kind      BookingKind `json:"kind"`
	Timestamp time.Time   `json:"timestamp"`
}

// BookingCancelledEvent is published after a cancellation commits.
type BookingCancelledEvent struct {
	BookingID int64     `json:"booking_id"`
	ClassID   int64     `json:"class_id"`
	UserID    int64     `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// ClassCancelledEvent is published when an admin cancels a whole session.
type ClassCancelledEvent struct {
	ClassID           int64     `json:"class_id"`
	BookingsCancelled int       `json:"bookings_cancelled"`
	Timestamp         time.Time `json:"timestamp"`
}

// PackagePurchasedEvent is published after a purchase commits.
type PackagePurchasedEvent struct {
	UserPackageID int64         `json:"user_package_id"`
	PackageID     int64         `json:"package_id"`
	UserID        int64         `json:"user_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Timestamp     time.Time     `json:"timestamp"`
}

// PaymentVerifiedEvent is published after an approval commits.
type PaymentVerifiedEvent struct {
	PaymentID     int64     `json:"payment_id"`
	UserPackageID *int64    `json:"user_package_id,omitempty"`
	UserID        int64     `json:"user_id"`
	ApproverID    int64     `json:"approver_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// PaymentRejectedEvent is published after a rejection commits.
type PaymentRejectedEvent struct {
	PaymentID     int64     `json:"payment_id"`
	UserPackageID *int64    `json:"user_package_id,omitempty"`
	UserID        int64     `json:"user_id"`
	ApproverID    int64     `json:"approver_id"`
	Reason        string    `json:"reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
