package models

import "time"

// CreateBookingRequest - body for POST /api/bookings
type CreateBookingRequest struct {
	ClassID       int64       `json:"class_id" binding:"required"`
	Kind          BookingKind `json:"kind" binding:"required"`
	UserPackageID *int64      `json:"user_package_id,omitempty"`
}

// CreateBookingResponse - response for POST /api/bookings
type CreateBookingResponse struct {
	Booking *Booking `json:"booking"`
}

// CancelBookingResponse - response for POST /api/bookings/:id/cancel
type CancelBookingResponse struct {
	OK bool `json:"ok"`
}

// ListClassesRequest - parsed query of GET /api/classes
type ListClassesRequest struct {
	Start    *time.Time
	End      *time.Time
	Category *ClassCategory
	Query    string
	Page     int
	PageSize int
}

// ListClassesResponseItem - element of the class listing
type ListClassesResponseItem struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Category    ClassCategory `json:"category"`
	StartsAt    time.Time     `json:"starts_at"`
	EndsAt      time.Time     `json:"ends_at"`
	Capacity    int           `json:"capacity"`
	SpotsLeft   int           `json:"spots_left"`
	PriceCents  int64         `json:"price_cents"`
	IsCancelled bool          `json:"is_cancelled"`
}

// ListClassesResponse - list of classes
type ListClassesResponse []ListClassesResponseItem

// CreateClassRequest - body for POST /api/admin/classes
type CreateClassRequest struct {
	Title      string        `json:"title" binding:"required"`
	Category   ClassCategory `json:"category" binding:"required"`
	StartsAt   time.Time     `json:"starts_at" binding:"required"`
	EndsAt     time.Time     `json:"ends_at" binding:"required"`
	Capacity   int           `json:"capacity" binding:"required"`
	PriceCents int64         `json:"price_cents"`
}

// PurchasePackageRequest - body for POST /api/packages/:id/purchase
type PurchasePackageRequest struct {
	PaymentMethod  string  `json:"payment_method" binding:"required"`
	PaymentNote    *string `json:"payment_note,omitempty"`
	PaymentSlipURL *string `json:"payment_slip_url,omitempty"`
}

// PurchasePackageResponse - response for POST /api/packages/:id/purchase
type PurchasePackageResponse struct {
	OK            bool  `json:"ok"`
	UserPackageID int64 `json:"user_package_id"`
}

// UserPackageResponseItem - element of GET /api/me/packages, with the
// derived usability fields computed at read time.
type UserPackageResponseItem struct {
	UserPackage
	Usable    bool `json:"usable"`
	IsExpired bool `json:"is_expired"`
}

// RejectPaymentRequest - body for POST /api/admin/payments/:id/reject
type RejectPaymentRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// RecordPaymentRequest - body for POST /api/admin/payments (manual entry)
type RecordPaymentRequest struct {
	UserID        int64   `json:"user_id" binding:"required"`
	UserPackageID *int64  `json:"user_package_id,omitempty"`
	AmountCents   int64   `json:"amount_cents" binding:"required"`
	Method        string  `json:"method" binding:"required"`
	EvidenceURL   *string `json:"evidence_url,omitempty"`
	Note          *string `json:"note,omitempty"`
}

// UpdateSettingsRequest - body for PATCH /api/admin/settings
type UpdateSettingsRequest struct {
	BookingCutoffMinutes *int                `json:"booking_cutoff_minutes,omitempty"`
	PaymentMethods       map[string][]string `json:"payment_methods,omitempty"`
}

// SlipUploadResponse - response for POST /api/uploads/payment-slip
type SlipUploadResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
}
