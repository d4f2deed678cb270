package service

import (
	"context"

	"shala/internal/models"
	"shala/internal/repository"
)

// The services accept narrow store interfaces rather than concrete
// repositories so the transition logic can be exercised against in-memory
// fakes. The Postgres repositories satisfy them.

type ClassStore interface {
	Create(ctx context.Context, class *models.ClassSession) error
	GetByID(ctx context.Context, id int64) (*models.ClassSession, error)
	List(ctx context.Context, req *models.ListClassesRequest) ([]models.ClassSession, error)
	CancelCascade(ctx context.Context, classID int64) (int, error)
}

type BookingStore interface {
	CreateConfirmed(ctx context.Context, booking *models.Booking) error
	CancelAndRelease(ctx context.Context, booking *models.Booking) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	GetActiveByUserAndClass(ctx context.Context, userID, classID int64) (*models.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Booking, error)
}

type PackageStore interface {
	GetByID(ctx context.Context, id int64) (*models.Package, error)
	ListActive(ctx context.Context) ([]models.Package, error)
}

type UserPackageStore interface {
	Create(ctx context.Context, up *models.UserPackage) error
	GetByID(ctx context.Context, id int64) (*models.UserPackage, error)
	ListByUser(ctx context.Context, userID int64) ([]models.UserPackage, error)
	ConsumeCredit(ctx context.Context, id int64) error
	RefundCredit(ctx context.Context, id int64) error
}

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id int64) (*models.Payment, error)
	Approve(ctx context.Context, paymentID int64) (*models.Payment, *models.UserPackage, error)
	Reject(ctx context.Context, paymentID int64) (*models.Payment, *models.UserPackage, error)
}

type SettingsStore interface {
	Snapshot(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) error
}

// Notifier is the fire-and-forget dispatch bus. Publish errors are logged by
// callers, never returned to members.
type Notifier interface {
	Publish(subject string, data interface{}) error
}

// ClassIndexer maintains the catalog search index.
type ClassIndexer interface {
	IndexClass(ctx context.Context, class *models.ClassSession) error
	SearchClassIDs(ctx context.Context, query string, size int) ([]int64, error)
}

type Services struct {
	Classes  *ClassService
	Bookings *BookingService
	Packages *PackageService
	Payments *PaymentService
	Settings *SettingsService
}

func NewServices(repos *repository.Repositories, notifier Notifier, indexer ClassIndexer) *Services {
	settingsService := NewSettingsService(repos.Settings)
	classService := NewClassService(repos.Classes, notifier, indexer)
	bookingService := NewBookingService(repos.Bookings, repos.Classes, repos.UserPackages, repos.Settings, notifier)
	packageService := NewPackageService(repos.Packages, repos.UserPackages, repos.Payments, repos.Settings, notifier)
	paymentService := NewPaymentService(repos.Payments, notifier)

	return &Services{
		Classes:  classService,
		Bookings: bookingService,
		Packages: packageService,
		Payments: paymentService,
		Settings: settingsService,
	}
}
