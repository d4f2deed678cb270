package repository

import (
	"shala/internal/database"
)

type Repositories struct {
	Users        *UserRepository
	Classes      *ClassRepository
	Bookings     *BookingRepository
	Packages     *PackageRepository
	UserPackages *UserPackageRepository
	Payments     *PaymentRepository
	Settings     *SettingsRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		Classes:      NewClassRepository(db),
		Bookings:     NewBookingRepository(db),
		Packages:     NewPackageRepository(db),
		UserPackages: NewUserPackageRepository(db),
		Payments:     NewPaymentRepository(db),
		Settings:     NewSettingsRepository(db),
	}
}
