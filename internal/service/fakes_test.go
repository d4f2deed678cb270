package service

import (
	"context"
	"sync"
	"time"

	"shala/internal/apperr"
	"shala/internal/models"
)

// memState backs the in-memory store fakes. One mutex guards everything so
// the booking fake serializes capacity checks the way the row lock does.
type memState struct {
	mu sync.Mutex

	classes      map[int64]*models.ClassSession
	bookings     map[int64]*models.Booking
	userPackages map[int64]*models.UserPackage
	payments     map[int64]*models.Payment
	settings     *models.Settings

	nextClassID       int64
	nextBookingID     int64
	nextUserPackageID int64
	nextPaymentID     int64
}

func newMemState() *memState {
	return &memState{
		classes:      make(map[int64]*models.ClassSession),
		bookings:     make(map[int64]*models.Booking),
		userPackages: make(map[int64]*models.UserPackage),
		payments:     make(map[int64]*models.Payment),
		settings:     models.DefaultSettings(),
	}
}

type fakeClassStore struct{ st *memState }

func (f *fakeClassStore) Create(_ context.Context, class *models.ClassSession) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	f.st.nextClassID++
	class.ID = f.st.nextClassID
	copied := *class
	f.st.classes[class.ID] = &copied
	return nil
}

func (f *fakeClassStore) GetByID(_ context.Context, id int64) (*models.ClassSession, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	class, ok := f.st.classes[id]
	if !ok {
		return nil, nil
	}
	copied := *class
	return &copied, nil
}

func (f *fakeClassStore) List(_ context.Context, req *models.ListClassesRequest) ([]models.ClassSession, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var out []models.ClassSession
	for _, class := range f.st.classes {
		if class.IsCancelled {
			continue
		}
		if req.Category != nil && class.Category != *req.Category {
			continue
		}
		out = append(out, *class)
	}
	return out, nil
}

func (f *fakeClassStore) CancelCascade(_ context.Context, classID int64) (int, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	class, ok := f.st.classes[classID]
	if !ok {
		return 0, apperr.NotFound("class_not_found", "class does not exist")
	}
	cancelled := 0
	for _, b := range f.st.bookings {
		if b.ClassID != classID || b.Status != models.BookingConfirmed {
			continue
		}
		b.Status = models.BookingCancelled
		if b.Kind == models.BookingKindPackageCredit && b.UserPackageID != nil {
			if up, ok := f.st.userPackages[*b.UserPackageID]; ok && up.CreditsRemaining != nil {
				*up.CreditsRemaining++
			}
		}
		cancelled++
	}
	class.IsCancelled = true
	class.BookedCount = 0
	return cancelled, nil
}

type fakeBookingStore struct{ st *memState }

func (f *fakeBookingStore) CreateConfirmed(_ context.Context, booking *models.Booking) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()

	class, ok := f.st.classes[booking.ClassID]
	if !ok || class.IsCancelled {
		return apperr.NotFound("class_not_found", "class does not exist")
	}
	if class.BookedCount >= class.Capacity {
		return apperr.Conflict("class_full", "class is fully booked")
	}
	for _, b := range f.st.bookings {
		if b.UserID == booking.UserID && b.ClassID == booking.ClassID && b.Status == models.BookingConfirmed {
			return apperr.Conflict("already_booked", "an active booking already exists for this class")
		}
	}

	f.st.nextBookingID++
	booking.ID = f.st.nextBookingID
	booking.Status = models.BookingConfirmed
	booking.CreatedAt = time.Now()
	copied := *booking
	f.st.bookings[booking.ID] = &copied
	class.BookedCount++
	return nil
}

func (f *fakeBookingStore) CancelAndRelease(_ context.Context, booking *models.Booking) (bool, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()

	stored, ok := f.st.bookings[booking.ID]
	if !ok || stored.Status != models.BookingConfirmed {
		return false, nil
	}
	stored.Status = models.BookingCancelled
	if class, ok := f.st.classes[stored.ClassID]; ok && class.BookedCount > 0 {
		class.BookedCount--
	}
	if stored.Kind == models.BookingKindPackageCredit && stored.UserPackageID != nil {
		if up, ok := f.st.userPackages[*stored.UserPackageID]; ok && up.CreditsRemaining != nil {
			*up.CreditsRemaining++
		}
	}
	return true, nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	booking, ok := f.st.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingStore) GetActiveByUserAndClass(_ context.Context, userID, classID int64) (*models.Booking, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, b := range f.st.bookings {
		if b.UserID == userID && b.ClassID == classID && b.Status == models.BookingConfirmed {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingStore) ListByUser(_ context.Context, userID int64) ([]models.Booking, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var out []models.Booking
	for _, b := range f.st.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakePackageCatalog struct {
	mu       sync.Mutex
	nextID   int64
	packages map[int64]*models.Package
}

func newFakePackageCatalog() *fakePackageCatalog {
	return &fakePackageCatalog{packages: make(map[int64]*models.Package)}
}

func (f *fakePackageCatalog) add(pkg *models.Package) *models.Package {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	pkg.ID = f.nextID
	copied := *pkg
	f.packages[pkg.ID] = &copied
	return pkg
}

func (f *fakePackageCatalog) GetByID(_ context.Context, id int64) (*models.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pkg, ok := f.packages[id]
	if !ok {
		return nil, nil
	}
	copied := *pkg
	return &copied, nil
}

func (f *fakePackageCatalog) ListActive(_ context.Context) ([]models.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Package
	for _, pkg := range f.packages {
		if pkg.IsActive {
			out = append(out, *pkg)
		}
	}
	return out, nil
}

type fakeUserPackageStore struct{ st *memState }

func (f *fakeUserPackageStore) Create(_ context.Context, up *models.UserPackage) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	f.st.nextUserPackageID++
	up.ID = f.st.nextUserPackageID
	copied := *up
	if up.CreditsRemaining != nil {
		credits := *up.CreditsRemaining
		copied.CreditsRemaining = &credits
	}
	f.st.userPackages[up.ID] = &copied
	return nil
}

func (f *fakeUserPackageStore) GetByID(_ context.Context, id int64) (*models.UserPackage, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	up, ok := f.st.userPackages[id]
	if !ok {
		return nil, nil
	}
	copied := *up
	if up.CreditsRemaining != nil {
		credits := *up.CreditsRemaining
		copied.CreditsRemaining = &credits
	}
	return &copied, nil
}

func (f *fakeUserPackageStore) ListByUser(_ context.Context, userID int64) ([]models.UserPackage, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var out []models.UserPackage
	for _, up := range f.st.userPackages {
		if up.UserID == userID {
			copied := *up
			if up.CreditsRemaining != nil {
				credits := *up.CreditsRemaining
				copied.CreditsRemaining = &credits
			}
			out = append(out, copied)
		}
	}
	return out, nil
}

func (f *fakeUserPackageStore) ConsumeCredit(_ context.Context, id int64) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	up, ok := f.st.userPackages[id]
	if !ok || up.CreditsRemaining == nil || *up.CreditsRemaining <= 0 {
		return apperr.Conflict("no_credits_remaining", "no credits left on this package")
	}
	*up.CreditsRemaining--
	return nil
}

func (f *fakeUserPackageStore) RefundCredit(_ context.Context, id int64) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	up, ok := f.st.userPackages[id]
	if !ok || up.CreditsRemaining == nil {
		return nil
	}
	*up.CreditsRemaining++
	return nil
}

type fakePaymentStore struct{ st *memState }

func (f *fakePaymentStore) Create(_ context.Context, payment *models.Payment) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	f.st.nextPaymentID++
	payment.ID = f.st.nextPaymentID
	copied := *payment
	f.st.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentStore) GetByID(_ context.Context, id int64) (*models.Payment, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	payment, ok := f.st.payments[id]
	if !ok {
		return nil, nil
	}
	copied := *payment
	return &copied, nil
}

func (f *fakePaymentStore) Approve(_ context.Context, paymentID int64) (*models.Payment, *models.UserPackage, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	payment, ok := f.st.payments[paymentID]
	if !ok {
		return nil, nil, apperr.NotFound("payment_not_found", "payment does not exist")
	}
	var up *models.UserPackage
	if payment.UserPackageID != nil {
		up = f.st.userPackages[*payment.UserPackageID]
	}
	if up != nil {
		if up.PaymentStatus == models.PaymentRejected {
			return nil, nil, apperr.Conflict("payment_rejected", "payment was already rejected")
		}
		if up.PaymentStatus != models.PaymentVerified {
			up.PaymentStatus = models.PaymentVerified
			up.AmountPaidCents = up.AmountDueCents
			if up.Status == models.UserPackagePendingActivation {
				up.Status = models.UserPackageActive
			}
		}
	}
	payment.LogStatus = models.PaymentLogVerified
	paymentCopy := *payment
	var upCopy *models.UserPackage
	if up != nil {
		c := *up
		upCopy = &c
	}
	return &paymentCopy, upCopy, nil
}

func (f *fakePaymentStore) Reject(_ context.Context, paymentID int64) (*models.Payment, *models.UserPackage, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	payment, ok := f.st.payments[paymentID]
	if !ok {
		return nil, nil, apperr.NotFound("payment_not_found", "payment does not exist")
	}
	var up *models.UserPackage
	if payment.UserPackageID != nil {
		up = f.st.userPackages[*payment.UserPackageID]
	}
	if up != nil {
		if up.PaymentStatus == models.PaymentVerified {
			return nil, nil, apperr.Conflict("payment_verified", "payment was already verified")
		}
		up.PaymentStatus = models.PaymentRejected
	}
	payment.LogStatus = models.PaymentLogRejected
	paymentCopy := *payment
	var upCopy *models.UserPackage
	if up != nil {
		c := *up
		upCopy = &c
	}
	return &paymentCopy, upCopy, nil
}

type fakeSettingsStore struct{ st *memState }

func (f *fakeSettingsStore) Snapshot(_ context.Context) (*models.Settings, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	copied := *f.st.settings
	return &copied, nil
}

func (f *fakeSettingsStore) Update(_ context.Context, settings *models.Settings) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	copied := *settings
	copied.Version = f.st.settings.Version + 1
	f.st.settings = &copied
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	published []string
}

func (f *fakeNotifier) Publish(subject string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, subject)
	return nil
}

func (f *fakeNotifier) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.published))
	copy(out, f.published)
	return out
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }
