package service

import (
	"context"
	"time"

	"shala/internal/apperr"
	"shala/internal/database"
	"shala/internal/logger"
	"shala/internal/metrics"
	"shala/internal/models"
)

// PackageService governs the purchase -> pending -> active lifecycle and the
// credit counter of user packages.
type PackageService struct {
	catalogStore PackageStore
	packageStore UserPackageStore
	paymentStore PaymentStore
	settings     SettingsStore
	notifier     Notifier
	now          func() time.Time
}

func NewPackageService(catalogStore PackageStore, packageStore UserPackageStore, paymentStore PaymentStore, settings SettingsStore, notifier Notifier) *PackageService {
	return &PackageService{
		catalogStore: catalogStore,
		packageStore: packageStore,
		paymentStore: paymentStore,
		settings:     settings,
		notifier:     notifier,
		now:          time.Now,
	}
}

// derivePaymentStatus applies the purchase policy: cash settles in person so
// it starts unpaid; an attached slip is awaiting verification with evidence
// (partial); everything else waits for verification.
func derivePaymentStatus(method string, slipURL *string) models.PaymentStatus {
	switch {
	case method == "cash":
		return models.PaymentUnpaid
	case slipURL != nil && *slipURL != "":
		return models.PaymentPartial
	default:
		return models.PaymentPendingVerification
	}
}

// Purchase creates the pending user package and appends the companion payment
// history row. The history append is best effort: if it fails after the
// package row committed, the purchase stands and the gap is logged.
func (s *PackageService) Purchase(ctx context.Context, userID, packageID int64, req *models.PurchasePackageRequest) (*models.UserPackage, error) {
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.MethodEnabled("packages", req.PaymentMethod) {
		return nil, apperr.Invalid("method_not_allowed", "payment method is not accepted for packages")
	}

	pkg, err := s.catalogStore.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, apperr.NotFound("package_not_found", "package does not exist")
	}
	if !pkg.IsActive {
		return nil, apperr.Invalid("package_inactive", "package is not available for purchase")
	}

	purchasedAt := s.now()

	var creditsRemaining *int
	if pkg.Type == models.PackageTypeCredit && pkg.Credits != nil {
		credits := *pkg.Credits
		creditsRemaining = &credits
	}

	up := &models.UserPackage{
		UserID:           userID,
		PackageID:        pkg.ID,
		CreditsRemaining: creditsRemaining,
		Status:           models.UserPackagePendingActivation,
		StartAt:          purchasedAt,
		ExpireAt:         purchasedAt.AddDate(0, 0, pkg.DurationDays),
		PaymentMethod:    req.PaymentMethod,
		PaymentStatus:    derivePaymentStatus(req.PaymentMethod, req.PaymentSlipURL),
		AmountDueCents:   pkg.PriceCents,
	}

	err = database.WithRetry(ctx, txAttempts, func() error {
		return s.packageStore.Create(ctx, up)
	})
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:        userID,
		UserPackageID: &up.ID,
		AmountCents:   pkg.PriceCents,
		Method:        req.PaymentMethod,
		LogStatus:     models.PaymentLogRecorded,
		PaidAt:        purchasedAt,
		EvidenceURL:   req.PaymentSlipURL,
		Note:          req.PaymentNote,
	}
	if err := s.paymentStore.Create(ctx, payment); err != nil {
		logger.WithContext(ctx).Error("Failed to append payment history for purchase",
			"error", err,
			"user_package_id", up.ID)
	}

	metrics.PackagesPurchased.Inc()

	event := models.PackagePurchasedEvent{
		UserPackageID: up.ID,
		PackageID:     pkg.ID,
		UserID:        userID,
		PaymentStatus: up.PaymentStatus,
		Timestamp:     purchasedAt,
	}
	if err := s.notifier.Publish(models.EventPackagePurchased, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish package purchased event",
			"error", err,
			"user_package_id", up.ID,
			"event_type", models.EventPackagePurchased)
	}

	return up, nil
}

// ConsumeCredit spends one credit from a package. Unlimited packages are a
// no-op; expired or inactive packages are refused before the counter moves.
func (s *PackageService) ConsumeCredit(ctx context.Context, userPackageID int64) error {
	up, err := s.packageStore.GetByID(ctx, userPackageID)
	if err != nil {
		return err
	}
	if up == nil {
		return apperr.NotFound("user_package_not_found", "user package does not exist")
	}
	if up.Status != models.UserPackageActive || up.Expired(s.now()) {
		return apperr.Invalid("package_not_usable", "user package is not active")
	}
	if up.CreditsRemaining == nil {
		return nil
	}
	return database.WithRetry(ctx, txAttempts, func() error {
		return s.packageStore.ConsumeCredit(ctx, up.ID)
	})
}

// RefundCredit returns one credit to the package. There is no ceiling against
// the original allotment; repeated refunds can exceed what was purchased.
func (s *PackageService) RefundCredit(ctx context.Context, userPackageID int64) error {
	up, err := s.packageStore.GetByID(ctx, userPackageID)
	if err != nil {
		return err
	}
	if up == nil {
		return apperr.NotFound("user_package_not_found", "user package does not exist")
	}
	if up.CreditsRemaining == nil {
		return nil
	}
	return database.WithRetry(ctx, txAttempts, func() error {
		return s.packageStore.RefundCredit(ctx, up.ID)
	})
}

// Catalog returns the packages visible to members.
func (s *PackageService) Catalog(ctx context.Context) ([]models.Package, error) {
	return s.catalogStore.ListActive(ctx)
}

// ListForUser returns the user's packages with usability computed at read
// time: a package past expire_at is unusable no matter what status is stored.
func (s *PackageService) ListForUser(ctx context.Context, userID int64) ([]models.UserPackageResponseItem, error) {
	packages, err := s.packageStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	items := make([]models.UserPackageResponseItem, len(packages))
	for i, up := range packages {
		items[i] = models.UserPackageResponseItem{
			UserPackage: up,
			Usable:      up.Usable(at),
			IsExpired:   up.Expired(at),
		}
	}
	return items, nil
}
