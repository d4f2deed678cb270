package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shala/internal/apperr"
	"shala/internal/models"
)

func newPackageFixture(t *testing.T) (*PackageService, *memState, *fakePackageCatalog, *fakeNotifier) {
	t.Helper()
	st := newMemState()
	catalog := newFakePackageCatalog()
	notifier := &fakeNotifier{}
	svc := NewPackageService(
		catalog,
		&fakeUserPackageStore{st: st},
		&fakePaymentStore{st: st},
		&fakeSettingsStore{st: st},
		notifier,
	)
	return svc, st, catalog, notifier
}

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, models.PaymentUnpaid, derivePaymentStatus("cash", nil))
	assert.Equal(t, models.PaymentUnpaid, derivePaymentStatus("cash", strPtr("https://cdn/slip.jpg")))
	assert.Equal(t, models.PaymentPartial, derivePaymentStatus("bank_transfer", strPtr("https://cdn/slip.jpg")))
	assert.Equal(t, models.PaymentPendingVerification, derivePaymentStatus("bank_transfer", nil))
	assert.Equal(t, models.PaymentPendingVerification, derivePaymentStatus("bank_transfer", strPtr("")))
}

func TestPurchaseCreditPackage(t *testing.T) {
	svc, st, catalog, notifier := newPackageFixture(t)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }

	pkg := catalog.add(&models.Package{
		Name:         "10 Class Pack",
		Type:         models.PackageTypeCredit,
		Credits:      intPtr(10),
		DurationDays: 30,
		PriceCents:   250000,
		IsActive:     true,
	})

	up, err := svc.Purchase(context.Background(), 7, pkg.ID, &models.PurchasePackageRequest{
		PaymentMethod: "bank_transfer",
	})
	require.NoError(t, err)

	assert.Equal(t, models.UserPackagePendingActivation, up.Status)
	assert.Equal(t, models.PaymentPendingVerification, up.PaymentStatus)
	assert.Equal(t, 10, *up.CreditsRemaining)
	assert.Equal(t, int64(250000), up.AmountDueCents)
	assert.Equal(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), up.ExpireAt)

	// A history row was appended alongside the package.
	require.Len(t, st.payments, 1)
	for _, payment := range st.payments {
		assert.Equal(t, models.PaymentLogRecorded, payment.LogStatus)
		assert.Equal(t, up.ID, *payment.UserPackageID)
	}
	assert.Contains(t, notifier.subjects(), models.EventPackagePurchased)
}

func TestPurchaseUnlimitedPackageHasNoCredits(t *testing.T) {
	svc, _, catalog, _ := newPackageFixture(t)
	pkg := catalog.add(&models.Package{
		Name:         "Monthly Unlimited",
		Type:         models.PackageTypeUnlimited,
		DurationDays: 30,
		PriceCents:   400000,
		IsActive:     true,
	})

	up, err := svc.Purchase(context.Background(), 7, pkg.ID, &models.PurchasePackageRequest{
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.Nil(t, up.CreditsRemaining)
	assert.Equal(t, models.PaymentUnpaid, up.PaymentStatus)
}

func TestPurchaseSlipMarksPartial(t *testing.T) {
	svc, _, catalog, _ := newPackageFixture(t)
	pkg := catalog.add(&models.Package{
		Name:         "5 Class Pack",
		Type:         models.PackageTypeCredit,
		Credits:      intPtr(5),
		DurationDays: 60,
		PriceCents:   150000,
		IsActive:     true,
	})

	up, err := svc.Purchase(context.Background(), 7, pkg.ID, &models.PurchasePackageRequest{
		PaymentMethod:  "bank_transfer",
		PaymentSlipURL: strPtr("https://cdn/slip.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, up.PaymentStatus)
}

func TestPurchaseMethodNotAllowed(t *testing.T) {
	svc, _, catalog, _ := newPackageFixture(t)
	pkg := catalog.add(&models.Package{
		Name: "10 Class Pack", Type: models.PackageTypeCredit,
		Credits: intPtr(10), DurationDays: 30, PriceCents: 250000, IsActive: true,
	})

	_, err := svc.Purchase(context.Background(), 7, pkg.ID, &models.PurchasePackageRequest{
		PaymentMethod: "crypto",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	assert.Equal(t, "method_not_allowed", apperr.CodeOf(err))
}

func TestPurchaseInactivePackage(t *testing.T) {
	svc, _, catalog, _ := newPackageFixture(t)
	pkg := catalog.add(&models.Package{
		Name: "Retired Pack", Type: models.PackageTypeCredit,
		Credits: intPtr(10), DurationDays: 30, PriceCents: 250000, IsActive: false,
	})

	_, err := svc.Purchase(context.Background(), 7, pkg.ID, &models.PurchasePackageRequest{
		PaymentMethod: "cash",
	})
	assert.Equal(t, "package_inactive", apperr.CodeOf(err))
}

func TestPurchaseUnknownPackage(t *testing.T) {
	svc, _, _, _ := newPackageFixture(t)

	_, err := svc.Purchase(context.Background(), 7, 404, &models.PurchasePackageRequest{
		PaymentMethod: "cash",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestConsumeCreditDecrements(t *testing.T) {
	svc, st, _, _ := newPackageFixture(t)
	up := addUserPackage(st, 7, intPtr(2), models.UserPackageActive, time.Now().Add(30*24*time.Hour))

	require.NoError(t, svc.ConsumeCredit(context.Background(), up.ID))
	require.NoError(t, svc.ConsumeCredit(context.Background(), up.ID))
	assert.Equal(t, 0, *st.userPackages[up.ID].CreditsRemaining)

	err := svc.ConsumeCredit(context.Background(), up.ID)
	assert.Equal(t, "no_credits_remaining", apperr.CodeOf(err))
	assert.Equal(t, 0, *st.userPackages[up.ID].CreditsRemaining)
}

func TestConsumeCreditUnlimitedNoOp(t *testing.T) {
	svc, st, _, _ := newPackageFixture(t)
	up := addUserPackage(st, 7, nil, models.UserPackageActive, time.Now().Add(30*24*time.Hour))

	assert.NoError(t, svc.ConsumeCredit(context.Background(), up.ID))
	assert.Nil(t, st.userPackages[up.ID].CreditsRemaining)
}

func TestConsumeCreditPendingPackageRefused(t *testing.T) {
	svc, st, _, _ := newPackageFixture(t)
	up := addUserPackage(st, 7, intPtr(5), models.UserPackagePendingActivation, time.Now().Add(30*24*time.Hour))

	err := svc.ConsumeCredit(context.Background(), up.ID)
	assert.Equal(t, "package_not_usable", apperr.CodeOf(err))
}

func TestConsumeCreditExpiredPackageRefused(t *testing.T) {
	svc, st, _, _ := newPackageFixture(t)
	up := addUserPackage(st, 7, intPtr(5), models.UserPackageActive, time.Now().Add(-time.Minute))

	err := svc.ConsumeCredit(context.Background(), up.ID)
	assert.Equal(t, "package_not_usable", apperr.CodeOf(err))
	assert.Equal(t, 5, *st.userPackages[up.ID].CreditsRemaining)
}

func TestRefundCreditRestores(t *testing.T) {
	svc, st, _, _ := newPackageFixture(t)
	up := addUserPackage(st, 7, intPtr(4), models.UserPackageActive, time.Now().Add(30*24*time.Hour))

	require.NoError(t, svc.RefundCredit(context.Background(), up.ID))
	assert.Equal(t, 5, *st.userPackages[up.ID].CreditsRemaining)
}

func TestListForUserComputesUsability(t *testing.T) {
	svc, st, _, _ := newPackageFixture(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	active := addUserPackage(st, 7, intPtr(3), models.UserPackageActive, now.Add(24*time.Hour))
	lapsed := addUserPackage(st, 7, intPtr(3), models.UserPackageActive, now.Add(-24*time.Hour))
	drained := addUserPackage(st, 7, intPtr(0), models.UserPackageActive, now.Add(24*time.Hour))
	addUserPackage(st, 8, intPtr(3), models.UserPackageActive, now.Add(24*time.Hour))

	items, err := svc.ListForUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, items, 3)

	byID := make(map[int64]models.UserPackageResponseItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	assert.True(t, byID[active.ID].Usable)
	assert.False(t, byID[active.ID].IsExpired)

	// Stored status still says active; expiry is derived from the timestamp.
	assert.False(t, byID[lapsed.ID].Usable)
	assert.True(t, byID[lapsed.ID].IsExpired)

	assert.False(t, byID[drained.ID].Usable)
	assert.False(t, byID[drained.ID].IsExpired)
}
