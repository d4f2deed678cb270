package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserPackageExpiryBoundary(t *testing.T) {
	expireAt := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
	up := &UserPackage{Status: UserPackageActive, ExpireAt: expireAt}

	// The expiry instant itself is still usable; one nanosecond later is not.
	assert.False(t, up.Expired(expireAt))
	assert.True(t, up.Expired(expireAt.Add(time.Nanosecond)))
	assert.True(t, up.Usable(expireAt))
	assert.False(t, up.Usable(expireAt.Add(time.Second)))
}

func TestUserPackageUsable(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)

	credits := 3
	assert.True(t, (&UserPackage{Status: UserPackageActive, ExpireAt: future, CreditsRemaining: &credits}).Usable(now))

	drained := 0
	assert.False(t, (&UserPackage{Status: UserPackageActive, ExpireAt: future, CreditsRemaining: &drained}).Usable(now))

	// Unlimited passes have no counter to drain.
	assert.True(t, (&UserPackage{Status: UserPackageActive, ExpireAt: future}).Usable(now))

	assert.False(t, (&UserPackage{Status: UserPackagePendingActivation, ExpireAt: future, CreditsRemaining: &credits}).Usable(now))
}

func TestPaymentStatusTerminal(t *testing.T) {
	assert.True(t, PaymentVerified.Terminal())
	assert.True(t, PaymentRejected.Terminal())
	assert.False(t, PaymentUnpaid.Terminal())
	assert.False(t, PaymentPendingVerification.Terminal())
	assert.False(t, PaymentPartial.Terminal())
}

func TestClassSessionFull(t *testing.T) {
	assert.False(t, (&ClassSession{Capacity: 10, BookedCount: 9}).Full())
	assert.True(t, (&ClassSession{Capacity: 10, BookedCount: 10}).Full())
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory(CategoryWorkshop))
	assert.False(t, ValidCategory("spin"))
}
