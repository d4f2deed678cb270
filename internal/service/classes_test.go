package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shala/internal/apperr"
	"shala/internal/models"
)

type fakeIndexer struct {
	indexed []int64
	ids     []int64
	fail    bool
}

func (f *fakeIndexer) IndexClass(_ context.Context, class *models.ClassSession) error {
	if f.fail {
		return errors.New("index unavailable")
	}
	f.indexed = append(f.indexed, class.ID)
	return nil
}

func (f *fakeIndexer) SearchClassIDs(_ context.Context, _ string, _ int) ([]int64, error) {
	if f.fail {
		return nil, errors.New("search unavailable")
	}
	return f.ids, nil
}

func newClassFixture(t *testing.T, indexer ClassIndexer) (*ClassService, *memState, *fakeNotifier) {
	t.Helper()
	st := newMemState()
	notifier := &fakeNotifier{}
	svc := NewClassService(&fakeClassStore{st: st}, notifier, indexer)
	return svc, st, notifier
}

func TestCreateClass(t *testing.T) {
	indexer := &fakeIndexer{}
	svc, st, _ := newClassFixture(t, indexer)

	starts := time.Now().Add(48 * time.Hour)
	class, err := svc.Create(context.Background(), &models.CreateClassRequest{
		Title:      "Yin Deep Stretch",
		Category:   models.CategoryWorkshop,
		StartsAt:   starts,
		EndsAt:     starts.Add(2 * time.Hour),
		Capacity:   15,
		PriceCents: 80000,
	})
	require.NoError(t, err)
	assert.NotZero(t, class.ID)
	assert.Contains(t, st.classes, class.ID)
	assert.Equal(t, []int64{class.ID}, indexer.indexed)
}

func TestCreateClassValidation(t *testing.T) {
	svc, _, _ := newClassFixture(t, nil)
	starts := time.Now().Add(48 * time.Hour)

	_, err := svc.Create(context.Background(), &models.CreateClassRequest{
		Title: "Bad", Category: "spin", StartsAt: starts, EndsAt: starts.Add(time.Hour), Capacity: 10,
	})
	assert.Equal(t, "invalid_category", apperr.CodeOf(err))

	_, err = svc.Create(context.Background(), &models.CreateClassRequest{
		Title: "Bad", Category: models.CategoryClass, StartsAt: starts, EndsAt: starts.Add(time.Hour), Capacity: 0,
	})
	assert.Equal(t, "invalid_capacity", apperr.CodeOf(err))

	_, err = svc.Create(context.Background(), &models.CreateClassRequest{
		Title: "Bad", Category: models.CategoryClass, StartsAt: starts, EndsAt: starts, Capacity: 10,
	})
	assert.Equal(t, "invalid_schedule", apperr.CodeOf(err))

	_, err = svc.Create(context.Background(), &models.CreateClassRequest{
		Title: "Bad", Category: models.CategoryClass, StartsAt: starts, EndsAt: starts.Add(time.Hour), Capacity: 10, PriceCents: -1,
	})
	assert.Equal(t, "invalid_price", apperr.CodeOf(err))
}

func TestCreateClassSurvivesIndexFailure(t *testing.T) {
	svc, st, _ := newClassFixture(t, &fakeIndexer{fail: true})
	starts := time.Now().Add(48 * time.Hour)

	class, err := svc.Create(context.Background(), &models.CreateClassRequest{
		Title: "Hatha Basics", Category: models.CategoryClass,
		StartsAt: starts, EndsAt: starts.Add(time.Hour), Capacity: 12,
	})
	require.NoError(t, err)
	assert.Contains(t, st.classes, class.ID)
}

func TestListFallsBackWhenSearchFails(t *testing.T) {
	svc, st, _ := newClassFixture(t, &fakeIndexer{fail: true})
	addClass(st, 10, time.Now().Add(24*time.Hour))

	items, err := svc.List(context.Background(), &models.ListClassesRequest{
		Query: "vinyasa", Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestListBySearchSkipsCancelled(t *testing.T) {
	svc, st, _ := newClassFixture(t, nil)
	live := addClass(st, 10, time.Now().Add(24*time.Hour))
	gone := addClass(st, 10, time.Now().Add(24*time.Hour))
	st.classes[gone.ID].IsCancelled = true

	svc.indexer = &fakeIndexer{ids: []int64{live.ID, gone.ID}}

	items, err := svc.List(context.Background(), &models.ListClassesRequest{
		Query: "vinyasa", Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, live.ID, items[0].ID)
}

func TestCancelClassCascades(t *testing.T) {
	svc, st, notifier := newClassFixture(t, nil)
	class := addClass(st, 10, time.Now().Add(24*time.Hour))
	up := addUserPackage(st, 1, intPtr(4), models.UserPackageActive, time.Now().Add(30*24*time.Hour))

	// One credit booking and one paid booking, both confirmed.
	st.mu.Lock()
	st.nextBookingID++
	st.bookings[st.nextBookingID] = &models.Booking{
		ID: st.nextBookingID, UserID: 1, ClassID: class.ID,
		Status: models.BookingConfirmed, Kind: models.BookingKindPackageCredit,
		UserPackageID: &up.ID,
	}
	st.nextBookingID++
	st.bookings[st.nextBookingID] = &models.Booking{
		ID: st.nextBookingID, UserID: 2, ClassID: class.ID,
		Status: models.BookingConfirmed, Kind: models.BookingKindPaid,
	}
	st.classes[class.ID].BookedCount = 2
	st.mu.Unlock()

	require.NoError(t, svc.Cancel(context.Background(), class.ID))

	assert.True(t, st.classes[class.ID].IsCancelled)
	assert.Equal(t, 0, st.classes[class.ID].BookedCount)
	for _, b := range st.bookings {
		assert.Equal(t, models.BookingCancelled, b.Status)
	}
	assert.Equal(t, 5, *st.userPackages[up.ID].CreditsRemaining)
	assert.Contains(t, notifier.subjects(), models.EventClassCancelled)
}

func TestSpotsLeftComputed(t *testing.T) {
	item := toListItem(&models.ClassSession{Capacity: 12, BookedCount: 9})
	assert.Equal(t, 3, item.SpotsLeft)
}
