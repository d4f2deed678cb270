package service

import (
	"context"

	"shala/internal/apperr"
	"shala/internal/models"
)

// SettingsService exposes the persisted business configuration.
type SettingsService struct {
	store SettingsStore
}

func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	return s.store.Snapshot(ctx)
}

// Update applies a partial settings change on top of the current snapshot.
func (s *SettingsService) Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.Settings, error) {
	settings, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if req.BookingCutoffMinutes != nil {
		if *req.BookingCutoffMinutes < 0 {
			return nil, apperr.Invalid("invalid_cutoff", "booking cutoff cannot be negative")
		}
		settings.BookingCutoffMinutes = *req.BookingCutoffMinutes
	}
	if req.PaymentMethods != nil {
		settings.PaymentMethods = req.PaymentMethods
	}

	if err := s.store.Update(ctx, settings); err != nil {
		return nil, err
	}
	return s.store.Snapshot(ctx)
}
