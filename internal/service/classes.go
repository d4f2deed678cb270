package service

import (
	"context"
	"time"

	"shala/internal/apperr"
	"shala/internal/logger"
	"shala/internal/models"
)

// ClassService handles the admin schedule and the member-facing listing.
type ClassService struct {
	classStore ClassStore
	notifier   Notifier
	indexer    ClassIndexer
	now        func() time.Time
}

func NewClassService(classStore ClassStore, notifier Notifier, indexer ClassIndexer) *ClassService {
	return &ClassService{
		classStore: classStore,
		notifier:   notifier,
		indexer:    indexer,
		now:        time.Now,
	}
}

func (s *ClassService) Create(ctx context.Context, req *models.CreateClassRequest) (*models.ClassSession, error) {
	if !models.ValidCategory(req.Category) {
		return nil, apperr.Invalid("invalid_category", "unknown class category")
	}
	if req.Capacity <= 0 {
		return nil, apperr.Invalid("invalid_capacity", "capacity must be positive")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperr.Invalid("invalid_schedule", "class must end after it starts")
	}
	if req.PriceCents < 0 {
		return nil, apperr.Invalid("invalid_price", "price cannot be negative")
	}

	class := &models.ClassSession{
		Title:      req.Title,
		Category:   req.Category,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		Capacity:   req.Capacity,
		PriceCents: req.PriceCents,
	}
	if err := s.classStore.Create(ctx, class); err != nil {
		return nil, err
	}

	if s.indexer != nil {
		if err := s.indexer.IndexClass(ctx, class); err != nil {
			logger.WithContext(ctx).Error("Failed to index class",
				"error", err,
				"class_id", class.ID)
		}
	}

	return class, nil
}

func (s *ClassService) GetByID(ctx context.Context, id int64) (*models.ClassSession, error) {
	class, err := s.classStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apperr.NotFound("class_not_found", "class does not exist")
	}
	return class, nil
}

// List serves the schedule. A text query goes through the search index when
// one is configured; the index is advisory, so any search failure falls back
// to the SQL listing.
func (s *ClassService) List(ctx context.Context, req *models.ListClassesRequest) (models.ListClassesResponse, error) {
	if req.Query != "" && s.indexer != nil {
		items, err := s.listBySearch(ctx, req)
		if err == nil {
			return items, nil
		}
		logger.WithContext(ctx).Warn("Class search failed, falling back to SQL listing",
			"error", err,
			"query", req.Query)
	}

	classes, err := s.classStore.List(ctx, req)
	if err != nil {
		return nil, err
	}
	return toListResponse(classes), nil
}

func (s *ClassService) listBySearch(ctx context.Context, req *models.ListClassesRequest) (models.ListClassesResponse, error) {
	size := req.PageSize
	if size <= 0 {
		size = 20
	}
	ids, err := s.indexer.SearchClassIDs(ctx, req.Query, size)
	if err != nil {
		return nil, err
	}

	items := make(models.ListClassesResponse, 0, len(ids))
	for _, id := range ids {
		class, err := s.classStore.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if class == nil || class.IsCancelled {
			continue
		}
		items = append(items, toListItem(class))
	}
	return items, nil
}

// Cancel soft-deletes a session. Every confirmed booking is cancelled and
// credit-funded ones get their credit back, all in the store's transaction.
func (s *ClassService) Cancel(ctx context.Context, classID int64) error {
	bookingsCancelled, err := s.classStore.CancelCascade(ctx, classID)
	if err != nil {
		return err
	}

	if s.indexer != nil {
		if class, err := s.classStore.GetByID(ctx, classID); err == nil && class != nil {
			if err := s.indexer.IndexClass(ctx, class); err != nil {
				logger.WithContext(ctx).Error("Failed to reindex cancelled class",
					"error", err,
					"class_id", classID)
			}
		}
	}

	event := models.ClassCancelledEvent{
		ClassID:           classID,
		BookingsCancelled: bookingsCancelled,
		Timestamp:         s.now(),
	}
	if err := s.notifier.Publish(models.EventClassCancelled, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish class cancelled event",
			"error", err,
			"class_id", classID,
			"event_type", models.EventClassCancelled)
	}

	return nil
}

func toListItem(c *models.ClassSession) models.ListClassesResponseItem {
	return models.ListClassesResponseItem{
		ID:          c.ID,
		Title:       c.Title,
		Category:    c.Category,
		StartsAt:    c.StartsAt,
		EndsAt:      c.EndsAt,
		Capacity:    c.Capacity,
		SpotsLeft:   c.Capacity - c.BookedCount,
		PriceCents:  c.PriceCents,
		IsCancelled: c.IsCancelled,
	}
}

func toListResponse(classes []models.ClassSession) models.ListClassesResponse {
	items := make(models.ListClassesResponse, len(classes))
	for i := range classes {
		items[i] = toListItem(&classes[i])
	}
	return items
}
