package consumers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/nats-io/stan.go"

	"shala/internal/external"
	"shala/internal/models"
	"shala/internal/repository"
)

// Handlers turn dispatch events into member notices. A failed delivery is
// logged and the message is acked anyway; the gateway owns retries for
// transient channel failures.
type Handlers struct {
	repos        *repository.Repositories
	notifyClient *external.NotifyClient
}

func NewHandlers(repos *repository.Repositories, notifyClient *external.NotifyClient) *Handlers {
	return &Handlers{
		repos:        repos,
		notifyClient: notifyClient,
	}
}

func (h *Handlers) HandleBookingCreated(m *stan.Msg) {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking created event", "error", err)
		return
	}

	slog.Info("Processing booking created event", "booking_id", event.BookingID, "user_id", event.UserID)

	ctx := context.Background()
	params := map[string]string{
		"booking_id": strconv.FormatInt(event.BookingID, 10),
	}
	if class, err := h.repos.Classes.GetByID(ctx, event.ClassID); err == nil && class != nil {
		params["class_title"] = class.Title
		params["starts_at"] = class.StartsAt.Format("2006-01-02 15:04")
	}

	h.send(ctx, event.UserID, "booking_confirmed", params)

	m.Ack()
}

func (h *Handlers) HandleBookingCancelled(m *stan.Msg) {
	var event models.BookingCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking cancelled event", "error", err)
		return
	}

	slog.Info("Processing booking cancelled event", "booking_id", event.BookingID, "user_id", event.UserID)

	h.send(context.Background(), event.UserID, "booking_cancelled", map[string]string{
		"booking_id": strconv.FormatInt(event.BookingID, 10),
		"reason":     event.Reason,
	})

	m.Ack()
}

// HandleClassCancelled fans a session cancellation out to every member who
// held a confirmed booking on it. The bookings were already cancelled and
// refunded by the time this event was published.
func (h *Handlers) HandleClassCancelled(m *stan.Msg) {
	var event models.ClassCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal class cancelled event", "error", err)
		return
	}

	slog.Info("Processing class cancelled event",
		"class_id", event.ClassID,
		"bookings_cancelled", event.BookingsCancelled)

	ctx := context.Background()
	class, err := h.repos.Classes.GetByID(ctx, event.ClassID)
	if err != nil || class == nil {
		slog.Error("Failed to load cancelled class", "class_id", event.ClassID, "error", err)
		m.Ack()
		return
	}

	userIDs, err := h.repos.Bookings.ListUserIDsByClass(ctx, event.ClassID)
	if err != nil {
		slog.Error("Failed to list affected members", "class_id", event.ClassID, "error", err)
		m.Ack()
		return
	}

	for _, userID := range userIDs {
		h.send(ctx, userID, "class_cancelled", map[string]string{
			"class_title": class.Title,
			"starts_at":   class.StartsAt.Format("2006-01-02 15:04"),
		})
	}

	m.Ack()
}

func (h *Handlers) HandlePackagePurchased(m *stan.Msg) {
	var event models.PackagePurchasedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal package purchased event", "error", err)
		return
	}

	slog.Info("Processing package purchased event",
		"user_package_id", event.UserPackageID,
		"user_id", event.UserID)

	h.send(context.Background(), event.UserID, "package_purchased", map[string]string{
		"user_package_id": strconv.FormatInt(event.UserPackageID, 10),
		"payment_status":  string(event.PaymentStatus),
	})

	m.Ack()
}

func (h *Handlers) HandlePaymentVerified(m *stan.Msg) {
	var event models.PaymentVerifiedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment verified event", "error", err)
		return
	}

	slog.Info("Processing payment verified event", "payment_id", event.PaymentID, "user_id", event.UserID)

	h.send(context.Background(), event.UserID, "payment_verified", map[string]string{
		"payment_id": strconv.FormatInt(event.PaymentID, 10),
	})

	m.Ack()
}

func (h *Handlers) HandlePaymentRejected(m *stan.Msg) {
	var event models.PaymentRejectedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment rejected event", "error", err)
		return
	}

	slog.Info("Processing payment rejected event", "payment_id", event.PaymentID, "user_id", event.UserID)

	params := map[string]string{
		"payment_id": strconv.FormatInt(event.PaymentID, 10),
	}
	if event.Reason != "" {
		params["reason"] = event.Reason
	}
	h.send(context.Background(), event.UserID, "payment_rejected", params)

	m.Ack()
}

func (h *Handlers) send(ctx context.Context, userID int64, template string, params map[string]string) {
	notice := &external.NoticePayload{
		UserID:   userID,
		Channel:  "email",
		Template: template,
		Params:   params,
	}
	if err := h.notifyClient.Send(ctx, notice); err != nil {
		slog.Error("Failed to deliver notice",
			"error", err,
			"user_id", userID,
			"template", template)
	}
}
