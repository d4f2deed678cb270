package consumers

import (
	"context"
	"log/slog"

	"shala/internal/config"
	"shala/internal/database"
	"shala/internal/external"
	"shala/internal/messaging"
	"shala/internal/repository"
)

// ConsumerService runs the notification dispatchers. Delivery is decoupled
// from the API process so a slow gateway never touches request latency.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	notifyClient := external.NewNotifyClient(cfg.Notify)

	repos := repository.NewRepositories(db)
	handlers := NewHandlers(repos, notifyClient)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	if _, err := cs.nats.SubscribeQueue("booking.created", "consumers", cs.handlers.HandleBookingCreated); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue("booking.cancelled", "consumers", cs.handlers.HandleBookingCancelled); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue("class.cancelled", "consumers", cs.handlers.HandleClassCancelled); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue("package.purchased", "consumers", cs.handlers.HandlePackagePurchased); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue("payment.verified", "consumers", cs.handlers.HandlePaymentVerified); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue("payment.rejected", "consumers", cs.handlers.HandlePaymentRejected); err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Repos() *repository.Repositories {
	return cs.repos
}

func (cs *ConsumerService) NATS() *messaging.NATSClient {
	return cs.nats
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
