package jobs

import (
	"context"
	"log/slog"
	"time"

	"shala/internal/repository"
)

const sweepInterval = 1 * time.Hour

// PackageExpiryJob flips lapsed user packages from active to expired.
// Correctness never depends on it: every read path checks the expiry
// timestamp itself. The sweep keeps stored status usable for reporting.
type PackageExpiryJob struct {
	userPackageRepo *repository.UserPackageRepository
	ticker          *time.Ticker
	done            chan bool
}

func NewPackageExpiryJob(userPackageRepo *repository.UserPackageRepository) *PackageExpiryJob {
	return &PackageExpiryJob{
		userPackageRepo: userPackageRepo,
		done:            make(chan bool),
	}
}

func (j *PackageExpiryJob) Start(ctx context.Context) {
	slog.Info("Starting package expiry job", "sweep_interval", sweepInterval.String())

	j.ticker = time.NewTicker(sweepInterval)

	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.sweep(ctx)
			case <-j.done:
				slog.Info("Package expiry job stopped")
				return
			}
		}
	}()
}

func (j *PackageExpiryJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *PackageExpiryJob) sweep(ctx context.Context) {
	expired, err := j.userPackageRepo.MarkExpired(ctx, time.Now())
	if err != nil {
		slog.Error("Package expiry sweep failed", "error", err)
		return
	}

	if expired > 0 {
		slog.Info("Marked lapsed packages expired", "count", expired)
	} else {
		slog.Debug("No lapsed packages found")
	}
}
