package reservation

import (
	"context"
	"log/slog"
	"time"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
)

// Sweeper periodically reclaims expired holds so their seats return to FREE
// without waiting for the next access to the event. Correctness never
// depends on its cadence: expiry is decided by timestamp everywhere a hold
// is read.
type Sweeper struct {
	holds    domain.HoldStore
	logger   *slog.Logger
	interval time.Duration

	now func() time.Time
}

func NewSweeper(holds domain.HoldStore, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		holds:    holds,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("starting hold expiry sweeper", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping hold expiry sweeper")
			return
		case <-ticker.C:
			reclaimed, err := s.holds.ExpireAll(ctx, s.now())
			if err != nil {
				s.logger.Error("hold expiry sweep failed", "error", err)
				continue
			}
			if reclaimed > 0 {
				s.logger.Info("reclaimed expired holds", "count", reclaimed)
			}
		}
	}
}
