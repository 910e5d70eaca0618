package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/metrics"
	"github.com/sahasrara-wellness/booking-api/internal/models"
	"github.com/sahasrara-wellness/booking-api/internal/timezone"
)

type SweepResult struct {
	LocksReleased   int64
	BookingsExpired int
}

// Sweep is the periodic janitor: releases lapsed slot locks and expires
// pending bookings whose payment never arrived. It is safe to run
// concurrently with live traffic and with other sweeper instances; each
// transition is guarded by the same row locks the request path uses.
type Sweep struct {
	repo domain.Repository
	cfg  *config.Config
}

func NewSweep(repo domain.Repository, cfg *config.Config) *Sweep {
	return &Sweep{repo: repo, cfg: cfg}
}

func (uc *Sweep) Execute(ctx context.Context) (SweepResult, error) {
	now := timezone.NowIn(uc.cfg.Timezone)

	var res SweepResult

	released, err := uc.repo.ReleaseExpiredLocks(ctx, now)
	if err != nil {
		return res, err
	}
	res.LocksReleased = released
	metrics.SweeperLocksReleased.Add(float64(released))

	olderThan := now.Add(-time.Duration(uc.cfg.PendingExpiryMinutes) * time.Minute)
	stale, err := uc.repo.ListStalePendingBookings(ctx, olderThan)
	if err != nil {
		return res, err
	}

	for i := range stale {
		id := stale[i].ID

		// A guest whose lock is still live is mid-payment; only expire once
		// the lock has lapsed or been released.
		if stale[i].SlotLock != nil && stale[i].SlotLock.IsActive(now) {
			continue
		}

		expired := false
		_, err := uc.repo.TransitionBooking(ctx, id,
			func(b *models.Booking) (*models.BookingStatusLog, error) {
				// A payment may have landed between the listing and this row
				// lock; skip instead of failing the sweep.
				if domain.Status(b.Status) != domain.StatusPendingPayment {
					return nil, nil
				}
				expired = true
				return domain.Expire(b, "system")
			})
		if err != nil {
			log.Error().Err(err).Uint("booking_id", id).Msg("failed to expire pending booking")
			continue
		}
		if !expired {
			continue
		}

		if stale[i].SlotLockID != nil {
			if err := uc.repo.ReleaseLock(ctx, *stale[i].SlotLockID); err != nil {
				log.Error().Err(err).Uint("lock_id", *stale[i].SlotLockID).Msg("failed to release lock for expired booking")
			}
		}

		res.BookingsExpired++
		metrics.BookingsExpired.Inc()
	}

	return res, nil
}
