package booking

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/metrics"
	"github.com/sahasrara-wellness/booking-api/internal/models"
	"github.com/sahasrara-wellness/booking-api/internal/timezone"
)

// Notifier delivers guest-facing messages. Failures must never affect the
// booking flow.
type Notifier interface {
	BookingConfirmed(b *models.Booking)
}

// Confirm finalizes a booking after the gateway reports a captured payment.
// Both the browser callback and the gateway webhook funnel here; the
// repository serializes them so the transition and its log happen once no
// matter which arrives first.
type Confirm struct {
	repo     domain.Repository
	cfg      *config.Config
	notifier Notifier
}

func NewConfirm(repo domain.Repository, cfg *config.Config, notifier Notifier) *Confirm {
	return &Confirm{repo: repo, cfg: cfg, notifier: notifier}
}

func (uc *Confirm) Execute(
	ctx context.Context,
	bookingID uint,
	gatewayPaymentID string,
	amount float64,
	source string,
) (*models.Booking, error) {

	now := timezone.NowIn(uc.cfg.Timezone)

	b, changed, err := uc.repo.ConfirmBooking(ctx, bookingID, gatewayPaymentID, amount, source, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		return b, nil
	}

	// The confirmed booking now occupies the cell; the lock is spent.
	if b.SlotLockID != nil {
		if err := uc.repo.ReleaseLock(ctx, *b.SlotLockID); err != nil {
			log.Error().Err(err).Uint("lock_id", *b.SlotLockID).Msg("failed to release lock after confirm")
		}
	}

	metrics.BookingsConfirmed.WithLabelValues(source).Inc()

	if uc.notifier != nil {
		if full, err := uc.repo.GetBooking(ctx, b.ID); err == nil {
			go uc.notifier.BookingConfirmed(full)
		}
	}

	return b, nil
}
