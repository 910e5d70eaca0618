package booking

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sahasrara-wellness/booking-api/internal/audit"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

type CancelBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCancelBooking(repo domain.Repository, audit *audit.Dispatcher) *CancelBooking {
	return &CancelBooking{repo: repo, audit: audit}
}

func (uc *CancelBooking) Execute(
	ctx context.Context,
	bookingID uint,
	userID uint,
	reason string,
) (*models.Booking, error) {

	actor := fmt.Sprintf("staff:%d", userID)

	b, err := uc.repo.TransitionBooking(ctx, bookingID,
		func(b *models.Booking) (*models.BookingStatusLog, error) {
			return domain.Cancel(b, actor, reason)
		})
	if err != nil {
		return nil, err
	}

	// Cancelling a pending booking frees the held cell immediately.
	if b.SlotLockID != nil {
		if err := uc.repo.ReleaseLock(ctx, *b.SlotLockID); err != nil {
			log.Error().Err(err).Uint("lock_id", *b.SlotLockID).Msg("failed to release lock after cancel")
		}
	}

	uc.audit.Dispatch(audit.Event{
		BranchID: b.BranchID,
		UserID:   &userID,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]string{"reason": reason},
	})

	return b, nil
}
