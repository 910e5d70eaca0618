package booking

import (
	"context"
	"fmt"

	"github.com/sahasrara-wellness/booking-api/internal/audit"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

type CompleteBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCompleteBooking(repo domain.Repository, audit *audit.Dispatcher) *CompleteBooking {
	return &CompleteBooking{repo: repo, audit: audit}
}

func (uc *CompleteBooking) Execute(
	ctx context.Context,
	bookingID uint,
	userID uint,
) (*models.Booking, error) {

	actor := fmt.Sprintf("staff:%d", userID)

	b, err := uc.repo.TransitionBooking(ctx, bookingID,
		func(b *models.Booking) (*models.BookingStatusLog, error) {
			return domain.Complete(b, actor)
		})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BranchID: b.BranchID,
		UserID:   &userID,
		Action:   "booking_completed",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
