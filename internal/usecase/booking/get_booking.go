package booking

import (
	"context"

	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

// GetBooking is the session-less guest view: the access token issued at
// creation is the only credential.
type GetBooking struct {
	repo domain.Repository
}

func NewGetBooking(repo domain.Repository) *GetBooking {
	return &GetBooking{repo: repo}
}

func (uc *GetBooking) Execute(
	ctx context.Context,
	bookingID uint,
	accessToken string,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingByToken(ctx, bookingID, accessToken)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}
	return b, nil
}

// ListForSession returns every booking made under a session key, newest
// first. Powers the guest "my bookings" view without an account.
func (uc *GetBooking) ListForSession(
	ctx context.Context,
	sessionKey string,
) ([]models.Booking, error) {
	return uc.repo.ListBookingsForSession(ctx, sessionKey)
}
