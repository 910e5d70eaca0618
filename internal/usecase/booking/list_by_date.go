package booking

import (
	"context"
	"time"

	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

type ListBookingsByDate struct {
	repo domain.Repository
}

func NewListBookingsByDate(repo domain.Repository) *ListBookingsByDate {
	return &ListBookingsByDate{repo: repo}
}

func (uc *ListBookingsByDate) Execute(
	ctx context.Context,
	branchID uint,
	date time.Time,
) ([]models.Booking, error) {
	return uc.repo.ListBookingsForDate(ctx, branchID, date)
}

type ListStatusLogs struct {
	repo domain.Repository
}

func NewListStatusLogs(repo domain.Repository) *ListStatusLogs {
	return &ListStatusLogs{repo: repo}
}

func (uc *ListStatusLogs) Execute(
	ctx context.Context,
	bookingID uint,
) ([]models.BookingStatusLog, error) {
	return uc.repo.ListStatusLogs(ctx, bookingID)
}
