package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sahasrara-wellness/booking-api/internal/audit"
	"github.com/sahasrara-wellness/booking-api/internal/config"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

type CreateManualInput struct {
	BranchID  uint
	ServiceID uint
	WorkerID  uint
	Date      time.Time
	Start     domain.ClockTime

	GuestName  string
	GuestPhone string
	GuestEmail string

	Notes  string
	UserID uint
}

// CreateManual is the front-desk path for walk-ins and phone bookings: no
// slot lock, no payment, booking lands directly in CONFIRMED with payment
// waived. Conflict checking against confirmed bookings still applies.
type CreateManual struct {
	repo  domain.Repository
	cfg   *config.Config
	audit *audit.Dispatcher
}

func NewCreateManual(
	repo domain.Repository,
	cfg *config.Config,
	audit *audit.Dispatcher,
) *CreateManual {
	return &CreateManual{repo: repo, cfg: cfg, audit: audit}
}

func (uc *CreateManual) Execute(
	ctx context.Context,
	in CreateManualInput,
) (*models.Booking, error) {

	branch, err := uc.repo.GetBranch(ctx, in.BranchID)
	if err != nil {
		return nil, httperr.ErrBusiness("branch_not_found")
	}

	service, err := uc.repo.GetServiceAtBranch(ctx, in.BranchID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	worker, err := uc.repo.GetWorker(ctx, in.WorkerID)
	if err != nil || worker.BranchID != branch.ID {
		return nil, httperr.ErrBusiness("worker_not_found")
	}

	guest, err := uc.repo.GetOrCreateGuest(ctx, in.GuestName, in.GuestPhone, in.GuestEmail)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		BranchID:  branch.ID,
		ServiceID: service.ID,
		WorkerID:  worker.ID,
		GuestID:   guest.ID,

		BookingDate:     in.Date,
		StartTime:       in.Start.String(),
		EndTime:         in.Start.Add(service.DurationMinutes).String(),
		DurationMinutes: service.DurationMinutes,

		Status:        string(domain.StatusConfirmed),
		PaymentStatus: string(domain.PaymentWaived),
		AmountPaid:    0,

		AccessToken: uuid.NewString(),
		Notes:       in.Notes,
		IsManual:    true,
	}

	log := &models.BookingStatusLog{
		FromStatus: string(domain.StatusPendingPayment),
		ToStatus:   string(domain.StatusConfirmed),
		ChangedBy:  fmt.Sprintf("staff:%d", in.UserID),
		Reason:     "manual booking",
	}

	if err := uc.repo.CreateConfirmedBooking(ctx, booking, log); err != nil {
		return nil, err
	}

	userID := in.UserID
	uc.audit.Dispatch(audit.Event{
		BranchID: branch.ID,
		UserID:   &userID,
		Action:   "booking_created_manual",
		Entity:   "booking",
		EntityID: &booking.ID,
	})

	return booking, nil
}
