package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/models"
	"github.com/sahasrara-wellness/booking-api/internal/timezone"
)

type CreatePendingInput struct {
	LockID     uint
	SessionKey string
	ServiceID  uint

	GuestName  string
	GuestPhone string
	GuestEmail string

	Notes string
}

// CreatePending converts a held slot lock into a PENDING_PAYMENT booking.
// The lock stays active so the cell remains invisible to other guests until
// payment settles or the pending booking lapses.
type CreatePending struct {
	repo domain.Repository
	cfg  *config.Config
}

func NewCreatePending(repo domain.Repository, cfg *config.Config) *CreatePending {
	return &CreatePending{repo: repo, cfg: cfg}
}

func (uc *CreatePending) Execute(
	ctx context.Context,
	in CreatePendingInput,
) (*models.Booking, error) {

	lock, err := uc.repo.GetLock(ctx, in.LockID)
	if err != nil {
		return nil, httperr.ErrBusiness("lock_not_found")
	}
	if lock.SessionKey != in.SessionKey {
		return nil, httperr.ErrBusiness("lock_not_owned")
	}

	now := timezone.NowIn(uc.cfg.Timezone)
	if !lock.IsActive(now) {
		return nil, httperr.ErrBusiness("lock_expired")
	}

	service, err := uc.repo.GetServiceAtBranch(ctx, lock.BranchID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	guest, err := uc.repo.GetOrCreateGuest(ctx, in.GuestName, in.GuestPhone, in.GuestEmail)
	if err != nil {
		return nil, err
	}

	// The lock's end includes the cleanup buffer; the booking shows the guest
	// their actual treatment window.
	start, err := domain.ParseClock(lock.StartTime)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		BranchID:  lock.BranchID,
		ServiceID: service.ID,
		WorkerID:  lock.WorkerID,
		GuestID:   guest.ID,

		SlotLockID: &lock.ID,

		BookingDate:     lock.BookingDate,
		StartTime:       lock.StartTime,
		EndTime:         start.Add(service.DurationMinutes).String(),
		DurationMinutes: service.DurationMinutes,

		Status:        string(domain.InitialStatus()),
		PaymentStatus: string(domain.PaymentPending),
		AmountPaid:    service.Price,

		AccessToken: uuid.NewString(),
		Notes:       in.Notes,
	}

	log := &models.BookingStatusLog{
		FromStatus: "",
		ToStatus:   string(domain.InitialStatus()),
		ChangedBy:  "guest",
		Reason:     "booking created, awaiting payment",
	}

	if err := uc.repo.CreateBookingWithLog(ctx, booking, log); err != nil {
		return nil, err
	}
	return booking, nil
}
