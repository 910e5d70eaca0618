package booking

import (
	"context"
	"time"

	"github.com/sahasrara-wellness/booking-api/internal/models"
)

type Repository interface {
	// -------- Branch --------
	GetBranch(
		ctx context.Context,
		id uint,
	) (*models.Branch, error)

	IsBranchOpenOn(
		ctx context.Context,
		branchID uint,
		weekday int,
	) (bool, error)

	// -------- Service --------
	GetServiceAtBranch(
		ctx context.Context,
		branchID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Worker --------
	GetWorker(
		ctx context.Context,
		id uint,
	) (*models.Worker, error)

	ListActiveWorkers(
		ctx context.Context,
		branchID uint,
	) ([]models.Worker, error)

	HasLeave(
		ctx context.Context,
		workerID uint,
		date time.Time,
	) (bool, error)

	// -------- Occupancy --------
	ListOccupiedSpans(
		ctx context.Context,
		workerID uint,
		date time.Time,
		now time.Time,
	) ([]Span, error)

	CountConfirmedBookings(
		ctx context.Context,
		workerID uint,
		date time.Time,
	) (int, error)

	// -------- Slot locks --------
	// AcquireLock runs guard inside the same transaction as the conflict
	// checks and the insert, so business rules (the same-day cutoff) are
	// enforced atomically with the acquisition itself.
	AcquireLock(
		ctx context.Context,
		lock *models.SlotLock,
		now time.Time,
		guard func() error,
	) error

	GetLock(
		ctx context.Context,
		id uint,
	) (*models.SlotLock, error)

	ReleaseLock(
		ctx context.Context,
		id uint,
	) error

	ReleaseExpiredLocks(
		ctx context.Context,
		now time.Time,
	) (int64, error)

	// -------- Guest --------
	GetOrCreateGuest(
		ctx context.Context,
		name string,
		phone string,
		email string,
	) (*models.Guest, error)

	// -------- Booking (create) --------
	CreateBookingWithLog(
		ctx context.Context,
		b *models.Booking,
		log *models.BookingStatusLog,
	) error

	CreateConfirmedBooking(
		ctx context.Context,
		b *models.Booking,
		log *models.BookingStatusLog,
	) error

	// -------- Booking (read) --------
	GetBooking(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	GetBookingByToken(
		ctx context.Context,
		id uint,
		token string,
	) (*models.Booking, error)

	ListBookingsForDate(
		ctx context.Context,
		branchID uint,
		date time.Time,
	) ([]models.Booking, error)

	ListBookingsForSession(
		ctx context.Context,
		sessionKey string,
	) ([]models.Booking, error)

	ListStalePendingBookings(
		ctx context.Context,
		olderThan time.Time,
	) ([]models.Booking, error)

	ListStatusLogs(
		ctx context.Context,
		bookingID uint,
	) ([]models.BookingStatusLog, error)

	// -------- Booking (state change) --------
	// TransitionBooking row-locks the booking, runs apply (domain validation
	// plus mutation), then persists the booking and the returned status log in
	// one transaction. A nil log from apply means no-op.
	TransitionBooking(
		ctx context.Context,
		bookingID uint,
		apply func(b *models.Booking) (*models.BookingStatusLog, error),
	) (*models.Booking, error)

	// ConfirmBooking is the idempotent payment confirmation: skips when the
	// gateway payment id already produced a captured payment or the booking is
	// already confirmed; otherwise transitions, captures the payment row and
	// logs, all in one transaction. Returns whether a transition happened.
	ConfirmBooking(
		ctx context.Context,
		bookingID uint,
		gatewayPaymentID string,
		amount float64,
		source string,
		now time.Time,
	) (*models.Booking, bool, error)

	// -------- Payments --------
	CreatePayment(
		ctx context.Context,
		p *models.Payment,
	) error

	GetPaymentByOrderID(
		ctx context.Context,
		orderID string,
	) (*models.Payment, error)

	GetPaymentForBooking(
		ctx context.Context,
		bookingID uint,
	) (*models.Payment, error)

	HasWebhookEvent(
		ctx context.Context,
		eventID string,
	) (bool, error)

	RecordWebhookEvent(
		ctx context.Context,
		paymentID uint,
		eventID string,
	) error
}
