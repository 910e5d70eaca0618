package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/models"
	"github.com/sahasrara-wellness/booking-api/internal/timezone"
	"github.com/sahasrara-wellness/booking-api/internal/validators"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Branch
// --------------------------------------------------

func (r *BookingGormRepository) GetBranch(
	ctx context.Context,
	id uint,
) (*models.Branch, error) {

	var branch models.Branch
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = true", id).
		First(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *BookingGormRepository) IsBranchOpenOn(
	ctx context.Context,
	branchID uint,
	weekday int,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BranchSchedule{}).
		Where("branch_id = ? AND weekday = ? AND is_open = true", branchID, weekday).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *BookingGormRepository) GetServiceAtBranch(
	ctx context.Context,
	branchID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Joins("JOIN service_branches sb ON sb.service_id = services.id").
		Where("services.id = ? AND sb.branch_id = ? AND services.is_active = true", serviceID, branchID).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// --------------------------------------------------
// Worker
// --------------------------------------------------

func (r *BookingGormRepository) GetWorker(
	ctx context.Context,
	id uint,
) (*models.Worker, error) {

	var worker models.Worker
	if err := r.db.WithContext(ctx).First(&worker, id).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *BookingGormRepository) ListActiveWorkers(
	ctx context.Context,
	branchID uint,
) ([]models.Worker, error) {

	var workers []models.Worker
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND is_active = true", branchID).
		Order("id ASC").
		Find(&workers).Error; err != nil {
		return nil, err
	}
	return workers, nil
}

func (r *BookingGormRepository) HasLeave(
	ctx context.Context,
	workerID uint,
	date time.Time,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WorkerLeave{}).
		Where("worker_id = ? AND leave_date = ?", workerID, timezone.Day(date)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --------------------------------------------------
// Occupancy
// --------------------------------------------------

// ListOccupiedSpans returns every window the worker cannot be booked into on
// the date: confirmed bookings plus locks that are unreleased and unexpired.
func (r *BookingGormRepository) ListOccupiedSpans(
	ctx context.Context,
	workerID uint,
	date time.Time,
	now time.Time,
) ([]domain.Span, error) {

	day := timezone.Day(date)

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Select("start_time", "end_time").
		Where(
			"worker_id = ? AND booking_date = ? AND status = ?",
			workerID, day, string(domain.StatusConfirmed),
		).
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	var locks []models.SlotLock
	if err := r.db.WithContext(ctx).
		Select("start_time", "end_time").
		Where(
			"worker_id = ? AND booking_date = ? AND released = false AND expires_at > ?",
			workerID, day, now,
		).
		Find(&locks).Error; err != nil {
		return nil, err
	}

	spans := make([]domain.Span, 0, len(bookings)+len(locks))
	for _, b := range bookings {
		if s, ok := parseSpan(b.StartTime, b.EndTime); ok {
			spans = append(spans, s)
		}
	}
	for _, l := range locks {
		if s, ok := parseSpan(l.StartTime, l.EndTime); ok {
			spans = append(spans, s)
		}
	}
	return spans, nil
}

func (r *BookingGormRepository) CountConfirmedBookings(
	ctx context.Context,
	workerID uint,
	date time.Time,
) (int, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where(
			"worker_id = ? AND booking_date = ? AND status = ?",
			workerID, timezone.Day(date), string(domain.StatusConfirmed),
		).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// --------------------------------------------------
// Slot locks
// --------------------------------------------------

// AcquireLock performs the atomic check-then-insert for one slot cell. Row
// locks serialize concurrent acquirers on the same cell; the partial unique
// index uq_active_slot_lock is the backstop if they slip past each other.
func (r *BookingGormRepository) AcquireLock(
	ctx context.Context,
	lock *models.SlotLock,
	now time.Time,
	guard func() error,
) error {

	lock.BookingDate = timezone.Day(lock.BookingDate)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if guard != nil {
			if err := guard(); err != nil {
				return err
			}
		}

		var conflicts []models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(
				"worker_id = ? AND booking_date = ? AND start_time = ? AND status = ?",
				lock.WorkerID, lock.BookingDate, lock.StartTime, string(domain.StatusConfirmed),
			).
			Find(&conflicts).Error; err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return httperr.ErrBusiness("slot_conflict")
		}

		// The unique index only sees released=false, so flip any lapsed row
		// at this cell before inserting.
		if err := tx.Model(&models.SlotLock{}).
			Where(
				"worker_id = ? AND booking_date = ? AND start_time = ? AND released = false AND expires_at <= ?",
				lock.WorkerID, lock.BookingDate, lock.StartTime, now,
			).
			Update("released", true).Error; err != nil {
			return err
		}

		var active []models.SlotLock
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(
				"worker_id = ? AND booking_date = ? AND start_time = ? AND released = false AND expires_at > ?",
				lock.WorkerID, lock.BookingDate, lock.StartTime, now,
			).
			Find(&active).Error; err != nil {
			return err
		}
		if len(active) > 0 {
			return httperr.ErrBusiness("slot_already_locked")
		}

		return tx.Create(lock).Error
	})

	if isUniqueViolation(err, "uq_active_slot_lock") {
		return httperr.ErrBusiness("slot_already_locked")
	}
	return err
}

func (r *BookingGormRepository) GetLock(
	ctx context.Context,
	id uint,
) (*models.SlotLock, error) {

	var lock models.SlotLock
	if err := r.db.WithContext(ctx).First(&lock, id).Error; err != nil {
		return nil, err
	}
	return &lock, nil
}

func (r *BookingGormRepository) ReleaseLock(
	ctx context.Context,
	id uint,
) error {
	// Idempotent: releasing a released lock is a no-op.
	return r.db.WithContext(ctx).
		Model(&models.SlotLock{}).
		Where("id = ?", id).
		Update("released", true).Error
}

func (r *BookingGormRepository) ReleaseExpiredLocks(
	ctx context.Context,
	now time.Time,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Model(&models.SlotLock{}).
		Where("released = false AND expires_at < ?", now).
		Update("released", true)
	return res.RowsAffected, res.Error
}

// --------------------------------------------------
// Guest
// --------------------------------------------------

// GetOrCreateGuest deduplicates by normalised phone and keeps the most recent
// name/email on rebooking.
func (r *BookingGormRepository) GetOrCreateGuest(
	ctx context.Context,
	name string,
	phone string,
	email string,
) (*models.Guest, error) {

	normalized, err := validators.NormalizePhone(phone)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_phone")
	}

	var guest models.Guest
	findErr := r.db.WithContext(ctx).
		Where("phone = ?", normalized).
		First(&guest).Error

	if findErr == nil {
		updates := map[string]any{}
		if name != "" && guest.Name != name {
			updates["name"] = name
		}
		if email != "" && guest.Email != email {
			updates["email"] = email
		}
		if len(updates) > 0 {
			if err := r.db.WithContext(ctx).Model(&guest).Updates(updates).Error; err != nil {
				return nil, err
			}
		}
		return &guest, nil
	}
	if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return nil, findErr
	}

	guest = models.Guest{
		Name:  name,
		Phone: normalized,
		Email: email,
	}
	if err := r.db.WithContext(ctx).Create(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

// --------------------------------------------------
// Booking (create)
// --------------------------------------------------

func (r *BookingGormRepository) CreateBookingWithLog(
	ctx context.Context,
	b *models.Booking,
	log *models.BookingStatusLog,
) error {

	b.BookingDate = timezone.Day(b.BookingDate)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		log.BookingID = b.ID
		return tx.Create(log).Error
	})
}

// CreateConfirmedBooking is the admin manual path: no lock, no payment, but
// still conflict-checked against confirmed bookings at the cell.
func (r *BookingGormRepository) CreateConfirmedBooking(
	ctx context.Context,
	b *models.Booking,
	log *models.BookingStatusLog,
) error {

	b.BookingDate = timezone.Day(b.BookingDate)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var conflicts []models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(
				"worker_id = ? AND booking_date = ? AND start_time = ? AND status = ?",
				b.WorkerID, b.BookingDate, b.StartTime, string(domain.StatusConfirmed),
			).
			Find(&conflicts).Error; err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return httperr.ErrBusiness("slot_conflict")
		}

		if err := tx.Create(b).Error; err != nil {
			return err
		}
		log.BookingID = b.ID
		return tx.Create(log).Error
	})

	if isUniqueViolation(err, "uq_confirmed_booking_slot") {
		return httperr.ErrBusiness("slot_conflict")
	}
	return err
}

// --------------------------------------------------
// Booking (read)
// --------------------------------------------------

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Branch").
		Preload("Service").
		Preload("Worker").
		Preload("Guest").
		First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingByToken(
	ctx context.Context,
	id uint,
	token string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Branch").
		Preload("Service").
		Preload("Worker").
		Preload("Guest").
		Where("id = ? AND access_token = ?", id, token).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) ListBookingsForDate(
	ctx context.Context,
	branchID uint,
	date time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Worker").
		Preload("Guest").
		Where("branch_id = ? AND booking_date = ?", branchID, timezone.Day(date)).
		Order("start_time ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListBookingsForSession is the guest "my bookings" view: bookings whose slot
// lock was acquired under this session key.
func (r *BookingGormRepository) ListBookingsForSession(
	ctx context.Context,
	sessionKey string,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Branch").
		Preload("Service").
		Preload("Worker").
		Joins("JOIN slot_locks sl ON sl.id = bookings.slot_lock_id").
		Where("sl.session_key = ?", sessionKey).
		Order("bookings.created_at DESC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListStalePendingBookings(
	ctx context.Context,
	olderThan time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Preload("SlotLock").
		Where(
			"status = ? AND created_at < ?",
			string(domain.StatusPendingPayment), olderThan,
		).
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListStatusLogs(
	ctx context.Context,
	bookingID uint,
) ([]models.BookingStatusLog, error) {

	var logs []models.BookingStatusLog
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// --------------------------------------------------
// Booking (state change)
// --------------------------------------------------

func (r *BookingGormRepository) TransitionBooking(
	ctx context.Context,
	bookingID uint,
	apply func(b *models.Booking) (*models.BookingStatusLog, error),
) (*models.Booking, error) {

	var out *models.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var b models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, bookingID).Error; err != nil {
			return err
		}

		log, err := apply(&b)
		if err != nil {
			return err
		}
		if log == nil {
			out = &b
			return nil
		}

		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		if err := tx.Create(log).Error; err != nil {
			return err
		}
		out = &b
		return nil
	})
	return out, err
}

// ConfirmBooking serializes racing confirmation attempts (client callback vs
// gateway webhook) on the booking row. Exactly one attempt transitions and
// logs; the rest exit early.
func (r *BookingGormRepository) ConfirmBooking(
	ctx context.Context,
	bookingID uint,
	gatewayPaymentID string,
	amount float64,
	source string,
	now time.Time,
) (*models.Booking, bool, error) {

	var (
		out     *models.Booking
		changed bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		// Idempotency guard: this gateway payment already confirmed something.
		if gatewayPaymentID != "" {
			var count int64
			if err := tx.Model(&models.Payment{}).
				Where("gateway_payment_id = ? AND status = ?", gatewayPaymentID, models.PaymentCaptured).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				var b models.Booking
				if err := tx.First(&b, bookingID).Error; err != nil {
					return err
				}
				out = &b
				return nil
			}
		}

		var b models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, bookingID).Error; err != nil {
			return err
		}

		if b.Status == string(domain.StatusConfirmed) {
			out = &b
			return nil
		}

		log := domain.Confirm(&b, amount, source, "payment captured via "+source)
		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		if err := tx.Create(log).Error; err != nil {
			return err
		}

		var payment models.Payment
		payErr := tx.Where("booking_id = ?", b.ID).First(&payment).Error
		if payErr == nil {
			updates := map[string]any{
				"status":  models.PaymentCaptured,
				"paid_at": now,
			}
			if gatewayPaymentID != "" {
				updates["gateway_payment_id"] = gatewayPaymentID
			}
			if err := tx.Model(&payment).Updates(updates).Error; err != nil {
				return err
			}
		} else if !errors.Is(payErr, gorm.ErrRecordNotFound) {
			return payErr
		}

		out = &b
		changed = true
		return nil
	})

	if isUniqueViolation(err, "uq_confirmed_booking_slot") {
		return nil, false, httperr.ErrBusiness("slot_conflict")
	}
	return out, changed, err
}

// --------------------------------------------------
// Payments
// --------------------------------------------------

func (r *BookingGormRepository) CreatePayment(
	ctx context.Context,
	p *models.Payment,
) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *BookingGormRepository) GetPaymentByOrderID(
	ctx context.Context,
	orderID string,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", orderID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BookingGormRepository) GetPaymentForBooking(
	ctx context.Context,
	bookingID uint,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BookingGormRepository) HasWebhookEvent(
	ctx context.Context,
	eventID string,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("webhook_event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BookingGormRepository) RecordWebhookEvent(
	ctx context.Context,
	paymentID uint,
	eventID string,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Update("webhook_event_id", eventID).Error
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func parseSpan(start, end string) (domain.Span, bool) {
	s, err := domain.ParseClock(start)
	if err != nil {
		return domain.Span{}, false
	}
	e, err := domain.ParseClock(end)
	if err != nil {
		return domain.Span{}, false
	}
	return domain.Span{Start: s, End: e}, true
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
