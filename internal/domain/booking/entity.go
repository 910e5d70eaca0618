package booking

import (
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================
//
// Each action validates the transition, mutates the booking and returns the
// status-log row that must be persisted in the same transaction as the
// booking itself. Callers never write Booking.Status directly.

func Confirm(b *models.Booking, amount float64, actor, reason string) *models.BookingStatusLog {
	log := newLog(b, StatusConfirmed, actor, reason)

	b.Status = string(StatusConfirmed)
	b.PaymentStatus = string(PaymentPaid)
	if amount > 0 {
		b.AmountPaid = amount
	}
	return log
}

func Complete(b *models.Booking, actor string) (*models.BookingStatusLog, error) {
	if err := CanComplete(Status(b.Status)); err != nil {
		return nil, err
	}

	log := newLog(b, StatusCompleted, actor, "")
	b.Status = string(StatusCompleted)
	return log, nil
}

func Cancel(b *models.Booking, actor, reason string) (*models.BookingStatusLog, error) {
	if err := CanCancel(Status(b.Status)); err != nil {
		return nil, err
	}

	log := newLog(b, StatusCancelled, actor, reason)
	b.Status = string(StatusCancelled)
	return log, nil
}

func Expire(b *models.Booking, actor string) (*models.BookingStatusLog, error) {
	if err := CanExpire(Status(b.Status)); err != nil {
		return nil, err
	}

	log := newLog(b, StatusExpired, actor, "slot lock lapsed without payment")
	b.Status = string(StatusExpired)
	return log, nil
}

func newLog(b *models.Booking, to Status, actor, reason string) *models.BookingStatusLog {
	return &models.BookingStatusLog{
		BookingID:  b.ID,
		FromStatus: b.Status,
		ToStatus:   string(to),
		ChangedBy:  actor,
		Reason:     reason,
	}
}
