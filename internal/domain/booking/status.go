package booking

import "github.com/sahasrara-wellness/booking-api/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusCompleted      Status = "COMPLETED"
	StatusCancelled      Status = "CANCELLED"
	StatusExpired        Status = "EXPIRED"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentWaived  PaymentStatus = "WAIVED"
	PaymentFailed  PaymentStatus = "FAILED"
)

// ===============================
// Transition rules
// ===============================

// CanComplete: only a CONFIRMED booking can be marked delivered.
func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_transition")
	}
	return nil
}

// CanCancel: PENDING_PAYMENT and CONFIRMED are the only cancellable states.
func CanCancel(current Status) error {
	if current != StatusConfirmed && current != StatusPendingPayment {
		return httperr.ErrBusiness("invalid_transition")
	}
	return nil
}

// CanExpire: only an unpaid pending booking can lapse.
func CanExpire(current Status) error {
	if current != StatusPendingPayment {
		return httperr.ErrBusiness("invalid_transition")
	}
	return nil
}

func InitialStatus() Status {
	return StatusPendingPayment
}
