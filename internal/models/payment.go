package models

import "time"

const (
	PaymentCreated  = "CREATED"
	PaymentCaptured = "CAPTURED"
	PaymentFailed   = "FAILED"
	PaymentRefunded = "REFUNDED"
)

// Payment records the gateway lifecycle for one booking. GatewayPaymentID and
// WebhookEventID are pointers: they are only populated once the gateway
// reports the capture, and their uniqueness is enforced by partial indexes
// that skip NULLs (created in internal/db).
type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingID uint    `gorm:"uniqueIndex" json:"booking_id"`
	Booking   Booking `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"booking"`

	GatewayOrderID   string  `gorm:"size:100;index" json:"gateway_order_id"`
	GatewayPaymentID *string `gorm:"size:100" json:"gateway_payment_id"`
	WebhookEventID   *string `gorm:"size:100" json:"webhook_event_id"`

	Amount   float64 `json:"amount"`
	Currency string  `gorm:"size:3;default:'INR'" json:"currency"`
	Status   string  `gorm:"size:10;default:'CREATED'" json:"status"`

	PaidAt *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
