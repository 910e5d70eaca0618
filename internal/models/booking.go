package models

import "time"

// Booking is the core record. Rows are never physically deleted; the status
// moves to CANCELLED or EXPIRED instead, always through the usecase layer so
// every change lands one BookingStatusLog row in the same transaction.
// A partial unique index on (worker_id, booking_date, start_time)
// WHERE status = 'CONFIRMED' is the final race-safety backstop beneath the
// slot-lock mechanism (created in internal/db).
type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BranchID  uint    `json:"branch_id"`
	Branch    Branch  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"branch"`
	ServiceID uint    `json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service"`
	WorkerID  uint    `json:"worker_id"`
	Worker    Worker  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"worker"`
	GuestID   uint    `json:"guest_id"`
	Guest     Guest   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"guest"`

	SlotLockID *uint     `json:"slot_lock_id"`
	SlotLock   *SlotLock `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"slot_lock,omitempty"`

	BookingDate time.Time `gorm:"type:date;index" json:"booking_date"`
	StartTime   string    `gorm:"size:5" json:"start_time"`
	EndTime     string    `gorm:"size:5" json:"end_time"`

	// Snapshot of service.duration_minutes at booking time.
	DurationMinutes int `json:"duration_minutes"`

	Status        string `gorm:"size:20;default:'PENDING_PAYMENT';index" json:"status"`
	PaymentStatus string `gorm:"size:10;default:'PENDING'" json:"payment_status"`

	// Snapshot of service.price at creation; overwritten with the captured
	// amount on confirmation. Immutable receipt value thereafter.
	AmountPaid float64 `json:"amount_paid"`

	// Unguessable token for session-less guest access (emailed links).
	AccessToken string `gorm:"size:36;uniqueIndex" json:"-"`

	Notes    string `gorm:"size:500" json:"notes"`
	IsManual bool   `gorm:"default:false" json:"is_manual"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingStatusLog is the immutable audit trail: exactly one row per status
// transition, written in the same transaction as the status change.
type BookingStatusLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingID uint `gorm:"index" json:"booking_id"`

	FromStatus string `gorm:"size:20" json:"from_status"`
	ToStatus   string `gorm:"size:20" json:"to_status"`
	ChangedBy  string `gorm:"size:80" json:"changed_by"`
	Reason     string `gorm:"size:500" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}
