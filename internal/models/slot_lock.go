package models

import "time"

// SlotLock is a TTL-based reservation acquired before payment. It keeps a
// (worker, date, start_time) cell out of slot generation while a guest is
// mid-payment. A partial unique index on (worker_id, booking_date, start_time)
// WHERE released = false is the storage-level backstop against two active
// locks on the same cell (created in internal/db).
type SlotLock struct {
	ID uint `gorm:"primaryKey" json:"id"`

	WorkerID uint   `json:"worker_id"`
	Worker   Worker `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"worker"`
	BranchID uint   `json:"branch_id"`

	BookingDate time.Time `gorm:"type:date;index" json:"booking_date"`
	StartTime   string    `gorm:"size:5" json:"start_time"`
	EndTime     string    `gorm:"size:5" json:"end_time"`

	SessionKey string    `gorm:"size:40;index" json:"session_key"`
	ExpiresAt  time.Time `gorm:"index" json:"expires_at"`
	Released   bool      `gorm:"default:false;index" json:"released"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *SlotLock) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

func (l *SlotLock) IsActive(now time.Time) bool {
	return !l.Released && !l.IsExpired(now)
}
