package models

import "time"

// Guest is a booking customer without a login. The normalised phone number is
// the canonical identity key; repeated bookings with the same phone reuse the
// same row.
type Guest struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name  string `gorm:"size:120;not null" json:"name"`
	Phone string `gorm:"size:20;index" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
