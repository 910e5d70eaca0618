package models

import (
	"math"
	"time"
)

// Service is a bookable treatment. Each duration variant is a separate row
// ("Swedish Massage 30 min" and "Swedish Massage 45 min" are two records),
// which keeps slot generation and pricing self-contained. One service can be
// offered at multiple branches.
type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Branches []Branch `gorm:"many2many:service_branches;" json:"branches,omitempty"`

	Name            string  `gorm:"size:150;not null" json:"name"`
	Description     string  `gorm:"size:500" json:"description"`
	DurationMinutes int     `gorm:"not null" json:"duration_minutes"`
	BufferMinutes   int     `gorm:"default:0" json:"buffer_minutes"`
	Price           float64 `json:"price"`

	IsActive bool `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalBlockMinutes is the full window a booking occupies, buffer included.
func (s *Service) TotalBlockMinutes() int {
	return s.DurationMinutes + s.BufferMinutes
}

// DepositPrice is the 10% upfront charge collected at booking time.
func (s *Service) DepositPrice() float64 {
	return math.Round(s.Price*0.10*100) / 100
}
