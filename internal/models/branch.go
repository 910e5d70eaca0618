package models

import "time"

type Branch struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:120;not null" json:"name"`
	Address string `gorm:"size:255" json:"address"`
	City    string `gorm:"size:80" json:"city"`
	Phone   string `gorm:"size:20" json:"phone"`
	Email   string `gorm:"size:100" json:"email"`

	// Branch-wide working window, "15:04" format.
	OpeningTime string `gorm:"size:5;default:'10:00'" json:"opening_time"`
	ClosingTime string `gorm:"size:5;default:'19:00'" json:"closing_time"`

	IsActive bool `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BranchSchedule marks a weekday as open or closed for a branch.
// One row per (branch, weekday).
type BranchSchedule struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BranchID uint `gorm:"uniqueIndex:uq_branch_weekday" json:"branch_id"`

	Weekday int  `gorm:"uniqueIndex:uq_branch_weekday" json:"weekday"`
	IsOpen  bool `gorm:"default:true" json:"is_open"`
}
