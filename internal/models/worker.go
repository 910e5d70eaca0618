package models

import "time"

// Worker belongs to exactly one branch.
type Worker struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	BranchID uint   `json:"branch_id"`
	Branch   Branch `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"branch"`

	Name            string `gorm:"size:120;not null" json:"name"`
	Bio             string `gorm:"size:500" json:"bio"`
	YearsExperience int    `gorm:"default:0" json:"years_experience"`
	Phone           string `gorm:"size:20" json:"phone"`

	IsActive bool `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkerLeave marks a single calendar date as a leave day.
// Availability resolution matches on the exact date only.
type WorkerLeave struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	WorkerID uint `gorm:"uniqueIndex:uq_worker_leave_date" json:"worker_id"`

	LeaveDate time.Time `gorm:"type:date;uniqueIndex:uq_worker_leave_date;index" json:"leave_date"`
	Reason    string    `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}
