package models

import (
	"time"

	"gorm.io/gorm"
)

// Tuition statuses
const (
	TuitionStatusPending = "pending"
	TuitionStatusPaid    = "paid"
)

// Tuition transitions pending -> paid at most once, and only inside the
// finalization sequence, guarded by an amount match.
type Tuition struct {
	gorm.Model
	StudentID    uint   `gorm:"index;not null"`
	AcademicYear int    `gorm:"not null"`
	Semester     int    `gorm:"not null"`
	AmountCents  int64  `gorm:"not null"`
	Description  string
	Status       string `gorm:"not null;default:'pending';index"`
	PaidAt       *time.Time
}
