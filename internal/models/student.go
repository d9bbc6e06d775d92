package models

import (
	"gorm.io/gorm"
)

// Student is read-only to the payment core. MSSV is the human-facing
// registration number used as the lookup key; the primary key never leaves
// the API boundary.
type Student struct {
	gorm.Model
	MSSV     string `gorm:"column:mssv;uniqueIndex;not null"`
	FullName string `gorm:"not null"`
	// CombinedBilling forces a single payment covering every pending tuition
	// when more than one is outstanding.
	CombinedBilling bool `gorm:"not null;default:false"`
	Tuitions        []Tuition
}
