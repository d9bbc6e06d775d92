package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null"`
	Password     string `gorm:"not null"` // bcrypt digest
	FullName     string `gorm:"not null"`
	Phone        string
	Email        string `gorm:"uniqueIndex;not null"`
	BalanceCents int64  `gorm:"not null;default:0;check:balance_cents >= 0"`
}
