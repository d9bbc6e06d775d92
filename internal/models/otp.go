package models

import (
	"time"
)

// OneTimeCode gates finalization of its transaction. Only the keyed digest of
// the code is stored; the plaintext goes out by email and is never persisted.
// Resend overwrites the row in place, so exactly one code per transaction is
// ever live.
type OneTimeCode struct {
	ID            uint      `gorm:"primarykey"`
	TransactionID uint      `gorm:"uniqueIndex;not null"`
	CodeDigest    string    `gorm:"not null;index"`
	ExpiresAt     time.Time `gorm:"not null"`
	Attempts      int       `gorm:"not null;default:0"`
	Used          bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
