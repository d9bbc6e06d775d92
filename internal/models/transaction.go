package models

import (
	"time"
)

// Transaction statuses. pending is the only non-terminal state.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusConfirmed = "confirmed"
	TransactionStatusCancelled = "cancelled"
	TransactionStatusFailed    = "failed"
)

// Transaction represents one payment attempt against one tuition. Sibling
// transactions created together for a combined payment share a GroupID, which
// is the id of the first member.
type Transaction struct {
	ID          uint   `gorm:"primarykey"`
	Reference   string `gorm:"uniqueIndex;not null"` // external reference id
	PayerUserID uint   `gorm:"index;not null"`
	TuitionID   uint   `gorm:"index;not null"`
	AmountCents int64  `gorm:"not null"` // snapshot of the tuition amount at start
	Status      string `gorm:"not null;default:'pending';index"`
	GroupID     *uint  `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
}
