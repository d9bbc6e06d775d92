package payment

import (
	"context"
	"time"
)

// Config holds tunables for the transaction/OTP lifecycle.
type Config struct {
	OTPTTL         time.Duration
	MaxOTPAttempts int
	HistoryLimit   int
	CodeRetries    int
}

// StartResult is returned from Start and Resend.
type StartResult struct {
	TransactionID uint      `json:"transactionId"`
	OTPExpiresAt  time.Time `json:"otpExpiresAt"`
}

// VerifyResult carries the payer's balance after a committed finalization.
type VerifyResult struct {
	NewBalanceCents int64 `json:"new_balance_cents"`
}

// HistoryEntry is one row of a payer's transaction history.
type HistoryEntry struct {
	ID          uint       `json:"id"`
	Reference   string     `json:"reference"`
	AmountCents int64      `json:"amount_cents"`
	Status      string     `json:"status"`
	GroupID     *uint      `json:"group_id,omitempty"`
	MSSV        string     `json:"mssv"`
	StudentName string     `json:"student_name"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// CacheInvalidator drops cached user state after a balance mutation.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID uint) error
}
