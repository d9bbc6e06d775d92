package payment

import "time"

const (
	DefaultOTPTTL         = 5 * time.Minute
	DefaultMaxOTPAttempts = 3
	DefaultHistoryLimit   = 100
	DefaultCodeRetries    = 5
)
