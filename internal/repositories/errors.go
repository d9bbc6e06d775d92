package repositories

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrTuitionNotFound     = errors.New("tuition not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrOTPNotFound         = errors.New("otp not found")
)
