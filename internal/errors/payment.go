package errors

import "github.com/gofiber/fiber/v2"

var (
	ErrStudentNotFound = &DomainError{
		Code:    "student_not_found",
		Message: "student not found",
		Status:  fiber.StatusNotFound,
	}
	ErrMissingStudentID = &DomainError{
		Code:    "missing_studentId",
		Message: "studentId is required",
		Status:  fiber.StatusBadRequest,
	}
	ErrMissingTuitionID = &DomainError{
		Code:    "missing_tuitionId",
		Message: "tuitionId is required",
		Status:  fiber.StatusBadRequest,
	}
	ErrInvalidTuitionID = &DomainError{
		Code:    "invalid_tuitionId",
		Message: "tuitionId must be a positive integer",
		Status:  fiber.StatusBadRequest,
	}
	ErrTuitionNotFoundForStudent = &DomainError{
		Code:    "tuition_not_found_for_student",
		Message: "student has no pending tuition with that id",
		Status:  fiber.StatusNotFound,
	}
	ErrInsufficientBalance = &DomainError{
		Code:    "insufficient_balance",
		Message: "insufficient balance",
		Status:  fiber.StatusBadRequest,
	}
	ErrIndividualPaymentNotAllowed = &DomainError{
		Code:    "individual_payment_not_allowed",
		Message: "this student requires a combined payment of all pending tuitions",
		Status:  fiber.StatusBadRequest,
	}
	ErrMissingFields = &DomainError{
		Code:    "missing_fields",
		Message: "transactionId and otpCode are required",
		Status:  fiber.StatusBadRequest,
	}
	ErrMissingTransactionID = &DomainError{
		Code:    "missing_transactionId",
		Message: "transactionId is required",
		Status:  fiber.StatusBadRequest,
	}
	ErrTransactionNotFound = &DomainError{
		Code:    "transaction_not_found",
		Message: "transaction not found",
		Status:  fiber.StatusNotFound,
	}
	ErrTransactionNotPending = &DomainError{
		Code:    "transaction_not_pending",
		Message: "transaction is not pending",
		Status:  fiber.StatusBadRequest,
	}
	ErrInvalidOTP = &DomainError{
		Code:    "invalid_otp",
		Message: "invalid OTP code",
		Status:  fiber.StatusBadRequest,
	}
	ErrOTPAlreadyUsed = &DomainError{
		Code:    "otp_already_used",
		Message: "OTP code has already been used",
		Status:  fiber.StatusBadRequest,
	}
	ErrOTPExpired = &DomainError{
		Code:    "otp_expired",
		Message: "OTP code has expired",
		Status:  fiber.StatusBadRequest,
	}
	ErrOTPAttemptsExceeded = &DomainError{
		Code:    "otp_attempts_exceeded",
		Message: "too many incorrect OTP attempts, transaction cancelled",
		Status:  fiber.StatusBadRequest,
	}
	ErrInsufficientBalanceAtFinalize = &DomainError{
		Code:    "insufficient_balance_at_finalize",
		Message: "insufficient balance at finalization",
		Status:  fiber.StatusBadRequest,
	}
	ErrTuitionAlreadyPaidOrModified = &DomainError{
		Code:    "tuition_already_paid_or_modified",
		Message: "tuition was already paid or modified since the transaction started",
		Status:  fiber.StatusBadRequest,
	}
	ErrForbidden = &DomainError{
		Code:    "forbidden",
		Message: "transaction belongs to another user",
		Status:  fiber.StatusForbidden,
	}
	ErrTransactionPendingCannotDelete = &DomainError{
		Code:    "transaction_pending_cannot_delete",
		Message: "pending transactions must be cancelled before deletion",
		Status:  fiber.StatusBadRequest,
	}
	ErrTransactionConfirmedCannotDelete = &DomainError{
		Code:    "transaction_confirmed_cannot_delete",
		Message: "confirmed transactions are immutable financial records",
		Status:  fiber.StatusBadRequest,
	}
)
