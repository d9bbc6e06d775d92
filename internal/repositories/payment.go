package repositories

import (
	"context"
	"time"

	"ibank/internal/models"
)

// PaymentRepository owns the Transaction and OneTimeCode rows plus the two
// conditional mutations the finalization sequence relies on. The *ForUpdate
// and LockUser methods only make sense inside ExecuteInTransaction; the row
// locks they take are released at commit or rollback.
//
// DebitBalance and MarkTuitionPaid return the affected row count instead of
// an error on conflict: the WHERE predicate is the concurrency control, and a
// zero count means another finalization (or an edit) got there first.
type PaymentRepository interface {
	ExecuteInTransaction(fn func(PaymentRepository) error) error

	CreateTransaction(tx *models.Transaction) error
	SetTransactionGroup(id, groupID uint) error
	GetTransactionByID(id uint) (*models.Transaction, error)
	GetTransactionForUpdate(id uint) (*models.Transaction, error)
	ListPendingGroupMembers(groupID uint) ([]models.Transaction, error)
	ConfirmTransactions(ids []uint, at time.Time) error
	CancelTransactions(ids []uint) error
	DeleteTransaction(id uint) error

	GetOTPForUpdate(transactionID uint) (*models.OneTimeCode, error)
	ActiveDigestExists(digest string, now time.Time) (bool, error)
	UpsertOTP(otp *models.OneTimeCode) error
	UpdateOTPAttempts(id uint, attempts int) error
	MarkOTPUsed(transactionID uint) error

	LockUser(userID uint) (*models.User, error)
	DebitBalance(userID uint, amountCents int64) (int64, error)
	GetBalance(userID uint) (int64, error)

	MarkTuitionPaid(tuitionID uint, amountCents int64, at time.Time) (int64, error)

	ListByPayer(ctx context.Context, payerID uint, limit int, dest interface{}) error
}
