package repositories

import (
	"context"
	"fmt"
	"time"

	"ibank/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) ExecuteInTransaction(fn func(PaymentRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &paymentRepository{db: tx}
		return fn(txRepo)
	})
}

func (r *paymentRepository) CreateTransaction(tx *models.Transaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *paymentRepository) SetTransactionGroup(id, groupID uint) error {
	result := r.db.Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("group_id", groupID)
	if result.Error != nil {
		return fmt.Errorf("failed to set transaction group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *paymentRepository) GetTransactionByID(id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.First(&tx, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

// GetTransactionForUpdate takes a SELECT ... FOR UPDATE lock, serializing
// concurrent verify/cancel/resend calls against the same transaction.
func (r *paymentRepository) GetTransactionForUpdate(id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tx, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}
	return &tx, nil
}

func (r *paymentRepository) ListPendingGroupMembers(groupID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("group_id = ? AND status = ?", groupID, models.TransactionStatusPending).
		Order("id").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	return txs, nil
}

func (r *paymentRepository) ConfirmTransactions(ids []uint, at time.Time) error {
	result := r.db.Model(&models.Transaction{}).
		Where("id IN ? AND status = ?", ids, models.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":       models.TransactionStatusConfirmed,
			"confirmed_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to confirm transactions: %w", result.Error)
	}
	if result.RowsAffected != int64(len(ids)) {
		return fmt.Errorf("confirmed %d of %d transactions", result.RowsAffected, len(ids))
	}
	return nil
}

func (r *paymentRepository) CancelTransactions(ids []uint) error {
	err := r.db.Model(&models.Transaction{}).
		Where("id IN ? AND status = ?", ids, models.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":       models.TransactionStatusCancelled,
			"confirmed_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to cancel transactions: %w", err)
	}
	return nil
}

func (r *paymentRepository) DeleteTransaction(id uint) error {
	if err := r.db.Where("transaction_id = ?", id).Delete(&models.OneTimeCode{}).Error; err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	result := r.db.Delete(&models.Transaction{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *paymentRepository) GetOTPForUpdate(transactionID uint) (*models.OneTimeCode, error) {
	var otp models.OneTimeCode
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_id = ?", transactionID).
		First(&otp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOTPNotFound
		}
		return nil, fmt.Errorf("failed to lock otp: %w", err)
	}
	return &otp, nil
}

// ActiveDigestExists reports whether an unused, unexpired code with the same
// digest is already outstanding. Used to retry generation on collision.
func (r *paymentRepository) ActiveDigestExists(digest string, now time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.OneTimeCode{}).
		Where("code_digest = ? AND used = ? AND expires_at > ?", digest, false, now).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check digest: %w", err)
	}
	return count > 0, nil
}

// UpsertOTP replaces the transaction's code in place: on conflict the old
// digest, expiry and attempt counter are overwritten, so the previous code
// is dead the moment the new one exists.
func (r *paymentRepository) UpsertOTP(otp *models.OneTimeCode) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "transaction_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"code_digest", "expires_at", "attempts", "used", "updated_at",
		}),
	}).Create(otp).Error
	if err != nil {
		return fmt.Errorf("failed to upsert otp: %w", err)
	}
	return nil
}

func (r *paymentRepository) UpdateOTPAttempts(id uint, attempts int) error {
	err := r.db.Model(&models.OneTimeCode{}).
		Where("id = ?", id).
		Update("attempts", attempts).Error
	if err != nil {
		return fmt.Errorf("failed to update otp attempts: %w", err)
	}
	return nil
}

func (r *paymentRepository) MarkOTPUsed(transactionID uint) error {
	err := r.db.Model(&models.OneTimeCode{}).
		Where("transaction_id = ?", transactionID).
		Update("used", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark otp used: %w", err)
	}
	return nil
}

// LockUser takes the payer's row lock. This is the authoritative guard that
// serializes concurrent finalizations against one account.
func (r *paymentRepository) LockUser(userID uint) (*models.User, error) {
	var user models.User
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	return &user, nil
}

// DebitBalance decrements the payer's balance only while it covers the
// amount. A zero row count means the funds are gone; the caller must roll
// back the surrounding unit.
func (r *paymentRepository) DebitBalance(userID uint, amountCents int64) (int64, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND balance_cents >= ?", userID, amountCents).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to debit balance: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *paymentRepository) GetBalance(userID uint) (int64, error) {
	var balance int64
	err := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Select("balance_cents").
		Scan(&balance).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// MarkTuitionPaid flips the tuition to paid only while it is still pending
// and its amount matches the snapshot taken at start. A zero row count means
// the tuition was paid or edited in the meantime.
func (r *paymentRepository) MarkTuitionPaid(tuitionID uint, amountCents int64, at time.Time) (int64, error) {
	result := r.db.Model(&models.Tuition{}).
		Where("id = ? AND status = ? AND amount_cents = ?",
			tuitionID, models.TuitionStatusPending, amountCents).
		Updates(map[string]interface{}{
			"status":  models.TuitionStatusPaid,
			"paid_at": at,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark tuition paid: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *paymentRepository) ListByPayer(ctx context.Context, payerID uint, limit int, dest interface{}) error {
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Joins("JOIN tuitions ON tuitions.id = transactions.tuition_id").
		Joins("JOIN students ON students.id = tuitions.student_id").
		Select("transactions.*, students.mssv AS mssv, students.full_name AS student_name").
		Where("transactions.payer_user_id = ?", payerID).
		Order("transactions.created_at DESC").
		Limit(limit).
		Scan(dest).Error
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}
	return nil
}
