// Package payment owns the transaction lifecycle: start, OTP verification,
// finalization, resend, cancel, delete and history. All money movement in the
// system happens inside Verify's finalization sequence.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	apperr "ibank/internal/errors"
	"ibank/internal/models"
	"ibank/internal/repositories"
	"ibank/internal/services/lookup"
	"ibank/internal/services/mailer"
	"ibank/internal/services/otp"

	"github.com/google/uuid"
)

type Service interface {
	Start(ctx context.Context, payerID uint, studentMSSV string, tuitionPublicID int) (*StartResult, error)
	Verify(ctx context.Context, transactionID uint, code string) (*VerifyResult, error)
	Resend(ctx context.Context, payerID, transactionID uint) (*StartResult, error)
	Cancel(ctx context.Context, payerID, transactionID uint) error
	Delete(ctx context.Context, payerID, transactionID uint) error
	History(ctx context.Context, payerID uint) ([]HistoryEntry, error)
}

type service struct {
	repo     repositories.PaymentRepository
	students repositories.StudentRepository
	users    repositories.UserRepository
	mailer   mailer.Mailer
	cache    CacheInvalidator
	secret   string
	config   Config
}

// NewService creates a new payment service. The cache may be nil.
func NewService(
	repo repositories.PaymentRepository,
	students repositories.StudentRepository,
	users repositories.UserRepository,
	m mailer.Mailer,
	cache CacheInvalidator,
	secret string,
	config Config,
) Service {
	if repo == nil {
		panic("payment repository is required")
	}
	if students == nil {
		panic("student repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	if m == nil {
		panic("mailer is required")
	}
	if secret == "" {
		panic("otp secret is required")
	}

	if config.OTPTTL == 0 {
		config.OTPTTL = DefaultOTPTTL
	}
	if config.MaxOTPAttempts == 0 {
		config.MaxOTPAttempts = DefaultMaxOTPAttempts
	}
	if config.HistoryLimit == 0 {
		config.HistoryLimit = DefaultHistoryLimit
	}
	if config.CodeRetries == 0 {
		config.CodeRetries = DefaultCodeRetries
	}

	return &service{
		repo:     repo,
		students: students,
		users:    users,
		mailer:   m,
		cache:    cache,
		secret:   secret,
		config:   config,
	}
}

func (s *service) Start(ctx context.Context, payerID uint, studentMSSV string, tuitionPublicID int) (*StartResult, error) {
	studentMSSV = strings.TrimSpace(studentMSSV)
	if studentMSSV == "" {
		return nil, apperr.ErrMissingStudentID
	}
	if tuitionPublicID < 0 {
		return nil, apperr.ErrInvalidTuitionID
	}

	targets, err := s.resolveTuitions(studentMSSV, tuitionPublicID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, t := range targets {
		total += t.AmountCents
	}

	payer, err := s.users.GetByID(payerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payer: %w", err)
	}
	// Advisory pre-check only; the conditional debit at finalization is the
	// authoritative guard.
	if payer.BalanceCents < total {
		return nil, apperr.ErrInsufficientBalance
	}

	now := time.Now()
	expiresAt := now.Add(s.config.OTPTTL)
	var code string
	var first models.Transaction

	err = s.repo.ExecuteInTransaction(func(tx repositories.PaymentRepository) error {
		first = models.Transaction{
			Reference:   uuid.NewString(),
			PayerUserID: payerID,
			TuitionID:   targets[0].ID,
			AmountCents: targets[0].AmountCents,
			Status:      models.TransactionStatusPending,
		}
		if err := tx.CreateTransaction(&first); err != nil {
			return err
		}

		if len(targets) > 1 {
			// The first member's own id becomes the group id.
			gid := first.ID
			if err := tx.SetTransactionGroup(first.ID, gid); err != nil {
				return err
			}
			first.GroupID = &gid
			for _, t := range targets[1:] {
				sibling := models.Transaction{
					Reference:   uuid.NewString(),
					PayerUserID: payerID,
					TuitionID:   t.ID,
					AmountCents: t.AmountCents,
					Status:      models.TransactionStatusPending,
					GroupID:     &gid,
				}
				if err := tx.CreateTransaction(&sibling); err != nil {
					return err
				}
			}
		}

		c, digest, err := s.issueCode(tx)
		if err != nil {
			return err
		}
		code = c

		return tx.UpsertOTP(&models.OneTimeCode{
			TransactionID: first.ID,
			CodeDigest:    digest,
			ExpiresAt:     expiresAt,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	// The transaction rows already exist; a delivery failure leaves them
	// pending and the caller must resend.
	if err := s.mailer.SendOtp(payer.Email, code, s.config.OTPTTL); err != nil {
		return nil, fmt.Errorf("failed to send otp email: %w", err)
	}

	return &StartResult{TransactionID: first.ID, OTPExpiresAt: expiresAt}, nil
}

// resolveTuitions maps a positional public id back to concrete tuitions,
// scoped to the named student. Public id 0 selects every pending tuition and
// is only valid on the combined-billing path.
func (s *service) resolveTuitions(mssv string, publicID int) ([]models.Tuition, error) {
	student, err := s.students.GetByMSSV(mssv)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return nil, apperr.ErrTuitionNotFoundForStudent
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	pending, err := s.students.ListPendingTuitions(student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tuitions: %w", err)
	}
	if len(pending) == 0 {
		return nil, apperr.ErrTuitionNotFoundForStudent
	}

	combined := lookup.CombinedRequired(student, pending)

	if publicID == 0 {
		if !combined {
			return nil, apperr.ErrInvalidTuitionID
		}
		return pending, nil
	}

	if combined {
		return nil, apperr.ErrIndividualPaymentNotAllowed
	}
	if publicID > len(pending) {
		return nil, apperr.ErrTuitionNotFoundForStudent
	}
	return pending[publicID-1 : publicID], nil
}

// issueCode generates a code whose digest does not collide with any active
// one, falling back to a longer token after repeated collisions.
func (s *service) issueCode(repo repositories.PaymentRepository) (code, digest string, err error) {
	now := time.Now()
	for i := 0; i < s.config.CodeRetries; i++ {
		c, err := otp.GenerateCode()
		if err != nil {
			return "", "", err
		}
		d := otp.Digest(c, s.secret)
		exists, err := repo.ActiveDigestExists(d, now)
		if err != nil {
			return "", "", err
		}
		if !exists {
			return c, d, nil
		}
	}

	c, err := otp.GenerateFallbackToken()
	if err != nil {
		return "", "", err
	}
	return c, otp.Digest(c, s.secret), nil
}

func (s *service) Verify(ctx context.Context, transactionID uint, code string) (*VerifyResult, error) {
	if transactionID == 0 || code == "" {
		return nil, apperr.ErrMissingFields
	}

	var result VerifyResult
	// Business failures that must still commit (attempt counters, group
	// cancellation) are carried out of the transaction separately from the
	// rollback-forcing error return.
	var businessErr error
	var payerID uint
	var payerEmail string
	var confirmedTotal int64

	err := s.repo.ExecuteInTransaction(func(tx repositories.PaymentRepository) error {
		trans, err := tx.GetTransactionForUpdate(transactionID)
		if err != nil {
			if errors.Is(err, repositories.ErrTransactionNotFound) {
				businessErr = apperr.ErrTransactionNotFound
				return nil
			}
			return err
		}
		if trans.Status != models.TransactionStatusPending {
			businessErr = apperr.ErrTransactionNotPending
			return nil
		}

		otpRow, err := tx.GetOTPForUpdate(transactionID)
		if err != nil {
			if errors.Is(err, repositories.ErrOTPNotFound) {
				businessErr = apperr.ErrInvalidOTP
				return nil
			}
			return err
		}
		if otpRow.Used {
			businessErr = apperr.ErrOTPAlreadyUsed
			return nil
		}
		if time.Now().After(otpRow.ExpiresAt) {
			businessErr = apperr.ErrOTPExpired
			return nil
		}

		if !otp.Equal(otpRow.CodeDigest, otp.Digest(code, s.secret)) {
			attempts := otpRow.Attempts + 1
			if err := tx.UpdateOTPAttempts(otpRow.ID, attempts); err != nil {
				return err
			}
			if attempts >= s.config.MaxOTPAttempts {
				members, err := s.groupMembers(tx, trans)
				if err != nil {
					return err
				}
				if err := tx.CancelTransactions(transactionIDs(members)); err != nil {
					return err
				}
				businessErr = apperr.ErrOTPAttemptsExceeded
				return nil
			}
			businessErr = apperr.ErrInvalidOTP
			return nil
		}

		// Finalization. Everything below either commits as a whole or rolls
		// back as a whole, attempt counter included.
		members, err := s.groupMembers(tx, trans)
		if err != nil {
			return err
		}
		var total int64
		for _, m := range members {
			total += m.AmountCents
		}

		// Re-lock the payer's row: this serializes concurrent finalizations
		// against the same account, independent of the start-time pre-check.
		payer, err := tx.LockUser(trans.PayerUserID)
		if err != nil {
			return err
		}
		payerID = payer.ID
		payerEmail = payer.Email

		rows, err := tx.DebitBalance(trans.PayerUserID, total)
		if err != nil {
			return err
		}
		if rows != 1 {
			return apperr.ErrInsufficientBalanceAtFinalize
		}

		now := time.Now()
		for _, m := range members {
			rows, err := tx.MarkTuitionPaid(m.TuitionID, m.AmountCents, now)
			if err != nil {
				return err
			}
			if rows != 1 {
				// Rolls back the debit too.
				return apperr.ErrTuitionAlreadyPaidOrModified
			}
		}

		if err := tx.ConfirmTransactions(transactionIDs(members), now); err != nil {
			return err
		}
		if err := tx.MarkOTPUsed(transactionID); err != nil {
			return err
		}

		balance, err := tx.GetBalance(trans.PayerUserID)
		if err != nil {
			return err
		}
		result.NewBalanceCents = balance
		confirmedTotal = total
		return nil
	})
	if err != nil {
		var de *apperr.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to verify transaction: %w", err)
	}
	if businessErr != nil {
		return nil, businessErr
	}

	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, payerID); err != nil {
			log.Printf("failed to invalidate user %d cache: %v", payerID, err)
		}
	}

	// Best effort only: the debit is already durable and resending a
	// confirmation is always safe.
	details := fmt.Sprintf("Transaction %d amount %d cents", transactionID, confirmedTotal)
	if err := s.mailer.SendConfirmation(payerEmail, details); err != nil {
		log.Printf("failed to send confirmation email: %v", err)
	}

	return &result, nil
}

// groupMembers returns the pending members of the transaction's group, locked
// for update, or just the transaction itself when it has no group.
func (s *service) groupMembers(tx repositories.PaymentRepository, trans *models.Transaction) ([]models.Transaction, error) {
	if trans.GroupID == nil {
		return []models.Transaction{*trans}, nil
	}
	return tx.ListPendingGroupMembers(*trans.GroupID)
}

func transactionIDs(members []models.Transaction) []uint {
	ids := make([]uint, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

func (s *service) Resend(ctx context.Context, payerID, transactionID uint) (*StartResult, error) {
	if transactionID == 0 {
		return nil, apperr.ErrMissingTransactionID
	}

	trans, err := s.repo.GetTransactionByID(transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperr.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	// Ownership is part of the lookup contract here: another payer's
	// transaction might as well not exist.
	if trans.PayerUserID != payerID {
		return nil, apperr.ErrTransactionNotFound
	}
	if trans.Status != models.TransactionStatusPending {
		return nil, apperr.ErrTransactionNotPending
	}

	expiresAt := time.Now().Add(s.config.OTPTTL)
	var code string

	err = s.repo.ExecuteInTransaction(func(tx repositories.PaymentRepository) error {
		c, digest, err := s.issueCode(tx)
		if err != nil {
			return err
		}
		code = c
		// Upsert replaces the old code: fresh expiry, zeroed attempts.
		return tx.UpsertOTP(&models.OneTimeCode{
			TransactionID: transactionID,
			CodeDigest:    digest,
			ExpiresAt:     expiresAt,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resend otp: %w", err)
	}

	payer, err := s.users.GetByID(payerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payer: %w", err)
	}
	if err := s.mailer.SendOtp(payer.Email, code, s.config.OTPTTL); err != nil {
		return nil, fmt.Errorf("failed to send otp email: %w", err)
	}

	return &StartResult{TransactionID: transactionID, OTPExpiresAt: expiresAt}, nil
}

func (s *service) Cancel(ctx context.Context, payerID, transactionID uint) error {
	if transactionID == 0 {
		return apperr.ErrMissingTransactionID
	}

	err := s.repo.ExecuteInTransaction(func(tx repositories.PaymentRepository) error {
		trans, err := tx.GetTransactionForUpdate(transactionID)
		if err != nil {
			if errors.Is(err, repositories.ErrTransactionNotFound) {
				return apperr.ErrTransactionNotFound
			}
			return err
		}
		if trans.PayerUserID != payerID {
			return apperr.ErrForbidden
		}
		if trans.Status != models.TransactionStatusPending {
			return apperr.ErrTransactionNotPending
		}

		members, err := s.groupMembers(tx, trans)
		if err != nil {
			return err
		}
		if err := tx.CancelTransactions(transactionIDs(members)); err != nil {
			return err
		}
		// No money ever moved; killing the code is the only cleanup.
		return tx.MarkOTPUsed(transactionID)
	})
	if err != nil {
		var de *apperr.DomainError
		if errors.As(err, &de) {
			return err
		}
		return fmt.Errorf("failed to cancel transaction: %w", err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, payerID, transactionID uint) error {
	if transactionID == 0 {
		return apperr.ErrMissingTransactionID
	}

	trans, err := s.repo.GetTransactionByID(transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return apperr.ErrTransactionNotFound
		}
		return fmt.Errorf("failed to get transaction: %w", err)
	}
	if trans.PayerUserID != payerID {
		return apperr.ErrForbidden
	}
	switch trans.Status {
	case models.TransactionStatusPending:
		return apperr.ErrTransactionPendingCannotDelete
	case models.TransactionStatusConfirmed:
		return apperr.ErrTransactionConfirmedCannotDelete
	}

	if err := s.repo.DeleteTransaction(transactionID); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

func (s *service) History(ctx context.Context, payerID uint) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := s.repo.ListByPayer(ctx, payerID, s.config.HistoryLimit, &entries); err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return entries, nil
}
