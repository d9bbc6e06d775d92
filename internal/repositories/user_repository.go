package repositories

import "ibank/internal/models"

// UserRepository provides read access to payer accounts. Balance mutation is
// deliberately absent: the only debit path lives in PaymentRepository, inside
// the finalization unit.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
}
