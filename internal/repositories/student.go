package repositories

import "ibank/internal/models"

// StudentRepository resolves students and their payable tuitions.
//
// ListPendingTuitions is the single source of the recency ordering that
// defines positional public tuition ids: academic year descending, then
// semester descending, then id descending. Both the lookup and the
// start-transaction paths must resolve positions through this method so the
// two cannot disagree about which tuition a given public id names.
type StudentRepository interface {
	GetByMSSV(mssv string) (*models.Student, error)
	ListPendingTuitions(studentID uint) ([]models.Tuition, error)
}
