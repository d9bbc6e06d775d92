package repositories

import (
	"fmt"

	"ibank/internal/models"

	"gorm.io/gorm"
)

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByMSSV(mssv string) (*models.Student, error) {
	var student models.Student
	if err := r.db.Where("mssv = ?", mssv).First(&student).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (r *studentRepository) ListPendingTuitions(studentID uint) ([]models.Tuition, error) {
	var tuitions []models.Tuition
	err := r.db.
		Where("student_id = ? AND status = ?", studentID, models.TuitionStatusPending).
		Order("academic_year DESC, semester DESC, id DESC").
		Find(&tuitions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tuitions: %w", err)
	}
	return tuitions, nil
}
