// Package lookup resolves a student registration number to the list of
// payable tuition items, including the combined-payment aggregate.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperr "ibank/internal/errors"
	"ibank/internal/models"
	"ibank/internal/repositories"
)

type Service interface {
	Lookup(ctx context.Context, mssv string) (*Result, error)
}

type service struct {
	students repositories.StudentRepository
}

func NewService(students repositories.StudentRepository) Service {
	if students == nil {
		panic("student repository is required")
	}
	return &service{students: students}
}

// CombinedRequired reports whether the student may only pay all pending
// tuitions at once. The rule is a per-student billing flag, deliberately not
// inferred from the tuition count alone.
func CombinedRequired(student *models.Student, pending []models.Tuition) bool {
	return student.CombinedBilling && len(pending) > 1
}

func (s *service) Lookup(ctx context.Context, mssv string) (*Result, error) {
	mssv = strings.TrimSpace(mssv)
	if mssv == "" {
		return nil, apperr.ErrMissingStudentID
	}

	student, err := s.students.GetByMSSV(mssv)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return nil, apperr.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to look up student: %w", err)
	}

	pending, err := s.students.ListPendingTuitions(student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tuitions: %w", err)
	}

	return &Result{
		MSSV:            student.MSSV,
		FullName:        student.FullName,
		PendingTuitions: buildItems(student, pending),
	}, nil
}

// buildItems assigns positional public ids in the repository's recency order.
// When a combined payment is required, individual items become read-only and
// a mandatory aggregate with public id 0 is appended.
func buildItems(student *models.Student, pending []models.Tuition) []PayableItem {
	combined := CombinedRequired(student, pending)

	items := make([]PayableItem, 0, len(pending)+1)
	var total int64
	for i, t := range pending {
		total += t.AmountCents
		items = append(items, PayableItem{
			ID:           i + 1,
			AcademicYear: t.AcademicYear,
			Semester:     t.Semester,
			AmountCents:  t.AmountCents,
			Description:  t.Description,
			ReadOnly:     combined,
		})
	}

	if combined {
		items = append(items, PayableItem{
			ID:           0,
			AmountCents:  total,
			Description:  "Combined payment of all pending tuitions",
			IsCombined:   true,
			Mandatory:    true,
			TuitionCount: len(pending),
		})
	}

	return items
}
