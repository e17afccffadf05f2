package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
)

// HistoryRepository maintains the per-student-per-term academic history
// rollup. RecomputeHistory runs inside the closing transaction so the rollup
// and the enrollment statuses it summarizes commit or roll back together.
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{
		db: db,
	}
}

// RecomputeHistory rebuilds one student's rollup for one term from the
// enrollment table as it stands inside the transaction.
func (r *HistoryRepository) RecomputeHistory(ctx context.Context, tx pgx.Tx, studentID int64, year int, period models.Period) error {
	query := `
		INSERT INTO academic_history (student_id, year, period, passed_count, failed_count, withdrawn_count, updated_at)
		SELECT $1, $2, $3,
		       COUNT(*) FILTER (WHERE e.status = 'PASSED'),
		       COUNT(*) FILTER (WHERE e.status = 'FAILED'),
		       COUNT(*) FILTER (WHERE e.status = 'WITHDRAWN'),
		       NOW()
		FROM enrollments e
		JOIN course_offerings o ON o.id = e.course_offering_id
		WHERE e.student_id = $1 AND o.year = $2 AND o.period = $3
		ON CONFLICT (student_id, year, period) DO UPDATE
		SET passed_count = EXCLUDED.passed_count,
		    failed_count = EXCLUDED.failed_count,
		    withdrawn_count = EXCLUDED.withdrawn_count,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := tx.Exec(ctx, query, studentID, year, period); err != nil {
		return fmt.Errorf("error recomputing academic history: %w", err)
	}

	return nil
}

// GetByStudentTerm retrieves one student's rollup for one term
func (r *HistoryRepository) GetByStudentTerm(ctx context.Context, studentID int64, year int, period models.Period) (*models.AcademicHistory, error) {
	query := `
		SELECT id, student_id, year, period, passed_count, failed_count, withdrawn_count, updated_at
		FROM academic_history
		WHERE student_id = $1 AND year = $2 AND period = $3
	`

	var history models.AcademicHistory
	err := r.db.QueryRow(ctx, query, studentID, year, period).Scan(
		&history.ID,
		&history.StudentID,
		&history.Year,
		&history.Period,
		&history.PassedCount,
		&history.FailedCount,
		&history.WithdrawnCount,
		&history.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving academic history: %w", err)
	}

	return &history, nil
}
