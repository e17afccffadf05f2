package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
	"github.com/tkaraca/registra/internal/pkg/dberrors"
)

// GradeEntryRepository handles database operations for grade entries
type GradeEntryRepository struct {
	db *pgxpool.Pool
}

// NewGradeEntryRepository creates a new grade entry repository
func NewGradeEntryRepository(db *pgxpool.Pool) *GradeEntryRepository {
	return &GradeEntryRepository{
		db: db,
	}
}

// Create inserts a new grade entry. The unique constraint on
// (enrollment_id, evaluation_component_id) enforces at most one entry per
// pair; a violation surfaces as ErrDuplicateGradeEntry.
func (r *GradeEntryRepository) Create(ctx context.Context, entry *models.GradeEntry) error {
	query := `
		INSERT INTO grade_entries (enrollment_id, evaluation_component_id, score, recorded_by, remarks)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		entry.EnrollmentID,
		entry.EvaluationComponentID,
		entry.Score,
		entry.RecordedBy,
		entry.Remarks,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDuplicateGradeEntry
		}
		return fmt.Errorf("error creating grade entry: %w", err)
	}

	return nil
}

// ListByEnrollment retrieves all grade entries of one enrollment joined to
// their evaluation components. Deactivated components are included: entries
// recorded against them still count toward historical aggregates.
func (r *GradeEntryRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]*models.GradeEntryDetail, error) {
	query := `
		SELECT g.id, g.enrollment_id, g.evaluation_component_id, g.score,
		       g.recorded_by, g.remarks, g.created_at,
		       c.name, c.percentage
		FROM grade_entries g
		JOIN evaluation_components c ON c.id = g.evaluation_component_id
		WHERE g.enrollment_id = $1
		ORDER BY c.display_order, c.id
	`

	rows, err := r.db.Query(ctx, query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("error listing grade entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.GradeEntryDetail
	for rows.Next() {
		var entry models.GradeEntryDetail
		if err := rows.Scan(
			&entry.ID,
			&entry.EnrollmentID,
			&entry.EvaluationComponentID,
			&entry.Score,
			&entry.RecordedBy,
			&entry.Remarks,
			&entry.CreatedAt,
			&entry.ComponentName,
			&entry.ComponentPercentage,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ExistsForComponent checks whether any grade entry references the component
func (r *GradeEntryRepository) ExistsForComponent(ctx context.Context, componentID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM grade_entries WHERE evaluation_component_id = $1)`,
		componentID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking grade entry existence: %w", err)
	}

	return exists, nil
}
