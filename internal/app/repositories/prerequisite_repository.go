package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
	"github.com/tkaraca/registra/internal/pkg/dberrors"
)

// PrerequisiteRepository handles database operations for prerequisite edges
type PrerequisiteRepository struct {
	db *pgxpool.Pool
}

// NewPrerequisiteRepository creates a new prerequisite repository
func NewPrerequisiteRepository(db *pgxpool.Pool) *PrerequisiteRepository {
	return &PrerequisiteRepository{
		db: db,
	}
}

// Create inserts a new prerequisite edge. Duplicate edges surface as
// ErrDuplicatePrerequisite through the unique constraint.
func (r *PrerequisiteRepository) Create(ctx context.Context, edge *models.PrerequisiteEdge) error {
	query := `
		INSERT INTO prerequisite_edges (course_id, prerequisite_id, mandatory)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, edge.CourseID, edge.PrerequisiteID, edge.Mandatory).Scan(&edge.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDuplicatePrerequisite
		}
		return fmt.Errorf("error creating prerequisite edge: %w", err)
	}

	return nil
}

// Exists checks whether the edge is already present
func (r *PrerequisiteRepository) Exists(ctx context.Context, courseID, prerequisiteID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM prerequisite_edges WHERE course_id = $1 AND prerequisite_id = $2)`,
		courseID, prerequisiteID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking prerequisite edge: %w", err)
	}

	return exists, nil
}

// ListByCourse retrieves all prerequisite edges of a course joined to the
// prerequisite course's attributes.
func (r *PrerequisiteRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.PrerequisiteEdge, error) {
	query := `
		SELECT p.id, p.course_id, p.prerequisite_id, p.mandatory,
		       c.code, c.name, c.level
		FROM prerequisite_edges p
		JOIN courses c ON c.id = p.prerequisite_id
		WHERE p.course_id = $1
		ORDER BY c.level, c.code
	`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing prerequisite edges: %w", err)
	}
	defer rows.Close()

	var edges []*models.PrerequisiteEdge
	for rows.Next() {
		var edge models.PrerequisiteEdge
		if err := rows.Scan(
			&edge.ID,
			&edge.CourseID,
			&edge.PrerequisiteID,
			&edge.Mandatory,
			&edge.PrerequisiteCode,
			&edge.PrerequisiteName,
			&edge.PrerequisiteLevel,
		); err != nil {
			return nil, err
		}
		edges = append(edges, &edge)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return edges, nil
}
