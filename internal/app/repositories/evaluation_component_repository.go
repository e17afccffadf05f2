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

// EvaluationComponentRepository handles database operations for evaluation components
type EvaluationComponentRepository struct {
	db *pgxpool.Pool
}

// NewEvaluationComponentRepository creates a new evaluation component repository
func NewEvaluationComponentRepository(db *pgxpool.Pool) *EvaluationComponentRepository {
	return &EvaluationComponentRepository{
		db: db,
	}
}

// Create creates a new evaluation component
func (r *EvaluationComponentRepository) Create(ctx context.Context, component *models.EvaluationComponent) error {
	query := `
		INSERT INTO evaluation_components (course_id, name, percentage, display_order, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, active
	`

	err := r.db.QueryRow(ctx, query,
		component.CourseID,
		component.Name,
		component.Percentage,
		component.DisplayOrder,
	).Scan(&component.ID, &component.Active)
	if err != nil {
		return fmt.Errorf("error creating evaluation component: %w", err)
	}

	return nil
}

// GetByID retrieves an evaluation component by ID
func (r *EvaluationComponentRepository) GetByID(ctx context.Context, id int64) (*models.EvaluationComponent, error) {
	query := `
		SELECT id, course_id, name, percentage, display_order, active
		FROM evaluation_components
		WHERE id = $1
	`

	var component models.EvaluationComponent
	err := r.db.QueryRow(ctx, query, id).Scan(
		&component.ID,
		&component.CourseID,
		&component.Name,
		&component.Percentage,
		&component.DisplayOrder,
		&component.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrComponentNotFound
		}
		return nil, fmt.Errorf("error retrieving evaluation component: %w", err)
	}

	return &component, nil
}

// ListByCourse retrieves all components of a course in display order
func (r *EvaluationComponentRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.EvaluationComponent, error) {
	query := `
		SELECT id, course_id, name, percentage, display_order, active
		FROM evaluation_components
		WHERE course_id = $1
		ORDER BY display_order, id
	`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing evaluation components: %w", err)
	}
	defer rows.Close()

	var components []*models.EvaluationComponent
	for rows.Next() {
		var component models.EvaluationComponent
		if err := rows.Scan(
			&component.ID,
			&component.CourseID,
			&component.Name,
			&component.Percentage,
			&component.DisplayOrder,
			&component.Active,
		); err != nil {
			return nil, err
		}
		components = append(components, &component)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return components, nil
}

// SumActivePercentages sums the percentages of a course's active components,
// excluding the given component ID (pass 0 to exclude nothing). This is the
// input to the over-allocation check.
func (r *EvaluationComponentRepository) SumActivePercentages(ctx context.Context, courseID, excludeID int64) (float64, error) {
	var sum float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(percentage), 0)
		FROM evaluation_components
		WHERE course_id = $1 AND active = TRUE AND id <> $2`,
		courseID, excludeID).Scan(&sum)

	if err != nil {
		return 0, fmt.Errorf("error summing component percentages: %w", err)
	}

	return sum, nil
}

// Update updates an existing evaluation component
func (r *EvaluationComponentRepository) Update(ctx context.Context, component *models.EvaluationComponent) error {
	query := `
		UPDATE evaluation_components
		SET name = $2, percentage = $3, display_order = $4, active = $5
		WHERE id = $1
	`

	cmdTag, err := r.db.Exec(ctx, query,
		component.ID,
		component.Name,
		component.Percentage,
		component.DisplayOrder,
		component.Active,
	)
	if err != nil {
		return fmt.Errorf("error updating evaluation component: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrComponentNotFound
	}

	return nil
}

// Deactivate soft-disables a component while keeping it for historical aggregates
func (r *EvaluationComponentRepository) Deactivate(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE evaluation_components SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deactivating evaluation component: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrComponentNotFound
	}

	return nil
}

// Delete removes a component outright. Only valid when no grade entry
// references it; callers decide between Delete and Deactivate.
func (r *EvaluationComponentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM evaluation_components WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting evaluation component: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrComponentNotFound
	}

	return nil
}
