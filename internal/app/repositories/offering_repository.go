package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
)

// OfferingRepository handles database operations for course offerings
type OfferingRepository struct {
	db *pgxpool.Pool
}

// NewOfferingRepository creates a new offering repository
func NewOfferingRepository(db *pgxpool.Pool) *OfferingRepository {
	return &OfferingRepository{
		db: db,
	}
}

const offeringColumns = `
	id, course_id, instructor_id, year, period, section, closed, closed_at, closed_by
`

func scanOffering(row pgx.Row) (*models.CourseOffering, error) {
	var offering models.CourseOffering
	err := row.Scan(
		&offering.ID,
		&offering.CourseID,
		&offering.InstructorID,
		&offering.Year,
		&offering.Period,
		&offering.Section,
		&offering.Closed,
		&offering.ClosedAt,
		&offering.ClosedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOfferingNotFound
		}
		return nil, fmt.Errorf("error retrieving course offering: %w", err)
	}
	return &offering, nil
}

// GetByID retrieves a course offering by ID
func (r *OfferingRepository) GetByID(ctx context.Context, id int64) (*models.CourseOffering, error) {
	query := `
		SELECT ` + offeringColumns + `
		FROM course_offerings
		WHERE id = $1
	`
	return scanOffering(r.db.QueryRow(ctx, query, id))
}

// GetWithCourse retrieves an offering joined to its course definition
func (r *OfferingRepository) GetWithCourse(ctx context.Context, id int64) (*models.CourseOffering, error) {
	query := `
		SELECT o.id, o.course_id, o.instructor_id, o.year, o.period, o.section,
		       o.closed, o.closed_at, o.closed_by,
		       c.id, c.code, c.name, c.description, c.credits, c.level
		FROM course_offerings o
		JOIN courses c ON c.id = o.course_id
		WHERE o.id = $1
	`

	var offering models.CourseOffering
	var course models.Course
	err := r.db.QueryRow(ctx, query, id).Scan(
		&offering.ID,
		&offering.CourseID,
		&offering.InstructorID,
		&offering.Year,
		&offering.Period,
		&offering.Section,
		&offering.Closed,
		&offering.ClosedAt,
		&offering.ClosedBy,
		&course.ID,
		&course.Code,
		&course.Name,
		&course.Description,
		&course.Credits,
		&course.Level,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOfferingNotFound
		}
		return nil, fmt.Errorf("error retrieving course offering: %w", err)
	}

	offering.Course = &course
	return &offering, nil
}

// GetForUpdate retrieves an offering inside a transaction and locks its row.
// Concurrent closes of the same offering serialize on this lock.
func (r *OfferingRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*models.CourseOffering, error) {
	query := `
		SELECT ` + offeringColumns + `
		FROM course_offerings
		WHERE id = $1
		FOR UPDATE
	`
	return scanOffering(tx.QueryRow(ctx, query, id))
}

// MarkClosed flips the closed flag with closer identity and timestamp. The
// guard on closed = FALSE means a concurrent close that lost the row lock
// race affects zero rows and surfaces as already closed.
func (r *OfferingRepository) MarkClosed(ctx context.Context, tx pgx.Tx, id, closedBy int64, closedAt time.Time) error {
	query := `
		UPDATE course_offerings
		SET closed = TRUE, closed_at = $2, closed_by = $3
		WHERE id = $1 AND closed = FALSE
	`

	cmdTag, err := tx.Exec(ctx, query, id, closedAt, closedBy)
	if err != nil {
		return fmt.Errorf("error closing offering: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOfferingAlreadyClosed
	}

	return nil
}

// ClearClosed resets the closing metadata of a closed offering
func (r *OfferingRepository) ClearClosed(ctx context.Context, tx pgx.Tx, id int64) error {
	query := `
		UPDATE course_offerings
		SET closed = FALSE, closed_at = NULL, closed_by = NULL
		WHERE id = $1 AND closed = TRUE
	`

	cmdTag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error reopening offering: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOfferingNotClosed
	}

	return nil
}

// IsInstructorAssigned checks whether the instructor's assignment row matches
// the offering exactly (course, year, period and section all live on the
// same row, so matching the offering id plus instructor id covers them).
func (r *OfferingRepository) IsInstructorAssigned(ctx context.Context, instructorID, offeringID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM course_offerings WHERE id = $1 AND instructor_id = $2)`,
		offeringID, instructorID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking instructor assignment: %w", err)
	}

	return exists, nil
}

// Create creates a new course offering
func (r *OfferingRepository) Create(ctx context.Context, offering *models.CourseOffering) error {
	query := `
		INSERT INTO course_offerings (course_id, instructor_id, year, period, section)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		offering.CourseID,
		offering.InstructorID,
		offering.Year,
		offering.Period,
		offering.Section,
	).Scan(&offering.ID)
	if err != nil {
		return fmt.Errorf("error creating course offering: %w", err)
	}

	return nil
}
