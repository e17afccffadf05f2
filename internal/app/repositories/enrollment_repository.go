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

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
	}
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := `
		SELECT id, student_id, course_offering_id, status, created_at, updated_at
		FROM enrollments
		WHERE id = $1
	`

	var enrollment models.Enrollment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.CourseOfferingID,
		&enrollment.Status,
		&enrollment.CreatedAt,
		&enrollment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}

	return &enrollment, nil
}

// GetWithOffering retrieves an enrollment joined to its course offering
func (r *EnrollmentRepository) GetWithOffering(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := `
		SELECT e.id, e.student_id, e.course_offering_id, e.status, e.created_at, e.updated_at,
		       o.id, o.course_id, o.instructor_id, o.year, o.period, o.section,
		       o.closed, o.closed_at, o.closed_by
		FROM enrollments e
		JOIN course_offerings o ON o.id = e.course_offering_id
		WHERE e.id = $1
	`

	var enrollment models.Enrollment
	var offering models.CourseOffering
	err := r.db.QueryRow(ctx, query, id).Scan(
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.CourseOfferingID,
		&enrollment.Status,
		&enrollment.CreatedAt,
		&enrollment.UpdatedAt,
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
			return nil, apperrors.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}

	enrollment.Offering = &offering
	return &enrollment, nil
}

// ListRegisteredByOffering retrieves all enrollments still in REGISTERED
// state under one offering, the population the closing decision runs over.
func (r *EnrollmentRepository) ListRegisteredByOffering(ctx context.Context, offeringID int64) ([]*models.Enrollment, error) {
	return r.listByOffering(ctx, offeringID, true)
}

// ListByOffering retrieves every enrollment under one offering
func (r *EnrollmentRepository) ListByOffering(ctx context.Context, offeringID int64) ([]*models.Enrollment, error) {
	return r.listByOffering(ctx, offeringID, false)
}

func (r *EnrollmentRepository) listByOffering(ctx context.Context, offeringID int64, registeredOnly bool) ([]*models.Enrollment, error) {
	query := `
		SELECT id, student_id, course_offering_id, status, created_at, updated_at
		FROM enrollments
		WHERE course_offering_id = $1
	`
	if registeredOnly {
		query += ` AND status = 'REGISTERED'`
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, offeringID)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		var enrollment models.Enrollment
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.StudentID,
			&enrollment.CourseOfferingID,
			&enrollment.Status,
			&enrollment.CreatedAt,
			&enrollment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, &enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

// UpdateStatus sets an enrollment's status within a transaction
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status models.EnrollmentStatus) error {
	query := `
		UPDATE enrollments
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	cmdTag, err := tx.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("error updating enrollment status: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEnrollmentNotFound
	}

	return nil
}

// ResetStatusesByOffering returns every enrollment under an offering to the
// REGISTERED state. Used by the reopen operation.
func (r *EnrollmentRepository) ResetStatusesByOffering(ctx context.Context, tx pgx.Tx, offeringID int64) error {
	query := `
		UPDATE enrollments
		SET status = 'REGISTERED', updated_at = NOW()
		WHERE course_offering_id = $1
	`

	if _, err := tx.Exec(ctx, query, offeringID); err != nil {
		return fmt.Errorf("error resetting enrollment statuses: %w", err)
	}

	return nil
}

// HasPassedCourse checks whether the student holds a PASSED enrollment in
// any offering of the given course, in any term.
func (r *EnrollmentRepository) HasPassedCourse(ctx context.Context, studentID, courseID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM enrollments e
			JOIN course_offerings o ON o.id = e.course_offering_id
			WHERE e.student_id = $1 AND o.course_id = $2 AND e.status = 'PASSED'
		)`,
		studentID, courseID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking passed enrollment: %w", err)
	}

	return exists, nil
}

// Create creates a new enrollment in REGISTERED state
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	query := `
		INSERT INTO enrollments (student_id, course_offering_id, status)
		VALUES ($1, $2, 'REGISTERED')
		RETURNING id, status, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, enrollment.StudentID, enrollment.CourseOfferingID).Scan(
		&enrollment.ID,
		&enrollment.Status,
		&enrollment.CreatedAt,
		&enrollment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating enrollment: %w", err)
	}

	return nil
}
