package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/db"
)

// The services depend on narrow store interfaces rather than the concrete
// repositories so their decision logic can be exercised against in-memory
// fakes. The repositories package satisfies all of them.

// OfferingStore is the persistence surface for course offerings
type OfferingStore interface {
	GetByID(ctx context.Context, id int64) (*models.CourseOffering, error)
	GetWithCourse(ctx context.Context, id int64) (*models.CourseOffering, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*models.CourseOffering, error)
	MarkClosed(ctx context.Context, tx pgx.Tx, id, closedBy int64, closedAt time.Time) error
	ClearClosed(ctx context.Context, tx pgx.Tx, id int64) error
	IsInstructorAssigned(ctx context.Context, instructorID, offeringID int64) (bool, error)
}

// EnrollmentStore is the persistence surface for enrollments
type EnrollmentStore interface {
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	GetWithOffering(ctx context.Context, id int64) (*models.Enrollment, error)
	ListRegisteredByOffering(ctx context.Context, offeringID int64) ([]*models.Enrollment, error)
	ListByOffering(ctx context.Context, offeringID int64) ([]*models.Enrollment, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status models.EnrollmentStatus) error
	ResetStatusesByOffering(ctx context.Context, tx pgx.Tx, offeringID int64) error
	HasPassedCourse(ctx context.Context, studentID, courseID int64) (bool, error)
}

// GradeEntryStore is the persistence surface for the grade ledger
type GradeEntryStore interface {
	Create(ctx context.Context, entry *models.GradeEntry) error
	ListByEnrollment(ctx context.Context, enrollmentID int64) ([]*models.GradeEntryDetail, error)
	ExistsForComponent(ctx context.Context, componentID int64) (bool, error)
}

// ComponentStore is the persistence surface for evaluation components
type ComponentStore interface {
	Create(ctx context.Context, component *models.EvaluationComponent) error
	GetByID(ctx context.Context, id int64) (*models.EvaluationComponent, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*models.EvaluationComponent, error)
	SumActivePercentages(ctx context.Context, courseID, excludeID int64) (float64, error)
	Update(ctx context.Context, component *models.EvaluationComponent) error
	Deactivate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// CourseStore is the read surface for course definitions
type CourseStore interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
}

// PrerequisiteStore is the persistence surface for prerequisite edges
type PrerequisiteStore interface {
	Create(ctx context.Context, edge *models.PrerequisiteEdge) error
	Exists(ctx context.Context, courseID, prerequisiteID int64) (bool, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*models.PrerequisiteEdge, error)
}

// UserStore is the persistence surface the auth service needs
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// HistoryStore maintains the per-student-per-term academic-history rollup.
// RecomputeHistory runs inside the closing transaction so the rollup commits
// or rolls back together with the enrollment statuses it summarizes.
type HistoryStore interface {
	RecomputeHistory(ctx context.Context, tx pgx.Tx, studentID int64, year int, period models.Period) error
	GetByStudentTerm(ctx context.Context, studentID int64, year int, period models.Period) (*models.AcademicHistory, error)
}

// AuditRecorder records domain mutations for the audit trail. Failures are
// advisory: the coordinator logs them and never rolls back for them.
type AuditRecorder interface {
	Record(ctx context.Context, record *models.AuditRecord) error
}

// TxRunner executes a function inside one database transaction
type TxRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}
