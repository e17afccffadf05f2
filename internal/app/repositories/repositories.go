package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository                *UserRepository
	CourseRepository              *CourseRepository
	OfferingRepository            *OfferingRepository
	EnrollmentRepository          *EnrollmentRepository
	EvaluationComponentRepository *EvaluationComponentRepository
	GradeEntryRepository          *GradeEntryRepository
	PrerequisiteRepository        *PrerequisiteRepository
	HistoryRepository             *HistoryRepository
	AuditRepository               *AuditRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:                NewUserRepository(db),
		CourseRepository:              NewCourseRepository(db),
		OfferingRepository:            NewOfferingRepository(db),
		EnrollmentRepository:          NewEnrollmentRepository(db),
		EvaluationComponentRepository: NewEvaluationComponentRepository(db),
		GradeEntryRepository:          NewGradeEntryRepository(db),
		PrerequisiteRepository:        NewPrerequisiteRepository(db),
		HistoryRepository:             NewHistoryRepository(db),
		AuditRepository:               NewAuditRepository(db),
	}
}
