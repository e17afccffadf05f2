// Package services contains the domain logic of the academic record engine.
// Services validate and decide; persistence is delegated to the store
// interfaces in stores.go, which the repositories package implements.
package services

import (
	"github.com/tkaraca/registra/internal/app/repositories"
	"github.com/tkaraca/registra/internal/db"
	"github.com/tkaraca/registra/internal/pkg/auth"
	"github.com/tkaraca/registra/internal/pkg/cache"
)

// Services holds all the service instances
type Services struct {
	AuthService         AuthService
	EvaluationService   EvaluationService
	GradebookService    GradebookService
	ClosingService      ClosingService
	PrerequisiteService PrerequisiteService
}

// NewServices wires all services against the concrete repositories
func NewServices(
	repos *repositories.Repositories,
	database *db.PostgresDB,
	jwtService *auth.JWTService,
	trees *cache.TreeCache,
	passThreshold float64,
) *Services {
	return &Services{
		AuthService: NewAuthService(repos.UserRepository, jwtService),
		EvaluationService: NewEvaluationService(
			repos.EvaluationComponentRepository,
			repos.CourseRepository,
			repos.GradeEntryRepository,
		),
		GradebookService: NewGradebookService(
			repos.GradeEntryRepository,
			repos.EnrollmentRepository,
			repos.OfferingRepository,
			repos.EvaluationComponentRepository,
		),
		ClosingService: NewClosingService(
			repos.OfferingRepository,
			repos.EnrollmentRepository,
			repos.GradeEntryRepository,
			repos.HistoryRepository,
			repos.AuditRepository,
			database,
			passThreshold,
		),
		PrerequisiteService: NewPrerequisiteService(
			repos.PrerequisiteRepository,
			repos.CourseRepository,
			repos.EnrollmentRepository,
			trees,
		),
	}
}
