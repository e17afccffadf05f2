package seed

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	appModels "github.com/tkaraca/registra/internal/app/models"
	appRepos "github.com/tkaraca/registra/internal/app/repositories"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
	"github.com/tkaraca/registra/internal/pkg/auth"
	"github.com/tkaraca/registra/internal/pkg/logger"
)

// CreateDefaultData seeds a default administrator account and a small
// starter curriculum on an empty database. Existing rows are left alone, so
// running the seed repeatedly is safe.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	courseRepo := appRepos.NewCourseRepository(dbPool)

	var finalErr error

	if _, err := userRepo.GetByEmail(ctx, "admin@registra.local"); errors.Is(err, apperrors.ErrUserNotFound) {
		hashed, err := auth.HashPassword("ChangeMe_123")
		if err != nil {
			return err
		}
		admin := &appModels.User{
			Email:     "admin@registra.local",
			Password:  hashed,
			FirstName: "Default",
			LastName:  "Administrator",
			RoleType:  appModels.RoleAdministrator,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			logger.Error().Err(err).Msg("Error creating default administrator")
			finalErr = errors.Join(finalErr, err)
		} else {
			logger.Info().Str("email", admin.Email).Msg("Default administrator created")
		}
	}

	courses := []*appModels.Course{
		{Code: "CS101", Name: "Introduction to Programming", Credits: 6, Level: 1},
		{Code: "CS102", Name: "Object-Oriented Programming", Credits: 6, Level: 2},
		{Code: "CS201", Name: "Data Structures", Credits: 5, Level: 3},
	}
	for _, course := range courses {
		if _, err := courseRepo.GetByCode(ctx, course.Code); !errors.Is(err, apperrors.ErrCourseNotFound) {
			continue
		}
		if err := courseRepo.Create(ctx, course); err != nil {
			logger.Error().Err(err).Str("code", course.Code).Msg("Error creating seed course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if err := createDemoTerm(ctx, dbPool); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	return finalErr
}

// createDemoTerm seeds one instructor, two students and an open CS101
// offering with enrollments, so a fresh install has something to grade and
// close. Skipped entirely when the instructor already exists.
func createDemoTerm(ctx context.Context, dbPool *pgxpool.Pool) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	courseRepo := appRepos.NewCourseRepository(dbPool)
	offeringRepo := appRepos.NewOfferingRepository(dbPool)
	enrollmentRepo := appRepos.NewEnrollmentRepository(dbPool)

	if _, err := userRepo.GetByEmail(ctx, "instructor@registra.local"); !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil
	}

	hashed, err := auth.HashPassword("ChangeMe_123")
	if err != nil {
		return err
	}

	instructor := &appModels.User{
		Email:     "instructor@registra.local",
		Password:  hashed,
		FirstName: "Demo",
		LastName:  "Instructor",
		RoleType:  appModels.RoleInstructor,
	}
	if err := userRepo.Create(ctx, instructor); err != nil {
		return err
	}

	students := []*appModels.User{
		{Email: "student1@registra.local", Password: hashed, FirstName: "Demo", LastName: "Student One", RoleType: appModels.RoleStudent},
		{Email: "student2@registra.local", Password: hashed, FirstName: "Demo", LastName: "Student Two", RoleType: appModels.RoleStudent},
	}
	for _, student := range students {
		if err := userRepo.Create(ctx, student); err != nil {
			return err
		}
	}

	course, err := courseRepo.GetByCode(ctx, "CS101")
	if err != nil {
		return err
	}

	offering := &appModels.CourseOffering{
		CourseID:     course.ID,
		InstructorID: instructor.ID,
		Year:         time.Now().Year(),
		Period:       appModels.PeriodFirst,
		Section:      "A",
	}
	if err := offeringRepo.Create(ctx, offering); err != nil {
		return err
	}

	for _, student := range students {
		enrollment := &appModels.Enrollment{
			StudentID:        student.ID,
			CourseOfferingID: offering.ID,
		}
		if err := enrollmentRepo.Create(ctx, enrollment); err != nil {
			return err
		}
	}

	logger.Info().Int64("offeringId", offering.ID).Msg("Demo term created")
	return nil
}
