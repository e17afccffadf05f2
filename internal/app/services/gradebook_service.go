package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/app/models/dto"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
	"github.com/tkaraca/registra/internal/pkg/logger"
)

// WeightedGrade is the aggregate of a single enrollment's grade ledger.
type WeightedGrade struct {
	// FinalScore is the sum of score*percentage/100 over all entries.
	FinalScore float64
	// PartialAverage projects the final score onto the graded portion of
	// the scheme. Nil when nothing has been graded yet.
	PartialAverage *float64
	// CompletedPercentage is the sum of the weights of graded components.
	CompletedPercentage float64
	EntryCount          int
}

// ComputeWeightedGrade folds a grade ledger into its weighted aggregate.
// It is a pure function of the entries; the closing coordinator and the
// read endpoint share it so both always agree on the numbers.
func ComputeWeightedGrade(entries []*models.GradeEntryDetail) WeightedGrade {
	grade := WeightedGrade{EntryCount: len(entries)}
	for _, entry := range entries {
		grade.FinalScore += entry.Score * entry.ComponentPercentage / 100
		grade.CompletedPercentage += entry.ComponentPercentage
	}
	if grade.CompletedPercentage > 0 {
		average := grade.FinalScore / grade.CompletedPercentage * 100
		grade.PartialAverage = &average
	}
	return grade
}

// GradebookService records grades and reports weighted aggregates.
type GradebookService interface {
	RecordGrade(ctx context.Context, caller models.Caller, req *dto.RecordGradeRequest) (*models.GradeEntry, error)
	GetWeightedGrade(ctx context.Context, enrollmentID int64) (*dto.WeightedGradeResponse, error)
	ListEntries(ctx context.Context, enrollmentID int64) ([]*models.GradeEntryDetail, error)
}

type gradebookServiceImpl struct {
	grades      GradeEntryStore
	enrollments EnrollmentStore
	offerings   OfferingStore
	components  ComponentStore
	logger      zerolog.Logger
}

// NewGradebookService creates a new instance of GradebookService
func NewGradebookService(
	grades GradeEntryStore,
	enrollments EnrollmentStore,
	offerings OfferingStore,
	components ComponentStore,
) GradebookService {
	return &gradebookServiceImpl{
		grades:      grades,
		enrollments: enrollments,
		offerings:   offerings,
		components:  components,
		logger:      logger.WithField("service", "gradebook"),
	}
}

// RecordGrade appends one score to an enrollment's grade ledger. Grades are
// append-only: a second entry for the same component is rejected, and no
// entry can be added once the offering has been closed.
func (s *gradebookServiceImpl) RecordGrade(ctx context.Context, caller models.Caller, req *dto.RecordGradeRequest) (*models.GradeEntry, error) {
	if caller.Role == models.RoleStudent {
		return nil, apperrors.ErrPermissionDenied
	}

	enrollment, err := s.enrollments.GetWithOffering(ctx, req.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Offering == nil {
		return nil, apperrors.ErrOfferingNotFound
	}
	if enrollment.Offering.Closed {
		return nil, apperrors.ErrOfferingAlreadyClosed
	}

	if caller.Role == models.RoleInstructor {
		assigned, err := s.offerings.IsInstructorAssigned(ctx, caller.UserID, enrollment.CourseOfferingID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, apperrors.ErrNotAssigned
		}
	}

	component, err := s.components.GetByID(ctx, req.EvaluationComponentID)
	if err != nil {
		return nil, err
	}
	if component.CourseID != enrollment.Offering.CourseID {
		return nil, fmt.Errorf("%w: component %d does not belong to the enrollment's course", apperrors.ErrComponentNotFound, req.EvaluationComponentID)
	}
	if !component.Active {
		return nil, fmt.Errorf("%w: component %d is inactive", apperrors.ErrComponentNotFound, req.EvaluationComponentID)
	}
	if req.Score < 0 || req.Score > 100 {
		return nil, fmt.Errorf("%w: score must be between 0 and 100", apperrors.ErrInvalidRange)
	}

	entry := &models.GradeEntry{
		EnrollmentID:          req.EnrollmentID,
		EvaluationComponentID: req.EvaluationComponentID,
		Score:                 req.Score,
		RecordedBy:            caller.UserID,
		Remarks:               req.Remarks,
		CreatedAt:             time.Now(),
	}
	if err := s.grades.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("enrollmentId", entry.EnrollmentID).
		Int64("componentId", entry.EvaluationComponentID).
		Float64("score", entry.Score).
		Msg("Grade recorded")

	return entry, nil
}

// GetWeightedGrade returns the weighted aggregate of an enrollment's ledger.
func (s *gradebookServiceImpl) GetWeightedGrade(ctx context.Context, enrollmentID int64) (*dto.WeightedGradeResponse, error) {
	if _, err := s.enrollments.GetByID(ctx, enrollmentID); err != nil {
		return nil, err
	}

	entries, err := s.grades.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	grade := ComputeWeightedGrade(entries)
	return &dto.WeightedGradeResponse{
		EnrollmentID:        enrollmentID,
		FinalScore:          grade.FinalScore,
		PartialAverage:      grade.PartialAverage,
		CompletedPercentage: grade.CompletedPercentage,
		EntryCount:          grade.EntryCount,
	}, nil
}

// ListEntries returns the raw ledger with component details.
func (s *gradebookServiceImpl) ListEntries(ctx context.Context, enrollmentID int64) ([]*models.GradeEntryDetail, error) {
	if _, err := s.enrollments.GetByID(ctx, enrollmentID); err != nil {
		return nil, err
	}
	return s.grades.ListByEnrollment(ctx, enrollmentID)
}
