package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/app/models/dto"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
	"github.com/tkaraca/registra/internal/pkg/logger"
)

// ClosingService coordinates the atomic closing and reopening of course
// offerings.
type ClosingService interface {
	CloseOffering(ctx context.Context, caller models.Caller, offeringID int64) (*dto.ClosingStats, error)
	ReopenOffering(ctx context.Context, caller models.Caller, offeringID int64) error
	GetOffering(ctx context.Context, offeringID int64) (*dto.OfferingResponse, error)
	GetAcademicHistory(ctx context.Context, caller models.Caller, studentID int64, year int, period models.Period) (*models.AcademicHistory, error)
}

type closingServiceImpl struct {
	offerings     OfferingStore
	enrollments   EnrollmentStore
	grades        GradeEntryStore
	history       HistoryStore
	audit         AuditRecorder
	tx            TxRunner
	passThreshold float64
	logger        zerolog.Logger
}

// NewClosingService creates a new instance of ClosingService
func NewClosingService(
	offerings OfferingStore,
	enrollments EnrollmentStore,
	grades GradeEntryStore,
	history HistoryStore,
	audit AuditRecorder,
	tx TxRunner,
	passThreshold float64,
) ClosingService {
	return &closingServiceImpl{
		offerings:     offerings,
		enrollments:   enrollments,
		grades:        grades,
		history:       history,
		audit:         audit,
		tx:            tx,
		passThreshold: passThreshold,
		logger:        logger.WithField("service", "closing"),
	}
}

// CloseOffering finalizes an offering. Every registered enrollment gets a
// terminal status derived from its weighted grade, the affected students'
// academic-history rollups are recomputed, and the offering is marked
// closed, all inside one transaction. The offering row is locked for the
// duration so concurrent closes of the same offering serialize and the
// loser fails with ErrOfferingAlreadyClosed.
func (s *closingServiceImpl) CloseOffering(ctx context.Context, caller models.Caller, offeringID int64) (*dto.ClosingStats, error) {
	offering, err := s.offerings.GetByID(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, caller, offeringID); err != nil {
		return nil, err
	}
	if offering.Closed {
		return nil, apperrors.ErrOfferingAlreadyClosed
	}

	stats := &dto.ClosingStats{}
	now := time.Now()

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		locked, err := s.offerings.GetForUpdate(ctx, tx, offeringID)
		if err != nil {
			return err
		}
		// Re-check under the lock: a concurrent close may have won the
		// race between the first read and here.
		if locked.Closed {
			return apperrors.ErrOfferingAlreadyClosed
		}

		enrollments, err := s.enrollments.ListRegisteredByOffering(ctx, offeringID)
		if err != nil {
			return err
		}

		students := make([]int64, 0, len(enrollments))
		for _, enrollment := range enrollments {
			entries, err := s.grades.ListByEnrollment(ctx, enrollment.ID)
			if err != nil {
				return err
			}

			status := s.decideStatus(ComputeWeightedGrade(entries))
			if err := s.enrollments.UpdateStatus(ctx, tx, enrollment.ID, status); err != nil {
				return err
			}

			switch status {
			case models.EnrollmentPassed:
				stats.Passed++
			case models.EnrollmentFailed:
				stats.Failed++
			case models.EnrollmentWithdrawn:
				stats.Withdrawn++
			}
			students = append(students, enrollment.StudentID)
		}
		stats.Total = len(enrollments)

		for _, studentID := range students {
			if err := s.history.RecomputeHistory(ctx, tx, studentID, locked.Year, locked.Period); err != nil {
				return err
			}
		}

		return s.offerings.MarkClosed(ctx, tx, offeringID, caller.UserID, now)
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrOfferingAlreadyClosed, apperrors.ErrOfferingNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("offeringId", offeringID).Msg("Closing transaction rolled back")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransactionFailed, err)
	}

	s.recordAudit(ctx, caller, "offering.close", offeringID, map[string]interface{}{
		"passed":    stats.Passed,
		"failed":    stats.Failed,
		"withdrawn": stats.Withdrawn,
		"total":     stats.Total,
		"year":      offering.Year,
		"period":    offering.Period,
		"section":   offering.Section,
	})

	s.logger.Info().
		Int64("offeringId", offeringID).
		Int("passed", stats.Passed).
		Int("failed", stats.Failed).
		Int("withdrawn", stats.Withdrawn).
		Msg("Course offering closed")

	return stats, nil
}

// ReopenOffering undoes a close: all enrollments of the offering return to
// REGISTERED, the affected rollups are recomputed, and the closed flag is
// cleared, atomically. Administrators only.
func (s *closingServiceImpl) ReopenOffering(ctx context.Context, caller models.Caller, offeringID int64) error {
	if !caller.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}

	offering, err := s.offerings.GetByID(ctx, offeringID)
	if err != nil {
		return err
	}
	if !offering.Closed {
		return apperrors.ErrOfferingNotClosed
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		locked, err := s.offerings.GetForUpdate(ctx, tx, offeringID)
		if err != nil {
			return err
		}
		if !locked.Closed {
			return apperrors.ErrOfferingNotClosed
		}

		enrollments, err := s.enrollments.ListByOffering(ctx, offeringID)
		if err != nil {
			return err
		}

		if err := s.enrollments.ResetStatusesByOffering(ctx, tx, offeringID); err != nil {
			return err
		}

		seen := make(map[int64]bool, len(enrollments))
		for _, enrollment := range enrollments {
			if seen[enrollment.StudentID] {
				continue
			}
			seen[enrollment.StudentID] = true
			if err := s.history.RecomputeHistory(ctx, tx, enrollment.StudentID, locked.Year, locked.Period); err != nil {
				return err
			}
		}

		return s.offerings.ClearClosed(ctx, tx, offeringID)
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrOfferingNotClosed, apperrors.ErrOfferingNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("offeringId", offeringID).Msg("Reopen transaction rolled back")
		return fmt.Errorf("%w: %v", apperrors.ErrTransactionFailed, err)
	}

	s.recordAudit(ctx, caller, "offering.reopen", offeringID, map[string]interface{}{
		"year":    offering.Year,
		"period":  offering.Period,
		"section": offering.Section,
	})

	s.logger.Info().Int64("offeringId", offeringID).Msg("Course offering reopened")
	return nil
}

// GetOffering returns the read view of an offering with course details.
func (s *closingServiceImpl) GetOffering(ctx context.Context, offeringID int64) (*dto.OfferingResponse, error) {
	offering, err := s.offerings.GetWithCourse(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	resp := &dto.OfferingResponse{
		ID:           offering.ID,
		CourseID:     offering.CourseID,
		InstructorID: offering.InstructorID,
		Year:         offering.Year,
		Period:       string(offering.Period),
		Section:      offering.Section,
		Closed:       offering.Closed,
		ClosedAt:     offering.ClosedAt,
		ClosedBy:     offering.ClosedBy,
	}
	if offering.Course != nil {
		resp.CourseCode = offering.Course.Code
		resp.CourseName = offering.Course.Name
	}
	return resp, nil
}

// GetAcademicHistory returns one student's rollup for one term. Students may
// only read their own; staff may read anyone's.
func (s *closingServiceImpl) GetAcademicHistory(ctx context.Context, caller models.Caller, studentID int64, year int, period models.Period) (*models.AcademicHistory, error) {
	if caller.Role == models.RoleStudent && caller.UserID != studentID {
		return nil, apperrors.ErrPermissionDenied
	}
	return s.history.GetByStudentTerm(ctx, studentID, year, period)
}

// authorize checks that the caller may close or inspect the offering:
// administrators always may, instructors only when the offering's
// assignment record matches them exactly.
func (s *closingServiceImpl) authorize(ctx context.Context, caller models.Caller, offeringID int64) error {
	switch caller.Role {
	case models.RoleAdministrator:
		return nil
	case models.RoleInstructor:
		assigned, err := s.offerings.IsInstructorAssigned(ctx, caller.UserID, offeringID)
		if err != nil {
			return err
		}
		if !assigned {
			return apperrors.ErrNotAssigned
		}
		return nil
	default:
		return apperrors.ErrPermissionDenied
	}
}

// decideStatus maps a weighted grade to a terminal enrollment status. An
// empty ledger means the student never produced gradable work and counts
// as withdrawn, not failed.
func (s *closingServiceImpl) decideStatus(grade WeightedGrade) models.EnrollmentStatus {
	if grade.EntryCount == 0 {
		return models.EnrollmentWithdrawn
	}
	if grade.FinalScore >= s.passThreshold {
		return models.EnrollmentPassed
	}
	return models.EnrollmentFailed
}

func (s *closingServiceImpl) recordAudit(ctx context.Context, caller models.Caller, action string, offeringID int64, details map[string]interface{}) {
	record := &models.AuditRecord{
		ActorID:    caller.UserID,
		Action:     action,
		EntityType: "course_offering",
		EntityID:   offeringID,
		Details:    details,
	}
	if err := s.audit.Record(ctx, record); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Int64("offeringId", offeringID).Msg("Failed to write audit record")
	}
}
