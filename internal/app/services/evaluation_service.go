package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/app/models/dto"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
	"github.com/tkaraca/registra/internal/pkg/logger"
)

// EvaluationService manages the percentage-weighted evaluation scheme of a
// course. The invariant it protects: the percentages of a course's active
// components never sum above 100.
type EvaluationService interface {
	AddComponent(ctx context.Context, caller models.Caller, req *dto.CreateEvaluationComponentRequest) (*models.EvaluationComponent, error)
	UpdateComponent(ctx context.Context, caller models.Caller, id int64, req *dto.UpdateEvaluationComponentRequest) (*models.EvaluationComponent, error)
	DeactivateComponent(ctx context.Context, caller models.Caller, id int64) error
	ListComponents(ctx context.Context, courseID int64) ([]*models.EvaluationComponent, error)
}

type evaluationServiceImpl struct {
	components ComponentStore
	courses    CourseStore
	grades     GradeEntryStore
	logger     zerolog.Logger
}

// NewEvaluationService creates a new instance of EvaluationService
func NewEvaluationService(components ComponentStore, courses CourseStore, grades GradeEntryStore) EvaluationService {
	return &evaluationServiceImpl{
		components: components,
		courses:    courses,
		grades:     grades,
		logger:     logger.WithField("service", "evaluation"),
	}
}

// AddComponent adds a new active component to a course's scheme after
// checking the weight budget.
func (s *evaluationServiceImpl) AddComponent(ctx context.Context, caller models.Caller, req *dto.CreateEvaluationComponentRequest) (*models.EvaluationComponent, error) {
	if caller.Role == models.RoleStudent {
		return nil, apperrors.ErrPermissionDenied
	}

	if _, err := s.courses.GetByID(ctx, req.CourseID); err != nil {
		return nil, err
	}
	if err := validateComponentValues(req.Percentage, req.DisplayOrder); err != nil {
		return nil, err
	}

	allocated, err := s.components.SumActivePercentages(ctx, req.CourseID, 0)
	if err != nil {
		return nil, err
	}
	if allocated+req.Percentage > 100 {
		return nil, overAllocationError(allocated, req.Percentage)
	}

	component := &models.EvaluationComponent{
		CourseID:     req.CourseID,
		Name:         req.Name,
		Percentage:   req.Percentage,
		DisplayOrder: req.DisplayOrder,
		Active:       true,
	}
	if err := s.components.Create(ctx, component); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("courseId", component.CourseID).
		Str("name", component.Name).
		Float64("percentage", component.Percentage).
		Msg("Evaluation component added")

	return component, nil
}

// UpdateComponent applies a partial update. The weight budget is re-checked
// against the component's target state, so reactivating or growing a
// component cannot push the active sum above 100.
func (s *evaluationServiceImpl) UpdateComponent(ctx context.Context, caller models.Caller, id int64, req *dto.UpdateEvaluationComponentRequest) (*models.EvaluationComponent, error) {
	if caller.Role == models.RoleStudent {
		return nil, apperrors.ErrPermissionDenied
	}

	component, err := s.components.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		component.Name = *req.Name
	}
	if req.Percentage != nil {
		component.Percentage = *req.Percentage
	}
	if req.DisplayOrder != nil {
		component.DisplayOrder = *req.DisplayOrder
	}
	if req.Active != nil {
		component.Active = *req.Active
	}

	if err := validateComponentValues(component.Percentage, component.DisplayOrder); err != nil {
		return nil, err
	}

	if component.Active {
		allocated, err := s.components.SumActivePercentages(ctx, component.CourseID, component.ID)
		if err != nil {
			return nil, err
		}
		if allocated+component.Percentage > 100 {
			return nil, overAllocationError(allocated, component.Percentage)
		}
	}

	if err := s.components.Update(ctx, component); err != nil {
		return nil, err
	}
	return component, nil
}

// DeactivateComponent removes a component from the active scheme. A
// component that has been graded is only soft-deactivated so the ledger
// entries pointing at it keep their weight; an ungraded one is deleted
// outright.
func (s *evaluationServiceImpl) DeactivateComponent(ctx context.Context, caller models.Caller, id int64) error {
	if caller.Role == models.RoleStudent {
		return apperrors.ErrPermissionDenied
	}

	component, err := s.components.GetByID(ctx, id)
	if err != nil {
		return err
	}

	graded, err := s.grades.ExistsForComponent(ctx, id)
	if err != nil {
		return err
	}
	if graded {
		if err := s.components.Deactivate(ctx, id); err != nil {
			return err
		}
		s.logger.Info().Int64("componentId", id).Int64("courseId", component.CourseID).Msg("Evaluation component deactivated")
		return nil
	}

	if err := s.components.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("componentId", id).Int64("courseId", component.CourseID).Msg("Evaluation component deleted")
	return nil
}

// ListComponents returns all components of a course, active and inactive.
func (s *evaluationServiceImpl) ListComponents(ctx context.Context, courseID int64) ([]*models.EvaluationComponent, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.components.ListByCourse(ctx, courseID)
}

// overAllocationError carries the budget numbers so the error response can
// tell the caller how much weight is actually left.
func overAllocationError(allocated, requested float64) error {
	message := fmt.Sprintf("%s: %.2f already allocated, requested %.2f",
		apperrors.ErrOverAllocation.Error(), allocated, requested)
	return apperrors.NewCustomError(apperrors.ErrOverAllocation, message).
		WithDetails(map[string]interface{}{
			"allocated": allocated,
			"requested": requested,
			"available": 100 - allocated,
		})
}

func validateComponentValues(percentage float64, displayOrder int) error {
	if percentage <= 0 || percentage > 100 {
		return fmt.Errorf("%w: percentage must be greater than 0 and at most 100", apperrors.ErrInvalidRange)
	}
	if displayOrder < 1 {
		return fmt.Errorf("%w: display order must be at least 1", apperrors.ErrInvalidRange)
	}
	return nil
}
