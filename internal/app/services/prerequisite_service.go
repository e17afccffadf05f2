package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/app/models/dto"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
	"github.com/tkaraca/registra/internal/pkg/cache"
	"github.com/tkaraca/registra/internal/pkg/logger"
)

// PrerequisiteService maintains the course dependency graph and answers
// satisfaction and expansion queries over it.
type PrerequisiteService interface {
	AddEdge(ctx context.Context, caller models.Caller, courseID int64, req *dto.AddPrerequisiteRequest) (*models.PrerequisiteEdge, error)
	CheckSatisfaction(ctx context.Context, studentID, courseID int64) (*dto.PrerequisiteCheckResponse, error)
	BuildTree(ctx context.Context, courseID int64) (*models.PrerequisiteTree, error)
}

type prerequisiteServiceImpl struct {
	edges       PrerequisiteStore
	courses     CourseStore
	enrollments EnrollmentStore
	trees       *cache.TreeCache
	logger      zerolog.Logger
}

// NewPrerequisiteService creates a new instance of PrerequisiteService
func NewPrerequisiteService(edges PrerequisiteStore, courses CourseStore, enrollments EnrollmentStore, trees *cache.TreeCache) PrerequisiteService {
	return &prerequisiteServiceImpl{
		edges:       edges,
		courses:     courses,
		enrollments: enrollments,
		trees:       trees,
		logger:      logger.WithField("service", "prerequisite"),
	}
}

// AddEdge records that courseID requires req.PrerequisiteID. Self-edges,
// duplicates and edges that invert the curriculum ordering are rejected.
func (s *prerequisiteServiceImpl) AddEdge(ctx context.Context, caller models.Caller, courseID int64, req *dto.AddPrerequisiteRequest) (*models.PrerequisiteEdge, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}
	if courseID == req.PrerequisiteID {
		return nil, apperrors.ErrSelfPrerequisite
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	prerequisite, err := s.courses.GetByID(ctx, req.PrerequisiteID)
	if err != nil {
		return nil, err
	}
	if prerequisite.Level >= course.Level {
		return nil, fmt.Errorf("%w: %s (level %d) cannot require %s (level %d)",
			apperrors.ErrPrerequisiteOrdering, course.Code, course.Level, prerequisite.Code, prerequisite.Level)
	}

	exists, err := s.edges.Exists(ctx, courseID, req.PrerequisiteID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicatePrerequisite
	}

	edge := &models.PrerequisiteEdge{
		CourseID:       courseID,
		PrerequisiteID: req.PrerequisiteID,
		Mandatory:      req.Mandatory,
	}
	if err := s.edges.Create(ctx, edge); err != nil {
		return nil, err
	}

	// Cached expansions of any course that reaches courseID are stale now.
	// Dropping just this course's tree covers the common case; the TTL
	// catches the transitive ones.
	s.trees.InvalidateTree(ctx, courseID)

	s.logger.Info().
		Int64("courseId", courseID).
		Int64("prerequisiteId", req.PrerequisiteID).
		Bool("mandatory", req.Mandatory).
		Msg("Prerequisite edge added")

	return edge, nil
}

// CheckSatisfaction reports whether the student has passed every mandatory
// direct prerequisite of the course. Optional prerequisites are reported
// but never block.
func (s *prerequisiteServiceImpl) CheckSatisfaction(ctx context.Context, studentID, courseID int64) (*dto.PrerequisiteCheckResponse, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	edges, err := s.edges.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PrerequisiteCheckResponse{
		StudentID:     studentID,
		CourseID:      courseID,
		Prerequisites: make([]dto.PrerequisiteStatus, 0, len(edges)),
	}
	for _, edge := range edges {
		passed, err := s.enrollments.HasPassedCourse(ctx, studentID, edge.PrerequisiteID)
		if err != nil {
			return nil, err
		}
		resp.Prerequisites = append(resp.Prerequisites, dto.PrerequisiteStatus{
			CourseID:  edge.PrerequisiteID,
			Code:      edge.PrerequisiteCode,
			Name:      edge.PrerequisiteName,
			Mandatory: edge.Mandatory,
			Passed:    passed,
		})
		if edge.Mandatory {
			resp.MandatoryTotal++
			if passed {
				resp.MandatoryMet++
			}
		}
	}
	resp.Satisfied = resp.MandatoryMet == resp.MandatoryTotal
	return resp, nil
}

// BuildTree expands the full transitive prerequisite tree of a course.
func (s *prerequisiteServiceImpl) BuildTree(ctx context.Context, courseID int64) (*models.PrerequisiteTree, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if tree, ok := s.trees.GetTree(ctx, courseID); ok {
		return tree, nil
	}

	root := &models.PrerequisiteTree{
		CourseID: course.ID,
		Code:     course.Code,
		Name:     course.Name,
	}
	path := map[int64]bool{courseID: true}
	if err := s.expand(ctx, root, path); err != nil {
		return nil, err
	}

	s.trees.SetTree(ctx, courseID, root)
	return root, nil
}

// expand fills node.Prerequisites by descending the edge relation. The path
// set tracks ancestors of the current branch only: a course repeated on the
// current path marks a cycle in the stored data and is cut off there, while
// a course shared between sibling branches (a diamond) is expanded on each
// branch it appears in.
func (s *prerequisiteServiceImpl) expand(ctx context.Context, node *models.PrerequisiteTree, path map[int64]bool) error {
	edges, err := s.edges.ListByCourse(ctx, node.CourseID)
	if err != nil {
		return err
	}

	for _, edge := range edges {
		child := &models.PrerequisiteTree{
			CourseID:  edge.PrerequisiteID,
			Code:      edge.PrerequisiteCode,
			Name:      edge.PrerequisiteName,
			Mandatory: edge.Mandatory,
		}
		node.Prerequisites = append(node.Prerequisites, child)

		if path[edge.PrerequisiteID] {
			continue
		}
		path[edge.PrerequisiteID] = true
		if err := s.expand(ctx, child, path); err != nil {
			return err
		}
		delete(path, edge.PrerequisiteID)
	}
	return nil
}
