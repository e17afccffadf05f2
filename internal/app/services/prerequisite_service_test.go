package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/app/models/dto"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
	"github.com/tkaraca/registra/internal/pkg/cache"
)

type prereqFixture struct {
	edges       *fakePrereqStore
	enrollments *fakeEnrollmentStore
	service     PrerequisiteService
}

func newPrereqFixture(courses ...*models.Course) *prereqFixture {
	courseStore := newFakeCourseStore(courses...)
	f := &prereqFixture{
		edges:       newFakePrereqStore(courseStore),
		enrollments: newFakeEnrollmentStore(newFakeOfferingStore()),
	}
	f.service = NewPrerequisiteService(f.edges, courseStore, f.enrollments, &cache.TreeCache{})
	return f
}

var prereqAdmin = models.Caller{UserID: 1, Role: models.RoleAdministrator}

func curriculum() []*models.Course {
	return []*models.Course{
		{ID: 1, Code: "CS101", Name: "Programming I", Level: 1},
		{ID: 2, Code: "CS102", Name: "Programming II", Level: 2},
		{ID: 3, Code: "CS201", Name: "Data Structures", Level: 3},
		{ID: 4, Code: "CS301", Name: "Algorithms", Level: 4},
	}
}

func TestAddEdge(t *testing.T) {
	ctx := context.Background()

	t.Run("valid edge", func(t *testing.T) {
		f := newPrereqFixture(curriculum()...)
		edge, err := f.service.AddEdge(ctx, prereqAdmin, 2, &dto.AddPrerequisiteRequest{PrerequisiteID: 1, Mandatory: true})
		require.NoError(t, err)
		assert.Equal(t, int64(2), edge.CourseID)
		assert.Equal(t, int64(1), edge.PrerequisiteID)
		assert.True(t, edge.Mandatory)
	})

	t.Run("self-edge is rejected", func(t *testing.T) {
		f := newPrereqFixture(curriculum()...)
		_, err := f.service.AddEdge(ctx, prereqAdmin, 2, &dto.AddPrerequisiteRequest{PrerequisiteID: 2})
		assert.ErrorIs(t, err, apperrors.ErrSelfPrerequisite)
	})

	t.Run("prerequisite at same or later level is rejected", func(t *testing.T) {
		f := newPrereqFixture(curriculum()...)
		_, err := f.service.AddEdge(ctx, prereqAdmin, 2, &dto.AddPrerequisiteRequest{PrerequisiteID: 3})
		assert.ErrorIs(t, err, apperrors.ErrPrerequisiteOrdering)

		f2 := newPrereqFixture(
			&models.Course{ID: 1, Code: "CS101", Level: 2},
			&models.Course{ID: 2, Code: "CS102", Level: 2},
		)
		_, err = f2.service.AddEdge(ctx, prereqAdmin, 2, &dto.AddPrerequisiteRequest{PrerequisiteID: 1})
		assert.ErrorIs(t, err, apperrors.ErrPrerequisiteOrdering)
	})

	t.Run("duplicate edge is rejected", func(t *testing.T) {
		f := newPrereqFixture(curriculum()...)
		_, err := f.service.AddEdge(ctx, prereqAdmin, 2, &dto.AddPrerequisiteRequest{PrerequisiteID: 1})
		require.NoError(t, err)
		_, err = f.service.AddEdge(ctx, prereqAdmin, 2, &dto.AddPrerequisiteRequest{PrerequisiteID: 1, Mandatory: true})
		assert.ErrorIs(t, err, apperrors.ErrDuplicatePrerequisite)
	})

	t.Run("unknown courses are rejected", func(t *testing.T) {
		f := newPrereqFixture(curriculum()...)
		_, err := f.service.AddEdge(ctx, prereqAdmin, 999, &dto.AddPrerequisiteRequest{PrerequisiteID: 1})
		assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
		_, err = f.service.AddEdge(ctx, prereqAdmin, 2, &dto.AddPrerequisiteRequest{PrerequisiteID: 999})
		assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		f := newPrereqFixture(curriculum()...)
		_, err := f.service.AddEdge(ctx, models.Caller{UserID: 100, Role: models.RoleInstructor},
			2, &dto.AddPrerequisiteRequest{PrerequisiteID: 1})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}

func TestCheckSatisfaction(t *testing.T) {
	ctx := context.Background()
	f := newPrereqFixture(curriculum()...)
	f.edges.link(3, 1, true)  // Data Structures requires Programming I
	f.edges.link(3, 2, true)  // and Programming II
	f.edges.link(3, 4, false) // Algorithms is only recommended

	t.Run("all mandatory passed", func(t *testing.T) {
		f.enrollments.passedCourses[201] = []int64{1, 2}
		resp, err := f.service.CheckSatisfaction(ctx, 201, 3)
		require.NoError(t, err)
		assert.True(t, resp.Satisfied)
		assert.Equal(t, 2, resp.MandatoryMet)
		assert.Equal(t, 2, resp.MandatoryTotal)
		assert.Len(t, resp.Prerequisites, 3)
	})

	t.Run("missing a mandatory prerequisite blocks", func(t *testing.T) {
		f.enrollments.passedCourses[202] = []int64{1}
		resp, err := f.service.CheckSatisfaction(ctx, 202, 3)
		require.NoError(t, err)
		assert.False(t, resp.Satisfied)
		assert.Equal(t, 1, resp.MandatoryMet)
	})

	t.Run("optional prerequisites never block", func(t *testing.T) {
		// Student 201 passed both mandatory courses but not the optional one
		resp, err := f.service.CheckSatisfaction(ctx, 201, 3)
		require.NoError(t, err)
		assert.True(t, resp.Satisfied)
		for _, p := range resp.Prerequisites {
			if p.CourseID == 4 {
				assert.False(t, p.Passed)
			}
		}
	})

	t.Run("course with no prerequisites is satisfied", func(t *testing.T) {
		resp, err := f.service.CheckSatisfaction(ctx, 202, 1)
		require.NoError(t, err)
		assert.True(t, resp.Satisfied)
		assert.Empty(t, resp.Prerequisites)
	})
}

func TestBuildTree(t *testing.T) {
	ctx := context.Background()

	t.Run("linear chain", func(t *testing.T) {
		f := newPrereqFixture(curriculum()...)
		f.edges.link(3, 2, true)
		f.edges.link(2, 1, true)

		tree, err := f.service.BuildTree(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "CS201", tree.Code)
		require.Len(t, tree.Prerequisites, 1)
		assert.Equal(t, "CS102", tree.Prerequisites[0].Code)
		require.Len(t, tree.Prerequisites[0].Prerequisites, 1)
		assert.Equal(t, "CS101", tree.Prerequisites[0].Prerequisites[0].Code)
	})

	t.Run("cycle in stored data terminates", func(t *testing.T) {
		f := newPrereqFixture(curriculum()...)
		// Seeded directly: the service would never accept these edges
		f.edges.link(1, 2, true)
		f.edges.link(2, 3, true)
		f.edges.link(3, 1, true)

		tree, err := f.service.BuildTree(ctx, 1)
		require.NoError(t, err)
		require.Len(t, tree.Prerequisites, 1)
		b := tree.Prerequisites[0]
		require.Len(t, b.Prerequisites, 1)
		c := b.Prerequisites[0]
		// The repeated course appears once more but is not descended into
		require.Len(t, c.Prerequisites, 1)
		assert.Equal(t, int64(1), c.Prerequisites[0].CourseID)
		assert.Empty(t, c.Prerequisites[0].Prerequisites)
	})

	t.Run("diamond dependency expands on both branches", func(t *testing.T) {
		f := newPrereqFixture(curriculum()...)
		f.edges.link(4, 2, true)
		f.edges.link(4, 3, true)
		f.edges.link(2, 1, true)
		f.edges.link(3, 1, true)

		tree, err := f.service.BuildTree(ctx, 4)
		require.NoError(t, err)
		require.Len(t, tree.Prerequisites, 2)
		for _, branch := range tree.Prerequisites {
			require.Len(t, branch.Prerequisites, 1, "branch %s", branch.Code)
			assert.Equal(t, int64(1), branch.Prerequisites[0].CourseID)
		}
	})

	t.Run("unknown course", func(t *testing.T) {
		f := newPrereqFixture(curriculum()...)
		_, err := f.service.BuildTree(ctx, 999)
		assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	})
}
