package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
)

const passThreshold = 51.0

type closingFixture struct {
	offerings   *fakeOfferingStore
	enrollments *fakeEnrollmentStore
	grades      *fakeGradeStore
	history     *fakeHistoryStore
	audit       *fakeAuditRecorder
	service     ClosingService
}

func newClosingFixture(offering *models.CourseOffering, enrollments ...*models.Enrollment) *closingFixture {
	f := &closingFixture{
		offerings: newFakeOfferingStore(offering),
		grades:    newFakeGradeStore(),
		history:   &fakeHistoryStore{},
		audit:     &fakeAuditRecorder{},
	}
	f.enrollments = newFakeEnrollmentStore(f.offerings, enrollments...)
	f.service = NewClosingService(f.offerings, f.enrollments, f.grades, f.history, f.audit, fakeTxRunner{}, passThreshold)
	return f
}

func testOffering() *models.CourseOffering {
	return &models.CourseOffering{
		ID:           10,
		CourseID:     1,
		InstructorID: 100,
		Year:         2025,
		Period:       models.PeriodFirst,
		Section:      "A",
	}
}

func TestCloseOffering_AssignsTerminalStatuses(t *testing.T) {
	ctx := context.Background()
	f := newClosingFixture(testOffering(),
		&models.Enrollment{ID: 1, StudentID: 201, CourseOfferingID: 10, Status: models.EnrollmentRegistered},
		&models.Enrollment{ID: 2, StudentID: 202, CourseOfferingID: 10, Status: models.EnrollmentRegistered},
		&models.Enrollment{ID: 3, StudentID: 203, CourseOfferingID: 10, Status: models.EnrollmentRegistered},
	)
	// Student 201 lands exactly on the threshold, 202 just below it,
	// 203 never produced gradable work.
	f.grades.add(1, 50, 51.0, 100)
	f.grades.add(2, 50, 50.99, 100)

	admin := models.Caller{UserID: 1, Role: models.RoleAdministrator}
	stats, err := f.service.CloseOffering(ctx, admin, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Withdrawn)
	assert.Equal(t, 3, stats.Total)

	assert.Equal(t, models.EnrollmentPassed, f.enrollments.enrollments[1].Status)
	assert.Equal(t, models.EnrollmentFailed, f.enrollments.enrollments[2].Status)
	assert.Equal(t, models.EnrollmentWithdrawn, f.enrollments.enrollments[3].Status)

	offering := f.offerings.offerings[10]
	assert.True(t, offering.Closed)
	require.NotNil(t, offering.ClosedBy)
	assert.Equal(t, int64(1), *offering.ClosedBy)
	assert.NotNil(t, offering.ClosedAt)

	// One history recompute per affected student, inside the transaction
	assert.Len(t, f.history.calls, 3)
	for _, call := range f.history.calls {
		assert.Equal(t, 2025, call.year)
		assert.Equal(t, models.PeriodFirst, call.period)
	}

	require.Len(t, f.audit.records, 1)
	assert.Equal(t, "offering.close", f.audit.records[0].Action)
	assert.Equal(t, int64(10), f.audit.records[0].EntityID)
}

func TestCloseOffering_InstructorAuthorization(t *testing.T) {
	ctx := context.Background()

	t.Run("assigned instructor may close", func(t *testing.T) {
		f := newClosingFixture(testOffering())
		_, err := f.service.CloseOffering(ctx, models.Caller{UserID: 100, Role: models.RoleInstructor}, 10)
		assert.NoError(t, err)
	})

	t.Run("unassigned instructor is rejected", func(t *testing.T) {
		f := newClosingFixture(testOffering())
		_, err := f.service.CloseOffering(ctx, models.Caller{UserID: 999, Role: models.RoleInstructor}, 10)
		assert.ErrorIs(t, err, apperrors.ErrNotAssigned)
		assert.False(t, f.offerings.offerings[10].Closed)
	})

	t.Run("student is rejected", func(t *testing.T) {
		f := newClosingFixture(testOffering())
		_, err := f.service.CloseOffering(ctx, models.Caller{UserID: 201, Role: models.RoleStudent}, 10)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}

func TestCloseOffering_AlreadyClosed(t *testing.T) {
	ctx := context.Background()
	offering := testOffering()
	offering.Closed = true
	f := newClosingFixture(offering,
		&models.Enrollment{ID: 1, StudentID: 201, CourseOfferingID: 10, Status: models.EnrollmentPassed},
	)

	_, err := f.service.CloseOffering(ctx, models.Caller{UserID: 1, Role: models.RoleAdministrator}, 10)
	assert.ErrorIs(t, err, apperrors.ErrOfferingAlreadyClosed)

	// Nothing changed and nothing was audited
	assert.Equal(t, models.EnrollmentPassed, f.enrollments.enrollments[1].Status)
	assert.Empty(t, f.audit.records)
	assert.Empty(t, f.history.calls)
}

func TestCloseOffering_NotFound(t *testing.T) {
	f := newClosingFixture(testOffering())
	_, err := f.service.CloseOffering(context.Background(), models.Caller{UserID: 1, Role: models.RoleAdministrator}, 999)
	assert.ErrorIs(t, err, apperrors.ErrOfferingNotFound)
}

func TestCloseOffering_FailureAbortsClose(t *testing.T) {
	ctx := context.Background()
	f := newClosingFixture(testOffering(),
		&models.Enrollment{ID: 1, StudentID: 201, CourseOfferingID: 10, Status: models.EnrollmentRegistered},
	)
	f.history.err = errors.New("history table unavailable")

	_, err := f.service.CloseOffering(ctx, models.Caller{UserID: 1, Role: models.RoleAdministrator}, 10)
	assert.ErrorIs(t, err, apperrors.ErrTransactionFailed)

	// The closed flag is set last, so an aborted close leaves the
	// offering open and writes no audit record.
	assert.False(t, f.offerings.offerings[10].Closed)
	assert.Empty(t, f.audit.records)
}

func TestCloseOffering_StatusUpdateFailureAborts(t *testing.T) {
	ctx := context.Background()
	f := newClosingFixture(testOffering(),
		&models.Enrollment{ID: 1, StudentID: 201, CourseOfferingID: 10, Status: models.EnrollmentRegistered},
	)
	f.grades.add(1, 50, 80, 100)
	f.enrollments.updateErr = errors.New("enrollments table unavailable")

	_, err := f.service.CloseOffering(ctx, models.Caller{UserID: 1, Role: models.RoleAdministrator}, 10)
	assert.ErrorIs(t, err, apperrors.ErrTransactionFailed)

	assert.False(t, f.offerings.offerings[10].Closed)
	assert.Empty(t, f.history.calls)
	assert.Empty(t, f.audit.records)
}

func TestCloseOffering_MarkClosedFailureAborts(t *testing.T) {
	ctx := context.Background()
	f := newClosingFixture(testOffering(),
		&models.Enrollment{ID: 1, StudentID: 201, CourseOfferingID: 10, Status: models.EnrollmentRegistered},
	)
	f.offerings.markClosedErr = errors.New("offerings table unavailable")

	_, err := f.service.CloseOffering(ctx, models.Caller{UserID: 1, Role: models.RoleAdministrator}, 10)
	assert.ErrorIs(t, err, apperrors.ErrTransactionFailed)

	assert.False(t, f.offerings.offerings[10].Closed)
	assert.Empty(t, f.audit.records)
}

func TestCloseOffering_AuditFailureIsAdvisory(t *testing.T) {
	ctx := context.Background()
	f := newClosingFixture(testOffering(),
		&models.Enrollment{ID: 1, StudentID: 201, CourseOfferingID: 10, Status: models.EnrollmentRegistered},
	)
	f.grades.add(1, 50, 80, 100)
	f.audit.err = errors.New("audit store unavailable")

	// The audit write happens after the commit; its failure is logged and
	// never surfaces to the caller or undoes the close.
	stats, err := f.service.CloseOffering(ctx, models.Caller{UserID: 1, Role: models.RoleAdministrator}, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Passed)

	assert.True(t, f.offerings.offerings[10].Closed)
	assert.Equal(t, models.EnrollmentPassed, f.enrollments.enrollments[1].Status)
	assert.Empty(t, f.audit.records)
}

func TestReopenOffering(t *testing.T) {
	ctx := context.Background()
	offering := testOffering()
	offering.Closed = true
	closedBy := int64(1)
	offering.ClosedBy = &closedBy
	f := newClosingFixture(offering,
		&models.Enrollment{ID: 1, StudentID: 201, CourseOfferingID: 10, Status: models.EnrollmentPassed},
		&models.Enrollment{ID: 2, StudentID: 202, CourseOfferingID: 10, Status: models.EnrollmentFailed},
		&models.Enrollment{ID: 3, StudentID: 203, CourseOfferingID: 10, Status: models.EnrollmentWithdrawn},
	)

	err := f.service.ReopenOffering(ctx, models.Caller{UserID: 1, Role: models.RoleAdministrator}, 10)
	require.NoError(t, err)

	for id := int64(1); id <= 3; id++ {
		assert.Equal(t, models.EnrollmentRegistered, f.enrollments.enrollments[id].Status)
	}
	assert.False(t, f.offerings.offerings[10].Closed)
	assert.Nil(t, f.offerings.offerings[10].ClosedBy)

	assert.Len(t, f.history.calls, 3)
	require.Len(t, f.audit.records, 1)
	assert.Equal(t, "offering.reopen", f.audit.records[0].Action)
}

func TestReopenOffering_RequiresAdmin(t *testing.T) {
	offering := testOffering()
	offering.Closed = true
	f := newClosingFixture(offering)

	err := f.service.ReopenOffering(context.Background(), models.Caller{UserID: 100, Role: models.RoleInstructor}, 10)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.True(t, f.offerings.offerings[10].Closed)
}

func TestReopenOffering_NotClosed(t *testing.T) {
	f := newClosingFixture(testOffering())
	err := f.service.ReopenOffering(context.Background(), models.Caller{UserID: 1, Role: models.RoleAdministrator}, 10)
	assert.ErrorIs(t, err, apperrors.ErrOfferingNotClosed)
}

func TestGetAcademicHistory(t *testing.T) {
	ctx := context.Background()
	f := newClosingFixture(testOffering())
	f.history.set(&models.AcademicHistory{
		StudentID:   201,
		Year:        2025,
		Period:      models.PeriodFirst,
		PassedCount: 2,
		FailedCount: 1,
	})

	t.Run("staff may read any student", func(t *testing.T) {
		rollup, err := f.service.GetAcademicHistory(ctx, models.Caller{UserID: 1, Role: models.RoleAdministrator}, 201, 2025, models.PeriodFirst)
		require.NoError(t, err)
		assert.Equal(t, 2, rollup.PassedCount)
		assert.Equal(t, 1, rollup.FailedCount)
	})

	t.Run("student may read own rollup", func(t *testing.T) {
		rollup, err := f.service.GetAcademicHistory(ctx, models.Caller{UserID: 201, Role: models.RoleStudent}, 201, 2025, models.PeriodFirst)
		require.NoError(t, err)
		assert.Equal(t, int64(201), rollup.StudentID)
	})

	t.Run("student may not read another student", func(t *testing.T) {
		_, err := f.service.GetAcademicHistory(ctx, models.Caller{UserID: 202, Role: models.RoleStudent}, 201, 2025, models.PeriodFirst)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("unknown term", func(t *testing.T) {
		_, err := f.service.GetAcademicHistory(ctx, models.Caller{UserID: 1, Role: models.RoleAdministrator}, 201, 2024, models.PeriodSummer)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestCloseThenReopenThenClose(t *testing.T) {
	ctx := context.Background()
	admin := models.Caller{UserID: 1, Role: models.RoleAdministrator}
	f := newClosingFixture(testOffering(),
		&models.Enrollment{ID: 1, StudentID: 201, CourseOfferingID: 10, Status: models.EnrollmentRegistered},
	)
	f.grades.add(1, 50, 80, 100)

	_, err := f.service.CloseOffering(ctx, admin, 10)
	require.NoError(t, err)

	// A second close must be rejected until a reopen intervenes
	_, err = f.service.CloseOffering(ctx, admin, 10)
	assert.ErrorIs(t, err, apperrors.ErrOfferingAlreadyClosed)

	require.NoError(t, f.service.ReopenOffering(ctx, admin, 10))
	assert.Equal(t, models.EnrollmentRegistered, f.enrollments.enrollments[1].Status)

	stats, err := f.service.CloseOffering(ctx, admin, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, models.EnrollmentPassed, f.enrollments.enrollments[1].Status)
}
