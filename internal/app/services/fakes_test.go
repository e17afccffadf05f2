package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/db"
	"github.com/tkaraca/registra/internal/pkg/apperrors"
)

// In-memory implementations of the store interfaces. They mimic the error
// contract of the repositories package (sentinel errors from apperrors) so
// the services can be exercised without a database.

type fakeOfferingStore struct {
	offerings     map[int64]*models.CourseOffering
	markClosedErr error
}

func newFakeOfferingStore(offerings ...*models.CourseOffering) *fakeOfferingStore {
	s := &fakeOfferingStore{offerings: make(map[int64]*models.CourseOffering)}
	for _, o := range offerings {
		s.offerings[o.ID] = o
	}
	return s
}

func (s *fakeOfferingStore) GetByID(_ context.Context, id int64) (*models.CourseOffering, error) {
	offering, ok := s.offerings[id]
	if !ok {
		return nil, apperrors.ErrOfferingNotFound
	}
	return offering, nil
}

func (s *fakeOfferingStore) GetWithCourse(ctx context.Context, id int64) (*models.CourseOffering, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeOfferingStore) GetForUpdate(ctx context.Context, _ pgx.Tx, id int64) (*models.CourseOffering, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeOfferingStore) MarkClosed(_ context.Context, _ pgx.Tx, id, closedBy int64, closedAt time.Time) error {
	if s.markClosedErr != nil {
		return s.markClosedErr
	}
	offering, ok := s.offerings[id]
	if !ok {
		return apperrors.ErrOfferingNotFound
	}
	if offering.Closed {
		return apperrors.ErrOfferingAlreadyClosed
	}
	offering.Closed = true
	offering.ClosedAt = &closedAt
	offering.ClosedBy = &closedBy
	return nil
}

func (s *fakeOfferingStore) ClearClosed(_ context.Context, _ pgx.Tx, id int64) error {
	offering, ok := s.offerings[id]
	if !ok {
		return apperrors.ErrOfferingNotFound
	}
	if !offering.Closed {
		return apperrors.ErrOfferingNotClosed
	}
	offering.Closed = false
	offering.ClosedAt = nil
	offering.ClosedBy = nil
	return nil
}

func (s *fakeOfferingStore) IsInstructorAssigned(_ context.Context, instructorID, offeringID int64) (bool, error) {
	offering, ok := s.offerings[offeringID]
	if !ok {
		return false, nil
	}
	return offering.InstructorID == instructorID, nil
}

type fakeEnrollmentStore struct {
	enrollments map[int64]*models.Enrollment
	offerings   *fakeOfferingStore
	// passedCourses maps studentID to the course IDs they have passed
	passedCourses map[int64][]int64
	updateErr     error
}

func newFakeEnrollmentStore(offerings *fakeOfferingStore, enrollments ...*models.Enrollment) *fakeEnrollmentStore {
	s := &fakeEnrollmentStore{
		enrollments:   make(map[int64]*models.Enrollment),
		offerings:     offerings,
		passedCourses: make(map[int64][]int64),
	}
	for _, e := range enrollments {
		s.enrollments[e.ID] = e
	}
	return s
}

func (s *fakeEnrollmentStore) GetByID(_ context.Context, id int64) (*models.Enrollment, error) {
	enrollment, ok := s.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	return enrollment, nil
}

func (s *fakeEnrollmentStore) GetWithOffering(ctx context.Context, id int64) (*models.Enrollment, error) {
	enrollment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	withOffering := *enrollment
	withOffering.Offering = s.offerings.offerings[enrollment.CourseOfferingID]
	return &withOffering, nil
}

func (s *fakeEnrollmentStore) ListRegisteredByOffering(_ context.Context, offeringID int64) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, e := range s.enrollments {
		if e.CourseOfferingID == offeringID && e.Status == models.EnrollmentRegistered {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeEnrollmentStore) ListByOffering(_ context.Context, offeringID int64) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, e := range s.enrollments {
		if e.CourseOfferingID == offeringID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeEnrollmentStore) UpdateStatus(_ context.Context, _ pgx.Tx, id int64, status models.EnrollmentStatus) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	enrollment, ok := s.enrollments[id]
	if !ok {
		return apperrors.ErrEnrollmentNotFound
	}
	enrollment.Status = status
	return nil
}

func (s *fakeEnrollmentStore) ResetStatusesByOffering(_ context.Context, _ pgx.Tx, offeringID int64) error {
	for _, e := range s.enrollments {
		if e.CourseOfferingID == offeringID {
			e.Status = models.EnrollmentRegistered
		}
	}
	return nil
}

func (s *fakeEnrollmentStore) HasPassedCourse(_ context.Context, studentID, courseID int64) (bool, error) {
	for _, id := range s.passedCourses[studentID] {
		if id == courseID {
			return true, nil
		}
	}
	return false, nil
}

type fakeGradeStore struct {
	// entries keyed by enrollment ID
	entries   map[int64][]*models.GradeEntryDetail
	createErr error
	nextID    int64
}

func newFakeGradeStore() *fakeGradeStore {
	return &fakeGradeStore{entries: make(map[int64][]*models.GradeEntryDetail)}
}

// add seeds a ledger entry directly, bypassing the service
func (s *fakeGradeStore) add(enrollmentID, componentID int64, score, percentage float64) {
	s.nextID++
	s.entries[enrollmentID] = append(s.entries[enrollmentID], &models.GradeEntryDetail{
		GradeEntry: models.GradeEntry{
			ID:                    s.nextID,
			EnrollmentID:          enrollmentID,
			EvaluationComponentID: componentID,
			Score:                 score,
		},
		ComponentPercentage: percentage,
	})
}

func (s *fakeGradeStore) Create(_ context.Context, entry *models.GradeEntry) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.entries[entry.EnrollmentID] {
		if existing.EvaluationComponentID == entry.EvaluationComponentID {
			return apperrors.ErrDuplicateGradeEntry
		}
	}
	s.nextID++
	entry.ID = s.nextID
	s.entries[entry.EnrollmentID] = append(s.entries[entry.EnrollmentID], &models.GradeEntryDetail{GradeEntry: *entry})
	return nil
}

func (s *fakeGradeStore) ListByEnrollment(_ context.Context, enrollmentID int64) ([]*models.GradeEntryDetail, error) {
	return s.entries[enrollmentID], nil
}

func (s *fakeGradeStore) ExistsForComponent(_ context.Context, componentID int64) (bool, error) {
	for _, ledger := range s.entries {
		for _, entry := range ledger {
			if entry.EvaluationComponentID == componentID {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeComponentStore struct {
	components map[int64]*models.EvaluationComponent
	nextID     int64
}

func newFakeComponentStore(components ...*models.EvaluationComponent) *fakeComponentStore {
	s := &fakeComponentStore{components: make(map[int64]*models.EvaluationComponent)}
	for _, c := range components {
		s.components[c.ID] = c
		if c.ID > s.nextID {
			s.nextID = c.ID
		}
	}
	return s
}

func (s *fakeComponentStore) Create(_ context.Context, component *models.EvaluationComponent) error {
	s.nextID++
	component.ID = s.nextID
	s.components[component.ID] = component
	return nil
}

func (s *fakeComponentStore) GetByID(_ context.Context, id int64) (*models.EvaluationComponent, error) {
	component, ok := s.components[id]
	if !ok {
		return nil, apperrors.ErrComponentNotFound
	}
	copied := *component
	return &copied, nil
}

func (s *fakeComponentStore) ListByCourse(_ context.Context, courseID int64) ([]*models.EvaluationComponent, error) {
	var out []*models.EvaluationComponent
	for _, c := range s.components {
		if c.CourseID == courseID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeComponentStore) SumActivePercentages(_ context.Context, courseID, excludeID int64) (float64, error) {
	var sum float64
	for _, c := range s.components {
		if c.CourseID == courseID && c.Active && c.ID != excludeID {
			sum += c.Percentage
		}
	}
	return sum, nil
}

func (s *fakeComponentStore) Update(_ context.Context, component *models.EvaluationComponent) error {
	if _, ok := s.components[component.ID]; !ok {
		return apperrors.ErrComponentNotFound
	}
	copied := *component
	s.components[component.ID] = &copied
	return nil
}

func (s *fakeComponentStore) Deactivate(_ context.Context, id int64) error {
	component, ok := s.components[id]
	if !ok {
		return apperrors.ErrComponentNotFound
	}
	component.Active = false
	return nil
}

func (s *fakeComponentStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.components[id]; !ok {
		return apperrors.ErrComponentNotFound
	}
	delete(s.components, id)
	return nil
}

type fakeCourseStore struct {
	courses map[int64]*models.Course
}

func newFakeCourseStore(courses ...*models.Course) *fakeCourseStore {
	s := &fakeCourseStore{courses: make(map[int64]*models.Course)}
	for _, c := range courses {
		s.courses[c.ID] = c
	}
	return s
}

func (s *fakeCourseStore) GetByID(_ context.Context, id int64) (*models.Course, error) {
	course, ok := s.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return course, nil
}

type fakePrereqStore struct {
	edges   []*models.PrerequisiteEdge
	courses *fakeCourseStore
	nextID  int64
}

func newFakePrereqStore(courses *fakeCourseStore) *fakePrereqStore {
	return &fakePrereqStore{courses: courses}
}

// link seeds an edge directly, bypassing the service's validation
func (s *fakePrereqStore) link(courseID, prerequisiteID int64, mandatory bool) {
	s.nextID++
	s.edges = append(s.edges, &models.PrerequisiteEdge{
		ID:             s.nextID,
		CourseID:       courseID,
		PrerequisiteID: prerequisiteID,
		Mandatory:      mandatory,
	})
}

func (s *fakePrereqStore) Create(ctx context.Context, edge *models.PrerequisiteEdge) error {
	exists, _ := s.Exists(ctx, edge.CourseID, edge.PrerequisiteID)
	if exists {
		return apperrors.ErrDuplicatePrerequisite
	}
	s.nextID++
	edge.ID = s.nextID
	s.edges = append(s.edges, edge)
	return nil
}

func (s *fakePrereqStore) Exists(_ context.Context, courseID, prerequisiteID int64) (bool, error) {
	for _, e := range s.edges {
		if e.CourseID == courseID && e.PrerequisiteID == prerequisiteID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakePrereqStore) ListByCourse(_ context.Context, courseID int64) ([]*models.PrerequisiteEdge, error) {
	var out []*models.PrerequisiteEdge
	for _, e := range s.edges {
		if e.CourseID != courseID {
			continue
		}
		joined := *e
		if course, ok := s.courses.courses[e.PrerequisiteID]; ok {
			joined.PrerequisiteCode = course.Code
			joined.PrerequisiteName = course.Name
			joined.PrerequisiteLevel = course.Level
		}
		out = append(out, &joined)
	}
	return out, nil
}

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		s.users[u.Email] = u
	}
	return s
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	for _, u := range s.users {
		if u.ID == id {
			u.LastLoginAt = &at
		}
	}
	return nil
}

type historyCall struct {
	studentID int64
	year      int
	period    models.Period
}

type fakeHistoryStore struct {
	calls   []historyCall
	rollups map[historyCall]*models.AcademicHistory
	err     error
}

// set seeds a rollup row directly, bypassing recomputation
func (s *fakeHistoryStore) set(rollup *models.AcademicHistory) {
	if s.rollups == nil {
		s.rollups = make(map[historyCall]*models.AcademicHistory)
	}
	s.rollups[historyCall{studentID: rollup.StudentID, year: rollup.Year, period: rollup.Period}] = rollup
}

func (s *fakeHistoryStore) RecomputeHistory(_ context.Context, _ pgx.Tx, studentID int64, year int, period models.Period) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, historyCall{studentID: studentID, year: year, period: period})
	return nil
}

func (s *fakeHistoryStore) GetByStudentTerm(_ context.Context, studentID int64, year int, period models.Period) (*models.AcademicHistory, error) {
	rollup, ok := s.rollups[historyCall{studentID: studentID, year: year, period: period}]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return rollup, nil
}

type fakeAuditRecorder struct {
	records []*models.AuditRecord
	err     error
}

func (s *fakeAuditRecorder) Record(_ context.Context, record *models.AuditRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

// fakeTxRunner invokes the function with a nil transaction handle; the
// fakes above ignore it.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	return fn(ctx, nil)
}
