package grading

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/appello/internal/models"
	"github.com/shrimpsizemoose/appello/internal/store"
)

type MockReportCache struct {
	mock.Mock
}

func (m *MockReportCache) Get(ctx context.Context, reportID int64, order store.Sort) (*models.ReportSnapshot, error) {
	args := m.Called(reportID, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReportSnapshot), args.Error(1)
}

func (m *MockReportCache) Set(ctx context.Context, reportID int64, order store.Sort, snapshot *models.ReportSnapshot) error {
	args := m.Called(reportID, order, snapshot)
	return args.Error(0)
}

// finalizedReport publishes and finalizes one graded registration.
func finalizedReport(t *testing.T, env *testEnv) int64 {
	t.Helper()
	ctx := context.Background()
	regIDs := env.register(t)
	require.NoError(t, env.engine.SetResult(ctx, env.f.ProfessorID, regIDs[0], models.Result29))
	_, err := env.engine.PublishResults(ctx, env.f.ProfessorID, env.f.ExamID)
	require.NoError(t, err)
	reportID, err := env.engine.FinalizeResults(ctx, env.f.ProfessorID, env.f.ExamID)
	require.NoError(t, err)
	return reportID
}

func TestReportCache(t *testing.T) {
	ctx := context.Background()
	bySurname := store.Sort{Key: store.SortStudentSurname, Desc: true}

	t.Run("miss assembles and stores", func(t *testing.T) {
		cache := new(MockReportCache)
		env := setupEngine(t, WithReportCache(cache))
		reportID := finalizedReport(t, env)

		cache.On("Get", reportID, bySurname).Return(nil, nil).Once()
		cache.On("Set", reportID, bySurname, mock.AnythingOfType("*models.ReportSnapshot")).Return(nil).Once()

		snapshot, err := env.engine.GetReportByIDSortedBy(ctx, env.f.ProfessorID, reportID, "student.surname", "DESC")
		require.NoError(t, err)
		assert.Len(t, snapshot.Registrations, 1)
		cache.AssertExpectations(t)
	})

	t.Run("hit skips the store", func(t *testing.T) {
		cache := new(MockReportCache)
		env := setupEngine(t, WithReportCache(cache))
		reportID := finalizedReport(t, env)

		cached := &models.ReportSnapshot{Report: models.ReportView{Report: models.Report{ID: reportID}}}
		cache.On("Get", reportID, bySurname).Return(cached, nil).Once()

		snapshot, err := env.engine.GetReportByIDSortedBy(ctx, env.f.ProfessorID, reportID, "student.surname", "desc")
		require.NoError(t, err)
		assert.Same(t, cached, snapshot)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache failures are bypassed", func(t *testing.T) {
		cache := new(MockReportCache)
		env := setupEngine(t, WithReportCache(cache))
		reportID := finalizedReport(t, env)

		order := store.ParseSort("", "")
		cache.On("Get", reportID, order).Return(nil, errors.New("connection refused")).Once()
		cache.On("Set", reportID, order, mock.Anything).Return(errors.New("connection refused")).Once()

		snapshot, err := env.engine.GetReportByIDSortedBy(ctx, env.f.ProfessorID, reportID, "", "")
		require.NoError(t, err)
		assert.Len(t, snapshot.Registrations, 1)
		cache.AssertExpectations(t)
	})

	t.Run("ownership is checked before the cache", func(t *testing.T) {
		cache := new(MockReportCache)
		env := setupEngine(t, WithReportCache(cache))
		reportID := finalizedReport(t, env)

		_, err := env.engine.GetReportByIDSortedBy(ctx, env.f.OtherProfessorID, reportID, "", "")
		assert.ErrorIs(t, err, models.ErrForbidden)

		_, err = env.engine.GetReportByIDSortedBy(ctx, env.f.ProfessorID, 4242, "", "")
		assert.ErrorIs(t, err, models.ErrNotFound)

		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestGetReportsForCourse(t *testing.T) {
	env := setupEngine(t)
	ctx := context.Background()
	reportID := finalizedReport(t, env)

	reports, err := env.engine.GetReportsForCourse(ctx, env.f.ProfessorID, env.f.CourseID)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, reportID, reports[0].ID)
	assert.Equal(t, "Databases", reports[0].CourseName)

	_, err = env.engine.GetReportsForCourse(ctx, env.f.OtherProfessorID, env.f.CourseID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = env.engine.GetReportsForCourse(ctx, env.f.ProfessorID, 4242)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestProfessorReads(t *testing.T) {
	env := setupEngine(t)
	ctx := context.Background()
	f := env.f
	regIDs := env.register(t)

	views, err := env.engine.GetStudentsByExamIDSortedBy(ctx, f.ProfessorID, f.ExamID, "student.surname", "desc")
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "Verdi", views[0].StudentSurname)
	assert.Equal(t, "Bianchi", views[2].StudentSurname)

	_, err = env.engine.GetStudentsByExamIDSortedBy(ctx, f.OtherProfessorID, f.ExamID, "", "")
	assert.ErrorIs(t, err, models.ErrForbidden)

	views, err = env.engine.GetRegistrationsByID(ctx, f.ProfessorID, []int64{regIDs[2], regIDs[0]})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, regIDs[2], views[0].ID)

	_, err = env.engine.GetRegistrationsByID(ctx, f.ProfessorID, []int64{regIDs[0], 4242})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = env.engine.GetRegistrationByID(ctx, f.OtherProfessorID, regIDs[0])
	assert.ErrorIs(t, err, models.ErrForbidden)

	ids, err := env.engine.GetRegisteredExamIDs(ctx, f.StudentIDs[0], f.CourseID)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.ExamID}, ids)

	ids, err = env.engine.GetRegisteredExamIDs(ctx, f.OutsiderID, f.CourseID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	results := env.engine.ListValidResults()
	assert.Len(t, results, len(models.AllResults())-1)
	assert.NotContains(t, results, models.ResultEmpty)
}

func TestCatalog(t *testing.T) {
	env := setupEngine(t)
	ctx := context.Background()
	f := env.f

	_, err := env.engine.AddProfessor(ctx, &models.Professor{Name: "Grace", Surname: "Hopper", Email: "not-an-email"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = env.engine.AddCourse(ctx, &models.Course{Name: "Compilers", CFU: 6, Semester: "third", ProfessorID: f.ProfessorID})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = env.engine.AddExamCall(ctx, 4242, finalizeTime)
	assert.ErrorIs(t, err, models.ErrNotFound)

	examID, err := env.engine.AddExamCall(ctx, f.CourseID, finalizeTime)
	require.NoError(t, err)

	exams, err := env.engine.GetExamsForCourse(ctx, f.CourseID)
	require.NoError(t, err)
	require.Len(t, exams, 2)
	assert.Equal(t, examID, exams[0].ID, "most recent exam call first")

	assert.ErrorIs(t, env.engine.EnrollStudent(ctx, f.CourseID, 4242), models.ErrNotFound)
	require.NoError(t, env.engine.EnrollStudent(ctx, f.CourseID, f.OutsiderID))

	_, err = env.engine.RegisterStudentForExam(ctx, f.OutsiderID, examID)
	require.NoError(t, err)
}
