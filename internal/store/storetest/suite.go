package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/appello/internal/models"
	"github.com/shrimpsizemoose/appello/internal/store"
)

// RunQuerySuite exercises the dialect-independent queries against a freshly
// migrated store. newStore must return an empty database each call.
func RunQuerySuite(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("vocabulary", func(t *testing.T) {
		testVocabulary(t, newStore(t))
	})
	t.Run("guards", func(t *testing.T) {
		testGuards(t, newStore(t))
	})
	t.Run("registration", func(t *testing.T) {
		testRegistration(t, newStore(t))
	})
	t.Run("conditional updates", func(t *testing.T) {
		testConditionalUpdates(t, newStore(t))
	})
	t.Run("finalize", func(t *testing.T) {
		testFinalize(t, newStore(t))
	})
	t.Run("transaction rollback", func(t *testing.T) {
		testRollback(t, newStore(t))
	})
	t.Run("sorting", func(t *testing.T) {
		testSorting(t, newStore(t))
	})
	t.Run("catalog listings", func(t *testing.T) {
		testCatalogListings(t, newStore(t))
	})
}

func testVocabulary(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CheckVocabulary(ctx))

	statuses, err := s.ListStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, len(models.AllStatuses()))

	results, err := s.ListResults(ctx)
	require.NoError(t, err)
	assert.Len(t, results, len(models.AllResults()))

	// migrations are idempotent
	require.NoError(t, s.ApplyMigrations(""))
	require.NoError(t, s.CheckVocabulary(ctx))
}

func testGuards(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	regIDs := f.Register(t, s)

	ok, err := s.ProfessorOwnsExam(ctx, f.ProfessorID, f.ExamID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ProfessorOwnsExam(ctx, f.OtherProfessorID, f.ExamID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.ProfessorOwnsCourse(ctx, f.ProfessorID, f.OtherCourseID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.ProfessorOwnsRegistration(ctx, f.ProfessorID, regIDs[0])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ProfessorOwnsRegistration(ctx, f.OtherProfessorID, regIDs[0])
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.StudentEnrolledForExam(ctx, f.StudentIDs[0], f.ExamID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.StudentEnrolledForExam(ctx, f.OutsiderID, f.ExamID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.ProfessorOwnsReport(ctx, f.ProfessorID, 4242)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testRegistration(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	id, err := s.CreateRegistration(ctx, f.StudentIDs[0], f.ExamID)
	require.NoError(t, err)

	reg, err := s.GetRegistration(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, models.StatusNotEntered, reg.Status)
	assert.Equal(t, models.ResultEmpty, reg.Result)
	assert.Nil(t, reg.ReportID)

	exists, err := s.RegistrationExists(ctx, f.StudentIDs[0], f.ExamID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.CreateRegistration(ctx, f.StudentIDs[0], f.ExamID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConflict), "duplicate registration must be a conflict, got %v", err)

	view, err := s.GetRegistrationViewByStudentAndExam(ctx, f.StudentIDs[0], f.ExamID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, int64(100003), view.StudentNumber)
	assert.Equal(t, "Databases", view.CourseName)
	assert.Equal(t, f.ExamDate.Unix(), view.ExamDate)

	missing, err := s.GetRegistrationView(ctx, 4242)
	require.NoError(t, err)
	assert.Nil(t, missing)

	examIDs, err := s.ListRegisteredExamIDs(ctx, f.StudentIDs[0], f.CourseID)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.ExamID}, examIDs)
}

func testConditionalUpdates(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	regIDs := f.Register(t, s)

	n, err := s.UpdateRegistrationResult(ctx, regIDs[0], models.StatusNotEntered, models.StatusEntered, models.Result27)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// stale expected status matches nothing
	n, err = s.UpdateRegistrationResult(ctx, regIDs[0], models.StatusNotEntered, models.StatusEntered, models.Result30)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = s.UpdateRegistrationResult(ctx, regIDs[1], models.StatusNotEntered, models.StatusEntered, models.ResultFailed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.PublishEntered(ctx, f.ExamID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.PublishEntered(ctx, f.ExamID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// failing grades cannot be declined
	n, err = s.DeclineRegistration(ctx, regIDs[1])
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = s.DeclineRegistration(ctx, regIDs[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeclineRegistration(ctx, regIDs[0])
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	reg, err := s.GetRegistration(ctx, regIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, reg.Status)
	assert.Equal(t, models.Result27, reg.Result)

	untouched, err := s.GetRegistration(ctx, regIDs[2])
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotEntered, untouched.Status)
}

func testFinalize(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	regIDs := f.Register(t, s)

	for i, result := range []models.Result{models.Result28, models.Result22} {
		n, err := s.UpdateRegistrationResult(ctx, regIDs[i], models.StatusNotEntered, models.StatusEntered, result)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
	}
	_, err := s.PublishEntered(ctx, f.ExamID)
	require.NoError(t, err)
	n, err := s.DeclineRegistration(ctx, regIDs[1])
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	createdAt := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC).Unix()
	var reportID int64
	err = s.InTx(ctx, func(tx store.Tx) error {
		n, err := tx.FinalizeEligible(ctx, f.ExamID)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(2), n)

		reportID, err = tx.CreateReport(ctx, f.ExamID, createdAt)
		if err != nil {
			return err
		}

		n, err = tx.LinkRecordedToReport(ctx, f.ExamID, reportID)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(2), n)
		return nil
	})
	require.NoError(t, err)

	accepted, err := s.GetRegistration(ctx, regIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.StatusRecorded, accepted.Status)
	assert.Equal(t, models.Result28, accepted.Result)
	require.NotNil(t, accepted.ReportID)
	assert.Equal(t, reportID, *accepted.ReportID)

	declined, err := s.GetRegistration(ctx, regIDs[1])
	require.NoError(t, err)
	assert.Equal(t, models.StatusRecorded, declined.Status)
	assert.Equal(t, models.ResultPostponed, declined.Result)

	pending, err := s.GetRegistration(ctx, regIDs[2])
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotEntered, pending.Status)
	assert.Nil(t, pending.ReportID)

	// sealed rows are out of reach of every transition
	n, err = s.UpdateRegistrationResult(ctx, regIDs[0], models.StatusRecorded, models.StatusEntered, models.Result18)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = s.FinalizeEligible(ctx, f.ExamID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	report, err := s.GetReport(ctx, reportID)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, f.ExamID, report.ExamID)
	assert.Equal(t, createdAt, report.CreatedAt)
	assert.Equal(t, "Databases", report.CourseName)

	ok, err := s.ProfessorOwnsReport(ctx, f.ProfessorID, reportID)
	require.NoError(t, err)
	assert.True(t, ok)

	rows, err := s.ListRegistrationsForReport(ctx, reportID, store.ParseSort("", ""))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Rossi (100001) sorts before Bianchi (100003) by student number
	assert.Equal(t, regIDs[1], rows[0].ID)
	assert.Equal(t, regIDs[0], rows[1].ID)

	reports, err := s.ListReportsForCourse(ctx, f.ProfessorID, f.CourseID)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, reportID, reports[0].ID)

	reports, err = s.ListReportsForCourse(ctx, f.OtherProfessorID, f.CourseID)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func testRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	regIDs := f.Register(t, s)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx store.Tx) error {
		n, err := tx.UpdateRegistrationResult(ctx, regIDs[0], models.StatusNotEntered, models.StatusEntered, models.Result25)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reg, err := s.GetRegistration(ctx, regIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotEntered, reg.Status)
	assert.Equal(t, models.ResultEmpty, reg.Result)
}

func testSorting(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	regIDs := f.Register(t, s)

	testCases := []struct {
		key, dir string
		want     []int64
	}{
		// numbers: Bianchi 100003, Rossi 100001, Verdi 100002
		{"student.number", "asc", []int64{regIDs[1], regIDs[2], regIDs[0]}},
		{"student.number", "DESC", []int64{regIDs[0], regIDs[2], regIDs[1]}},
		{"student.surname", "", []int64{regIDs[0], regIDs[1], regIDs[2]}},
		{"student.name", "desc", []int64{regIDs[1], regIDs[0], regIDs[2]}},
		{"student.major", "asc", []int64{regIDs[0], regIDs[2], regIDs[1]}},
		{"s.number; DROP TABLE students", "asc", []int64{regIDs[1], regIDs[2], regIDs[0]}},
	}

	for _, tc := range testCases {
		t.Run(tc.key+" "+tc.dir, func(t *testing.T) {
			rows, err := s.ListRegistrationsForExam(ctx, f.ExamID, store.ParseSort(tc.key, tc.dir))
			require.NoError(t, err)
			got := make([]int64, len(rows))
			for i, row := range rows {
				got[i] = row.ID
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func testCatalogListings(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	later := f.ExamDate.AddDate(0, 1, 0).Unix()
	laterID, err := s.CreateExam(ctx, &models.Exam{CourseID: f.CourseID, Date: later})
	require.NoError(t, err)

	exams, err := s.ListExamsForCourse(ctx, f.CourseID)
	require.NoError(t, err)
	require.Len(t, exams, 2)
	assert.Equal(t, laterID, exams[0].ID)
	assert.Equal(t, f.ExamID, exams[1].ID)
	assert.Equal(t, f.ProfessorID, exams[0].ProfessorID)

	exam, err := s.GetExam(ctx, 4242)
	require.NoError(t, err)
	assert.Nil(t, exam)

	course, err := s.GetCourse(ctx, f.CourseID)
	require.NoError(t, err)
	require.NotNil(t, course)
	assert.Equal(t, models.SemesterFirst, course.Semester)

	courses, err := s.ListCoursesForProfessor(ctx, f.OtherProfessorID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Automata", courses[0].Name)

	courses, err = s.ListCoursesForStudent(ctx, f.StudentIDs[0])
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, f.CourseID, courses[0].ID)

	// enrolling twice is harmless
	require.NoError(t, s.EnrollStudent(ctx, f.CourseID, f.StudentIDs[0]))

	student, err := s.GetStudent(ctx, f.OutsiderID)
	require.NoError(t, err)
	require.NotNil(t, student)
	assert.Equal(t, "Neri", student.Surname)
}
