// Package storetest provides seed data and a query suite shared by the
// store dialect tests and the packages built on top of the store.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/appello/internal/models"
	"github.com/shrimpsizemoose/appello/internal/store"
)

// Fixture is a small catalog: one professor owning a course with an exam
// call and three enrolled students, plus a second professor, course and exam
// and a student enrolled nowhere.
type Fixture struct {
	ProfessorID      int64
	OtherProfessorID int64
	CourseID         int64
	OtherCourseID    int64
	ExamID           int64
	OtherExamID      int64
	StudentIDs       []int64
	OutsiderID       int64
	ExamDate         time.Time
}

func Seed(t *testing.T, s store.Store) Fixture {
	t.Helper()
	ctx := context.Background()

	var f Fixture
	var err error

	f.ProfessorID, err = s.CreateProfessor(ctx, &models.Professor{
		Name: "Ada", Surname: "Lovelace", Email: "ada.lovelace@uni.example",
	})
	require.NoError(t, err, "Failed to create professor")

	f.OtherProfessorID, err = s.CreateProfessor(ctx, &models.Professor{
		Name: "Alan", Surname: "Turing", Email: "alan.turing@uni.example",
	})
	require.NoError(t, err, "Failed to create professor")

	f.CourseID, err = s.CreateCourse(ctx, &models.Course{
		Name: "Databases", CFU: 10, Semester: models.SemesterFirst, ProfessorID: f.ProfessorID,
	})
	require.NoError(t, err, "Failed to create course")

	f.OtherCourseID, err = s.CreateCourse(ctx, &models.Course{
		Name: "Automata", CFU: 5, Semester: models.SemesterSecond, ProfessorID: f.OtherProfessorID,
	})
	require.NoError(t, err, "Failed to create course")

	f.ExamDate = time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)
	f.ExamID, err = s.CreateExam(ctx, &models.Exam{CourseID: f.CourseID, Date: f.ExamDate.Unix()})
	require.NoError(t, err, "Failed to create exam")

	f.OtherExamID, err = s.CreateExam(ctx, &models.Exam{CourseID: f.OtherCourseID, Date: f.ExamDate.Unix()})
	require.NoError(t, err, "Failed to create exam")

	students := []models.Student{
		{Number: 100003, Name: "Carla", Surname: "Bianchi", Email: "carla.bianchi@uni.example", Major: "Computer Engineering"},
		{Number: 100001, Name: "Marco", Surname: "Rossi", Email: "marco.rossi@uni.example", Major: "Mathematics"},
		{Number: 100002, Name: "Anna", Surname: "Verdi", Email: "anna.verdi@uni.example", Major: "Computer Engineering"},
	}
	for i := range students {
		id, err := s.CreateStudent(ctx, &students[i])
		require.NoError(t, err, "Failed to create student")
		require.NoError(t, s.EnrollStudent(ctx, f.CourseID, id), "Failed to enroll student")
		f.StudentIDs = append(f.StudentIDs, id)
	}

	f.OutsiderID, err = s.CreateStudent(ctx, &models.Student{
		Number: 200001, Name: "Luca", Surname: "Neri", Email: "luca.neri@uni.example",
	})
	require.NoError(t, err, "Failed to create student")

	return f
}

// Register creates registrations for every fixture student on the main exam.
func (f Fixture) Register(t *testing.T, s store.Store) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(f.StudentIDs))
	for _, studentID := range f.StudentIDs {
		id, err := s.CreateRegistration(context.Background(), studentID, f.ExamID)
		require.NoError(t, err, fmt.Sprintf("Failed to register student %d", studentID))
		ids = append(ids, id)
	}
	return ids
}
