package grading

import (
	"context"
	"time"

	"github.com/shrimpsizemoose/appello/internal/models"
)

// Catalog operations are thin create/find/list calls. They validate input
// and translate missing parents into NotFound.

func (e *Engine) AddProfessor(ctx context.Context, p *models.Professor) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, models.WrapError("AddProfessor", models.ErrInvalidInput, "invalid professor", err)
	}
	return e.store.CreateProfessor(ctx, p)
}

func (e *Engine) AddStudent(ctx context.Context, s *models.Student) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, models.WrapError("AddStudent", models.ErrInvalidInput, "invalid student", err)
	}
	return e.store.CreateStudent(ctx, s)
}

func (e *Engine) AddCourse(ctx context.Context, c *models.Course) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, models.WrapError("AddCourse", models.ErrInvalidInput, "invalid course", err)
	}
	return e.store.CreateCourse(ctx, c)
}

func (e *Engine) EnrollStudent(ctx context.Context, courseID, studentID int64) error {
	const op = "EnrollStudent"
	course, err := e.store.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if course == nil {
		return models.NewDomainError(op, models.ErrNotFound, "course not found")
	}
	student, err := e.store.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return models.NewDomainError(op, models.ErrNotFound, "student not found")
	}
	return e.store.EnrollStudent(ctx, courseID, studentID)
}

// AddExamCall schedules a new exam call for the course.
func (e *Engine) AddExamCall(ctx context.Context, courseID int64, date time.Time) (int64, error) {
	const op = "AddExamCall"
	exam := &models.Exam{CourseID: courseID, Date: date.Unix()}
	if err := exam.Validate(); err != nil {
		return 0, models.WrapError(op, models.ErrInvalidInput, "invalid exam call", err)
	}
	course, err := e.store.GetCourse(ctx, courseID)
	if err != nil {
		return 0, err
	}
	if course == nil {
		return 0, models.NewDomainError(op, models.ErrNotFound, "course not found")
	}
	return e.store.CreateExam(ctx, exam)
}

// GetExamsForCourse lists exam calls, most recent first.
func (e *Engine) GetExamsForCourse(ctx context.Context, courseID int64) ([]models.ExamView, error) {
	course, err := e.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, models.NewDomainError("GetExamsForCourse", models.ErrNotFound, "course not found")
	}
	return e.store.ListExamsForCourse(ctx, courseID)
}

func (e *Engine) ListCoursesForProfessor(ctx context.Context, professorID int64) ([]models.Course, error) {
	return e.store.ListCoursesForProfessor(ctx, professorID)
}

func (e *Engine) ListCoursesForStudent(ctx context.Context, studentID int64) ([]models.Course, error) {
	return e.store.ListCoursesForStudent(ctx, studentID)
}
