package grading

import (
	"context"

	"github.com/shrimpsizemoose/appello/internal/models"
	"github.com/shrimpsizemoose/appello/internal/store"
)

// ListValidResults returns the results a professor may enter.
func (e *Engine) ListValidResults() []models.Result {
	var results []models.Result
	for _, r := range models.AllResults() {
		if r != models.ResultEmpty {
			results = append(results, r)
		}
	}
	return results
}

func (e *Engine) GetRegistrationByID(ctx context.Context, professorID, registrationID int64) (view *models.RegistrationView, err error) {
	const op = "GetRegistrationByID"
	defer func() { observe(op, err) }()

	return e.registrationForProfessor(ctx, op, professorID, registrationID)
}

// GetRegistrationsByID returns the registrations in the order of ids. Every
// id must exist and belong to the professor.
func (e *Engine) GetRegistrationsByID(ctx context.Context, professorID int64, ids []int64) (views []models.RegistrationView, err error) {
	const op = "GetRegistrationsByID"
	defer func() { observe(op, err) }()

	views = make([]models.RegistrationView, 0, len(ids))
	for _, id := range ids {
		view, err := e.registrationForProfessor(ctx, op, professorID, id)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (e *Engine) registrationForProfessor(ctx context.Context, op string, professorID, registrationID int64) (*models.RegistrationView, error) {
	view, err := e.store.GetRegistrationView(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, models.NewDomainError(op, models.ErrNotFound, "registration not found")
	}
	owns, err := e.store.ProfessorOwnsRegistration(ctx, professorID, registrationID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, models.NewDomainError(op, models.ErrForbidden, "registration belongs to another professor's exam call")
	}
	return view, nil
}

// GetStudentsByExamIDSortedBy lists the exam call's registrations. Unknown
// sort keys fall back to the student number.
func (e *Engine) GetStudentsByExamIDSortedBy(ctx context.Context, professorID, examID int64, sortKey, sortDir string) (views []models.RegistrationView, err error) {
	const op = "GetStudentsByExamIDSortedBy"
	defer func() { observe(op, err) }()

	if err := requireExamOwner(ctx, e.store, op, professorID, examID); err != nil {
		return nil, err
	}
	return e.store.ListRegistrationsForExam(ctx, examID, store.ParseSort(sortKey, sortDir))
}

func (e *Engine) GetRegisteredExamIDs(ctx context.Context, studentID, courseID int64) (ids []int64, err error) {
	const op = "GetRegisteredExamIDs"
	defer func() { observe(op, err) }()

	course, err := e.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, models.NewDomainError(op, models.ErrNotFound, "course not found")
	}
	return e.store.ListRegisteredExamIDs(ctx, studentID, courseID)
}
