// Package grading implements the exam registration lifecycle: registering
// for an exam call, entering and publishing results, student declines and
// sealing registrations into reports.
package grading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/metrics"
	"github.com/shrimpsizemoose/appello/internal/models"
	"github.com/shrimpsizemoose/appello/internal/store"
)

type Engine struct {
	store store.Store
	cache ReportCache
	now   func() time.Time
}

type Option func(*Engine)

// WithReportCache enables caching of assembled report snapshots.
func WithReportCache(cache ReportCache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// observe counts business failures per operation. Infrastructure errors are
// left to the caller.
func observe(op string, err error) {
	kind := models.KindOf(err)
	if kind == nil {
		return
	}
	metrics.BusinessErrorsTotal.WithLabelValues(op, strings.ReplaceAll(kind.Error(), " ", "_")).Inc()
	logger.Debug.Printf("%s rejected: %v", op, err)
}

func countTransition(op string, to models.Status, n int64) {
	if n > 0 {
		metrics.TransitionsTotal.WithLabelValues(op, to.String()).Add(float64(n))
	}
}

// RegisterStudentForExam creates a NotEntered registration for the student on
// the exam call and returns its id.
func (e *Engine) RegisterStudentForExam(ctx context.Context, studentID, examID int64) (id int64, err error) {
	const op = "RegisterStudentForExam"
	defer func() { observe(op, err) }()

	err = e.store.InTx(ctx, func(tx store.Tx) error {
		exam, err := tx.GetExam(ctx, examID)
		if err != nil {
			return err
		}
		if exam == nil {
			return models.NewDomainError(op, models.ErrNotFound, "exam call not found")
		}

		student, err := tx.GetStudent(ctx, studentID)
		if err != nil {
			return err
		}
		if student == nil {
			return models.NewDomainError(op, models.ErrNotFound, "student not found")
		}

		enrolled, err := tx.StudentEnrolledForExam(ctx, studentID, examID)
		if err != nil {
			return err
		}
		if !enrolled {
			return models.NewDomainError(op, models.ErrForbidden, "student is not enrolled in the course of this exam call")
		}

		exists, err := tx.RegistrationExists(ctx, studentID, examID)
		if err != nil {
			return err
		}
		if exists {
			return models.NewDomainError(op, models.ErrConflict, "already registered for this exam call")
		}

		// a concurrent insert that slipped past the check surfaces as a conflict
		id, err = tx.CreateRegistration(ctx, studentID, examID)
		return err
	})
	if err != nil {
		return 0, err
	}

	countTransition("register", models.StatusNotEntered, 1)
	logger.Info.Printf("Student %d registered for exam %d (registration %d)", studentID, examID, id)
	return id, nil
}

// SetResult writes a result on an editable registration, promoting NotEntered
// to Entered.
func (e *Engine) SetResult(ctx context.Context, professorID, registrationID int64, result models.Result) (err error) {
	const op = "SetResult"
	defer func() { observe(op, err) }()

	return e.store.InTx(ctx, func(tx store.Tx) error {
		return setResult(ctx, tx, op, professorID, registrationID, result)
	})
}

// SetResultBulk applies every update in order inside one transaction. The
// first failing item aborts the batch and nothing is written.
func (e *Engine) SetResultBulk(ctx context.Context, professorID int64, updates []models.ResultUpdate) (err error) {
	const op = "SetResultBulk"
	defer func() { observe(op, err) }()

	for i := range updates {
		if err := updates[i].Validate(); err != nil {
			return models.WrapError(op, models.ErrInvalidInput,
				fmt.Sprintf("update #%d is malformed", i+1), err)
		}
	}

	return e.store.InTx(ctx, func(tx store.Tx) error {
		for _, u := range updates {
			err := setResult(ctx, tx, op, professorID, u.RegistrationID, u.ResultID)
			if err == nil {
				continue
			}
			if kind := models.KindOf(err); kind != nil {
				return models.NewDomainError(op, kind,
					fmt.Sprintf("registration %d: %s", u.RegistrationID, models.Message(err)))
			}
			return fmt.Errorf("registration %d: %w", u.RegistrationID, err)
		}
		return nil
	})
}

func setResult(ctx context.Context, tx store.Tx, op string, professorID, registrationID int64, result models.Result) error {
	if !result.Valid() {
		return models.NewDomainError(op, models.ErrNotFound, "result not found")
	}
	if result == models.ResultEmpty {
		return models.NewDomainError(op, models.ErrInvalidInput, "a result must be chosen")
	}

	reg, err := tx.LockRegistration(ctx, registrationID)
	if err != nil {
		return err
	}
	if reg == nil {
		return models.NewDomainError(op, models.ErrNotFound, "registration not found")
	}

	owns, err := tx.ProfessorOwnsRegistration(ctx, professorID, registrationID)
	if err != nil {
		return err
	}
	if !owns {
		return models.NewDomainError(op, models.ErrForbidden, "registration belongs to another professor's exam call")
	}

	if !reg.Status.Editable() {
		return models.NewDomainError(op, models.ErrInvalidState,
			fmt.Sprintf("result cannot be changed, registration is %s", reg.Status))
	}

	n, err := tx.UpdateRegistrationResult(ctx, registrationID, reg.Status, models.StatusEntered, result)
	if err != nil {
		return err
	}
	if n == 0 {
		return models.NewDomainError(op, models.ErrInvalidState, "registration changed meanwhile, reload and retry")
	}

	if reg.Status == models.StatusNotEntered {
		countTransition("set_result", models.StatusEntered, 1)
	}
	if result.Passing() {
		metrics.ResultGradeHistogram.Observe(float64(result-models.Result18) + 18)
	}
	return nil
}

// PublishResults exposes every Entered result of the exam call to students
// and returns how many rows moved.
func (e *Engine) PublishResults(ctx context.Context, professorID, examID int64) (n int64, err error) {
	const op = "PublishResults"
	defer func() { observe(op, err) }()

	if err := requireExamOwner(ctx, e.store, op, professorID, examID); err != nil {
		return 0, err
	}

	n, err = e.store.PublishEntered(ctx, examID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, models.NewDomainError(op, models.ErrNoOp, "no results to publish")
	}

	countTransition("publish", models.StatusPublished, n)
	logger.Info.Printf("Published %d results for exam %d", n, examID)
	return n, nil
}

// DeclineExamResult lets a student reject a published passing grade.
func (e *Engine) DeclineExamResult(ctx context.Context, studentID, examID int64) (err error) {
	const op = "DeclineExamResult"
	defer func() { observe(op, err) }()

	err = e.store.InTx(ctx, func(tx store.Tx) error {
		reg, err := tx.LockRegistrationByStudentAndExam(ctx, studentID, examID)
		if err != nil {
			return err
		}
		if reg == nil {
			return models.NewDomainError(op, models.ErrNotFound, "registration not found")
		}
		if !reg.CanBeDeclined() {
			return models.NewDomainError(op, models.ErrInvalidState, "cannot decline this result")
		}

		n, err := tx.DeclineRegistration(ctx, reg.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return models.NewDomainError(op, models.ErrInvalidState, "cannot decline this result")
		}
		return nil
	})
	if err != nil {
		return err
	}

	countTransition("decline", models.StatusDeclined, 1)
	return nil
}

// GetResultByStudentIDAndExamID returns the student's registration once its
// result has been published.
func (e *Engine) GetResultByStudentIDAndExamID(ctx context.Context, studentID, examID int64) (view *models.RegistrationView, err error) {
	const op = "GetResultByStudentIDAndExamID"
	defer func() { observe(op, err) }()

	view, err = e.store.GetRegistrationViewByStudentAndExam(ctx, studentID, examID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, models.NewDomainError(op, models.ErrNotFound, "registration not found")
	}
	if !view.Status.VisibleToStudent() {
		return nil, models.NewDomainError(op, models.ErrNotVisible, "not yet published")
	}
	return view, nil
}

// FinalizeResults seals every Published and Declined registration of the exam
// call into a new report and returns its id. Declined rows are recorded as
// postponed. The flip, the report insert and the link commit together.
func (e *Engine) FinalizeResults(ctx context.Context, professorID, examID int64) (reportID int64, err error) {
	const op = "FinalizeResults"
	defer func() { observe(op, err) }()

	var recorded, linked int64
	err = e.store.InTx(ctx, func(tx store.Tx) error {
		if err := requireExamOwner(ctx, tx, op, professorID, examID); err != nil {
			return err
		}

		var err error
		recorded, err = tx.FinalizeEligible(ctx, examID)
		if err != nil {
			return err
		}
		if recorded == 0 {
			return models.NewDomainError(op, models.ErrNoOp, "nothing to finalize")
		}

		reportID, err = tx.CreateReport(ctx, examID, e.now().Unix())
		if err != nil {
			return err
		}

		linked, err = tx.LinkRecordedToReport(ctx, examID, reportID)
		if err != nil {
			return err
		}
		if linked < recorded {
			return fmt.Errorf("linked %d of %d recorded registrations to report %d", linked, recorded, reportID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	countTransition("finalize", models.StatusRecorded, recorded)
	metrics.ReportsCreatedTotal.Inc()
	logger.Info.Printf("Finalized exam %d: report %d with %d registrations", examID, reportID, linked)
	return reportID, nil
}

// requireExamOwner reports an unknown exam call as Forbidden, the same as a
// foreign one.
func requireExamOwner(ctx context.Context, g examGuards, op string, professorID, examID int64) error {
	owns, err := g.ProfessorOwnsExam(ctx, professorID, examID)
	if err != nil {
		return err
	}
	if !owns {
		return models.NewDomainError(op, models.ErrForbidden, "exam call belongs to another professor")
	}
	return nil
}

type examGuards interface {
	ProfessorOwnsExam(ctx context.Context, professorID, examID int64) (bool, error)
}
