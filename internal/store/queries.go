package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/appello/internal/models"
)

// Queries holds the SQL shared by every dialect. The same value runs against
// the pooled *sqlx.DB or, inside InTx, a *sqlx.Tx.
type Queries struct {
	ext               sqlx.ExtContext
	convert           func(string) string
	lockClause        string
	isUniqueViolation func(error) bool
}

const registrationViewSelect = `
	SELECT
		r.id,
		r.student_id,
		r.exam_id,
		r.status_id,
		r.result_id,
		r.report_id,
		s.number AS student_number,
		s.name AS student_name,
		s.surname AS student_surname,
		s.email AS student_email,
		s.major AS student_major,
		e.date AS exam_date,
		c.id AS course_id,
		c.name AS course_name
	FROM registrations r
	JOIN students s ON s.id = r.student_id
	JOIN exams e ON e.id = r.exam_id
	JOIN courses c ON c.id = e.course_id
`

func (q *Queries) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := sqlx.GetContext(ctx, q.ext, &ok, q.convert(query), args...); err != nil {
		return false, err
	}
	return ok, nil
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.ext.ExecContext(ctx, q.convert(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) insertReturningID(ctx context.Context, query string, arg any) (int64, error) {
	rows, err := sqlx.NamedQueryContext(ctx, q.ext, query, arg)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var id int64
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("insert returned no id")
	}
	if err := rows.Scan(&id); err != nil {
		return 0, err
	}
	return id, rows.Err()
}

func statusIDs(statuses []models.Status) []int {
	ids := make([]int, len(statuses))
	for i, s := range statuses {
		ids[i] = int(s)
	}
	return ids
}

// Guards

func (q *Queries) ProfessorOwnsExam(ctx context.Context, professorID, examID int64) (bool, error) {
	ok, err := q.exists(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM exams e
			JOIN courses c ON c.id = e.course_id
			WHERE e.id = ? AND c.professor_id = ?
		)
	`, examID, professorID)
	if err != nil {
		return false, fmt.Errorf("failed to check exam ownership: %w", err)
	}
	return ok, nil
}

func (q *Queries) ProfessorOwnsCourse(ctx context.Context, professorID, courseID int64) (bool, error) {
	ok, err := q.exists(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM courses WHERE id = ? AND professor_id = ?
		)
	`, courseID, professorID)
	if err != nil {
		return false, fmt.Errorf("failed to check course ownership: %w", err)
	}
	return ok, nil
}

func (q *Queries) ProfessorOwnsRegistration(ctx context.Context, professorID, registrationID int64) (bool, error) {
	ok, err := q.exists(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM registrations r
			JOIN exams e ON e.id = r.exam_id
			JOIN courses c ON c.id = e.course_id
			WHERE r.id = ? AND c.professor_id = ?
		)
	`, registrationID, professorID)
	if err != nil {
		return false, fmt.Errorf("failed to check registration ownership: %w", err)
	}
	return ok, nil
}

func (q *Queries) ProfessorOwnsReport(ctx context.Context, professorID, reportID int64) (bool, error) {
	ok, err := q.exists(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM reports rp
			JOIN exams e ON e.id = rp.exam_id
			JOIN courses c ON c.id = e.course_id
			WHERE rp.id = ? AND c.professor_id = ?
		)
	`, reportID, professorID)
	if err != nil {
		return false, fmt.Errorf("failed to check report ownership: %w", err)
	}
	return ok, nil
}

func (q *Queries) StudentEnrolledForExam(ctx context.Context, studentID, examID int64) (bool, error) {
	ok, err := q.exists(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM exams e
			JOIN courses_students cs ON cs.course_id = e.course_id
			WHERE e.id = ? AND cs.student_id = ?
		)
	`, examID, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return ok, nil
}

// Catalog

func (q *Queries) CreateProfessor(ctx context.Context, p *models.Professor) (int64, error) {
	id, err := q.insertReturningID(ctx, `
		INSERT INTO professors (name, surname, email)
		VALUES (:name, :surname, :email)
		RETURNING id
	`, p)
	if err != nil {
		return 0, fmt.Errorf("failed to create professor: %w", err)
	}
	return id, nil
}

func (q *Queries) CreateStudent(ctx context.Context, s *models.Student) (int64, error) {
	id, err := q.insertReturningID(ctx, `
		INSERT INTO students (number, name, surname, email, major)
		VALUES (:number, :name, :surname, :email, :major)
		RETURNING id
	`, s)
	if err != nil {
		return 0, fmt.Errorf("failed to create student: %w", err)
	}
	return id, nil
}

func (q *Queries) CreateCourse(ctx context.Context, c *models.Course) (int64, error) {
	id, err := q.insertReturningID(ctx, `
		INSERT INTO courses (name, cfu, semester, professor_id)
		VALUES (:name, :cfu, :semester, :professor_id)
		RETURNING id
	`, c)
	if err != nil {
		return 0, fmt.Errorf("failed to create course: %w", err)
	}
	return id, nil
}

func (q *Queries) EnrollStudent(ctx context.Context, courseID, studentID int64) error {
	_, err := q.exec(ctx, `
		INSERT INTO courses_students (course_id, student_id)
		VALUES (?, ?)
		ON CONFLICT (course_id, student_id) DO NOTHING
	`, courseID, studentID)
	if err != nil {
		return fmt.Errorf("failed to enroll student: %w", err)
	}
	return nil
}

func (q *Queries) CreateExam(ctx context.Context, e *models.Exam) (int64, error) {
	id, err := q.insertReturningID(ctx, `
		INSERT INTO exams (course_id, date)
		VALUES (:course_id, :date)
		RETURNING id
	`, e)
	if err != nil {
		return 0, fmt.Errorf("failed to create exam: %w", err)
	}
	return id, nil
}

func (q *Queries) GetCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	var course models.Course
	err := sqlx.GetContext(ctx, q.ext, &course, q.convert(`
		SELECT id, name, cfu, semester, professor_id
		FROM courses
		WHERE id = ?
	`), courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

func (q *Queries) GetExam(ctx context.Context, examID int64) (*models.ExamView, error) {
	var exam models.ExamView
	err := sqlx.GetContext(ctx, q.ext, &exam, q.convert(`
		SELECT e.id, e.course_id, e.date, c.name AS course_name, c.professor_id
		FROM exams e
		JOIN courses c ON c.id = e.course_id
		WHERE e.id = ?
	`), examID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return &exam, nil
}

func (q *Queries) GetStudent(ctx context.Context, studentID int64) (*models.Student, error) {
	var student models.Student
	err := sqlx.GetContext(ctx, q.ext, &student, q.convert(`
		SELECT id, number, name, surname, email, major
		FROM students
		WHERE id = ?
	`), studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (q *Queries) ListExamsForCourse(ctx context.Context, courseID int64) ([]models.ExamView, error) {
	var exams []models.ExamView
	err := sqlx.SelectContext(ctx, q.ext, &exams, q.convert(`
		SELECT e.id, e.course_id, e.date, c.name AS course_name, c.professor_id
		FROM exams e
		JOIN courses c ON c.id = e.course_id
		WHERE e.course_id = ?
		ORDER BY e.date DESC, e.id DESC
	`), courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, nil
}

func (q *Queries) ListCoursesForProfessor(ctx context.Context, professorID int64) ([]models.Course, error) {
	var courses []models.Course
	err := sqlx.SelectContext(ctx, q.ext, &courses, q.convert(`
		SELECT id, name, cfu, semester, professor_id
		FROM courses
		WHERE professor_id = ?
		ORDER BY name, id
	`), professorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list professor courses: %w", err)
	}
	return courses, nil
}

func (q *Queries) ListCoursesForStudent(ctx context.Context, studentID int64) ([]models.Course, error) {
	var courses []models.Course
	err := sqlx.SelectContext(ctx, q.ext, &courses, q.convert(`
		SELECT c.id, c.name, c.cfu, c.semester, c.professor_id
		FROM courses c
		JOIN courses_students cs ON cs.course_id = c.id
		WHERE cs.student_id = ?
		ORDER BY c.name, c.id
	`), studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student courses: %w", err)
	}
	return courses, nil
}

// Registrations

func (q *Queries) RegistrationExists(ctx context.Context, studentID, examID int64) (bool, error) {
	ok, err := q.exists(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM registrations WHERE student_id = ? AND exam_id = ?
		)
	`, studentID, examID)
	if err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return ok, nil
}

func (q *Queries) CreateRegistration(ctx context.Context, studentID, examID int64) (int64, error) {
	var id int64
	err := q.ext.QueryRowxContext(ctx, q.convert(`
		INSERT INTO registrations (student_id, exam_id, status_id, result_id)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), studentID, examID, int(models.StatusNotEntered), int(models.ResultEmpty)).Scan(&id)
	if err != nil {
		if q.isUniqueViolation != nil && q.isUniqueViolation(err) {
			return 0, models.WrapError("CreateRegistration", models.ErrConflict,
				"already registered for this exam call", err)
		}
		return 0, fmt.Errorf("failed to create registration: %w", err)
	}
	return id, nil
}

func (q *Queries) getRegistration(ctx context.Context, lock string, where string, args ...any) (*models.Registration, error) {
	var reg models.Registration
	err := sqlx.GetContext(ctx, q.ext, &reg, q.convert(`
		SELECT id, student_id, exam_id, status_id, result_id, report_id
		FROM registrations
		WHERE `+where+lock), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

func (q *Queries) GetRegistration(ctx context.Context, registrationID int64) (*models.Registration, error) {
	return q.getRegistration(ctx, "", "id = ?", registrationID)
}

// LockRegistration reads the row and, on dialects that support it, holds a
// row lock until the surrounding transaction ends.
func (q *Queries) LockRegistration(ctx context.Context, registrationID int64) (*models.Registration, error) {
	return q.getRegistration(ctx, q.lockClause, "id = ?", registrationID)
}

func (q *Queries) LockRegistrationByStudentAndExam(ctx context.Context, studentID, examID int64) (*models.Registration, error) {
	return q.getRegistration(ctx, q.lockClause, "student_id = ? AND exam_id = ?", studentID, examID)
}

func (q *Queries) GetRegistrationView(ctx context.Context, registrationID int64) (*models.RegistrationView, error) {
	var view models.RegistrationView
	err := sqlx.GetContext(ctx, q.ext, &view, q.convert(registrationViewSelect+`
		WHERE r.id = ?
	`), registrationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration view: %w", err)
	}
	return &view, nil
}

func (q *Queries) GetRegistrationViewByStudentAndExam(ctx context.Context, studentID, examID int64) (*models.RegistrationView, error) {
	var view models.RegistrationView
	err := sqlx.GetContext(ctx, q.ext, &view, q.convert(registrationViewSelect+`
		WHERE r.student_id = ? AND r.exam_id = ?
	`), studentID, examID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration view: %w", err)
	}
	return &view, nil
}

func (q *Queries) ListRegistrationsForExam(ctx context.Context, examID int64, order Sort) ([]models.RegistrationView, error) {
	var views []models.RegistrationView
	err := sqlx.SelectContext(ctx, q.ext, &views, q.convert(registrationViewSelect+`
		WHERE r.exam_id = ?
		ORDER BY `+order.OrderBy()), examID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exam registrations: %w", err)
	}
	return views, nil
}

func (q *Queries) ListRegistrationsForReport(ctx context.Context, reportID int64, order Sort) ([]models.RegistrationView, error) {
	var views []models.RegistrationView
	err := sqlx.SelectContext(ctx, q.ext, &views, q.convert(registrationViewSelect+`
		WHERE r.report_id = ?
		ORDER BY `+order.OrderBy()), reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list report registrations: %w", err)
	}
	return views, nil
}

func (q *Queries) ListRegisteredExamIDs(ctx context.Context, studentID, courseID int64) ([]int64, error) {
	var ids []int64
	err := sqlx.SelectContext(ctx, q.ext, &ids, q.convert(`
		SELECT r.exam_id
		FROM registrations r
		JOIN exams e ON e.id = r.exam_id
		WHERE r.student_id = ? AND e.course_id = ?
		ORDER BY r.exam_id
	`), studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered exams: %w", err)
	}
	return ids, nil
}

// Transitions. Each one is a single predicate-scoped update; report_id IS
// NULL keeps sealed rows out of reach.

func (q *Queries) UpdateRegistrationResult(ctx context.Context, registrationID int64, from, to models.Status, result models.Result) (int64, error) {
	n, err := q.exec(ctx, `
		UPDATE registrations
		SET result_id = ?, status_id = ?
		WHERE id = ?
			AND status_id = ?
			AND report_id IS NULL
	`, int(result), int(to), registrationID, int(from))
	if err != nil {
		return 0, fmt.Errorf("failed to update result: %w", err)
	}
	return n, nil
}

func (q *Queries) DeclineRegistration(ctx context.Context, registrationID int64) (int64, error) {
	n, err := q.exec(ctx, `
		UPDATE registrations
		SET status_id = ?
		WHERE id = ?
			AND status_id = ?
			AND result_id >= ?
			AND report_id IS NULL
	`, int(models.StatusDeclined), registrationID, int(models.StatusPublished), int(models.MinPassingGrade))
	if err != nil {
		return 0, fmt.Errorf("failed to decline result: %w", err)
	}
	return n, nil
}

func (q *Queries) PublishEntered(ctx context.Context, examID int64) (int64, error) {
	n, err := q.exec(ctx, `
		UPDATE registrations
		SET status_id = ?
		WHERE exam_id = ?
			AND status_id = ?
			AND report_id IS NULL
	`, int(models.StatusPublished), examID, int(models.StatusEntered))
	if err != nil {
		return 0, fmt.Errorf("failed to publish results: %w", err)
	}
	return n, nil
}

// FinalizeEligible flips published and declined rows to recorded. Declined
// rows get their result forced to postponed in the same statement.
func (q *Queries) FinalizeEligible(ctx context.Context, examID int64) (int64, error) {
	query, args, err := sqlx.In(`
		UPDATE registrations
		SET result_id = CASE
				WHEN status_id = ? THEN ?
				ELSE result_id
			END,
			status_id = ?
		WHERE exam_id = ?
			AND status_id IN (?)
			AND report_id IS NULL
	`,
		int(models.StatusDeclined),
		int(models.ResultPostponed),
		int(models.StatusRecorded),
		examID,
		statusIDs(models.FinalizableStatuses()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to build finalize query: %w", err)
	}

	n, err := q.exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize results: %w", err)
	}
	return n, nil
}

func (q *Queries) CreateReport(ctx context.Context, examID, createdAt int64) (int64, error) {
	id, err := q.insertReturningID(ctx, `
		INSERT INTO reports (exam_id, created_at)
		VALUES (:exam_id, :created_at)
		RETURNING id
	`, &models.Report{ExamID: examID, CreatedAt: createdAt})
	if err != nil {
		return 0, fmt.Errorf("failed to create report: %w", err)
	}
	return id, nil
}

func (q *Queries) LinkRecordedToReport(ctx context.Context, examID, reportID int64) (int64, error) {
	n, err := q.exec(ctx, `
		UPDATE registrations
		SET report_id = ?
		WHERE exam_id = ?
			AND status_id = ?
			AND report_id IS NULL
	`, reportID, examID, int(models.StatusRecorded))
	if err != nil {
		return 0, fmt.Errorf("failed to link registrations to report: %w", err)
	}
	return n, nil
}

// Reports

const reportViewSelect = `
	SELECT rp.id, rp.exam_id, rp.created_at, e.date AS exam_date, c.id AS course_id, c.name AS course_name
	FROM reports rp
	JOIN exams e ON e.id = rp.exam_id
	JOIN courses c ON c.id = e.course_id
`

func (q *Queries) GetReport(ctx context.Context, reportID int64) (*models.ReportView, error) {
	var report models.ReportView
	err := sqlx.GetContext(ctx, q.ext, &report, q.convert(reportViewSelect+`
		WHERE rp.id = ?
	`), reportID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

func (q *Queries) ListReportsForCourse(ctx context.Context, professorID, courseID int64) ([]models.ReportView, error) {
	var reports []models.ReportView
	err := sqlx.SelectContext(ctx, q.ext, &reports, q.convert(reportViewSelect+`
		WHERE c.id = ? AND c.professor_id = ?
		ORDER BY e.date ASC, rp.id ASC
	`), courseID, professorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// Vocabularies

func (q *Queries) ListStatuses(ctx context.Context) ([]VocabularyRow, error) {
	var rows []VocabularyRow
	if err := sqlx.SelectContext(ctx, q.ext, &rows, `SELECT id, value FROM statuses ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	return rows, nil
}

func (q *Queries) ListResults(ctx context.Context) ([]VocabularyRow, error) {
	var rows []VocabularyRow
	if err := sqlx.SelectContext(ctx, q.ext, &rows, `SELECT id, value FROM results ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return rows, nil
}
