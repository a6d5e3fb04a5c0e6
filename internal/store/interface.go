package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/models"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Guards are the existence queries behind access control.
type Guards interface {
	ProfessorOwnsExam(ctx context.Context, professorID, examID int64) (bool, error)
	ProfessorOwnsCourse(ctx context.Context, professorID, courseID int64) (bool, error)
	ProfessorOwnsRegistration(ctx context.Context, professorID, registrationID int64) (bool, error)
	ProfessorOwnsReport(ctx context.Context, professorID, reportID int64) (bool, error)
	StudentEnrolledForExam(ctx context.Context, studentID, examID int64) (bool, error)
}

// Tx is the unit of work the lifecycle transitions run in. Every write is a
// conditional update whose affected-row count is the success signal.
type Tx interface {
	Guards

	GetExam(ctx context.Context, examID int64) (*models.ExamView, error)
	GetStudent(ctx context.Context, studentID int64) (*models.Student, error)
	RegistrationExists(ctx context.Context, studentID, examID int64) (bool, error)
	CreateRegistration(ctx context.Context, studentID, examID int64) (int64, error)

	LockRegistration(ctx context.Context, registrationID int64) (*models.Registration, error)
	LockRegistrationByStudentAndExam(ctx context.Context, studentID, examID int64) (*models.Registration, error)

	UpdateRegistrationResult(ctx context.Context, registrationID int64, from, to models.Status, result models.Result) (int64, error)
	DeclineRegistration(ctx context.Context, registrationID int64) (int64, error)
	PublishEntered(ctx context.Context, examID int64) (int64, error)
	FinalizeEligible(ctx context.Context, examID int64) (int64, error)
	CreateReport(ctx context.Context, examID, createdAt int64) (int64, error)
	LinkRecordedToReport(ctx context.Context, examID, reportID int64) (int64, error)
}

type Store interface {
	Tx

	Close() error
	ApplyMigrations(dir string) error
	CheckVocabulary(ctx context.Context) error
	InTx(ctx context.Context, fn func(tx Tx) error) error

	CreateProfessor(ctx context.Context, p *models.Professor) (int64, error)
	CreateStudent(ctx context.Context, s *models.Student) (int64, error)
	CreateCourse(ctx context.Context, c *models.Course) (int64, error)
	EnrollStudent(ctx context.Context, courseID, studentID int64) error
	CreateExam(ctx context.Context, e *models.Exam) (int64, error)
	GetCourse(ctx context.Context, courseID int64) (*models.Course, error)
	ListExamsForCourse(ctx context.Context, courseID int64) ([]models.ExamView, error)
	ListCoursesForProfessor(ctx context.Context, professorID int64) ([]models.Course, error)
	ListCoursesForStudent(ctx context.Context, studentID int64) ([]models.Course, error)

	GetRegistration(ctx context.Context, registrationID int64) (*models.Registration, error)
	GetRegistrationView(ctx context.Context, registrationID int64) (*models.RegistrationView, error)
	GetRegistrationViewByStudentAndExam(ctx context.Context, studentID, examID int64) (*models.RegistrationView, error)
	ListRegistrationsForExam(ctx context.Context, examID int64, order Sort) ([]models.RegistrationView, error)
	ListRegisteredExamIDs(ctx context.Context, studentID, courseID int64) ([]int64, error)

	GetReport(ctx context.Context, reportID int64) (*models.ReportView, error)
	ListReportsForCourse(ctx context.Context, professorID, courseID int64) ([]models.ReportView, error)
	ListRegistrationsForReport(ctx context.Context, reportID int64, order Sort) ([]models.RegistrationView, error)

	ListStatuses(ctx context.Context) ([]VocabularyRow, error)
	ListResults(ctx context.Context) ([]VocabularyRow, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	Queries
	DB        *sqlx.DB
	Converter func(string) string
}

// NewBaseStore wires the shared queries to db. lockClause is appended to
// selects that precede a conditional update inside a transaction.
func NewBaseStore(db *sqlx.DB, converter func(string) string, lockClause string, isUniqueViolation func(error) bool) BaseStore {
	return BaseStore{
		Queries: Queries{
			ext:               db,
			convert:           converter,
			lockClause:        lockClause,
			isUniqueViolation: isUniqueViolation,
		},
		DB:        db,
		Converter: converter,
	}
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// InTx runs fn in one transaction. Any error from fn rolls everything back.
func (s *BaseStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := sqlTx.Rollback(); rbErr != nil {
				logger.Debug.Printf("Rollback failed: %v", rbErr)
			}
		}
	}()

	q := s.Queries
	q.ext = sqlTx
	if err := fn(&q); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// ApplyMigrations applies SQL migrations, translating dialect if needed. An
// empty dir applies the migrations embedded in the binary.
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	var fsys fs.FS
	root := "migrations"
	if dir == "" {
		fsys = embeddedMigrations
	} else {
		fsys = os.DirFS(dir)
		root = "."
	}

	files, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		names = append(names, file.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := fs.ReadFile(fsys, root+"/"+name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		logger.Info.Printf("Applying migration: %s", name)
		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return nil
}

// CheckVocabulary verifies the seeded statuses and results against the
// compiled vocabularies.
func (s *BaseStore) CheckVocabulary(ctx context.Context) error {
	statuses, err := s.ListStatuses(ctx)
	if err != nil {
		return err
	}
	seeded := make(map[int]string, len(statuses))
	for _, row := range statuses {
		seeded[row.ID] = row.Value
	}
	for _, status := range models.AllStatuses() {
		value, ok := seeded[int(status)]
		if !ok || value != status.String() {
			return models.NewDomainError("CheckVocabulary", models.ErrReferenceData,
				fmt.Sprintf("status %d (%q) missing or mismatching, found %q", int(status), status.String(), value))
		}
	}

	results, err := s.ListResults(ctx)
	if err != nil {
		return err
	}
	seeded = make(map[int]string, len(results))
	for _, row := range results {
		seeded[row.ID] = row.Value
	}
	for _, result := range models.AllResults() {
		value, ok := seeded[int(result)]
		if !ok || value != result.String() {
			return models.NewDomainError("CheckVocabulary", models.ErrReferenceData,
				fmt.Sprintf("result %d (%q) missing or mismatching, found %q", int(result), result.String(), value))
		}
	}

	return nil
}
