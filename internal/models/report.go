package models

// Report groups the registrations sealed by one finalize call. CreatedAt is
// unix seconds. Rows are never updated after insert.
type Report struct {
	ID        int64 `db:"id" json:"id"`
	ExamID    int64 `db:"exam_id" json:"exam_id"`
	CreatedAt int64 `db:"created_at" json:"created_at"`
}

// ReportView is a report joined with its exam call and course.
type ReportView struct {
	Report
	ExamDate   int64  `db:"exam_date"`
	CourseID   int64  `db:"course_id"`
	CourseName string `db:"course_name"`
}

// ReportSnapshot is the read-only assembly of a report and its ordered
// registrations.
type ReportSnapshot struct {
	Report        ReportView
	Registrations []RegistrationView
}
