package models

// Registration is one student's enrollment record for one exam call.
type Registration struct {
	ID        int64  `db:"id" json:"id"`
	StudentID int64  `db:"student_id" json:"student_id"`
	ExamID    int64  `db:"exam_id" json:"exam_id"`
	Status    Status `db:"status_id" json:"status_id"`
	Result    Result `db:"result_id" json:"result_id"`
	ReportID  *int64 `db:"report_id" json:"report_id,omitempty"`
}

// CanBeDeclined reports whether the student may reject the current result.
func (r *Registration) CanBeDeclined() bool {
	return r.Status.Declinable() && r.Result.Passing()
}

// RegistrationView is a registration joined with the student, exam and
// course it refers to.
type RegistrationView struct {
	Registration

	StudentNumber  int64  `db:"student_number"`
	StudentName    string `db:"student_name"`
	StudentSurname string `db:"student_surname"`
	StudentEmail   string `db:"student_email"`
	StudentMajor   string `db:"student_major"`
	ExamDate       int64  `db:"exam_date"`
	CourseID       int64  `db:"course_id"`
	CourseName     string `db:"course_name"`
}

// ResultUpdate is one item of a bulk result edit.
type ResultUpdate struct {
	RegistrationID int64  `json:"registrationId" validate:"required,gt=0"`
	ResultID       Result `json:"resultId" validate:"required,gt=0"`
}

func (u *ResultUpdate) Validate() error {
	return validate.Struct(u)
}
