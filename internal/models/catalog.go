package models

import (
	"github.com/go-playground/validator/v10"
)

type Professor struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name" validate:"required,max=100"`
	Surname string `db:"surname" json:"surname" validate:"required,max=100"`
	Email   string `db:"email" json:"email" validate:"required,email"`
}

type Student struct {
	ID      int64  `db:"id" json:"id"`
	Number  int64  `db:"number" json:"number" validate:"required,gt=0"`
	Name    string `db:"name" json:"name" validate:"required,max=100"`
	Surname string `db:"surname" json:"surname" validate:"required,max=100"`
	Email   string `db:"email" json:"email" validate:"required,email"`
	Major   string `db:"major" json:"major" validate:"max=100"`
}

type Semester string

const (
	SemesterFirst  Semester = "first"
	SemesterSecond Semester = "second"
)

type Course struct {
	ID          int64    `db:"id" json:"id"`
	Name        string   `db:"name" json:"name" validate:"required,max=50"`
	CFU         int      `db:"cfu" json:"cfu" validate:"required,gt=0,lte=30"`
	Semester    Semester `db:"semester" json:"semester" validate:"required,oneof=first second"`
	ProfessorID int64    `db:"professor_id" json:"professor_id" validate:"required,gt=0"`
}

// Exam is a single scheduled sitting of a course's exam. Date is unix seconds.
type Exam struct {
	ID       int64 `db:"id" json:"id"`
	CourseID int64 `db:"course_id" json:"course_id" validate:"required,gt=0"`
	Date     int64 `db:"date" json:"date" validate:"required,gt=0"`
}

type ExamView struct {
	Exam
	CourseName  string `db:"course_name" json:"course_name"`
	ProfessorID int64  `db:"professor_id" json:"professor_id"`
}

var validate = validator.New()

func (p *Professor) Validate() error {
	return validate.Struct(p)
}

func (s *Student) Validate() error {
	return validate.Struct(s)
}

func (c *Course) Validate() error {
	return validate.Struct(c)
}

func (e *Exam) Validate() error {
	return validate.Struct(e)
}
