package handlers

import (
	"time"

	"github.com/shrimpsizemoose/appello/internal/models"
)

type ResultDTO struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

type CourseDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ExamDTO struct {
	ID     int64     `json:"id"`
	Date   time.Time `json:"date"`
	Course CourseDTO `json:"course"`
}

type StudentDTO struct {
	ID      int64  `json:"id"`
	Number  int64  `json:"number"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Major   string `json:"major"`
}

type RegistrationDTO struct {
	ID            int64      `json:"id"`
	Student       StudentDTO `json:"student"`
	Status        string     `json:"status"`
	Exam          ExamDTO    `json:"exam"`
	Result        ResultDTO  `json:"result"`
	CanBeDeclined bool       `json:"canBeDeclined"`
}

type ReportDTO struct {
	ID            int64             `json:"id"`
	Exam          ExamDTO           `json:"exam"`
	Timestamp     time.Time         `json:"timestamp"`
	Registrations []RegistrationDTO `json:"registrations,omitempty"`
}

func newResultDTO(r models.Result) ResultDTO {
	return ResultDTO{ID: int(r), Value: r.String()}
}

func newRegistrationDTO(v *models.RegistrationView) RegistrationDTO {
	return RegistrationDTO{
		ID: v.ID,
		Student: StudentDTO{
			ID:      v.StudentID,
			Number:  v.StudentNumber,
			Name:    v.StudentName,
			Surname: v.StudentSurname,
			Email:   v.StudentEmail,
			Major:   v.StudentMajor,
		},
		Status: v.Status.String(),
		Exam: ExamDTO{
			ID:     v.ExamID,
			Date:   time.Unix(v.ExamDate, 0).UTC(),
			Course: CourseDTO{ID: v.CourseID, Name: v.CourseName},
		},
		Result:        newResultDTO(v.Result),
		CanBeDeclined: v.CanBeDeclined(),
	}
}

func newRegistrationDTOs(views []models.RegistrationView) []RegistrationDTO {
	dtos := make([]RegistrationDTO, len(views))
	for i := range views {
		dtos[i] = newRegistrationDTO(&views[i])
	}
	return dtos
}

func newExamDTO(e *models.ExamView) ExamDTO {
	return ExamDTO{
		ID:     e.ID,
		Date:   time.Unix(e.Date, 0).UTC(),
		Course: CourseDTO{ID: e.CourseID, Name: e.CourseName},
	}
}

func newReportDTO(r *models.ReportView, rows []models.RegistrationView) ReportDTO {
	dto := ReportDTO{
		ID: r.ID,
		Exam: ExamDTO{
			ID:     r.ExamID,
			Date:   time.Unix(r.ExamDate, 0).UTC(),
			Course: CourseDTO{ID: r.CourseID, Name: r.CourseName},
		},
		Timestamp: time.Unix(r.CreatedAt, 0).UTC(),
	}
	if rows != nil {
		dto.Registrations = newRegistrationDTOs(rows)
	}
	return dto
}
