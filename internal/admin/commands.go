package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shrimpsizemoose/appello/internal/models"
)

const (
	dateLayout = "2006-01-02 15:04"

	helpText = `Available commands:
professor add <name> <surname> <email>
student add <number> <name> <surname> <email> [major...]
course add <professorId> <cfu> <first|second> <name...>
course list professor|student <id>
enroll <courseId> <studentId>
exam add <courseId> <YYYY-MM-DD> [HH:MM]
exam list <courseId>
token professor|student <userId>
help

Examples:
professor add Ada Lovelace ada.lovelace@uni.example
course add 1 10 first Databases
exam add 1 2024-06-20 09:00
token professor 1
`
)

func (a *Admin) handleHelp(ctx context.Context, args []string) error {
	a.printf("%s", helpText)
	return nil
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", what, raw)
	}
	return id, nil
}

func (a *Admin) handleProfessor(ctx context.Context, args []string) error {
	if len(args) != 4 || args[0] != "add" {
		return fmt.Errorf("usage: professor add <name> <surname> <email>")
	}

	id, err := a.engine.AddProfessor(ctx, &models.Professor{
		Name:    args[1],
		Surname: args[2],
		Email:   args[3],
	})
	if err != nil {
		return fmt.Errorf("failed to add professor: %w", err)
	}

	a.printf("Professor %s %s added with id %d\n", args[1], args[2], id)
	return nil
}

func (a *Admin) handleStudent(ctx context.Context, args []string) error {
	if len(args) < 5 || args[0] != "add" {
		return fmt.Errorf("usage: student add <number> <name> <surname> <email> [major...]")
	}

	number, err := parseID(args[1], "student number")
	if err != nil {
		return err
	}

	id, err := a.engine.AddStudent(ctx, &models.Student{
		Number:  number,
		Name:    args[2],
		Surname: args[3],
		Email:   args[4],
		Major:   strings.Join(args[5:], " "),
	})
	if err != nil {
		return fmt.Errorf("failed to add student: %w", err)
	}

	a.printf("Student %d (%s %s) added with id %d\n", number, args[2], args[3], id)
	return nil
}

func (a *Admin) handleCourse(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: course add|list ...")
	}

	switch args[0] {
	case "add":
		return a.handleCourseAdd(ctx, args[1:])
	case "list":
		return a.handleCourseList(ctx, args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func (a *Admin) handleCourseAdd(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: course add <professorId> <cfu> <first|second> <name...>")
	}

	professorID, err := parseID(args[0], "professor id")
	if err != nil {
		return err
	}
	cfu, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid cfu: %q", args[1])
	}

	name := strings.Join(args[3:], " ")
	id, err := a.engine.AddCourse(ctx, &models.Course{
		Name:        name,
		CFU:         cfu,
		Semester:    models.Semester(args[2]),
		ProfessorID: professorID,
	})
	if err != nil {
		return fmt.Errorf("failed to add course: %w", err)
	}

	a.printf("Course %q added with id %d\n", name, id)
	return nil
}

func (a *Admin) handleCourseList(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: course list professor|student <id>")
	}
	id, err := parseID(args[1], args[0]+" id")
	if err != nil {
		return err
	}

	var courses []models.Course
	switch args[0] {
	case "professor":
		courses, err = a.engine.ListCoursesForProfessor(ctx, id)
	case "student":
		courses, err = a.engine.ListCoursesForStudent(ctx, id)
	default:
		return fmt.Errorf("unknown owner kind: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	if len(courses) == 0 {
		a.printf("No courses found\n")
		return nil
	}
	for _, c := range courses {
		a.printf("%d\t%s\t%d CFU\t%s semester\n", c.ID, c.Name, c.CFU, c.Semester)
	}
	return nil
}

func (a *Admin) handleEnroll(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: enroll <courseId> <studentId>")
	}
	courseID, err := parseID(args[0], "course id")
	if err != nil {
		return err
	}
	studentID, err := parseID(args[1], "student id")
	if err != nil {
		return err
	}

	if err := a.engine.EnrollStudent(ctx, courseID, studentID); err != nil {
		return fmt.Errorf("failed to enroll: %w", err)
	}

	a.printf("Student %d enrolled in course %d\n", studentID, courseID)
	return nil
}

func (a *Admin) handleExam(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: exam add <courseId> <YYYY-MM-DD> [HH:MM] | exam list <courseId>")
	}

	courseID, err := parseID(args[1], "course id")
	if err != nil {
		return err
	}

	switch args[0] {
	case "add":
		return a.handleExamAdd(ctx, courseID, args[2:])
	case "list":
		return a.handleExamList(ctx, courseID)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func (a *Admin) handleExamAdd(ctx context.Context, courseID int64, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: exam add <courseId> <YYYY-MM-DD> [HH:MM]")
	}

	clock := "09:00"
	if len(args) == 2 {
		clock = args[1]
	}
	date, err := time.Parse(dateLayout, args[0]+" "+clock)
	if err != nil {
		return fmt.Errorf("invalid date (use YYYY-MM-DD HH:MM): %v", err)
	}

	id, err := a.engine.AddExamCall(ctx, courseID, date)
	if err != nil {
		return fmt.Errorf("failed to add exam call: %w", err)
	}

	a.printf("Exam call %d scheduled for course %d on %s UTC\n", id, courseID, date.Format(dateLayout))
	return nil
}

func (a *Admin) handleExamList(ctx context.Context, courseID int64) error {
	exams, err := a.engine.GetExamsForCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to list exam calls: %w", err)
	}

	if len(exams) == 0 {
		a.printf("No exam calls found\n")
		return nil
	}
	for _, e := range exams {
		a.printf("%d\t%s\t%s\n", e.ID, e.CourseName, time.Unix(e.Date, 0).UTC().Format(dateLayout))
	}
	return nil
}

func (a *Admin) handleToken(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: token professor|student <userId>")
	}
	if a.tokens == nil {
		return fmt.Errorf("token issuing needs [auth] redis_url in the config")
	}

	role := models.Role(args[0])
	if !role.Valid() {
		return fmt.Errorf("unknown role: %s", args[0])
	}
	if _, err := parseID(args[1], "user id"); err != nil {
		return err
	}

	info, isNew, err := a.tokens.FetchOrCreateToken(ctx, role, args[1])
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	state := "existing"
	if isNew {
		state = "new"
	}
	a.printf("Token (%s) for %s %s: %s\n", state, role, args[1], info.Token)
	return nil
}
