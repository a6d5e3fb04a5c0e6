package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/appello/internal/models"
)

func (h *Handler) HandleValidResults(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		writeError(w, r, http.StatusForbidden, "Missing required headers")
		return
	}

	results := h.engine.ListValidResults()
	dtos := make([]ResultDTO, len(results))
	for i, result := range results {
		dtos[i] = newResultDTO(result)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) HandleExamsForCourse(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		writeError(w, r, http.StatusForbidden, "Missing required headers")
		return
	}
	courseID, ok := queryID(w, r, "courseId")
	if !ok {
		return
	}

	exams, err := h.engine.GetExamsForCourse(r.Context(), courseID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	dtos := make([]ExamDTO, len(exams))
	for i := range exams {
		dtos[i] = newExamDTO(&exams[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) HandleRegisteredExams(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.caller(w, r, models.RoleStudent)
	if !ok {
		return
	}
	courseID, ok := queryID(w, r, "courseId")
	if !ok {
		return
	}

	ids, err := h.engine.GetRegisteredExamIDs(r.Context(), studentID, courseID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.caller(w, r, models.RoleStudent)
	if !ok {
		return
	}
	examID, ok := pathID(w, r, "examId")
	if !ok {
		return
	}

	id, err := h.engine.RegisterStudentForExam(r.Context(), studentID, examID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"registrationId": id})
}
