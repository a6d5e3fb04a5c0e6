package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/models"
)

type studentResultResponse struct {
	Registration  *RegistrationDTO `json:"registration"`
	IsPublished   bool             `json:"isPublished"`
	CanBeDeclined bool             `json:"canBeDeclined"`
	Message       string           `json:"message"`
}

// HandleStudentResult answers 200 for unpublished results with
// isPublished=false instead of an error status.
func (h *Handler) HandleStudentResult(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.caller(w, r, models.RoleStudent)
	if !ok {
		return
	}
	examID, ok := queryID(w, r, "examId")
	if !ok {
		return
	}

	view, err := h.engine.GetResultByStudentIDAndExamID(r.Context(), studentID, examID)
	if errors.Is(err, models.ErrNotVisible) {
		writeJSON(w, http.StatusOK, studentResultResponse{Message: models.Message(err)})
		return
	}
	if err != nil {
		handleError(w, r, err)
		return
	}

	dto := newRegistrationDTO(view)
	writeJSON(w, http.StatusOK, studentResultResponse{
		Registration:  &dto,
		IsPublished:   true,
		CanBeDeclined: dto.CanBeDeclined,
	})
}

func (h *Handler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.caller(w, r, models.RoleStudent)
	if !ok {
		return
	}
	examID, ok := pathID(w, r, "examId")
	if !ok {
		return
	}

	if err := h.engine.DeclineExamResult(r.Context(), studentID, examID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleExamRegistrations(w http.ResponseWriter, r *http.Request) {
	professorID, ok := h.caller(w, r, models.RoleProfessor)
	if !ok {
		return
	}
	examID, ok := queryID(w, r, "examId")
	if !ok {
		return
	}

	q := r.URL.Query()
	views, err := h.engine.GetStudentsByExamIDSortedBy(r.Context(), professorID, examID, q.Get("sortBy"), q.Get("sortDir"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRegistrationDTOs(views))
}

func (h *Handler) HandleSetResult(w http.ResponseWriter, r *http.Request) {
	professorID, ok := h.caller(w, r, models.RoleProfessor)
	if !ok {
		return
	}
	registrationID, ok := pathID(w, r, "registrationId")
	if !ok {
		return
	}
	resultID, ok := queryID(w, r, "resultId")
	if !ok {
		return
	}

	ctx := r.Context()
	if err := h.engine.SetResult(ctx, professorID, registrationID, models.Result(resultID)); err != nil {
		handleError(w, r, err)
		return
	}

	view, err := h.engine.GetRegistrationByID(ctx, professorID, registrationID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRegistrationDTO(view))
}

func (h *Handler) HandleSetResultBulk(w http.ResponseWriter, r *http.Request) {
	professorID, ok := h.caller(w, r, models.RoleProfessor)
	if !ok {
		return
	}

	var updates []models.ResultUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		logger.Debug.Printf("Failed to decode bulk update: %v", err)
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	if err := h.engine.SetResultBulk(ctx, professorID, updates); err != nil {
		handleError(w, r, err)
		return
	}

	ids := make([]int64, len(updates))
	for i, u := range updates {
		ids[i] = u.RegistrationID
	}
	views, err := h.engine.GetRegistrationsByID(ctx, professorID, ids)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRegistrationDTOs(views))
}

func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	professorID, ok := h.caller(w, r, models.RoleProfessor)
	if !ok {
		return
	}
	examID, ok := pathID(w, r, "examId")
	if !ok {
		return
	}

	n, err := h.engine.PublishResults(r.Context(), professorID, examID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"published": n})
}

func (h *Handler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	professorID, ok := h.caller(w, r, models.RoleProfessor)
	if !ok {
		return
	}
	examID, ok := pathID(w, r, "examId")
	if !ok {
		return
	}

	reportID, err := h.engine.FinalizeResults(r.Context(), professorID, examID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"reportId": reportID})
}
