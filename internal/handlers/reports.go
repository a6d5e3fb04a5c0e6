package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/appello/internal/models"
)

func (h *Handler) HandleReportsForCourse(w http.ResponseWriter, r *http.Request) {
	professorID, ok := h.caller(w, r, models.RoleProfessor)
	if !ok {
		return
	}
	courseID, ok := queryID(w, r, "courseId")
	if !ok {
		return
	}

	reports, err := h.engine.GetReportsForCourse(r.Context(), professorID, courseID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	dtos := make([]ReportDTO, len(reports))
	for i := range reports {
		dtos[i] = newReportDTO(&reports[i], nil)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	professorID, ok := h.caller(w, r, models.RoleProfessor)
	if !ok {
		return
	}
	reportID, ok := queryID(w, r, "reportId")
	if !ok {
		return
	}

	q := r.URL.Query()
	snapshot, err := h.engine.GetReportByIDSortedBy(r.Context(), professorID, reportID, q.Get("sortBy"), q.Get("sortDir"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReportDTO(&snapshot.Report, snapshot.Registrations))
}
