package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/app"
	"github.com/shrimpsizemoose/appello/internal/grading"
	"github.com/shrimpsizemoose/appello/internal/models"
)

type Handler struct {
	service *app.Service
	engine  *grading.Engine
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{
		service: service,
		engine:  service.Engine,
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /api/results/valid-only", h.HandleValidResults},
		{"GET /api/exams", h.HandleExamsForCourse},

		{"GET /api/student/exams/registered", h.HandleRegisteredExams},
		{"POST /api/student/exam/{examId}/register", h.HandleRegister},
		{"GET /api/student/result", h.HandleStudentResult},
		{"PATCH /api/student/result/{examId}/decline", h.HandleDecline},

		{"GET /api/professor/exam", h.HandleExamRegistrations},
		{"PATCH /api/professor/registrations/{registrationId}/result", h.HandleSetResult},
		{"PATCH /api/professor/registrations/results", h.HandleSetResultBulk},
		{"POST /api/professor/exam/{examId}/publish", h.HandlePublish},
		{"POST /api/professor/exam/{examId}/finalize", h.HandleFinalize},
		{"GET /api/professor/reports", h.HandleReportsForCourse},
		{"GET /api/professor/report", h.HandleReport},
	}
	for _, route := range routes {
		mux.HandleFunc(route.pattern, instrument(route.pattern, route.handler))
	}

	mux.Handle("GET /metrics", promhttp.Handler())
}

// caller checks required headers and credentials and returns the numeric
// user id. On failure the response has already been written.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request, role models.Role) (int64, bool) {
	if !h.service.ValidateHeaders(r.Header) {
		writeError(w, r, http.StatusForbidden, "Missing required headers")
		return 0, false
	}

	user, err := h.service.Authenticate(r, role)
	if err != nil {
		logger.Debug.Printf("Auth failed for %s: %v", r.URL.Path, err)
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}

	id, err := parseID(user)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Invalid user id specified")
		return 0, false
	}
	return id, true
}
