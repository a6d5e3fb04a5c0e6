package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/models"
)

type errorBody struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorBody{
		Status:    status,
		Message:   message,
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC(),
	})
}

// statusFor maps a business kind to its HTTP status. Anything else is a 500.
func statusFor(err error) int {
	switch models.KindOf(err) {
	case models.ErrNotFound:
		return http.StatusNotFound
	case models.ErrForbidden:
		return http.StatusForbidden
	case models.ErrConflict, models.ErrInvalidState, models.ErrNoOp:
		return http.StatusConflict
	case models.ErrInvalidInput:
		return http.StatusBadRequest
	case models.ErrNotVisible:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	writeError(w, r, status, models.Message(err))
}

var errBadID = errors.New("bad id")

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// pathID reads a positive id from a path wildcard, writing a 400 otherwise.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := parseID(r.PathValue(name))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryID reads a mandatory positive id from the query string.
func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := parseID(r.URL.Query().Get(name))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}
