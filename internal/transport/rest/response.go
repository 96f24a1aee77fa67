package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (that *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) respondError(w http.ResponseWriter, status int, message string) {
	that.respondJSON(w, status, errorResponse{Success: false, Error: message})
}

// respondAppError - maps the error taxonomy onto HTTP statuses.
func (that *Server) respondAppError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
	}

	that.respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidState),
		errors.Is(err, apperror.ErrInvalidMove),
		errors.Is(err, apperror.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
