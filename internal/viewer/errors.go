package viewer

import (
	"encoding/json"
	"net/http"

	reperrors "sizereport/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// WriteError writes err with the status mapped from its code
func WriteError(w http.ResponseWriter, err error) {
	code := reperrors.CodeOf(err)
	resp := ErrorResponse{
		Error: err.Error(),
		Code:  string(code),
	}
	if re, ok := err.(*reperrors.ReportError); ok {
		resp.Details = re.Details
	}
	WriteJSON(w, resp, StatusOf(code))
}

// StatusOf maps report error codes to HTTP status codes
func StatusOf(code reperrors.ErrorCode) int {
	switch code {
	case reperrors.ReportNotFound:
		return http.StatusNotFound // 404
	case reperrors.InvalidRequest, reperrors.ConfigInvalid, reperrors.StatsInvalid:
		return http.StatusBadRequest // 400
	case reperrors.ParseFailure, reperrors.BuildFailed:
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// BadRequest writes a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, reperrors.Newf(reperrors.InvalidRequest, "%s", message))
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string, err error) {
	WriteError(w, reperrors.New(reperrors.InternalError, message, err))
}
