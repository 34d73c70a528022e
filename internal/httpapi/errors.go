package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"astrod/internal/control"
	"astrod/internal/download"
	"astrod/internal/engine"
	"astrod/internal/hardware"
	"astrod/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case control.IsInvalidArgument(err):
		return http.StatusBadRequest
	case download.IsTransferInit(err), download.IsTransfer(err):
		return http.StatusBadGateway
	case download.IsIO(err):
		return http.StatusInternalServerError
	case engine.IsBinaryNotFound(err), engine.IsUnreachable(err):
		return http.StatusServiceUnavailable
	case engine.IsSpawn(err):
		return http.StatusInternalServerError
	case errors.Is(err, hardware.ErrUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeServiceError maps err to a status, logs it, and writes the payload.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		l := logger()
		l.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	}
	writeJSONError(w, status, err.Error())
}
