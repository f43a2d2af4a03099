package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/observability"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and an [ErrorResponse]. Messages of
// internal errors are not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Code: errors.GetCode(err), Message: errors.UserMessage(err)}

	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		resp = ErrorResponse{Code: errors.ErrCodeInvalidInput, Message: "request body too large"}
	case status >= http.StatusInternalServerError:
		if resp.Code == "" {
			resp.Code = errors.ErrCodeInternal
		}
		resp.Message = http.StatusText(status)
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusMethodNotAllowed
	case errors.Is(err, errors.ErrCodeStorage):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func notFound(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

func methodNotAllowed(r *http.Request) error {
	return errors.New(errors.ErrCodeUnsupported, "method %s not allowed on %s", r.Method, r.URL.Path)
}
