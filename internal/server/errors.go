package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netdiag/pkg/errors"
	"github.com/matzehuels/netdiag/pkg/observability"
)

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
	Row   int    `json:"row,omitempty"`
	Field string `json:"field,omitempty"`
}

// statusFor maps an error code to its HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInput, errors.ErrCodeSchema, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeIntegrity:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeToolNotFound:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes it as a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)

	s.logger.Warn("request failed",
		"path", r.URL.Path,
		"status", status,
		"code", code,
		"err", err,
		"request_id", middleware.GetReqID(r.Context()),
	)
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), string(code))

	resp := ErrorResponse{Code: string(code), Error: errors.UserMessage(err)}
	var e *errors.Error
	if stderrors.As(err, &e) {
		resp.Row = e.Row
		resp.Field = e.Field
	}
	if status == http.StatusInternalServerError {
		resp.Error = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
