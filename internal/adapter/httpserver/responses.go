package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/ai-career-advisor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-career-advisor/internal/domain"
	"github.com/fairyhunter13/ai-career-advisor/internal/ui"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto the error envelope. Only argument errors echo
// their text; every fetch failure carries the same public message.
func writeError(w http.ResponseWriter, _ *http.Request, err error, details interface{}) {
	code := http.StatusBadGateway
	codeStr := "UPSTREAM_FAILED"
	msg := ui.FetchFailedMessage
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
		codeStr = "INVALID_ARGUMENT"
		msg = err.Error()
	case errors.Is(err, domain.ErrBusy):
		code = http.StatusConflict
		codeStr = "BUSY"
		msg = domain.ErrBusy.Error()
	case errors.Is(err, domain.ErrMissingCredential):
		code = http.StatusServiceUnavailable
		codeStr = "MISCONFIGURED"
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: msg, Details: details}})
}

// outcomeOf classifies a fetch result for the suggestion outcome metric.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case errors.Is(err, domain.ErrInvalidArgument):
		return observability.OutcomeValidation
	case errors.Is(err, domain.ErrBusy):
		return observability.OutcomeBusy
	case errors.Is(err, domain.ErrMissingCredential):
		return observability.OutcomeMisconfigured
	case errors.Is(err, domain.ErrEmptyResponse):
		return observability.OutcomeEmptyResponse
	case errors.Is(err, domain.ErrInvalidFormat):
		return observability.OutcomeInvalidFormat
	case errors.Is(err, domain.ErrUpstream):
		return observability.OutcomeUpstream
	}
	return observability.OutcomeUnknown
}
