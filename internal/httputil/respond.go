// Package httputil holds the JSON responders, RFC 9457 problem helpers,
// strict request decoding and the middleware stack shared by the FibraDoc
// HTTP server.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fibradoc/fibradoc/pkg/types"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeProblem = "application/problem+json"
)

// ProblemDetail is the RFC 9457 error document written by RespondProblem.
type ProblemDetail = types.ProblemDetail

// ValidationError is one field-level entry of a 422 problem.
type ValidationError = types.ValidationError

// RespondJSON writes v as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encoding JSON response")
	}
}

// RespondNoContent writes an empty 204 response.
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// RespondProblem writes an RFC 9457 problem document whose detail is shown
// to the user as is.
func RespondProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeProblem(w, ProblemDetail{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

// RespondProblemf is RespondProblem with a formatted detail.
func RespondProblemf(w http.ResponseWriter, r *http.Request, status int, format string, args ...any) {
	RespondProblem(w, r, status, fmt.Sprintf(format, args...))
}

// RespondValidationProblem writes a 422 problem carrying field errors.
func RespondValidationProblem(w http.ResponseWriter, r *http.Request, detail string, errs []ValidationError) {
	writeProblem(w, ProblemDetail{
		Type:     "about:blank",
		Title:    http.StatusText(http.StatusUnprocessableEntity),
		Status:   http.StatusUnprocessableEntity,
		Detail:   detail,
		Instance: r.URL.Path,
		Errors:   errs,
	})
}

func writeProblem(w http.ResponseWriter, p ProblemDetail) {
	w.Header().Set("Content-Type", contentTypeProblem)
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("encoding problem response")
	}
}

// DecodeJSON decodes the request body into v. Unknown fields and trailing
// data are rejected.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
