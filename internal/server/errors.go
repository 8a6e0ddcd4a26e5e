package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ppiankov/plagcheck/internal/cache"
	"github.com/ppiankov/plagcheck/internal/extract"
	"github.com/ppiankov/plagcheck/internal/validate"
)

// StatusClientClosedRequest is the non-standard status logged when the
// client goes away before the analysis finishes
const StatusClientClosedRequest = 499

// errBadRequest marks malformed requests
var errBadRequest = errors.New("bad request")

// errorBody is the JSON error envelope
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps an error to an HTTP status and a stable error code
func classify(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, extract.ErrTooLarge), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, extract.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "unsupported_type"
	case errors.Is(err, validate.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, extract.ErrNoText):
		return http.StatusUnprocessableEntity, "no_text"
	case errors.Is(err, extract.ErrExtraction):
		return http.StatusUnprocessableEntity, "extraction_failed"
	case errors.Is(err, cache.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// message returns the text shown to clients; internal errors stay generic
func message(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "analysis failed, please try again"
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return extract.ErrTooLarge.Error()
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}
