package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ppiankov/plagcheck/internal/model"
)

// analyzeRequest is the JSON body of POST /api/v1/analyze
type analyzeRequest struct {
	Text     string `json:"text"`
	Replaces string `json:"replaces,omitempty"` // Previous analysis to discard
}

// analyzeResponse wraps a report with its result link
type analyzeResponse struct {
	ID         string        `json:"id"`
	ResultsURL string        `json:"results_url"`
	Report     *model.Report `json:"report"`
}

func (s *Server) handleAnalyzeAPI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)

	report, err := s.analyzeRequest(r)
	if err != nil {
		status, code := classify(err)
		s.logFailure(r, status, err)
		writeError(w, status, code, message(status, err))
		return
	}

	writeJSON(w, http.StatusCreated, analyzeResponse{
		ID:         report.ID,
		ResultsURL: "/results/" + report.ID,
		Report:     report,
	})
}

// analyzeRequest accepts a JSON {"text"} body, a multipart upload in field
// "file" or a urlencoded "text" field
func (s *Server) analyzeRequest(r *http.Request) (*model.Report, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		report   *model.Report
		replaces string
		err      error
	)

	switch mediaType {
	case "application/json":
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
		}
		replaces = req.Replaces
		report, err = s.analyzer.AnalyzeText(r.Context(), req.Text)

	case "multipart/form-data", "application/x-www-form-urlencoded":
		replaces, report, err = s.analyzeForm(r)

	default:
		return nil, fmt.Errorf("%w: expected application/json or multipart/form-data", errBadRequest)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(report); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}
	if replaces != "" && replaces != report.ID {
		_ = s.store.Discard(replaces)
	}

	return report, nil
}

// analyzeForm reads a form submission. An uploaded file wins over the
// text field, matching the input page.
func (s *Server) analyzeForm(r *http.Request) (string, *model.Report, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(s.maxUpload); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return "", nil, err
			}
			return "", nil, fmt.Errorf("%w: invalid form: %v", errBadRequest, err)
		}
	} else if err := r.ParseForm(); err != nil {
		return "", nil, fmt.Errorf("%w: invalid form: %v", errBadRequest, err)
	}

	replaces := r.FormValue("replaces")

	file, header, err := r.FormFile("file")
	if err == nil {
		defer func() { _ = file.Close() }()
		if header.Size > 0 {
			report, err := s.analyzer.AnalyzeFile(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
			return replaces, report, err
		}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return "", nil, fmt.Errorf("%w: read upload: %v", errBadRequest, err)
	}

	report, err := s.analyzer.AnalyzeText(r.Context(), r.FormValue("text"))
	return replaces, report, err
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	report, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, message(status, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Discard(mux.Vars(r)["id"]); err != nil {
		status, code := classify(err)
		writeError(w, status, code, message(status, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.limiter.Len(),
	})
}

func (s *Server) logFailure(r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("analysis failed", "path", r.URL.Path, "error", err)
		return
	}
	s.logger.Debug("analysis rejected", "path", r.URL.Path, "status", status, "error", err)
}
