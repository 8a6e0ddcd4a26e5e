package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"

	"github.com/ppiankov/plagcheck/internal/model"
	"github.com/ppiankov/plagcheck/internal/score"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	index   *template.Template
	results *template.Template
	errPage *template.Template
}

var templateFuncs = template.FuncMap{
	"level": score.SourceLevel,
	"bytes": func(n int64) string { return humanize.IBytes(uint64(n)) },
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"ago":   humanize.Time,
	"inc":   func(i int) int { return i + 1 },
}

func loadPages() (*pages, error) {
	parse := func(name string) (*template.Template, error) {
		return template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
	}

	index, err := parse("index.html")
	if err != nil {
		return nil, err
	}
	results, err := parse("results.html")
	if err != nil {
		return nil, err
	}
	errPage, err := parse("error.html")
	if err != nil {
		return nil, err
	}
	return &pages{index: index, results: results, errPage: errPage}, nil
}

type indexData struct {
	Text     string
	MinWords int
	MaxBytes int64
}

type resultsData struct {
	Report *model.Report
}

type errorData struct {
	Status  int
	Code    string
	Message string
}

func (s *Server) render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.logger.Error("render template", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	s.render(w, status, s.pages.errPage, errorData{Status: status, Code: code, Message: message(status, err)})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.pages.index, indexData{MinWords: s.minWords, MaxBytes: s.maxUpload})
}

// handleAnalyzeForm runs an analysis from the input page and redirects to
// the results page
func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)

	report, err := s.analyzeRequest(r)
	if err != nil {
		status, _ := classify(err)
		s.logFailure(r, status, err)
		s.renderError(w, err)
		return
	}

	http.Redirect(w, r, "/results/"+report.ID, http.StatusSeeOther)
}

func (s *Server) handleResultsPage(w http.ResponseWriter, r *http.Request) {
	report, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		s.renderError(w, err)
		return
	}
	s.render(w, http.StatusOK, s.pages.results, resultsData{Report: report})
}

// handleDiscardForm drops the report and returns to the input page
func (s *Server) handleDiscardForm(w http.ResponseWriter, r *http.Request) {
	_ = s.store.Discard(mux.Vars(r)["id"])
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
