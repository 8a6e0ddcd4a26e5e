package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/plagcheck/internal/model"
	"github.com/ppiankov/plagcheck/internal/pipeline"
	"github.com/ppiankov/plagcheck/internal/synth"
)

var essay = strings.Repeat("word ", 80)

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Analysis.Delay = 0
	cfg.Server.RequestsPerSecond = 1000
	cfg.Server.Burst = 1000
	return cfg
}

func newTestServer(t *testing.T, cfg *model.Config) *Server {
	t.Helper()

	p, err := pipeline.NewPipeline(cfg,
		pipeline.WithSynthesizer(synth.NewSynthesizer(synth.WithRand(synth.NewRand(42)))))
	require.NoError(t, err)

	s, err := New(cfg, p, nil)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(t, s, req)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func multipartBody(t *testing.T, field, filename string, content []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAPI_AnalyzeJSON_RoundTrip(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := postJSON(t, s, `{"text": "`+essay+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, "/results/"+resp.ID, resp.ResultsURL)
	assert.Equal(t, essay, resp.Report.Result.OriginalText)
	assert.LessOrEqual(t, len(resp.Report.Result.Sources), 4)

	get := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/results/"+resp.ID, nil))
	require.Equal(t, http.StatusOK, get.Code)

	var stored model.Report
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &stored))
	assert.Equal(t, resp.Report.Result.TotalSimilarity, stored.Result.TotalSimilarity)

	del := do(t, s, httptest.NewRequest(http.MethodDelete, "/api/v1/results/"+resp.ID, nil))
	assert.Equal(t, http.StatusNoContent, del.Code)

	gone := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/results/"+resp.ID, nil))
	assert.Equal(t, http.StatusNotFound, gone.Code)
	assert.Equal(t, "not_found", decodeError(t, gone).Code)
}

func TestAPI_AnalyzeJSON_Replaces(t *testing.T) {
	s := newTestServer(t, testConfig())

	var first analyzeResponse
	require.NoError(t, json.Unmarshal(postJSON(t, s, `{"text": "`+essay+`"}`).Body.Bytes(), &first))

	rec := postJSON(t, s, `{"text": "`+essay+`", "replaces": "`+first.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	old := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/results/"+first.ID, nil))
	assert.Equal(t, http.StatusNotFound, old.Code)
}

func TestAPI_AnalyzeErrors(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name   string
		body   string
		ctype  string
		status int
		code   string
	}{
		{"malformed JSON", `{"text":`, "application/json", http.StatusBadRequest, "bad_request"},
		{"wrong content type", essay, "text/csv", http.StatusBadRequest, "bad_request"},
		{"empty text", `{"text": "   "}`, "application/json", http.StatusUnprocessableEntity, "invalid_input"},
		{"too short", `{"text": "only five words right here"}`, "application/json", http.StatusUnprocessableEntity, "invalid_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.ctype)
			rec := do(t, s, req)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}

	rec := postJSON(t, s, `{"text": "only five words right here"}`)
	assert.Contains(t, decodeError(t, rec).Error, "at least 10 words required")
}

func TestAPI_AnalyzeUpload(t *testing.T) {
	cfg := testConfig()
	cfg.Input.MaxBytes = 1024
	s := newTestServer(t, cfg)

	body, ctype := multipartBody(t, "file", "essay.txt", []byte(essay), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", ctype)
	rec := do(t, s, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.InputKindFile, resp.Report.Input.Kind)
	assert.Equal(t, "essay.txt", resp.Report.Input.Name)

	tests := []struct {
		name     string
		filename string
		content  []byte
		status   int
		code     string
	}{
		{"too large", "big.txt", bytes.Repeat([]byte("a "), 1000), http.StatusRequestEntityTooLarge, "too_large"},
		{"unsupported", "image.png", []byte("\x89PNG\r\n\x1a\n0000"), http.StatusUnsupportedMediaType, "unsupported_type"},
		{"no text", "blank.txt", []byte(" \n\t "), http.StatusUnprocessableEntity, "no_text"},
		{"broken docx", "essay.docx", []byte("not a zip"), http.StatusUnprocessableEntity, "extraction_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ctype := multipartBody(t, "file", tt.filename, tt.content, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
			req.Header.Set("Content-Type", ctype)
			rec := do(t, s, req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

// blockingAnalyzer waits for the request context to end
type blockingAnalyzer struct{}

func (blockingAnalyzer) AnalyzeText(ctx context.Context, text string) (*model.Report, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingAnalyzer) AnalyzeFile(ctx context.Context, name, contentType string, r io.Reader) (*model.Report, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAPI_ClientCancellation(t *testing.T) {
	s, err := New(testConfig(), blockingAnalyzer{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"text": "x"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	rec := do(t, s, req)
	assert.Equal(t, StatusClientClosedRequest, rec.Code)
	assert.Equal(t, "cancelled", decodeError(t, rec).Code)
}

func TestAPI_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RequestsPerSecond = 0.001
	cfg.Server.Burst = 1
	s := newTestServer(t, cfg)

	first := postJSON(t, s, `{"text": "`+essay+`"}`)
	assert.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, s, `{"text": "`+essay+`"}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "rate_limited", decodeError(t, second).Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	// Reads are not limited
	health := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestAPI_RateLimitForgetsIdleClients(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ClientIdleTTL = 30 * time.Millisecond
	s := newTestServer(t, cfg)

	for i := 0; i < 200; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"text": ""}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = fmt.Sprintf("198.51.%d.%d:4000", i/250, i%250)
		rec := do(t, s, req)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	}
	assert.Equal(t, 200, s.limiter.Len())

	time.Sleep(100 * time.Millisecond)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"ok","clients":0}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","clients":0}`, rec.Body.String())
}

func TestAPI_UnknownEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}

func TestUI_Flow(t *testing.T) {
	s := newTestServer(t, testConfig())

	index := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, index.Code)
	assert.Contains(t, index.Body.String(), "Detect plagiarism instantly.")
	assert.Contains(t, index.Body.String(), "At least 10 words")

	form := url.Values{"text": {essay}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, s, req)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/results/"))

	page := do(t, s, httptest.NewRequest(http.MethodGet, location, nil))
	require.Equal(t, http.StatusOK, page.Code)
	html := page.Body.String()
	assert.Contains(t, html, "Analysis Results")
	assert.Contains(t, html, "Sources Found")
	assert.Contains(t, html, "/discard")

	discard := do(t, s, httptest.NewRequest(http.MethodPost, location+"/discard", nil))
	assert.Equal(t, http.StatusSeeOther, discard.Code)
	assert.Equal(t, "/", discard.Header().Get("Location"))

	after := do(t, s, httptest.NewRequest(http.MethodGet, location, nil))
	assert.Equal(t, http.StatusNotFound, after.Code)
	assert.Contains(t, after.Body.String(), "Try again")
}

func TestUI_UploadWinsOverText(t *testing.T) {
	s := newTestServer(t, testConfig())

	body, ctype := multipartBody(t, "file", "essay.txt", []byte(essay), map[string]string{"text": "ignored"})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ctype)
	rec := do(t, s, req)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	id := strings.TrimPrefix(rec.Header().Get("Location"), "/results/")
	report, err := s.store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "essay.txt", report.Input.Name)
}

func TestUI_ValidationError(t *testing.T) {
	s := newTestServer(t, testConfig())

	form := url.Values{"text": {"too short"}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, s, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "text too short")
	assert.Contains(t, rec.Body.String(), `href="/"`)
}

func TestUI_ResultsHighlightsAreEscaped(t *testing.T) {
	s := newTestServer(t, testConfig())

	report := &model.Report{
		ID:         "fixed",
		AnalyzedAt: time.Now(),
		Result:     model.AnalysisResult{TotalSimilarity: 80, OriginalText: "<b>x</b> y"},
		Segments: []model.TextSegment{
			{Text: "<b>x</b>", Highlighted: true},
			{Text: " y"},
		},
		Assessment: model.Assessment{Risk: model.RiskHigh},
	}
	require.NoError(t, s.store.Put(report))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/results/fixed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<mark>&lt;b&gt;x&lt;/b&gt;</mark>")
	assert.Contains(t, rec.Body.String(), "High Risk")
}

func TestListenAndServe_Shutdown(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second
	s := newTestServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
