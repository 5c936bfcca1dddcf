package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docvoice/internal/config"
	"github.com/dgallion1/docvoice/internal/llm"
	"github.com/dgallion1/docvoice/internal/pipeline"
	"github.com/dgallion1/docvoice/internal/stats"
)

// textExtractor treats every upload as plain text.
type textExtractor struct{ calls int }

func (e *textExtractor) Extract(_ context.Context, filename string, data []byte) (string, error) {
	e.calls++
	if strings.HasPrefix(filename, "bad") {
		return "", errors.New("malformed document")
	}
	return string(data), nil
}

type stubCompleter struct {
	answer string
	err    error
	calls  int
}

func (c *stubCompleter) Complete(context.Context, llm.Prompt) (string, error) {
	c.calls++
	return c.answer, c.err
}

type stubSynthesizer struct {
	audio []byte
	err   error
	calls int
}

func (s *stubSynthesizer) Synthesize(context.Context, string) ([]byte, error) {
	s.calls++
	return s.audio, s.err
}

type fakeProvider struct {
	name, model string
	calls       *stats.Recorder
}

func (p fakeProvider) Name() string           { return p.name }
func (p fakeProvider) Model() string          { return p.model }
func (p fakeProvider) Stats() *stats.Recorder { return p.calls }

type harness struct {
	srv   *Server
	ext   *textExtractor
	comp  *stubCompleter
	synth *stubSynthesizer
}

func newHarness(t *testing.T, providers ...StatsSource) *harness {
	t.Helper()
	h := &harness{
		ext:   &textExtractor{},
		comp:  &stubCompleter{answer: " Paris\n"},
		synth: &stubSynthesizer{audio: []byte{0xAA, 0xBB}},
	}
	log := slog.New(slog.DiscardHandler)
	cfg := config.Config{MaxUploadBytes: 1 << 20}
	h.srv = NewServer(pipeline.New(h.ext, h.comp, h.synth, log), log, cfg, providers...)
	return h
}

type upload struct {
	name, body string
}

func multipartRequest(t *testing.T, files []upload, query *string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := mw.CreateFormFile("pdfs", f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte(f.body))
	}
	if query != nil {
		if err := mw.WriteField("query", *query); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/query", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func ptr(s string) *string { return &s }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestQuery_Success(t *testing.T) {
	h := newHarness(t)
	rec := httptest.NewRecorder()
	req := multipartRequest(t, []upload{{"a.pdf", "The capital of France is Paris."}}, ptr("What is the capital?"))

	h.srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["answer"] != "Paris" {
		t.Errorf("expected answer Paris, got %v", body["answer"])
	}
	if body["audio_base64"] != "qrs=" {
		t.Errorf("expected audio_base64 qrs=, got %v", body["audio_base64"])
	}
	if _, ok := body["tts_error"]; ok {
		t.Error("expected no tts_error key")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected CORS origin *, got %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("expected application/json, got %q", got)
	}
}

func TestQuery_SynthesisFailureReturnsText(t *testing.T) {
	h := newHarness(t)
	h.synth.err = errors.New("ElevenLabs TTS API error: 401 bad key")
	rec := httptest.NewRecorder()

	h.srv.ServeHTTP(rec, multipartRequest(t, []upload{{"a.pdf", "text"}}, ptr("q?")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["answer"] != "Paris" {
		t.Errorf("expected answer Paris, got %v", body["answer"])
	}
	audio, ok := body["audio_base64"]
	if !ok || audio != nil {
		t.Errorf("expected audio_base64 null, got %v (present=%v)", audio, ok)
	}
	if msg, _ := body["tts_error"].(string); !strings.Contains(msg, "401") {
		t.Errorf("expected tts_error mentioning 401, got %q", msg)
	}
}

func TestQuery_CompletionFailure(t *testing.T) {
	h := newHarness(t)
	h.comp.err = errors.New("openai api status 500: overloaded")
	rec := httptest.NewRecorder()

	h.srv.ServeHTTP(rec, multipartRequest(t, []upload{{"a.pdf", "text"}}, ptr("q?")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if _, ok := body["answer"]; ok {
		t.Error("expected no answer key on completion failure")
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Error("expected error message")
	}
	if h.synth.calls != 0 {
		t.Errorf("expected no synthesis call, got %d", h.synth.calls)
	}
}

func TestQuery_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		files   []upload
		query   *string
		wantErr string
	}{
		{"no files", nil, ptr("q?"), "no documents supplied"},
		{"missing query", []upload{{"a.pdf", "text"}}, nil, "no query provided"},
		{"blank query", []upload{{"a.pdf", "text"}}, ptr("   "), "no query provided"},
		{"no text", []upload{{"a.pdf", "  \n"}, {"bad.pdf", "x"}}, ptr("q?"), "no text could be extracted from documents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			rec := httptest.NewRecorder()

			h.srv.ServeHTTP(rec, multipartRequest(t, tt.files, tt.query))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			body := decodeBody(t, rec)
			if body["error"] != tt.wantErr {
				t.Errorf("expected error %q, got %v", tt.wantErr, body["error"])
			}
			if h.comp.calls != 0 || h.synth.calls != 0 {
				t.Errorf("expected no provider calls, got complete=%d synth=%d", h.comp.calls, h.synth.calls)
			}
		})
	}
}

func TestQuery_NotMultipart(t *testing.T) {
	h := newHarness(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader("query=hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	h.srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "no documents supplied" {
		t.Errorf("expected no documents error, got %v", body["error"])
	}
}

func TestQuery_MalformedMultipart(t *testing.T) {
	h := newHarness(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader("garbage"))
	req.Header.Set("Content-Type", "multipart/form-data")

	h.srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if h.ext.calls != 0 {
		t.Errorf("expected no extraction, got %d calls", h.ext.calls)
	}
}

func TestQuery_OversizeUpload(t *testing.T) {
	h := newHarness(t)
	h.srv.cfg.MaxUploadBytes = 1024
	rec := httptest.NewRecorder()

	h.srv.ServeHTTP(rec, multipartRequest(t, []upload{{"a.pdf", strings.Repeat("x", 4096)}}, ptr("q?")))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg, _ := decodeBody(t, rec)["error"].(string); !strings.Contains(msg, "1024") {
		t.Errorf("expected limit in error message, got %q", msg)
	}
	if h.ext.calls != 0 || h.comp.calls != 0 {
		t.Errorf("expected pipeline untouched, got extract=%d complete=%d", h.ext.calls, h.comp.calls)
	}
}

func TestQuery_Preflight(t *testing.T) {
	h := newHarness(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/query", nil)

	h.srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST,OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("expected %s %q, got %q", k, v, got)
		}
	}
	if h.ext.calls != 0 || h.comp.calls != 0 || h.synth.calls != 0 {
		t.Error("expected preflight not to reach the pipeline")
	}
}

func TestStats(t *testing.T) {
	rec := stats.NewRecorder("openai", time.Hour)
	rec.Observe(time.Now().Add(-120*time.Millisecond), nil)
	rec.Observe(time.Now(), errors.New("status 500"))
	h := newHarness(t,
		fakeProvider{name: "openai", model: "gpt-3.5-turbo", calls: rec},
		fakeProvider{name: "elevenlabs", model: "eleven_monolingual_v1"},
	)
	rec := httptest.NewRecorder()

	h.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		Providers []providerStats `json:"providers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(out.Providers))
	}
	first := out.Providers[0]
	if first.Name != "openai" || first.Stats.Calls != 2 || first.Stats.Failures != 1 {
		t.Errorf("expected openai with 2 calls and 1 failure, got %+v", first)
	}
	if first.Stats.MinMs < 120 {
		t.Errorf("expected success latency of at least 120ms, got %d", first.Stats.MinMs)
	}
	if out.Providers[1].Stats.Calls != 0 {
		t.Errorf("expected empty stats for provider without samples, got %+v", out.Providers[1].Stats)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected CORS header on /api/stats, got %q", got)
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := httptest.NewRecorder()

	h.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestLandingPage(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/", "/app.js"} {
		rec := httptest.NewRecorder()
		h.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "query") {
			t.Errorf("%s: expected page to reference the query field", path)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":         "report.pdf",
		"../../etc/passwd":   "passwd",
		`C:\docs\a..b.pdf`:   `C:_docs_a_b.pdf`,
		"":                   "unnamed",
		"dir/sub/notes.docx": "notes.docx",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
