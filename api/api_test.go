package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/radscribe/feedback"
	"github.com/skillsenselab/radscribe/report"
	"github.com/skillsenselab/radscribe/server/middleware"
	"github.com/skillsenselab/radscribe/transcription"
	"github.com/skillsenselab/radscribe/transcription/deepgram"
	"github.com/skillsenselab/radscribe/transcription/whisper"
)

type fixture struct {
	engine *gin.Engine
	sink   *feedback.Sink
}

// newFixture wires real services against httptest upstream mocks.
func newFixture(t *testing.T, mutate func(*Config), whisperURL, deepgramURL, reportURL string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	whisperKey := "sk-test"
	if whisperURL == "" {
		whisperURL = "http://127.0.0.1:0"
	}
	wp, err := whisper.NewProvider(whisper.Config{APIKey: whisperKey, BaseURL: whisperURL})
	if err != nil {
		t.Fatalf("whisper provider: %v", err)
	}

	deepgramKey := ""
	if deepgramURL != "" {
		deepgramKey = "dg-test"
	}
	dp, err := deepgram.NewProvider(deepgram.Config{APIKey: deepgramKey, BaseURL: deepgramURL})
	if err != nil {
		t.Fatalf("deepgram provider: %v", err)
	}

	transcriber := transcription.NewService(wp, dp, nil)
	formatter := report.NewService(report.Config{APIKey: "sk-test", BaseURL: reportURL}, nil)
	sink, err := feedback.NewSink(filepath.Join(t.TempDir(), "feedback.jsonl"), nil)
	if err != nil {
		t.Fatalf("feedback sink: %v", err)
	}

	cfg := Config{
		StaticDir:   t.TempDir(),
		DeepgramKey: deepgramKey,
		Auth: middleware.BasicAuthConfig{
			Username: "radiologist",
			Password: "s3cret",
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	engine := gin.New()
	Register(engine, cfg, transcriber, formatter, sink)
	return &fixture{engine: engine, sink: sink}
}

func (f *fixture) do(t *testing.T, req *http.Request, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	if authenticated {
		req.SetBasicAuth("radiologist", "s3cret")
	}
	rr := httptest.NewRecorder()
	f.engine.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return body
}

func multipartAudio(t *testing.T, backend string, audio []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "dictation.webm")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(audio)
	if backend != "" {
		w.WriteField("backend", backend)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestRoutesRequireAuth(t *testing.T) {
	f := newFixture(t, nil, "", "", "")

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/api/deepgram-key"},
		{http.MethodGet, "/api/backends"},
		{http.MethodPost, "/api/transcribe"},
		{http.MethodPost, "/api/generate-report"},
		{http.MethodPost, "/api/feedback"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, http.NoBody)
		rr := f.do(t, req, false)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without credentials: status = %d, want 401", p.method, p.path, rr.Code)
		}
	}
}

func TestTranscribeWhisper(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":" left lung clear "}`))
	}))
	defer upstream.Close()

	f := newFixture(t, nil, upstream.URL, "", "")
	body, contentType := multipartAudio(t, "whisper-1", []byte("audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rr := f.do(t, req, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	got := decodeJSON(t, rr)
	if got["text"] != "left lung clear" || got["backend"] != "whisper-1" {
		t.Errorf("body = %v", got)
	}
	if _, present := got["error"]; present {
		t.Error("success result must not carry an error field")
	}
}

func TestTranscribeUnknownBackend(t *testing.T) {
	f := newFixture(t, nil, "", "", "")
	body, contentType := multipartAudio(t, "foo", []byte("audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rr := f.do(t, req, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with result-level error", rr.Code)
	}
	got := decodeJSON(t, rr)
	if got["error"] != "Unknown backend: foo" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestTranscribeDeepgramWithoutKey(t *testing.T) {
	f := newFixture(t, nil, "", "", "")
	body, contentType := multipartAudio(t, "deepgram", []byte("audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rr := f.do(t, req, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with result-level error", rr.Code)
	}
	got := decodeJSON(t, rr)
	msg, _ := got["error"].(string)
	if !strings.HasPrefix(msg, "DEEPGRAM_API_KEY not set") {
		t.Errorf("error = %q, want DEEPGRAM_API_KEY message", msg)
	}
	if got["backend"] != "deepgram" {
		t.Errorf("backend = %v", got["backend"])
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	f := newFixture(t, nil, "", "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	rr := f.do(t, req, true)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing file part", rr.Code)
	}
}

func TestBackendsListing(t *testing.T) {
	f := newFixture(t, nil, "", "http://127.0.0.1:0", "")
	req := httptest.NewRequest(http.MethodGet, "/api/backends", http.NoBody)

	rr := f.do(t, req, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	got := decodeJSON(t, rr)
	backends, ok := got["backends"].([]any)
	if !ok || len(backends) != 2 {
		t.Fatalf("backends = %v, want 2 entries", got["backends"])
	}
	first := backends[0].(map[string]any)
	for _, key := range []string{"id", "name", "description", "available"} {
		if _, present := first[key]; !present {
			t.Errorf("backend entry missing %q: %v", key, first)
		}
	}
}

func TestDeepgramKeyEndpoint(t *testing.T) {
	f := newFixture(t, nil, "", "http://127.0.0.1:0", "")
	rr := f.do(t, httptest.NewRequest(http.MethodGet, "/api/deepgram-key", http.NoBody), true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := decodeJSON(t, rr); got["key"] != "dg-test" {
		t.Errorf("key = %v", got["key"])
	}
}

func TestDeepgramKeyNotConfigured(t *testing.T) {
	f := newFixture(t, nil, "", "", "")
	rr := f.do(t, httptest.NewRequest(http.MethodGet, "/api/deepgram-key", http.NoBody), true)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestGenerateReportBlankTranscript(t *testing.T) {
	f := newFixture(t, nil, "", "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/generate-report", strings.NewReader(`{"transcript":"   "}`))
	req.Header.Set("Content-Type", "application/json")

	rr := f.do(t, req, true)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestGenerateReport(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"IMPRESSION:\n1. Normal."}}]}`))
	}))
	defer upstream.Close()

	f := newFixture(t, nil, "", "", upstream.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/generate-report", strings.NewReader(`{"transcript":"lungs clear"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := f.do(t, req, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	got := decodeJSON(t, rr)
	if got["report"] != "IMPRESSION:\n1. Normal." {
		t.Errorf("report = %v", got["report"])
	}
	if got["format"] == "" || got["model"] == "" {
		t.Errorf("format/model missing: %v", got)
	}
}

func TestFeedback(t *testing.T) {
	f := newFixture(t, nil, "", "", "")
	payload := `{"rating":"good","comment":"accurate","transcript":"lungs clear","report":"IMPRESSION: normal"}`
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rr := f.do(t, req, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if got := decodeJSON(t, rr); got["status"] != "ok" {
		t.Errorf("status field = %v", got["status"])
	}
}

func TestFeedbackMissingRating(t *testing.T) {
	f := newFixture(t, nil, "", "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(`{"comment":"no rating"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := f.do(t, req, true)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestIndexMaintenanceMode(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.Maintenance = true }, "", "", "")
	rr := f.do(t, httptest.NewRequest(http.MethodGet, "/", http.NoBody), true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := decodeJSON(t, rr); got["message"] != "Coming soon - currently in private beta" {
		t.Errorf("message = %v", got["message"])
	}
}

func TestIndexFrontendMissing(t *testing.T) {
	f := newFixture(t, nil, "", "", "")
	rr := f.do(t, httptest.NewRequest(http.MethodGet, "/", http.NoBody), true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := decodeJSON(t, rr); got["message"] != "Frontend not found" {
		t.Errorf("message = %v", got["message"])
	}
}
