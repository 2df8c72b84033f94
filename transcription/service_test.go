package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

// stubProvider records the transcribe call it receives.
type stubProvider struct {
	name      string
	available bool
	text      string
	err       error

	called   bool
	gotPath  string
	gotName  string
	sawAudio []byte
}

func (s *stubProvider) Name() string                       { return s.name }
func (s *stubProvider) IsAvailable(_ context.Context) bool { return s.available }

func (s *stubProvider) Describe(ctx context.Context) BackendInfo {
	return BackendInfo{ID: s.name, Name: s.name, Available: s.IsAvailable(ctx)}
}

func (s *stubProvider) Transcribe(_ context.Context, path, filename string) (string, error) {
	s.called = true
	s.gotPath = path
	s.gotName = filename
	s.sawAudio, _ = os.ReadFile(path)
	return s.text, s.err
}

func newTestService(whisper, deepgram *stubProvider) *Service {
	return NewService(whisper, deepgram, nil)
}

func TestTranscribeDispatchesWhisperPrefix(t *testing.T) {
	w := &stubProvider{name: "whisper", available: true, text: " left lung clear "}
	d := &stubProvider{name: "deepgram", available: true}
	svc := newTestService(w, d)

	res := svc.Transcribe(context.Background(), TranscriptionRequest{
		Audio:    []byte("RIFF"),
		Filename: "note.wav",
		Backend:  "whisper-1",
	})

	if res.IsErr() {
		t.Fatalf("unexpected error result: %s", res.Err)
	}
	if !w.called || d.called {
		t.Fatalf("dispatch wrong: whisper=%v deepgram=%v", w.called, d.called)
	}
	if res.Text != "left lung clear" {
		t.Errorf("Text = %q, want trimmed transcript", res.Text)
	}
	if res.Backend != "whisper-1" {
		t.Errorf("Backend = %q, want whisper-1", res.Backend)
	}
	if string(w.sawAudio) != "RIFF" {
		t.Errorf("provider saw audio %q, want RIFF", w.sawAudio)
	}
}

func TestTranscribeDefaultsBackend(t *testing.T) {
	w := &stubProvider{name: "whisper", available: true, text: "ok"}
	d := &stubProvider{name: "deepgram", available: true}
	svc := newTestService(w, d)

	res := svc.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte("x")})
	if res.Backend != DefaultBackend {
		t.Errorf("Backend = %q, want %q", res.Backend, DefaultBackend)
	}
	if !w.called {
		t.Error("whisper provider not called for default backend")
	}
}

func TestTranscribeUnknownBackend(t *testing.T) {
	w := &stubProvider{name: "whisper", available: true}
	d := &stubProvider{name: "deepgram", available: true}
	svc := newTestService(w, d)

	res := svc.Transcribe(context.Background(), TranscriptionRequest{
		Audio:   []byte("x"),
		Backend: "foo",
	})

	if !res.IsErr() {
		t.Fatal("expected error result for unknown backend")
	}
	if res.Err != "Unknown backend: foo" {
		t.Errorf("Err = %q, want %q", res.Err, "Unknown backend: foo")
	}
	if w.called || d.called {
		t.Error("no provider should be called for an unknown backend")
	}
}

func TestTranscribeProviderErrorBecomesResult(t *testing.T) {
	d := &stubProvider{name: "deepgram", available: false, err: errors.New("DEEPGRAM_API_KEY not set - add it to the environment to enable Deepgram transcription")}
	svc := newTestService(&stubProvider{name: "whisper"}, d)

	res := svc.Transcribe(context.Background(), TranscriptionRequest{
		Audio:   []byte("x"),
		Backend: "deepgram",
	})

	if !res.IsErr() {
		t.Fatal("expected error result")
	}
	if !strings.HasPrefix(res.Err, "DEEPGRAM_API_KEY not set") {
		t.Errorf("Err = %q, want DEEPGRAM_API_KEY message", res.Err)
	}
	if res.Backend != "deepgram" {
		t.Errorf("Backend = %q, want deepgram", res.Backend)
	}
}

func TestTranscribeRemovesTempFile(t *testing.T) {
	w := &stubProvider{name: "whisper", available: true, text: "hello"}
	svc := newTestService(w, &stubProvider{name: "deepgram"})

	svc.Transcribe(context.Background(), TranscriptionRequest{
		Audio:    []byte("payload"),
		Filename: "a.webm",
		Backend:  "whisper-1",
	})

	if w.gotPath == "" {
		t.Fatal("provider did not receive a temp path")
	}
	if _, err := os.Stat(w.gotPath); !os.IsNotExist(err) {
		t.Errorf("temp file %s still exists after transcribe", w.gotPath)
	}
}

func TestTranscribeRemovesTempFileOnProviderError(t *testing.T) {
	w := &stubProvider{name: "whisper", available: true, err: errors.New("boom")}
	svc := newTestService(w, &stubProvider{name: "deepgram"})

	res := svc.Transcribe(context.Background(), TranscriptionRequest{
		Audio:   []byte("payload"),
		Backend: "whisper-1",
	})
	if !res.IsErr() {
		t.Fatal("expected error result")
	}
	if _, err := os.Stat(w.gotPath); !os.IsNotExist(err) {
		t.Errorf("temp file %s still exists after provider failure", w.gotPath)
	}
}

func TestBackendsListing(t *testing.T) {
	w := &stubProvider{name: "whisper", available: true}
	d := &stubProvider{name: "deepgram", available: false}
	svc := newTestService(w, d)

	backends := svc.Backends(context.Background())
	if len(backends) != 2 {
		t.Fatalf("len(backends) = %d, want 2", len(backends))
	}
	if !backends[0].Available {
		t.Error("whisper should be available")
	}
	if backends[1].Available {
		t.Error("deepgram should be unavailable")
	}
}

func TestResultMarshalJSON(t *testing.T) {
	ok, err := json.Marshal(Ok("whisper-1", "findings normal"))
	if err != nil {
		t.Fatalf("marshal ok: %v", err)
	}
	if string(ok) != `{"backend":"whisper-1","text":"findings normal"}` {
		t.Errorf("ok variant = %s", ok)
	}

	fail, err := json.Marshal(Errf("foo", "Unknown backend: %s", "foo"))
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if string(fail) != `{"backend":"foo","error":"Unknown backend: foo"}` {
		t.Errorf("err variant = %s", fail)
	}
	if strings.Contains(string(fail), `"text"`) {
		t.Error("error variant must not carry a text field")
	}
}
