package transcription

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/skillsenselab/radscribe/logger"
	"github.com/skillsenselab/radscribe/observability"
)

// Service dispatches transcription requests to the configured providers.
type Service struct {
	whisper  Provider
	deepgram Provider
	metrics  *observability.Metrics
	log      *logger.Logger
}

// NewService creates a transcription service. metrics may be nil.
func NewService(whisper, deepgram Provider, metrics *observability.Metrics) *Service {
	return &Service{
		whisper:  whisper,
		deepgram: deepgram,
		metrics:  metrics,
		log:      logger.WithComponent("transcription"),
	}
}

// Transcribe writes the request audio to a scoped temp file, dispatches to
// the provider named by the backend identifier, and returns a tagged result.
// Every failure is reported in the result, never as a Go error: callers
// always get a TranscriptionResult they can serialize as-is.
func (s *Service) Transcribe(ctx context.Context, req TranscriptionRequest) TranscriptionResult {
	backend := req.Backend
	if backend == "" {
		backend = DefaultBackend
	}

	ctx, span := observability.StartSpan(ctx, "transcription.transcribe")
	span.SetAttributes(attribute.String("transcription.backend", backend))
	defer span.End()

	start := time.Now()
	p := s.providerFor(backend)
	if p == nil {
		s.log.Warn("unknown backend requested", logger.Fields("backend", backend))
		s.metrics.RecordTranscription(ctx, backend, "unknown_backend", time.Since(start))
		return Errf(backend, "Unknown backend: %s", backend)
	}

	path, cleanup, err := s.writeTempAudio(req)
	if err != nil {
		s.log.Error("write temp audio", logger.ErrorFields("transcribe", err))
		s.metrics.RecordTranscription(ctx, backend, "error", time.Since(start))
		return Errf(backend, "failed to buffer audio: %v", err)
	}
	defer cleanup()

	text, err := p.Transcribe(ctx, path, req.Filename)
	if err != nil {
		s.log.Error("transcription failed", logger.Fields(
			"backend", backend,
			"provider", p.Name(),
			"error", err.Error(),
		))
		s.metrics.RecordTranscription(ctx, backend, "error", time.Since(start))
		return Errf(backend, "%s", err.Error())
	}

	s.log.Info("transcription complete", logger.Fields(
		"backend", backend,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	))
	s.metrics.RecordTranscription(ctx, backend, "ok", time.Since(start))
	return Ok(backend, strings.TrimSpace(text))
}

// Backends lists every known backend with its availability flag.
func (s *Service) Backends(ctx context.Context) []BackendInfo {
	return []BackendInfo{
		s.whisper.Describe(ctx),
		s.deepgram.Describe(ctx),
	}
}

// providerFor maps a backend identifier to its provider. Identifiers with
// a "whisper" prefix (e.g. "whisper-1") select the Whisper provider so model
// variants do not need individual registration.
func (s *Service) providerFor(backend string) Provider {
	switch {
	case strings.HasPrefix(backend, "whisper"):
		return s.whisper
	case backend == "deepgram":
		return s.deepgram
	default:
		return nil
	}
}

// writeTempAudio stages the audio bytes in a temp file for the providers.
// The returned cleanup func removes the file and is safe to call on every
// path, including after provider failures.
func (s *Service) writeTempAudio(req TranscriptionRequest) (string, func(), error) {
	ext := filepath.Ext(req.Filename)
	if ext == "" {
		ext = ".webm"
	}
	f, err := os.CreateTemp("", "dictation-*"+ext)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn("remove temp audio", logger.Fields("path", path, "error", err.Error()))
		}
	}
	if _, err := f.Write(req.Audio); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
