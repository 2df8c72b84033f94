package transcription

import "context"

// Provider is the interface that transcription backends must implement.
type Provider interface {
	// Name returns the provider name (e.g. "whisper", "deepgram").
	Name() string

	// IsAvailable reports whether the provider credential is configured.
	// It must not perform network I/O.
	IsAvailable(ctx context.Context) bool

	// Describe returns the listing entry for this backend.
	Describe(ctx context.Context) BackendInfo

	// Transcribe sends the audio file at path for transcription and returns
	// the transcript text, trimmed of surrounding whitespace. When the
	// provider credential is missing it must fail before any network call.
	Transcribe(ctx context.Context, path, filename string) (string, error)
}
