package transcription

import (
	"encoding/json"
	"fmt"
)

// DefaultBackend is used when a request does not name a backend.
const DefaultBackend = "whisper-1"

// TranscriptionRequest holds parameters for a transcription call.
type TranscriptionRequest struct {
	// Audio is the raw audio payload.
	Audio []byte
	// Filename is the original upload name, used as a container/codec hint.
	Filename string
	// Backend is the requested backend identifier (e.g. "whisper-1", "deepgram").
	Backend string
}

// TranscriptionResult is the outcome of one transcription call. It is a
// tagged result: either Text is valid, or Err carries a failure message.
// Use Ok and Errf to construct it and IsErr to branch.
type TranscriptionResult struct {
	Backend string
	Text    string
	Err     string
}

// Ok returns a successful result for the given backend.
func Ok(backend, text string) TranscriptionResult {
	return TranscriptionResult{Backend: backend, Text: text}
}

// Errf returns a failed result carrying a formatted message.
func Errf(backend, format string, args ...any) TranscriptionResult {
	return TranscriptionResult{Backend: backend, Err: fmt.Sprintf(format, args...)}
}

// IsErr reports whether the result is the error variant.
func (r TranscriptionResult) IsErr() bool { return r.Err != "" }

// MarshalJSON renders the success variant as {"backend", "text"} and the
// error variant as {"backend", "error"}, never both.
func (r TranscriptionResult) MarshalJSON() ([]byte, error) {
	if r.IsErr() {
		return json.Marshal(struct {
			Backend string `json:"backend"`
			Error   string `json:"error"`
		}{r.Backend, r.Err})
	}
	return json.Marshal(struct {
		Backend string `json:"backend"`
		Text    string `json:"text"`
	}{r.Backend, r.Text})
}

// BackendInfo describes one backend for the listing endpoint.
type BackendInfo struct {
	// ID is the identifier clients pass in TranscriptionRequest.Backend.
	ID string `json:"id"`
	// Name is a human-readable display name.
	Name string `json:"name"`
	// Description summarizes the backend.
	Description string `json:"description"`
	// Available reports whether the provider credential is configured.
	// It is not a live health check.
	Available bool `json:"available"`
}
