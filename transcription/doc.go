// Package transcription defines the provider interface and common types
// for interacting with speech-to-text backends, plus the Service that
// dispatches requests to the configured providers.
//
// The backend set is a closed enumeration: identifiers starting with
// "whisper" route to the OpenAI Whisper provider, "deepgram" routes to
// Deepgram, and anything else is rejected before any network call.
//
// # Backends
//
//   - transcription/whisper: OpenAI Whisper speech-to-text
//   - transcription/deepgram: Deepgram Nova speech-to-text
//
// # Usage
//
//	svc := transcription.NewService(whisperProvider, deepgramProvider, metrics)
//	result := svc.Transcribe(ctx, transcription.TranscriptionRequest{
//		Audio:    audioBytes,
//		Filename: "dictation.webm",
//		Backend:  "whisper-1",
//	})
package transcription
