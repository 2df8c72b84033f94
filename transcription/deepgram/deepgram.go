// Package deepgram implements the transcription.Provider interface against
// the Deepgram pre-recorded listen API.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skillsenselab/radscribe/httpclient"
	"github.com/skillsenselab/radscribe/transcription"
)

const (
	// ProviderName is the name reported by this provider.
	ProviderName = "deepgram"

	// BackendID is the identifier clients use to select this backend.
	BackendID = "deepgram"

	defaultBaseURL = "https://api.deepgram.com"
	defaultModel   = "nova-2-medical"
	defaultTimeout = 120 * time.Second
)

// ErrNotConfigured is returned when no API key is set. The message is shown
// to the client verbatim in the transcription result.
var ErrNotConfigured = errors.New("DEEPGRAM_API_KEY not set - add it to the environment to enable Deepgram transcription")

// Config holds configuration for the Deepgram transcription provider.
type Config struct {
	// APIKey is the Deepgram API key. When empty the provider reports
	// unavailable and refuses to transcribe.
	APIKey string `json:"-" yaml:"-"`
	// BaseURL overrides the Deepgram API base URL (for tests).
	BaseURL string `json:"base_url" yaml:"base_url"`
	// Model is the Deepgram model (default "nova-2-medical").
	Model string `json:"model" yaml:"model"`
	// Timeout bounds one transcription call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements transcription.Provider using the Deepgram API.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new Deepgram transcription provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.TokenAuth(cfg.APIKey),
	})
	if err != nil {
		return nil, fmt.Errorf("deepgram client: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether an API key is configured.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.APIKey != ""
}

// Describe returns the listing entry for the Deepgram backend.
func (p *Provider) Describe(ctx context.Context) transcription.BackendInfo {
	return transcription.BackendInfo{
		ID:          BackendID,
		Name:        "Deepgram Nova Medical",
		Description: "Deepgram nova-2-medical speech-to-text with smart formatting",
		Available:   p.IsAvailable(ctx),
	}
}

// Transcribe posts the raw audio bytes to the Deepgram listen endpoint and
// returns the first channel's first alternative transcript.
func (p *Provider) Transcribe(ctx context.Context, path, filename string) (string, error) {
	if !p.IsAvailable(ctx) {
		return "", ErrNotConfigured
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/v1/listen",
		Query: map[string]string{
			"model":        p.cfg.Model,
			"smart_format": "true",
			"punctuate":    "true",
		},
		Headers: map[string]string{
			"Content-Type": contentTypeFor(filename),
		},
		Body: audio,
	})
	if err != nil {
		var herr *httpclient.Error
		if errors.As(err, &herr) && herr.Code == httpclient.ErrCodeStatus {
			return "", fmt.Errorf("deepgram error (status %d): %s", herr.StatusCode, herr.Body)
		}
		return "", fmt.Errorf("deepgram request: %w", err)
	}

	var result deepgramResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", fmt.Errorf("decode deepgram response: %w", err)
	}
	return strings.TrimSpace(result.transcript()), nil
}

// deepgramResponse mirrors the nested shape of a pre-recorded listen reply.
type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// transcript extracts channels[0].alternatives[0].transcript, defaulting to
// the empty string when any level of nesting is absent.
func (r *deepgramResponse) transcript() string {
	if len(r.Results.Channels) == 0 {
		return ""
	}
	alts := r.Results.Channels[0].Alternatives
	if len(alts) == 0 {
		return ""
	}
	return alts[0].Transcript
}

// contentTypeFor guesses the audio MIME type from the upload filename.
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	default:
		return "audio/webm"
	}
}
