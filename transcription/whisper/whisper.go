// Package whisper implements the transcription.Provider interface against
// the OpenAI audio transcriptions API.
package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/skillsenselab/radscribe/httpclient"
	"github.com/skillsenselab/radscribe/transcription"
)

const (
	// ProviderName is the name reported by this provider.
	ProviderName = "whisper"

	// BackendID is the identifier clients use to select this backend.
	BackendID = "whisper-1"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "whisper-1"
	defaultTimeout = 120 * time.Second
)

// defaultPrompt biases Whisper toward radiology dictation vocabulary.
const defaultPrompt = "Radiology dictation. Medical terminology such as: " +
	"opacity, consolidation, atelectasis, pneumothorax, effusion, " +
	"cardiomegaly, lymphadenopathy, nodule, ground-glass, hilar, pleural."

// ErrNotConfigured is returned when no API key is set. The message is shown
// to the client verbatim in the transcription result.
var ErrNotConfigured = errors.New("OPENAI_API_KEY not set - add it to the environment to enable Whisper transcription")

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	// APIKey is the OpenAI API key. When empty the provider reports
	// unavailable and refuses to transcribe.
	APIKey string `json:"-" yaml:"-"`
	// BaseURL overrides the OpenAI API base URL (for tests and proxies).
	BaseURL string `json:"base_url" yaml:"base_url"`
	// Model is the transcription model (default "whisper-1").
	Model string `json:"model" yaml:"model"`
	// Prompt biases the model toward domain vocabulary.
	Prompt string `json:"prompt,omitempty" yaml:"prompt"`
	// Timeout bounds one transcription call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements transcription.Provider using the OpenAI API.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Prompt == "" {
		cfg.Prompt = defaultPrompt
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.APIKey),
	})
	if err != nil {
		return nil, fmt.Errorf("whisper client: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether an API key is configured.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.APIKey != ""
}

// Describe returns the listing entry for the Whisper backend.
func (p *Provider) Describe(ctx context.Context) transcription.BackendInfo {
	return transcription.BackendInfo{
		ID:          BackendID,
		Name:        "OpenAI Whisper",
		Description: "Cloud Whisper speech-to-text with a radiology vocabulary prompt",
		Available:   p.IsAvailable(ctx),
	}
}

// Transcribe uploads the audio file to the OpenAI transcriptions endpoint
// and returns the transcript text.
func (p *Provider) Transcribe(ctx context.Context, path, filename string) (string, error) {
	if !p.IsAvailable(ctx) {
		return "", ErrNotConfigured
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}
	if filename == "" {
		filename = "audio.webm"
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/audio/transcriptions",
		Body: &httpclient.MultipartBody{
			Fields: map[string]string{
				"model":  p.cfg.Model,
				"prompt": p.cfg.Prompt,
			},
			Files: []httpclient.FileField{{
				FieldName: "file",
				FileName:  filename,
				Data:      audio,
			}},
		},
	})
	if err != nil {
		var herr *httpclient.Error
		if errors.As(err, &herr) && herr.Code == httpclient.ErrCodeStatus {
			return "", fmt.Errorf("whisper error (status %d): %s", herr.StatusCode, herr.Body)
		}
		return "", fmt.Errorf("whisper request: %w", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", fmt.Errorf("decode whisper response: %w", err)
	}
	return strings.TrimSpace(result.Text), nil
}
