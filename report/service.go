package report

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/skillsenselab/radscribe/errors"
	"github.com/skillsenselab/radscribe/logger"
	"github.com/skillsenselab/radscribe/observability"
)

const (
	defaultModel   = "gpt-4o"
	defaultTimeout = 60 * time.Second

	// FormatLabel identifies the report layout clients receive.
	FormatLabel = "radiology-structured"

	temperature = 0.2
	maxTokens   = 4096
)

// Config holds configuration for the report formatter.
type Config struct {
	// APIKey is the chat-completion API key. When empty, FormatReport
	// fails with a not-configured error before any network call.
	APIKey string `json:"-" yaml:"-"`
	// BaseURL overrides the API base URL (for tests and proxies).
	BaseURL string `json:"base_url" yaml:"base_url"`
	// Model is the chat-completion model (default "gpt-4o").
	Model string `json:"model" yaml:"model"`
	// Timeout bounds one formatting call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ReportResult is a successfully formatted report.
type ReportResult struct {
	// Report is the model's generated text, returned verbatim.
	Report string `json:"report"`
	// Format labels the report layout.
	Format string `json:"format"`
	// Model is the model that generated the report.
	Model string `json:"model"`
}

// Service formats dictation transcripts into structured reports.
type Service struct {
	cfg     Config
	client  *openai.Client
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewService creates a report formatter. metrics may be nil.
func NewService(cfg Config, metrics *observability.Metrics) *Service {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Service{
		cfg:     cfg,
		client:  openai.NewClientWithConfig(clientCfg),
		metrics: metrics,
		log:     logger.WithComponent("report"),
	}
}

// Model returns the configured chat-completion model.
func (s *Service) Model() string { return s.cfg.Model }

// FormatReport sends the transcript to the chat-completion API and returns
// the generated report. Failures are *errors.AppError values carrying the
// HTTP status the gateway should respond with: 400 for a blank transcript,
// 500 for missing configuration or upstream failure, 504 for a timeout.
func (s *Service) FormatReport(ctx context.Context, transcript string) (*ReportResult, error) {
	ctx, span := observability.StartSpan(ctx, "report.format")
	defer span.End()

	start := time.Now()
	if strings.TrimSpace(transcript) == "" {
		s.metrics.RecordReport(ctx, "invalid_input", time.Since(start))
		return nil, errors.Validation("transcript is empty")
	}
	if s.cfg.APIKey == "" {
		s.metrics.RecordReport(ctx, "not_configured", time.Since(start))
		return nil, errors.NotConfigured("OPENAI_API_KEY")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		appErr := s.classify(err)
		s.log.Error("report generation failed", logger.Fields(
			"model", s.cfg.Model,
			"code", string(appErr.Code),
			"error", err.Error(),
		))
		s.metrics.RecordReport(ctx, strings.ToLower(string(appErr.Code)), time.Since(start))
		return nil, appErr
	}
	if len(resp.Choices) == 0 {
		s.metrics.RecordReport(ctx, "error", time.Since(start))
		return nil, errors.Upstream("chat completion", "response contained no choices")
	}

	s.log.Info("report generated", logger.Fields(
		"model", s.cfg.Model,
		"transcript_chars", len(transcript),
		"report_chars", len(resp.Choices[0].Message.Content),
		"duration_ms", time.Since(start).Milliseconds(),
	))
	s.metrics.RecordReport(ctx, "ok", time.Since(start))

	return &ReportResult{
		Report: resp.Choices[0].Message.Content,
		Format: FormatLabel,
		Model:  s.cfg.Model,
	}, nil
}

// classify maps a go-openai error to the AppError kind the gateway reports.
// Timeouts are kept distinct from generic upstream failures so the client
// can suggest re-trying a shorter dictation.
func (s *Service) classify(err error) *errors.AppError {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.Timeout("report generation")
	}

	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return errors.Upstream("chat completion", apiErr.Message).
			WithDetail("upstream_status", apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return errors.Upstream("chat completion", reqErr.Error())
	}

	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return errors.Timeout("report generation")
	}

	return errors.Internal(err)
}
