package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/skillsenselab/radscribe/logger"
)

// Config is the complete process configuration. It is constructed once by
// Load and treated as read-only afterwards.
type Config struct {
	// Name is the service name used in logs and traces.
	Name string
	// Environment is the deployment environment (development, staging, production).
	Environment string
	// Maintenance serves a "coming soon" page instead of the front-end.
	Maintenance bool

	Server        ServerConfig
	Logging       logger.Config
	Auth          AuthConfig
	Whisper       ProviderConfig
	Deepgram      ProviderConfig
	Report        ReportConfig
	Feedback      FeedbackConfig
	Observability ObservabilityConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string
	Port int
	// StaticDir is the directory served at / and /static.
	StaticDir string
	// MaxBodySize is the request body limit (e.g. "25MB").
	MaxBodySize string
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// AuthConfig holds the single shared basic-auth credential pair.
type AuthConfig struct {
	Username string
	// Password is the plaintext password. Ignored when PasswordHash is set.
	Password string
	// PasswordHash is an optional bcrypt hash replacing Password.
	PasswordHash string
}

// Enabled reports whether a credential pair is configured at all. With no
// credentials the gate rejects everything, which is the safe default for a
// misconfigured deployment.
func (a AuthConfig) Enabled() bool {
	return a.Username != "" && (a.Password != "" || a.PasswordHash != "")
}

// ProviderConfig configures one speech-to-text provider.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ReportConfig configures the report formatter.
type ReportConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// FeedbackConfig configures the feedback sink.
type FeedbackConfig struct {
	Path string
}

// ObservabilityConfig configures the optional OTel exporters.
type ObservabilityConfig struct {
	// Endpoint is the OTLP HTTP endpoint host:port. Empty disables OTel.
	Endpoint string
	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64
}

// Enabled reports whether an exporter endpoint is configured.
func (o ObservabilityConfig) Enabled() bool { return o.Endpoint != "" }

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "radscribe"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "web"
	}
	if c.Server.MaxBodySize == "" {
		c.Server.MaxBodySize = "25MB"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Feedback.Path == "" {
		c.Feedback.Path = "data/feedback.jsonl"
	}
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the configuration for fatal inconsistencies.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (got: %d)", c.Server.Port)
	}
	if c.Auth.PasswordHash != "" && !strings.HasPrefix(c.Auth.PasswordHash, "$2") {
		return fmt.Errorf("auth_password_hash must be a bcrypt hash")
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
