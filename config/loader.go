package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/skillsenselab/radscribe/logger"
)

// envFileSearchPaths are checked in order for a .env file when none is
// given explicitly.
var envFileSearchPaths = []string{".env", "config/.env", "../.env"}

// Option customizes Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile string
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// Load builds the process configuration: .env file first (when present),
// then environment variables over viper defaults, then ApplyDefaults and
// Validate. The returned Config is never mutated after Load.
func Load(opts ...Option) (*Config, error) {
	var lo loaderOptions
	for _, opt := range opts {
		opt(&lo)
	}

	if err := loadEnvFile(lo.envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Name:        v.GetString("service_name"),
		Environment: v.GetString("environment"),
		Maintenance: v.GetBool("maintenance_mode"),
		Server: ServerConfig{
			Host:            v.GetString("host"),
			Port:            v.GetInt("port"),
			StaticDir:       v.GetString("static_dir"),
			MaxBodySize:     v.GetString("max_body_size"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Logging: logging(v),
		Auth: AuthConfig{
			Username:     v.GetString("auth_username"),
			Password:     v.GetString("auth_password"),
			PasswordHash: v.GetString("auth_password_hash"),
		},
		Whisper: ProviderConfig{
			APIKey:  v.GetString("openai_api_key"),
			BaseURL: v.GetString("whisper_base_url"),
			Model:   v.GetString("whisper_model"),
		},
		Deepgram: ProviderConfig{
			APIKey:  v.GetString("deepgram_api_key"),
			BaseURL: v.GetString("deepgram_base_url"),
			Model:   v.GetString("deepgram_model"),
		},
		Report: ReportConfig{
			APIKey:  v.GetString("openai_api_key"),
			BaseURL: v.GetString("report_base_url"),
			Model:   v.GetString("report_model"),
		},
		Feedback: FeedbackConfig{
			Path: v.GetString("feedback_log_path"),
		},
		Observability: ObservabilityConfig{
			Endpoint:   v.GetString("otel_exporter_endpoint"),
			SampleRate: v.GetFloat64("otel_sample_rate"),
		},
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadEnvFile loads an explicit .env file, or the first one found in the
// standard search paths. A missing file is not an error; env-only deploys
// are the normal case in containers.
func loadEnvFile(explicit string) error {
	if explicit != "" {
		if err := godotenv.Load(explicit); err != nil {
			return fmt.Errorf("load env file %s: %w", explicit, err)
		}
		return nil
	}
	for _, path := range envFileSearchPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return fmt.Errorf("load env file %s: %w", path, err)
			}
			return nil
		}
	}
	return nil
}

// setDefaults registers every known key with viper so AutomaticEnv can
// resolve the corresponding UPPER_CASE environment variables.
func setDefaults(v *viper.Viper) {
	for key, val := range map[string]any{
		"service_name":           "",
		"environment":            "",
		"maintenance_mode":       false,
		"host":                   "",
		"port":                   0,
		"static_dir":             "",
		"max_body_size":          "",
		"shutdown_timeout":       "",
		"log_level":              "",
		"log_format":             "",
		"auth_username":          "",
		"auth_password":          "",
		"auth_password_hash":     "",
		"openai_api_key":         "",
		"whisper_base_url":       "",
		"whisper_model":          "",
		"deepgram_api_key":       "",
		"deepgram_base_url":      "",
		"deepgram_model":         "",
		"report_base_url":        "",
		"report_model":           "",
		"feedback_log_path":      "",
		"otel_exporter_endpoint": "",
		"otel_sample_rate":       0.0,
	} {
		v.SetDefault(key, val)
	}
}

func logging(v *viper.Viper) logger.Config {
	return logger.Config{
		Level:  v.GetString("log_level"),
		Format: v.GetString("log_format"),
	}
}
