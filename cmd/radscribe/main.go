// Command radscribe runs the radiology dictation backend: an HTTP server
// exposing speech-to-text transcription, LLM report formatting, and a
// feedback log behind a shared credential gate.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/radscribe/api"
	"github.com/skillsenselab/radscribe/config"
	"github.com/skillsenselab/radscribe/feedback"
	"github.com/skillsenselab/radscribe/logger"
	"github.com/skillsenselab/radscribe/observability"
	"github.com/skillsenselab/radscribe/report"
	"github.com/skillsenselab/radscribe/server"
	"github.com/skillsenselab/radscribe/server/middleware"
	"github.com/skillsenselab/radscribe/transcription"
	"github.com/skillsenselab/radscribe/transcription/deepgram"
	"github.com/skillsenselab/radscribe/transcription/whisper"
	"github.com/skillsenselab/radscribe/version"
)

func main() {
	if err := run(); err != nil {
		logger.Fatal("Service failed", map[string]interface{}{"error": err.Error()})
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	info := version.GetVersionInfo()
	log.Info("Starting radscribe", map[string]interface{}{
		"version":     info.Version,
		"environment": cfg.Environment,
		"maintenance": cfg.Maintenance,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, shutdownOtel, err := initObservability(ctx, cfg, info.Version)
	if err != nil {
		return err
	}
	defer shutdownOtel()

	whisperProvider, err := whisper.NewProvider(whisper.Config{
		APIKey:  cfg.Whisper.APIKey,
		BaseURL: cfg.Whisper.BaseURL,
		Model:   cfg.Whisper.Model,
	})
	if err != nil {
		return err
	}
	deepgramProvider, err := deepgram.NewProvider(deepgram.Config{
		APIKey:  cfg.Deepgram.APIKey,
		BaseURL: cfg.Deepgram.BaseURL,
		Model:   cfg.Deepgram.Model,
	})
	if err != nil {
		return err
	}

	transcriber := transcription.NewService(whisperProvider, deepgramProvider, metrics)
	formatter := report.NewService(report.Config{
		APIKey:  cfg.Report.APIKey,
		BaseURL: cfg.Report.BaseURL,
		Model:   cfg.Report.Model,
	}, metrics)
	sink, err := feedback.NewSink(cfg.Feedback.Path, metrics)
	if err != nil {
		return err
	}

	serverCfg := server.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		MaxBodySize: cfg.Server.MaxBodySize,
	}
	serverCfg.ApplyDefaults()
	if err := serverCfg.Validate(); err != nil {
		return err
	}

	srv := server.New(serverCfg, log)
	srv.ApplyDefaults(cfg.Name, metrics)

	if !cfg.Auth.Enabled() {
		log.Warn("No auth credentials configured, all application routes will reject")
	}
	api.Register(srv.GinEngine(), api.Config{
		Maintenance: cfg.Maintenance,
		StaticDir:   cfg.Server.StaticDir,
		DeepgramKey: cfg.Deepgram.APIKey,
		Auth: middleware.BasicAuthConfig{
			Username:     cfg.Auth.Username,
			Password:     cfg.Auth.Password,
			PasswordHash: cfg.Auth.PasswordHash,
		},
	}, transcriber, formatter, sink)

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx, cfg.Server.ShutdownTimeout)
}

// initObservability starts the OTel tracer and meter when an exporter
// endpoint is configured. The returned shutdown flushes both providers.
func initObservability(ctx context.Context, cfg *config.Config, serviceVersion string) (*observability.Metrics, func(), error) {
	if !cfg.Observability.Enabled() {
		return nil, func() {}, nil
	}

	tracerProvider, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Observability.Endpoint,
		Insecure:       cfg.Environment != "production",
		SampleRate:     cfg.Observability.SampleRate,
	})
	if err != nil {
		return nil, nil, err
	}
	meterProvider, err := observability.InitMeter(ctx, observability.MeterConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Observability.Endpoint,
		Insecure:       cfg.Environment != "production",
	})
	if err != nil {
		return nil, nil, err
	}

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return nil, nil, err
	}

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			logger.Warn("Meter shutdown failed", map[string]interface{}{"error": err.Error()})
		}
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Warn("Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return metrics, shutdown, nil
}
