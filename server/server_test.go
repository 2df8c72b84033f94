package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/radscribe/errors"
	"github.com/skillsenselab/radscribe/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config invalid: %v", err)
	}
	srv := New(cfg, logger.NewDefault("test"))
	srv.ApplyDefaults("radscribe", nil)
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.GinEngine().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "radscribe" {
		t.Errorf("body = %v", body)
	}
}

func TestInfoEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.GinEngine().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/info", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["version"] == "" {
		t.Error("version missing from /info")
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/app", func(c *gin.Context) {
		RespondWithError(c, apperrors.Timeout("report generation"))
	})
	engine.GET("/plain", func(c *gin.Context) {
		RespondWithError(c, context.DeadlineExceeded)
	})

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/app", http.NoBody))
	if rr.Code != http.StatusGatewayTimeout {
		t.Errorf("app error status = %d, want 504", rr.Code)
	}

	rr = httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/plain", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("plain error status = %d, want 500", rr.Code)
	}
}

func TestStartStop(t *testing.T) {
	cfg := Config{Host: "127.0.0.1", Port: 0}
	cfg.ApplyDefaults()
	cfg.Port = 0 // ephemeral port for the test
	srv := New(cfg, logger.NewDefault("test"))
	srv.ApplyDefaults("radscribe", nil)

	ctx := context.Background()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := srv.Stop(ctx, time.Second); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}
