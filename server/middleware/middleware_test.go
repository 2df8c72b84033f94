package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillsenselab/radscribe/server/middleware"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(mw...)
	engine.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	engine.GET("/api/backends", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"backends": []string{}}) })
	return engine
}

func doRequest(engine *gin.Engine, method, path string, auth func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	if auth != nil {
		auth(req)
	}
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	return rr
}

func basicAuthGate() gin.HandlerFunc {
	return middleware.BasicAuth(middleware.BasicAuthConfig{
		Username:  "radiologist",
		Password:  "s3cret",
		SkipPaths: []string{"/health"},
	})
}

func TestBasicAuthAcceptsConfiguredPair(t *testing.T) {
	engine := newEngine(basicAuthGate())
	rr := doRequest(engine, http.MethodGet, "/api/backends", func(r *http.Request) {
		r.SetBasicAuth("radiologist", "s3cret")
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestBasicAuthUniformRejection(t *testing.T) {
	engine := newEngine(basicAuthGate())

	cases := []struct {
		name string
		auth func(*http.Request)
	}{
		{"no credentials", nil},
		{"wrong username", func(r *http.Request) { r.SetBasicAuth("intruder", "s3cret") }},
		{"wrong password", func(r *http.Request) { r.SetBasicAuth("radiologist", "guess") }},
		{"both wrong", func(r *http.Request) { r.SetBasicAuth("intruder", "guess") }},
		{"empty pair", func(r *http.Request) { r.SetBasicAuth("", "") }},
	}

	var firstBody string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(engine, http.MethodGet, "/api/backends", tc.auth)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rr.Code)
			}
			if got := rr.Header().Get("WWW-Authenticate"); !strings.HasPrefix(got, "Basic realm=") {
				t.Errorf("WWW-Authenticate = %q", got)
			}
			if firstBody == "" {
				firstBody = rr.Body.String()
			} else if rr.Body.String() != firstBody {
				t.Error("rejection body must not reveal which field mismatched")
			}
		})
	}
}

func TestBasicAuthSkipPaths(t *testing.T) {
	engine := newEngine(basicAuthGate())
	rr := doRequest(engine, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 without credentials on /health", rr.Code)
	}
}

func TestBasicAuthBcryptMode(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	engine := newEngine(middleware.BasicAuth(middleware.BasicAuthConfig{
		Username:     "radiologist",
		PasswordHash: string(hash),
	}))

	rr := doRequest(engine, http.MethodGet, "/api/backends", func(r *http.Request) {
		r.SetBasicAuth("radiologist", "s3cret")
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with bcrypt-verified password", rr.Code)
	}

	rr = doRequest(engine, http.MethodGet, "/api/backends", func(r *http.Request) {
		r.SetBasicAuth("radiologist", "wrong")
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 with wrong password", rr.Code)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	engine := newEngine(middleware.RequestID())
	rr := doRequest(engine, http.MethodGet, "/health", nil)
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("X-Request-Id not set")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	engine := newEngine(middleware.RequestID())
	rr := doRequest(engine, http.MethodGet, "/health", func(r *http.Request) {
		r.Header.Set("X-Request-Id", "abc-123")
	})
	if got := rr.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Errorf("X-Request-Id = %q, want abc-123", got)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	rr := doRequest(engine, http.MethodGet, "/boom", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "kaboom") {
		t.Error("panic message must not leak to the client")
	}
}

func TestCORSPreflight(t *testing.T) {
	engine := newEngine(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	rr := doRequest(engine, http.MethodOptions, "/api/backends", func(r *http.Request) {
		r.Header.Set("Origin", "https://pacs.example.org")
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://pacs.example.org" {
		t.Errorf("Allow-Origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestBodySizeLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.BodySizeLimit("1KB"))
	engine.POST("/api/feedback", func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	small := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(strings.Repeat("a", 100)))
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, small)
	if rr.Code != http.StatusOK {
		t.Fatalf("small body status = %d, want 200", rr.Code)
	}

	big := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(strings.Repeat("a", 5000)))
	rr = httptest.NewRecorder()
	engine.ServeHTTP(rr, big)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("big body status = %d, want 413", rr.Code)
	}
}

func TestRateLimit(t *testing.T) {
	engine := newEngine(middleware.RateLimit(middleware.RateLimitConfig{RequestsPerMinute: 3}))

	for i := 0; i < 3; i++ {
		if rr := doRequest(engine, http.MethodGet, "/api/backends", nil); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rr.Code)
		}
	}
	if rr := doRequest(engine, http.MethodGet, "/api/backends", nil); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after limit", rr.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	engine := newEngine(middleware.RateLimit(middleware.RateLimitConfig{}))
	for i := 0; i < 100; i++ {
		if rr := doRequest(engine, http.MethodGet, "/api/backends", nil); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200 with limiter disabled", i+1, rr.Code)
		}
	}
}
