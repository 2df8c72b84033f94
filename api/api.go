// Package api mounts the radscribe HTTP surface on a Gin engine and maps
// requests onto the transcription, report, and feedback services.
package api

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/radscribe/errors"
	"github.com/skillsenselab/radscribe/feedback"
	"github.com/skillsenselab/radscribe/logger"
	"github.com/skillsenselab/radscribe/report"
	"github.com/skillsenselab/radscribe/server"
	"github.com/skillsenselab/radscribe/server/middleware"
	"github.com/skillsenselab/radscribe/transcription"
	"github.com/skillsenselab/radscribe/validation"
)

// Config holds the handler-level settings the api routes need.
type Config struct {
	// Maintenance serves a placeholder instead of the front-end.
	Maintenance bool
	// StaticDir is the front-end directory served at / and /static.
	StaticDir string
	// DeepgramKey is handed to the browser for client-side streaming.
	DeepgramKey string
	// Auth configures the credential gate applied to every route here.
	Auth middleware.BasicAuthConfig
}

// Handler carries the wired services behind the HTTP surface.
type Handler struct {
	cfg         Config
	transcriber *transcription.Service
	formatter   *report.Service
	sink        *feedback.Sink
	log         *logger.Logger
}

// Register mounts all application routes on the engine behind the
// credential gate. Operational endpoints (/health, /info) are registered
// by the server package and stay outside the gate.
func Register(engine *gin.Engine, cfg Config, transcriber *transcription.Service, formatter *report.Service, sink *feedback.Sink) {
	h := &Handler{
		cfg:         cfg,
		transcriber: transcriber,
		formatter:   formatter,
		sink:        sink,
		log:         logger.WithComponent("api"),
	}

	authorized := engine.Group("/", middleware.BasicAuth(cfg.Auth))
	authorized.GET("/", h.index)
	authorized.Static("/static", cfg.StaticDir)
	authorized.GET("/api/deepgram-key", h.deepgramKey)
	authorized.GET("/api/backends", h.backends)
	authorized.POST("/api/transcribe", h.transcribe)
	authorized.POST("/api/generate-report", h.generateReport)
	authorized.POST("/api/feedback", h.submitFeedback)
}

// index serves the front-end, the maintenance placeholder, or a fallback
// message when the static directory is missing.
func (h *Handler) index(c *gin.Context) {
	if h.cfg.Maintenance {
		server.RespondOK(c, gin.H{"message": "Coming soon - currently in private beta"})
		return
	}
	indexPath := filepath.Join(h.cfg.StaticDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		server.RespondOK(c, gin.H{"message": "Frontend not found"})
		return
	}
	c.File(indexPath)
}

// deepgramKey exposes the speech key for client-side live streaming.
func (h *Handler) deepgramKey(c *gin.Context) {
	if h.cfg.DeepgramKey == "" {
		server.RespondWithError(c, errors.NotConfigured("Deepgram API key"))
		return
	}
	server.RespondOK(c, gin.H{"key": h.cfg.DeepgramKey})
}

// backends lists the transcription backends and their availability.
func (h *Handler) backends(c *gin.Context) {
	server.RespondOK(c, gin.H{
		"backends": h.transcriber.Backends(c.Request.Context()),
	})
}

// transcribe accepts a multipart audio upload and returns the tagged
// transcription result. Transcription failures are part of the result
// payload, not HTTP errors, so the response status is always 200 once the
// upload itself parsed.
func (h *Handler) transcribe(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		server.RespondWithError(c, errors.MissingField("file"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		server.RespondWithError(c, errors.Validation("failed to read audio upload"))
		return
	}

	result := h.transcriber.Transcribe(c.Request.Context(), transcription.TranscriptionRequest{
		Audio:    audio,
		Filename: header.Filename,
		Backend:  c.PostForm("backend"),
	})
	server.RespondOK(c, result)
}

// GenerateReportRequest is the /api/generate-report request body.
type GenerateReportRequest struct {
	// Transcript may be blank; the formatter rejects it with a 400 so the
	// client gets a structured validation error rather than a bind failure.
	Transcript string `json:"transcript"`
}

func (h *Handler) generateReport(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.Validation("request body must be JSON with a transcript field"))
		return
	}

	result, err := h.formatter.FormatReport(c.Request.Context(), req.Transcript)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, result)
}

// FeedbackRequest is the /api/feedback request body.
type FeedbackRequest struct {
	Rating     string `json:"rating" validate:"required"`
	Comment    string `json:"comment"`
	Transcript string `json:"transcript"`
	Report     string `json:"report"`
}

func (h *Handler) submitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.Validation("request body must be JSON"))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	if err := h.sink.Record(c.Request.Context(), req.Rating, req.Comment, req.Transcript, req.Report); err != nil {
		h.log.Error("record feedback", logger.ErrorFields("feedback", err))
		server.RespondWithError(c, errors.Internal(err))
		return
	}
	server.RespondOK(c, gin.H{"status": "ok"})
}
