// Package feedback persists user feedback as an append-only JSONL log.
//
// Records are written once and never read back, rotated, or compacted by
// this service. Each record is a single self-contained JSON line so the
// file stays greppable and safe to tail.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/skillsenselab/radscribe/logger"
	"github.com/skillsenselab/radscribe/observability"
	"github.com/skillsenselab/radscribe/util"
)

const (
	// DefaultPath is the feedback log location when none is configured.
	DefaultPath = "data/feedback.jsonl"

	maxTranscriptRunes = 500
	maxReportRunes     = 1000
)

// Record is one stored feedback entry.
type Record struct {
	// Timestamp is the submission time in UTC.
	Timestamp time.Time `json:"timestamp"`
	// Rating is a free-form rating string.
	Rating string `json:"rating"`
	// Comment is the user's comment.
	Comment string `json:"comment"`
	// Transcript is the dictation transcript, truncated to 500 runes.
	Transcript string `json:"transcript"`
	// Report is the generated report, truncated to 1000 runes.
	Report string `json:"report"`
}

// Sink appends feedback records to a JSONL file. Safe for concurrent use.
type Sink struct {
	path    string
	mu      sync.Mutex
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewSink creates a feedback sink writing to path, creating the target
// directory if absent. metrics may be nil.
func NewSink(path string, metrics *observability.Metrics) (*Sink, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create feedback dir: %w", err)
		}
	}
	return &Sink{
		path:    path,
		metrics: metrics,
		log:     logger.WithComponent("feedback"),
	}, nil
}

// Path returns the log file location.
func (s *Sink) Path() string { return s.path }

// Record truncates, timestamps, and appends one feedback entry. Truncation
// is silent: callers are not told their transcript or report was cut. The
// append is serialized so concurrent submissions never interleave lines.
func (s *Sink) Record(ctx context.Context, rating, comment, transcript, report string) error {
	rec := Record{
		Timestamp:  time.Now().UTC(),
		Rating:     rating,
		Comment:    comment,
		Transcript: util.TruncateRunes(transcript, maxTranscriptRunes),
		Report:     util.TruncateRunes(report, maxReportRunes),
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal feedback record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open feedback log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append feedback record: %w", err)
	}

	s.log.Info("feedback recorded", logger.Fields("rating", rating, "path", s.path))
	s.metrics.RecordFeedback(ctx)
	return nil
}
