package logger

import (
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevelFallsBack(t *testing.T) {
	cfg := &Config{Level: "not-a-level", Format: "json", Output: "stdout"}
	l := New(cfg, "svc")
	if l == nil {
		t.Fatal("expected non-nil logger despite invalid level")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	bad := Config{Level: "loud", Format: "json"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for invalid level")
	}
	bad = Config{Level: "info", Format: "xml"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("svc").WithComponent("feedback")
	if l == nil {
		t.Fatal("expected non-nil component logger")
	}
	// must not panic when logging with fields
	l.Info("test message", Fields("key", "value"))
}

func TestFieldsHelpers(t *testing.T) {
	m := Fields("a", 1, "b", "two")
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected map: %v", m)
	}

	// odd trailing key is ignored
	m = Fields("a", 1, "dangling")
	if len(m) != 1 {
		t.Errorf("expected 1 entry, got %d", len(m))
	}

	d := DurationFields("transcribe", 1500*time.Millisecond)
	if d[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration field: %v", d[FieldDuration])
	}
}
