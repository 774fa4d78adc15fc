package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{"telegram_token", "abc", "items", 3, "dangling"})

	if len(got) != 5 {
		t.Fatalf("Expected 5 values, got %d: %v", len(got), got)
	}
	if got[1] != "[REDACTED]" {
		t.Errorf("Expected token value to be redacted, got %v", got[1])
	}
	if got[3] != 3 {
		t.Errorf("Expected items value to pass through, got %v", got[3])
	}
	if got[4] != "dangling" {
		t.Errorf("Expected trailing key to be kept, got %v", got[4])
	}
}

func TestWarnWritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "test").Warn("dropped line", "raw", "3 smidges salt", "api_key", "k")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["raw"] != "3 smidges salt" {
		t.Errorf("Expected raw field, got %v", fields["raw"])
	}
	if fields["api_key"] != "[REDACTED]" {
		t.Errorf("Expected api_key to be redacted, got %v", fields["api_key"])
	}
	if fields["component"] != "test" {
		t.Errorf("Expected component field from With, got %v", fields["component"])
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("nothing happens", "k", "v")
	l.Sync()
}
