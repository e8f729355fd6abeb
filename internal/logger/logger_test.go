package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug", "json")
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug level to be enabled")
	}
	l.Info("saved", "id", "abc")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if entry["msg"] != "saved" || entry["id"] != "abc" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewWriterTextDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "", "text")
	if l.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug to be disabled by default")
	}
}

func TestContextLogger(t *testing.T) {
	fallback := NewWriter(&bytes.Buffer{}, "info", "text")
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatal("expected fallback logger")
	}
	custom := fallback.With("request_id", "12345")
	ctx := WithContext(context.Background(), custom)
	if got := FromContext(ctx, fallback); got != custom {
		t.Fatal("expected logger stored in context")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%s) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
