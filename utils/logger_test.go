package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetOutput(&buf)
	logger.SetLevel(WARN)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", errors.New("boom"))

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Error("messages below the threshold were logged")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("warn message missing")
	}
	if !strings.Contains(out, "error message") || !strings.Contains(out, "boom") {
		t.Error("error message or attached error missing")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetOutput(&buf)
	logger.SetFormat("json")

	logger.Info("structured entry",
		String("region", "LA"),
		Int("samples", 5000),
		Float("risk", 0.42),
		Bool("defaulted", false),
		Duration("elapsed", 250*time.Millisecond))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Level != "INFO" {
		t.Errorf("level = %s, want INFO", entry.Level)
	}
	if entry.Message != "structured entry" {
		t.Errorf("message = %s", entry.Message)
	}
	if entry.Service != "floodsense" {
		t.Errorf("service = %s, want floodsense", entry.Service)
	}
	if entry.Fields["region"] != "LA" {
		t.Errorf("region field = %v", entry.Fields["region"])
	}
	if entry.Fields["samples"] != float64(5000) {
		t.Errorf("samples field = %v", entry.Fields["samples"])
	}
	if entry.Fields["elapsed"] != "250ms" {
		t.Errorf("elapsed field = %v", entry.Fields["elapsed"])
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetOutput(&buf)
	logger.SetFormat("json")

	logger.WithComponent("scheduler").Info("job started", String("job", "ingest"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Component != "scheduler" {
		t.Errorf("component = %s, want scheduler", entry.Component)
	}
	if entry.Fields["job"] != "ingest" {
		t.Errorf("job field = %v", entry.Fields["job"])
	}
}

func TestTextFormatIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetOutput(&buf)

	logger.Info("fetch complete", String("region", "KN"), Int("count", 3))

	out := buf.String()
	if !strings.Contains(out, "[INFO]") {
		t.Error("level marker missing from text output")
	}
	if !strings.Contains(out, "region=KN") || !strings.Contains(out, "count=3") {
		t.Errorf("fields missing from text output: %s", out)
	}
}

func TestInitLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  LogLevel
	}{
		{"debug", "debug", DEBUG},
		{"warn", "warn", WARN},
		{"mixed case", "ERROR", ERROR},
		{"unknown falls back", "verbose", INFO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level, "text")
			if got := GetLogger().level; got != tt.want {
				t.Errorf("level = %s, want %s", got, tt.want)
			}
		})
	}
}
