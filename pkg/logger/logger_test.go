package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"INFO":    logrus.InfoLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"bogus":   logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithOutput(&buf, "debug", "json")

	log.Error("workspace cleanup failed", errors.New("busy"), "dir", "/tmp/pdf-unlock-1", "dangling")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "workspace cleanup failed" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["dir"] != "/tmp/pdf-unlock-1" {
		t.Fatalf("unexpected dir field: %v", entry["dir"])
	}
	if entry["error"] != "busy" {
		t.Fatalf("unexpected error field: %v", entry["error"])
	}
	if _, ok := entry["dangling"]; ok {
		t.Fatalf("expected unpaired key to be dropped")
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithOutput(&buf, "warn", "text")

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown", "op", "unlock")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "op=unlock") {
		t.Fatalf("expected warn line with fields, got %q", out)
	}
}
