//go:build unit

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	t.Run("console output is not json", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(config.LogConfig{Level: "info", Format: "console"}, &buf)

		log.Info("server started")

		out := buf.String()
		if !strings.Contains(out, "server started") {
			t.Errorf("missing message in %q", out)
		}
		if json.Valid(bytes.TrimSpace(buf.Bytes())) {
			t.Errorf("console writer produced json: %s", out)
		}
	})

	t.Run("json entry carries error", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(config.LogConfig{Level: "error", Format: "json"}, &buf)

		log.Error(errors.New("disk full"), "failed to deliver notification")

		var entry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("unmarshal %q: %v", buf.String(), err)
		}
		want := map[string]string{"level": "error", "message": "failed to deliver notification", "error": "disk full"}
		for k, v := range want {
			if entry[k] != v {
				t.Errorf("%s = %v, want %q", k, entry[k], v)
			}
		}
	})

	t.Run("entries below level are dropped", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)

		log.Info("cache warmed")
		log.Warn("orphaned reply dropped")

		out := buf.String()
		if strings.Contains(out, "cache warmed") {
			t.Error("info entry written at warn level")
		}
		if !strings.Contains(out, "orphaned reply dropped") {
			t.Error("warn entry missing")
		}
	})

	t.Run("with adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LogConfig{Level: "debug", Format: "json"}
		log := New(cfg, &buf).With(map[string]interface{}{"comment_id": "c-1"})

		log.Debug("orphaned reply dropped")

		var logEntry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
			t.Fatalf("failed to unmarshal log output as json: %v\noutput: %s", err, buf.String())
		}
		if logEntry["comment_id"] != "c-1" {
			t.Errorf("expected comment_id field 'c-1', got '%v'", logEntry["comment_id"])
		}
		if logEntry["level"] != "debug" {
			t.Errorf("expected log level 'debug', got '%v'", logEntry["level"])
		}
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(config.LogConfig{Level: "loud", Format: "json"}, &buf)

		log.Debug("hidden")
		log.Info("shown")

		if strings.Contains(buf.String(), "hidden") {
			t.Error("debug log should be filtered at the fallback level")
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Error("info log should appear at the fallback level")
		}
	})
}
