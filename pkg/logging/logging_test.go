package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var text, json bytes.Buffer
		New(&text, &json, slog.LevelInfo, "json").Info("Scenario created", "scenario_id", "s1")

		if text.Len() != 0 {
			t.Errorf("expected nothing on text writer, got %q", text.String())
		}
		if !strings.Contains(json.String(), `"scenario_id":"s1"`) {
			t.Errorf("expected json attrs, got %q", json.String())
		}
	})

	t.Run("text respects level", func(t *testing.T) {
		var text, json bytes.Buffer
		logger := New(&text, &json, slog.LevelWarn, "text")
		logger.Info("hidden")
		logger.Warn("shown")

		if strings.Contains(text.String(), "hidden") || !strings.Contains(text.String(), "shown") {
			t.Errorf("unexpected text output: %q", text.String())
		}
	})
}
