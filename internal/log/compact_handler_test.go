package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestFlatten(t *testing.T) {
	t.Parallel()

	t.Run("multi-line becomes one line", func(t *testing.T) {
		t.Parallel()
		in := "ReferenceError: foo is not defined\n    at init (main.js:3:1)\n    at main.js:10:2"
		got := Flatten(in)
		if strings.ContainsAny(got, "\n\r") {
			t.Errorf("newlines survived: %q", got)
		}
		if !strings.Contains(got, "at init (main.js:3:1)") {
			t.Errorf("content lost: %q", got)
		}
	})

	t.Run("oversized value is truncated", func(t *testing.T) {
		t.Parallel()
		got := Flatten(strings.Repeat("x", MaxAttrLen*2))
		if len(got) != MaxAttrLen+len(truncationMarker) {
			t.Errorf("got length %d", len(got))
		}
		if !strings.HasSuffix(got, truncationMarker) {
			t.Errorf("missing marker: %q", got[len(got)-30:])
		}
	})

	t.Run("short single-line value is unchanged", func(t *testing.T) {
		t.Parallel()
		if got := Flatten("plain message"); got != "plain message" {
			t.Errorf("got %q", got)
		}
	})
}

func TestCompactHandler(t *testing.T) {
	t.Parallel()

	t.Run("flattens string attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewCompactHandler(slog.NewTextHandler(&buf, nil)))
		logger.Info("diagnostic", "message", "line one\nline two")

		out := buf.String()
		if strings.Count(out, "\n") != 1 {
			t.Errorf("expected a single log line, got: %q", out)
		}
		if !strings.Contains(out, "line one line two") {
			t.Errorf("attribute not flattened: %q", out)
		}
	})

	t.Run("non-string attributes pass through", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewCompactHandler(slog.NewTextHandler(&buf, nil)))
		logger.Info("progress", "count", 42)

		if !strings.Contains(buf.String(), "count=42") {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("attributes inside groups are compacted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewCompactHandler(slog.NewTextHandler(&buf, nil)))
		logger.Info("page", slog.Group("diag", slog.String("message", "a\nb")))

		if !strings.Contains(buf.String(), "a b") {
			t.Errorf("group attribute not flattened: %q", buf.String())
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("default level is warn", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Info("hidden")
		logger.Warn("visible")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Errorf("info leaked at warn level: %q", out)
		}
		if !strings.Contains(out, "visible") {
			t.Errorf("warning missing: %q", out)
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)
		logger.Debug("detail")

		if !strings.Contains(buf.String(), "detail") {
			t.Errorf("debug missing in verbose mode: %q", buf.String())
		}
	})
}
