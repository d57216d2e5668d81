package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultIsSilent(t *testing.T) {
	Set(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("default logger should be disabled")
	}
}

func TestSet(t *testing.T) {
	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, nil)))
	defer Set(nil)

	Logger().Info("orbit stored", "orbit_id", 7)
	if !strings.Contains(buf.String(), "orbit_id=7") {
		t.Fatalf("log output %q", buf.String())
	}
}
