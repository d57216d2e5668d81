package logbridge

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func logger(buf *bytes.Buffer, lvl logrus.Level) *slog.Logger {
	l := logrus.New()
	l.SetOutput(buf)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	l.SetLevel(lvl)
	return slog.New(New(l))
}

func TestForwardsFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger(&buf, logrus.DebugLevel)
	log.With("unit", "a").WithGroup("tile").Info("tile done", "x", 3, slog.Group("size", "w", 64))
	out := buf.String()
	for _, want := range []string{"level=info", `msg="tile done"`, "unit=a", "tile.x=3", "tile.size.w=64"} {
		if !strings.Contains(out, want) {
			t.Errorf("%q missing from %q", want, out)
		}
	}
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := logger(&buf, logrus.WarnLevel)
	log.Info("quiet")
	log.Debug("quieter")
	if buf.Len() != 0 {
		t.Fatalf("filtered records written: %q", buf.String())
	}
	log.Warn("loud")
	log.Error("louder")
	out := buf.String()
	if !strings.Contains(out, "level=warning") || !strings.Contains(out, "level=error") {
		t.Fatalf("output %q", out)
	}
}
