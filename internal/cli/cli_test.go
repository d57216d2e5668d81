package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/session"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(viper.New(), "")
	if err != nil {
		t.Fatal(err)
	}
	d := session.DefaultConfig()
	if cfg.TauSq != d.TauSq || cfg.BLAFraction != d.BLAFraction || cfg.Backend != d.Backend ||
		cfg.Glitch.MaxDepth != d.Glitch.MaxDepth || cfg.IterationsPerDispatch != d.IterationsPerDispatch {
		t.Fatalf("config %+v", cfg)
	}
}

func TestLoadConfigLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deepzoom.yaml")
	yaml := "tau_sq: 1.0e-8\nmax_iterations: 5000\nglitch:\n  max_depth: 4\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEEPZOOM_BACKEND", "gpu")
	t.Setenv("DEEPZOOM_GLITCH_MIN_CELL_SIZE", "8")

	cfg, err := LoadConfig(viper.New(), path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TauSq != 1e-8 || cfg.MaxIterations != 5000 || cfg.Glitch.MaxDepth != 4 {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.Backend != session.BackendGPU || cfg.Glitch.MinCellSize != 8 {
		t.Fatalf("env values lost: %+v", cfg)
	}
	if cfg.RowSets != session.DefaultConfig().RowSets {
		t.Fatalf("default lost: %+v", cfg)
	}

	if _, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing config file accepted")
	}
}

func TestFlagsOverride(t *testing.T) {
	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	BindFlags(cmd, v)
	if err := cmd.ParseFlags([]string{"--workers", "3", "--backend", "gpu"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(v, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 3 || cfg.Backend != session.BackendGPU {
		t.Fatalf("flags lost: %+v", cfg)
	}
}

func TestSetupLogging(t *testing.T) {
	l, err := SetupLogging("debug")
	if err != nil {
		t.Fatal(err)
	}
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level %s", l.GetLevel())
	}
	if _, err := SetupLogging("loud"); err == nil {
		t.Fatal("bad level accepted")
	}
}

func TestProgressLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	report := ProgressLogger(l)
	report(mandel.Progress{Phase: mandel.PhaseIterating, Done: 1, Total: 4})
	report(mandel.Progress{Phase: mandel.PhaseIterating, Done: 2, Total: 4})
	report(mandel.Progress{Phase: mandel.PhaseDone, Done: 1, Total: 1})
	out := buf.String()
	if strings.Count(out, "msg=progress") != 2 {
		t.Fatalf("info lines: %q", out)
	}
	if !strings.Contains(out, "phase=iterating") || !strings.Contains(out, "phase=done") {
		t.Fatalf("phases missing: %q", out)
	}
}
