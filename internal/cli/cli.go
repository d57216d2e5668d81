// Package cli holds the configuration and logging setup shared by the
// deepzoom binaries.
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/internal/logbridge"
	"github.com/marben/deepzoom/session"
)

const EnvPrefix = "DEEPZOOM"

func setDefaults(v *viper.Viper) {
	d := session.DefaultConfig()
	v.SetDefault("tau_sq", d.TauSq)
	v.SetDefault("bla_fraction", d.BLAFraction)
	v.SetDefault("bla_min_log2_dc_max", d.BLAMinLog2DcMax)
	v.SetDefault("escape_radius_sq", d.EscapeRadiusSq)
	v.SetDefault("iteration_multiplier", d.IterationMultiplier)
	v.SetDefault("iteration_power", d.IterationPower)
	v.SetDefault("max_iterations", d.MaxIterations)
	v.SetDefault("tile_size", d.TileSize)
	v.SetDefault("row_sets", d.RowSets)
	v.SetDefault("iterations_per_dispatch", d.IterationsPerDispatch)
	v.SetDefault("glitch.max_depth", d.Glitch.MaxDepth)
	v.SetDefault("glitch.min_cell_size", d.Glitch.MinCellSize)
	v.SetDefault("glitch.max_passes", d.Glitch.MaxPasses)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("log_level", "info")
}

// BindFlags registers the render flags on cmd and binds them to v.
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	f := cmd.PersistentFlags()
	f.String("config", "", "config file (yaml)")
	f.String("log-level", "info", "debug, info, warn or error")
	f.String("backend", "", "cpu or gpu")
	f.Uint32("max-iterations", 0, "iteration budget (0 picks one from the zoom)")
	f.Int("workers", 0, "in-process compute units")
	f.Int("tile-size", 0, "tile edge in pixels (0 picks one from the zoom)")
	f.Float64("tau-sq", 0, "glitch detection threshold")

	for key, name := range map[string]string{
		"log_level":      "log-level",
		"backend":        "backend",
		"max_iterations": "max-iterations",
		"workers":        "workers",
		"tile_size":      "tile-size",
		"tau_sq":         "tau-sq",
	} {
		_ = v.BindPFlag(key, f.Lookup(name))
	}
}

// LoadConfig layers the config file at path (if any) and DEEPZOOM_*
// environment variables over the defaults.
func LoadConfig(v *viper.Viper, path string) (session.Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return session.Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	var cfg session.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return session.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// SetupLogging builds the binary's logger and routes library logs to it.
func SetupLogging(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(lvl)
	mandel.SetLogger(slog.New(logbridge.New(l)))
	return l, nil
}

// Setup loads the config and installs the logger for a cobra command.
func Setup(cmd *cobra.Command, v *viper.Viper) (session.Config, *logrus.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := LoadConfig(v, path)
	if err != nil {
		return session.Config{}, nil, err
	}
	log, err := SetupLogging(v.GetString("log_level"))
	if err != nil {
		return session.Config{}, nil, err
	}
	if f := v.ConfigFileUsed(); f != "" {
		log.WithField("file", f).Info("config loaded")
	}
	return cfg, log, nil
}
