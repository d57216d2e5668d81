package session

import (
	"runtime"

	"github.com/marben/deepzoom/bla"
	"github.com/marben/deepzoom/glitch"
	"github.com/marben/deepzoom/gpu"
	"github.com/marben/deepzoom/orbit"
	"github.com/marben/deepzoom/perturb"
)

const (
	BackendCPU = "cpu"
	BackendGPU = "gpu"
)

type GlitchConfig struct {
	MaxDepth    int `yaml:"max_depth" mapstructure:"max_depth"`
	MinCellSize int `yaml:"min_cell_size" mapstructure:"min_cell_size"`
	// MaxPasses of zero allows MaxDepth+1 passes.
	MaxPasses int `yaml:"max_passes" mapstructure:"max_passes"`
}

// Config holds every tunable of a render. Zero fields take the defaults
// of DefaultConfig.
type Config struct {
	TauSq       float64 `yaml:"tau_sq" mapstructure:"tau_sq"`
	BLAFraction float64 `yaml:"bla_fraction" mapstructure:"bla_fraction"`
	// BLA tables are built only when log2(dc_max) is below this.
	BLAMinLog2DcMax float64 `yaml:"bla_min_log2_dc_max" mapstructure:"bla_min_log2_dc_max"`
	EscapeRadiusSq  float64 `yaml:"escape_radius_sq" mapstructure:"escape_radius_sq"`

	IterationMultiplier float64 `yaml:"iteration_multiplier" mapstructure:"iteration_multiplier"`
	IterationPower      float64 `yaml:"iteration_power" mapstructure:"iteration_power"`
	// MaxIterations overrides the zoom heuristic when non-zero.
	MaxIterations uint32 `yaml:"max_iterations" mapstructure:"max_iterations"`

	// TileSize of zero picks 128 px, or 64 px past 1e10 zoom.
	TileSize              int    `yaml:"tile_size" mapstructure:"tile_size"`
	RowSets               int    `yaml:"row_sets" mapstructure:"row_sets"`
	IterationsPerDispatch uint32 `yaml:"iterations_per_dispatch" mapstructure:"iterations_per_dispatch"`

	Glitch GlitchConfig `yaml:"glitch" mapstructure:"glitch"`

	// Workers is the number of in-process compute units of the cpu backend.
	Workers int    `yaml:"workers" mapstructure:"workers"`
	Backend string `yaml:"backend" mapstructure:"backend"`
}

func DefaultConfig() Config {
	return Config{
		TauSq:                 perturb.DefaultTauSq,
		BLAFraction:           bla.DefaultFraction,
		BLAMinLog2DcMax:       -80,
		EscapeRadiusSq:        orbit.DefaultEscapeRadiusSq,
		IterationMultiplier:   200,
		IterationPower:        2.5,
		RowSets:               gpu.DefaultRowSets,
		IterationsPerDispatch: gpu.DefaultIterationsPerDispatch,
		Glitch: GlitchConfig{
			MaxDepth:    glitch.DefaultMaxDepth,
			MinCellSize: glitch.DefaultMinCellSize,
		},
		Workers: runtime.GOMAXPROCS(0),
		Backend: BackendCPU,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TauSq <= 0 {
		c.TauSq = d.TauSq
	}
	if c.BLAFraction <= 0 {
		c.BLAFraction = d.BLAFraction
	}
	if c.BLAMinLog2DcMax == 0 {
		c.BLAMinLog2DcMax = d.BLAMinLog2DcMax
	}
	if c.EscapeRadiusSq <= 0 {
		c.EscapeRadiusSq = d.EscapeRadiusSq
	}
	if c.IterationMultiplier <= 0 {
		c.IterationMultiplier = d.IterationMultiplier
	}
	if c.IterationPower <= 0 {
		c.IterationPower = d.IterationPower
	}
	if c.RowSets <= 0 {
		c.RowSets = d.RowSets
	}
	if c.IterationsPerDispatch == 0 {
		c.IterationsPerDispatch = d.IterationsPerDispatch
	}
	if c.Glitch.MaxDepth <= 0 {
		c.Glitch.MaxDepth = d.Glitch.MaxDepth
	}
	if c.Glitch.MinCellSize <= 0 {
		c.Glitch.MinCellSize = d.Glitch.MinCellSize
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	return c
}
