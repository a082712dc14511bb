// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Flock     FlockConfig     `yaml:"flock"`
	Predator  PredatorConfig  `yaml:"predator"`
	Target    TargetConfig    `yaml:"target"`
	Clock     ClockConfig     `yaml:"clock"`
	Compute   ComputeConfig   `yaml:"compute"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// FlockConfig holds the grid size and the flocking parameters read by the kernels.
type FlockConfig struct {
	GridSide           int     `yaml:"grid_side"` // agents = grid_side²
	Bounds             float64 `yaml:"bounds"`    // half-extent of the cubic domain
	SeparationDistance float64 `yaml:"separation_distance"`
	AlignmentDistance  float64 `yaml:"alignment_distance"`
	CohesionDistance   float64 `yaml:"cohesion_distance"`
	FreedomFactor      float64 `yaml:"freedom_factor"` // carried through, not read by any kernel
	SpeedLimit         float64 `yaml:"speed_limit"`
}

// PredatorConfig maps the pointer sample into predator coordinates.
type PredatorConfig struct {
	InputScale float64 `yaml:"input_scale"` // pointer [-1,1] -> predator = scale * pointer * bounds
}

// TargetConfig describes the circular path the flock steers toward.
type TargetConfig struct {
	Radius    float64 `yaml:"radius"`
	Height    float64 `yaml:"height"`
	TimeScale float64 `yaml:"time_scale"`
}

// ClockConfig holds frame clock parameters.
type ClockConfig struct {
	MaxDelta   float64 `yaml:"max_delta"`   // delta clamp (seconds)
	FixedDelta float64 `yaml:"fixed_delta"` // >0 replaces the wall clock with fixed steps (headless)
}

// ComputeConfig selects how the kernel passes execute.
type ComputeConfig struct {
	Neighbors         string `yaml:"neighbors"`          // brute, grid or auto
	ParallelThreshold int    `yaml:"parallel_threshold"` // agents below this run inline
	Workers           int    `yaml:"workers"`            // 0 = GOMAXPROCS
}

// CameraConfig holds the initial orbit camera placement.
type CameraConfig struct {
	Distance    float64 `yaml:"distance"`
	Yaw         float64 `yaml:"yaw"`
	Pitch       float64 `yaml:"pitch"`
	FovY        float64 `yaml:"fov_y"`
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
}

// TelemetryConfig holds telemetry and logging parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // simulated seconds per stats window
	PerfWindow  int     `yaml:"perf_window"`  // frames in the rolling perf window
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	Count      int     // grid_side²
	ZoneRadius float64 // separation + alignment + cohesion
}

// Validation errors.
var (
	ErrGridSide   = errors.New("flock.grid_side must be >= 1")
	ErrBounds     = errors.New("flock.bounds must be positive")
	ErrDistance   = errors.New("flock distances must be non-negative")
	ErrSpeedLimit = errors.New("flock.speed_limit must be positive")
	ErrMaxDelta   = errors.New("clock.max_delta must be positive")
)

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate checks the values the simulation cannot run without.
func (c *Config) Validate() error {
	f := c.Flock
	if f.GridSide < 1 {
		return ErrGridSide
	}
	if !(f.Bounds > 0) || math.IsInf(f.Bounds, 0) {
		return ErrBounds
	}
	if f.SeparationDistance < 0 || f.AlignmentDistance < 0 || f.CohesionDistance < 0 {
		return ErrDistance
	}
	if !(f.SpeedLimit > 0) {
		return ErrSpeedLimit
	}
	if !(c.Clock.MaxDelta > 0) {
		return ErrMaxDelta
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating Flock in place.
func (c *Config) ComputeDerived() {
	c.Derived.Count = c.Flock.GridSide * c.Flock.GridSide
	c.Derived.ZoneRadius = c.Flock.SeparationDistance + c.Flock.AlignmentDistance + c.Flock.CohesionDistance

	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}
	if c.Compute.Neighbors == "" {
		c.Compute.Neighbors = "auto"
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
