// Package game hosts the flock: it owns the driver, mirrors the published
// fields into an ECS world and draws them.
package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/murmur/camera"
	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/field"
	"github.com/pthm-cable/murmur/renderer"
	"github.com/pthm-cable/murmur/sim"
	"github.com/pthm-cable/murmur/telemetry"
	"github.com/pthm-cable/murmur/ui"
)

// Options configures a Game.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = telemetry.stats_window
	OutputDir      string
	Headless       bool
	FixedDelta     float64 // > 0 overrides clock.fixed_delta
}

// Game holds the driver, the mirrored flock and the viewer state.
type Game struct {
	cfg    *config.Config
	opts   Options
	seed   int64
	driver *sim.Driver
	frame  sim.Frame
	paused bool

	// Mirror of the published fields, one entity per agent
	world       *ecs.World
	birdMapper  *ecs.Map2[components.Agent, components.Pose]
	birdFilter  *ecs.Filter2[components.Agent, components.Pose]
	agentMap    *ecs.Map[components.Agent]
	poseMap     *ecs.Map[components.Pose]
	selectedMap *ecs.Map[components.Selected]
	selected    ecs.Entity
	hasSelected bool

	// Frame copies handed to telemetry
	positions  []field.PositionTexel
	velocities []field.VelocityTexel

	// Telemetry
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.FlockStats)
	lastStats        telemetry.FlockStats
	logStats         bool

	// Viewer (nil when headless)
	camera     *camera.Camera
	scene      *renderer.Scene
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	flockPanel *ui.FlockPanel
	tuning     *ui.TuningPanel
	controls   *ui.ControlsPanel
	inspector  *ui.Inspector
	overlays   *ui.OverlayRegistry
	pointer    sim.InputSample

	screenWidth, screenHeight float32
}

// NewGameWithOptions builds the driver and the mirror world. A compute
// backend failure is logged and leaves the flock inert; only an invalid
// flock configuration is returned as an error.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	if opts.StatsWindowSec <= 0 {
		opts.StatsWindowSec = cfg.Telemetry.StatsWindow
	}
	if opts.Headless && opts.FixedDelta <= 0 && cfg.Clock.FixedDelta <= 0 {
		// Headless runs step as fast as possible; give them a steady frame.
		fps := cfg.Screen.TargetFPS
		if fps < 1 {
			fps = 60
		}
		opts.FixedDelta = 1 / float64(fps)
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:              cfg,
		opts:             opts,
		seed:             opts.Seed,
		world:            world,
		birdMapper:       ecs.NewMap2[components.Agent, components.Pose](world),
		birdFilter:       ecs.NewFilter2[components.Agent, components.Pose](world),
		agentMap:         ecs.NewMap[components.Agent](world),
		poseMap:          ecs.NewMap[components.Pose](world),
		selectedMap:      ecs.NewMap[components.Selected](world),
		collector:        telemetry.NewCollector(opts.StatsWindowSec),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		screenWidth:      float32(cfg.Screen.Width),
		screenHeight:     float32(cfg.Screen.Height),
	}

	if err := g.newDriver(); err != nil {
		return nil, err
	}
	g.spawnBirds()
	g.syncPoses()

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.driver.Close()
		return nil, fmt.Errorf("opening output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if !opts.Headless {
		g.initViewer()
	}
	return g, nil
}

// initViewer creates the camera, scene and panels.
func (g *Game) initViewer() {
	w, h := g.screenWidth, g.screenHeight
	limit := g.cfg.Flock.SpeedLimit

	g.camera = camera.New(float64(w), float64(h), g.cfg.Camera, g.cfg.Screen.TargetFPS)
	g.scene = renderer.NewScene(g.cfg.Flock.Bounds)
	g.hud = ui.NewHUD()
	g.overlays = ui.NewOverlayRegistry()
	g.flockPanel = ui.NewFlockPanel(int32(w)-250, 10, 240, limit)
	g.perfPanel = ui.NewPerfPanel(10, 100)
	g.controls = ui.NewControlsPanel(10, 100, 220)
	g.inspector = ui.NewInspector(int32(w)-250, 300, 240, limit)
	g.tuning = ui.NewTuningPanel(10, float32(h)-290, 320, g.driver.Params())
}

// Update runs one viewer frame: input, camera smoothing and one step
// unless paused.
func (g *Game) Update() {
	g.handleInput()
	g.camera.Update()
	g.driver.Perf().RecordFrame()

	if !g.paused {
		g.step(g.pointer)
	}
}

// UpdateHeadless steps once with a centered pointer.
func (g *Game) UpdateHeadless() {
	g.step(sim.InputSample{})
}

// SetStatsCallback sets a function called with each closed stats window.
func (g *Game) SetStatsCallback(fn func(telemetry.FlockStats)) {
	g.statsCallback = fn
}

// Frame returns the last published frame.
func (g *Game) Frame() sim.Frame {
	return g.frame
}

// FrameNumber returns the number of frames stepped since the last reseed.
func (g *Game) FrameNumber() uint64 {
	return g.frame.Number
}

// Driver returns the running simulation driver.
func (g *Game) Driver() *sim.Driver {
	return g.driver
}

// LastStats returns the most recent closed stats window.
func (g *Game) LastStats() telemetry.FlockStats {
	return g.lastStats
}

// Unload stops the workers and closes output files.
func (g *Game) Unload() {
	if g.driver != nil {
		g.driver.Close()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
