// Package sim drives the flock: one Step per rendered frame runs the
// velocity pass, waits for it to finish for every agent, runs the position
// pass, swaps the field buffers and publishes the new current fields.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/field"
	"github.com/pthm-cable/murmur/kernel"
	"github.com/pthm-cable/murmur/telemetry"
)

// ErrBackendUnavailable wraps failures to set up the compute backend. New
// still returns a usable, inert driver alongside it.
var ErrBackendUnavailable = errors.New("compute backend unavailable")

// InputSample is the per-frame control input, normalized to [-1, 1] per axis.
type InputSample struct {
	PointerX, PointerY float64
}

// clamped returns the sample limited to [-1, 1]; NaN reads as centered.
func (in InputSample) clamped() InputSample {
	return InputSample{PointerX: clampUnit(in.PointerX), PointerY: clampUnit(in.PointerY)}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// Options configures a Driver.
type Options struct {
	GridSide int
	Bounds   float64 // half-extent of the domain; scales predator input
	Params   kernel.Params

	PredatorScale   float64 // pointer to world scale per axis
	TargetRadius    float64
	TargetHeight    float64
	TargetTimeScale float64

	MaxDelta   float64 // seconds
	FixedDelta float64 // seconds; > 0 steps a private ManualClock by this much each frame

	Neighbors         string // kernel.IndexBrute, IndexGrid or IndexAuto
	ParallelThreshold int
	Workers           int // 0 = GOMAXPROCS

	Seed       int64
	PerfWindow int

	// Clock defaults to a MonotonicClock, or a ManualClock when FixedDelta > 0.
	Clock Clock

	// Store replaces the randomized initial fields when set.
	Store *field.Store
}

// DefaultOptions returns the stock setup: nine agents, bounds 800.
func DefaultOptions() Options {
	return Options{
		GridSide:          3,
		Bounds:            800,
		Params:            kernel.DefaultParams(),
		PredatorScale:     0.5,
		TargetRadius:      500,
		TargetHeight:      200,
		TargetTimeScale:   0.2,
		MaxDelta:          1.0,
		Neighbors:         kernel.IndexAuto,
		ParallelThreshold: 64,
		PerfWindow:        60,
	}
}

// OptionsFromConfig maps the flock, predator, target, clock and compute
// sections of cfg onto Options.
func OptionsFromConfig(cfg *config.Config, seed int64) Options {
	f := cfg.Flock
	return Options{
		GridSide: f.GridSide,
		Bounds:   f.Bounds,
		Params: kernel.Params{
			SeparationDistance: f.SeparationDistance,
			AlignmentDistance:  f.AlignmentDistance,
			CohesionDistance:   f.CohesionDistance,
			FreedomFactor:      f.FreedomFactor,
			SpeedLimit:         f.SpeedLimit,
		},
		PredatorScale:     cfg.Predator.InputScale,
		TargetRadius:      cfg.Target.Radius,
		TargetHeight:      cfg.Target.Height,
		TargetTimeScale:   cfg.Target.TimeScale,
		MaxDelta:          cfg.Clock.MaxDelta,
		FixedDelta:        cfg.Clock.FixedDelta,
		Neighbors:         cfg.Compute.Neighbors,
		ParallelThreshold: cfg.Compute.ParallelThreshold,
		Workers:           cfg.Compute.Workers,
		Seed:              seed,
		PerfWindow:        cfg.Telemetry.PerfWindow,
	}
}

// Frame is what Step publishes. The views stay valid until the next Step.
type Frame struct {
	Number uint64
	Time   float64 // seconds since the driver started
	Delta  float64 // clamped seconds since the previous frame

	Predator r3.Vec
	Target   r3.Vec

	Positions  field.View[field.PositionTexel]
	Velocities field.View[field.VelocityTexel]
}

// Driver owns the fields and runs the per-frame pass sequence.
//
// Step must be called from one goroutine. Params and the setters may be
// called from any goroutine; Step reads a copy once per frame.
type Driver struct {
	opts  Options
	store *field.Store
	index kernel.Index
	pool  *pool
	perf  *telemetry.PerfCollector

	clock      Clock
	manual     *ManualClock // non-nil when stepping a fixed delta
	start      time.Duration
	lastNow    time.Duration
	frame      uint64
	inert      bool
	lastFrame  Frame
	velocityIn kernel.VelocityInput

	mu     sync.RWMutex
	params kernel.Params
}

// New builds the fields and the compute backend.
//
// An invalid grid side, bounds or parameter set returns a nil driver. A
// backend failure (unknown neighbor mode, invalid worker count) returns an
// inert driver together with an error wrapping ErrBackendUnavailable: its
// fields hold the initial state and Step never advances them.
func New(opts Options) (*Driver, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	store := opts.Store
	if store == nil {
		var err error
		store, err = field.New(opts.GridSide, opts.Bounds, rand.New(rand.NewSource(opts.Seed)))
		if err != nil {
			return nil, fmt.Errorf("initializing fields: %w", err)
		}
	}
	opts.GridSide = store.Side()

	if !(opts.MaxDelta > 0) {
		opts.MaxDelta = 1.0
	}

	d := &Driver{
		opts:   opts,
		store:  store,
		perf:   telemetry.NewPerfCollector(opts.PerfWindow),
		params: opts.Params,
		clock:  opts.Clock,
	}
	if d.clock == nil {
		if opts.FixedDelta > 0 {
			d.manual = &ManualClock{}
			d.clock = d.manual
		} else {
			d.clock = NewMonotonicClock()
		}
	}
	d.start = d.clock.Now()
	d.lastNow = d.start
	d.lastFrame = d.publish(0, 0)

	if err := d.initBackend(); err != nil {
		d.inert = true
		return d, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	return d, nil
}

func (d *Driver) initBackend() error {
	if d.opts.Workers < 0 {
		return fmt.Errorf("invalid worker count %d", d.opts.Workers)
	}
	index, err := kernel.NewIndex(d.opts.Neighbors, d.store.Count())
	if err != nil {
		return err
	}
	d.index = index
	d.pool = newPool(d.opts.Workers, d.opts.ParallelThreshold, d.store.Count())
	return nil
}

// Inert reports whether the backend failed to initialize.
func (d *Driver) Inert() bool { return d.inert }

// Count returns the number of agents.
func (d *Driver) Count() int { return d.store.Count() }

// Bounds returns the domain half-extent.
func (d *Driver) Bounds() float64 { return d.opts.Bounds }

// Perf returns the step timing collector.
func (d *Driver) Perf() *telemetry.PerfCollector { return d.perf }

// Last returns the most recently published frame.
func (d *Driver) Last() Frame { return d.lastFrame }

// Step advances the simulation by one frame and publishes the result.
// An inert driver republishes its unchanged initial fields.
func (d *Driver) Step(in InputSample) Frame {
	if d.inert {
		return d.lastFrame
	}

	d.perf.StartStep()
	defer d.perf.EndStep()

	d.perf.StartPhase(telemetry.PhaseClock)
	if d.manual != nil {
		d.manual.Advance(time.Duration(d.opts.FixedDelta * float64(time.Second)))
	}
	now := d.clock.Now()
	delta := ClampDelta((now - d.lastNow).Seconds(), d.opts.MaxDelta)
	d.lastNow = now
	elapsed := (now - d.start).Seconds()

	d.perf.StartPhase(telemetry.PhaseParams)
	params := d.Params()
	uniforms := kernel.Uniforms{
		Delta:    delta,
		Predator: d.PredatorPosition(in),
		Target:   d.TargetPosition(elapsed),
	}

	d.perf.StartPhase(telemetry.PhaseNeighbors)
	pos, vel, nextVel := d.store.VelocityPass()
	d.index.Rebuild(pos, params.ZoneRadius())

	d.perf.StartPhase(telemetry.PhaseVelocity)
	d.velocityIn = kernel.VelocityInput{
		Positions:  pos,
		Velocities: vel,
		Neighbors:  d.index,
		Params:     params,
		Uniforms:   uniforms,
	}
	d.pool.run(len(nextVel), func(start, end int, scratch *kernel.Scratch) {
		for i := start; i < end; i++ {
			nextVel[i] = kernel.Velocity(&d.velocityIn, i, scratch)
		}
	})

	// The velocity pass has finished for every agent.
	d.perf.StartPhase(telemetry.PhasePosition)
	prevPos, newVel, nextPos := d.store.PositionPass()
	d.pool.run(len(nextPos), func(start, end int, _ *kernel.Scratch) {
		for i := start; i < end; i++ {
			nextPos[i] = kernel.Position(prevPos[i], newVel[i].Vel, delta)
		}
	})

	d.perf.StartPhase(telemetry.PhaseSwap)
	d.store.Swap()
	d.frame++

	f := d.publish(elapsed, delta)
	f.Predator = uniforms.Predator
	f.Target = uniforms.Target
	d.lastFrame = f
	return f
}

func (d *Driver) publish(elapsed, delta float64) Frame {
	return Frame{
		Number:     d.frame,
		Time:       elapsed,
		Delta:      delta,
		Positions:  d.store.CurrentPosition(),
		Velocities: d.store.CurrentVelocity(),
	}
}

// ClampDelta limits a frame delta to [0, maxDelta].
func ClampDelta(delta, maxDelta float64) float64 {
	if !(delta > 0) {
		return 0
	}
	return math.Min(delta, maxDelta)
}

// PredatorPosition maps a pointer sample into world units. The vertical
// axis is inverted: pointer-up (+y) puts the predator at world-down (-Y).
// The predator stays on the z = 0 plane.
func (d *Driver) PredatorPosition(in InputSample) r3.Vec {
	in = in.clamped()
	s := d.opts.PredatorScale * d.opts.Bounds
	return r3.Vec{X: in.PointerX * s, Y: -in.PointerY * s}
}

// TargetPosition returns the point on the target orbit at elapsed seconds.
func (d *Driver) TargetPosition(elapsed float64) r3.Vec {
	t := elapsed * d.opts.TargetTimeScale
	return r3.Vec{
		X: math.Sin(t) * d.opts.TargetRadius,
		Y: d.opts.TargetHeight,
		Z: math.Cos(t) * d.opts.TargetRadius,
	}
}

// Params returns a copy of the live parameters.
func (d *Driver) Params() kernel.Params {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.params
}

// SetParams replaces the live parameters; takes effect next Step.
func (d *Driver) SetParams(p kernel.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	d.params = p
	d.mu.Unlock()
	slog.Debug("params updated",
		"separation", p.SeparationDistance,
		"alignment", p.AlignmentDistance,
		"cohesion", p.CohesionDistance,
		"zone_radius", p.ZoneRadius(),
	)
	return nil
}

func (d *Driver) update(fn func(*kernel.Params)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.params
	fn(&p)
	if err := p.Validate(); err != nil {
		return err
	}
	d.params = p
	return nil
}

// SetSeparationDistance sets one of the three distances summed into the zone radius.
func (d *Driver) SetSeparationDistance(v float64) error {
	return d.update(func(p *kernel.Params) { p.SeparationDistance = v })
}

// SetAlignmentDistance sets one of the three distances summed into the zone radius.
func (d *Driver) SetAlignmentDistance(v float64) error {
	return d.update(func(p *kernel.Params) { p.AlignmentDistance = v })
}

// SetCohesionDistance sets one of the three distances summed into the zone radius.
func (d *Driver) SetCohesionDistance(v float64) error {
	return d.update(func(p *kernel.Params) { p.CohesionDistance = v })
}

// SetFreedomFactor stores the freedom factor. No pass reads it.
func (d *Driver) SetFreedomFactor(v float64) error {
	return d.update(func(p *kernel.Params) { p.FreedomFactor = v })
}

// Close stops the worker pool. The last frame stays readable.
func (d *Driver) Close() {
	if d.pool != nil {
		d.pool.stop()
	}
}
