package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one simulation step.
const (
	PhaseClock     = "clock"
	PhaseParams    = "params"
	PhaseNeighbors = "neighbors"
	PhaseVelocity  = "velocity_pass"
	PhasePosition  = "position_pass"
	PhaseSwap      = "swap"
)

// Phases lists every phase in step order.
var Phases = []string{
	PhaseClock, PhaseParams, PhaseNeighbors, PhaseVelocity,
	PhasePosition, PhaseSwap,
}

// PerfSample holds timing data for a single step.
type PerfSample struct {
	Step   time.Duration
	Phases map[string]time.Duration
}

// PerfCollector tracks step timings over a rolling window. It is not safe
// for concurrent use; the driver times from the calling goroutine only.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	next        int
	filled      int
	current     map[string]time.Duration
	stepStart   time.Time
	phaseStart  time.Time
	activePhase string

	// Render timing (graphics mode)
	lastFrame     time.Time
	frameDuration time.Duration

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize steps.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
		current:    make(map[string]time.Duration),
		now:        time.Now,
	}
}

// StartStep begins timing a simulation step.
func (p *PerfCollector) StartStep() {
	p.stepStart = p.now()
	p.current = make(map[string]time.Duration, len(Phases))
	p.activePhase = ""
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	t := p.now()
	p.closePhase(t)
	p.phaseStart = t
	p.activePhase = phase
}

// EndStep closes the running phase and records the step.
func (p *PerfCollector) EndStep() {
	t := p.now()
	p.closePhase(t)
	p.activePhase = ""

	p.samples[p.next] = PerfSample{Step: t.Sub(p.stepStart), Phases: p.current}
	p.next = (p.next + 1) % p.windowSize
	if p.filled < p.windowSize {
		p.filled++
	}
}

func (p *PerfCollector) closePhase(t time.Time) {
	if p.activePhase != "" {
		p.current[p.activePhase] += t.Sub(p.phaseStart)
	}
}

// RecordFrame records render frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	t := p.now()
	if !p.lastFrame.IsZero() {
		p.frameDuration = t.Sub(p.lastFrame)
	}
	p.lastFrame = t
}

// Samples returns the number of steps currently in the window.
func (p *PerfCollector) Samples() int {
	return p.filled
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgStep time.Duration
	MinStep time.Duration
	MaxStep time.Duration

	// Average duration and share of the average step, per phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	StepsPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		out.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.filled == 0 {
		return out
	}

	var total time.Duration
	sums := make(map[string]time.Duration)
	for i, s := range p.samples[:p.filled] {
		total += s.Step
		if i == 0 || s.Step < out.MinStep {
			out.MinStep = s.Step
		}
		out.MaxStep = max(out.MaxStep, s.Step)
		for phase, d := range s.Phases {
			sums[phase] += d
		}
	}

	n := time.Duration(p.filled)
	out.AvgStep = total / n
	for phase, sum := range sums {
		avg := sum / n
		out.PhaseAvg[phase] = avg
		if out.AvgStep > 0 {
			out.PhasePct[phase] = float64(avg) / float64(out.AvgStep) * 100
		}
	}
	if out.AvgStep > 0 {
		out.StepsPerSecond = float64(time.Second) / float64(out.AvgStep)
	}
	return out
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_step_us", s.AvgStep.Microseconds(),
		"min_step_us", s.MinStep.Microseconds(),
		"max_step_us", s.MaxStep.Microseconds(),
		"steps_per_sec", int(s.StepsPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgStep.Microseconds()),
		slog.Int64("min_step_us", s.MinStep.Microseconds()),
		slog.Int64("max_step_us", s.MaxStep.Microseconds()),
		slog.Float64("steps_per_sec", s.StepsPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    uint64  `csv:"window_end"`
	AvgStepUS    int64   `csv:"avg_step_us"`
	MinStepUS    int64   `csv:"min_step_us"`
	MaxStepUS    int64   `csv:"max_step_us"`
	StepsPerSec  float64 `csv:"steps_per_sec"`
	FPS          float64 `csv:"fps"`
	ClockPct     float64 `csv:"clock_pct"`
	ParamsPct    float64 `csv:"params_pct"`
	NeighborsPct float64 `csv:"neighbors_pct"`
	VelocityPct  float64 `csv:"velocity_pass_pct"`
	PositionPct  float64 `csv:"position_pass_pct"`
	SwapPct      float64 `csv:"swap_pct"`
}

// ToCSV flattens PerfStats for perf.csv.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgStepUS:    s.AvgStep.Microseconds(),
		MinStepUS:    s.MinStep.Microseconds(),
		MaxStepUS:    s.MaxStep.Microseconds(),
		StepsPerSec:  s.StepsPerSecond,
		FPS:          s.FPS,
		ClockPct:     s.PhasePct[PhaseClock],
		ParamsPct:    s.PhasePct[PhaseParams],
		NeighborsPct: s.PhasePct[PhaseNeighbors],
		VelocityPct:  s.PhasePct[PhaseVelocity],
		PositionPct:  s.PhasePct[PhasePosition],
		SwapPct:      s.PhasePct[PhaseSwap],
	}
}
