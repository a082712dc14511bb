package telemetry

import "math"

// Collector accumulates per-frame samples within time windows and produces FlockStats.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartFrame uint64
	windowStartTime  float64
	started          bool

	// Accumulators for current window
	frames            int
	speedMax          float64
	polarizationSum   float64
	targetDistanceSum float64

	// summarize computes the full window-end statistics.
	summarize func(Snapshot) FlockStats
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulated seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if !(windowDurationSec > 0) {
		windowDurationSec = 10
	}
	return &Collector{windowDurationSec: windowDurationSec, summarize: ComputeFlockStats}
}

// WindowDuration returns the window length in simulated seconds.
func (c *Collector) WindowDuration() float64 {
	return c.windowDurationSec
}

// Observe records one frame. When the frame closes a window it returns the
// window's stats and true, and the next frame starts a new window.
//
// Each frame only feeds the running terms (max speed, polarization, target
// distance). The neighbor and predator scans run once, at window close.
func (c *Collector) Observe(s Snapshot) (FlockStats, bool) {
	if !c.started {
		c.windowStartFrame = s.Frame
		c.windowStartTime = s.Time
		c.started = true
	}

	sample := ComputeFrameSample(s)
	c.frames++
	c.speedMax = math.Max(c.speedMax, sample.SpeedMax)
	c.polarizationSum += sample.Polarization
	c.targetDistanceSum += sample.TargetDistance

	if s.Time-c.windowStartTime < c.windowDurationSec {
		return FlockStats{}, false
	}

	stats := c.summarize(s)
	stats.WindowStartFrame = c.windowStartFrame
	stats.Frames = c.frames
	stats.SpeedMax = c.speedMax
	stats.PolarizationAvg = c.polarizationSum / float64(c.frames)
	stats.TargetDistanceAvg = c.targetDistanceSum / float64(c.frames)

	c.reset()
	return stats, true
}

// reset clears the accumulators for a new window.
func (c *Collector) reset() {
	c.started = false
	c.frames = 0
	c.speedMax = 0
	c.polarizationSum = 0
	c.targetDistanceSum = 0
}
