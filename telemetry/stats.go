// Package telemetry provides flock statistics, performance timing and CSV output.
package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/murmur/field"
	"github.com/pthm-cable/murmur/kernel"
)

// FlockStats holds aggregated statistics for a time window.
type FlockStats struct {
	WindowStartFrame uint64  `csv:"-"`
	WindowEndFrame   uint64  `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`
	Frames           int     `csv:"frames"`
	Agents           int     `csv:"agents"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"` // max over every frame in the window

	// Shape of the flock (sampled at window end)
	Polarization   float64 `csv:"polarization"`    // |mean unit heading|, 1 = all aligned
	Spread         float64 `csv:"spread"`          // mean distance to centroid
	TargetDistance float64 `csv:"target_distance"` // centroid to target
	MeanNeighbors  float64 `csv:"mean_neighbors"`  // agents within zone radius, self included
	NearPredator   int     `csv:"near_predator"`   // agents inside the prey radius

	// Averaged over the window
	PolarizationAvg   float64 `csv:"polarization_avg"`
	TargetDistanceAvg float64 `csv:"target_distance_avg"`
}

// Snapshot is the per-frame input to the statistics.
type Snapshot struct {
	Frame      uint64
	Time       float64
	Positions  []field.PositionTexel
	Velocities []field.VelocityTexel
	Predator   r3.Vec
	Target     r3.Vec
	ZoneRadius float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats calculates mean, std and percentiles from speed values.
func ComputeSpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.PopStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// Polarization returns |mean of unit headings|: 1 when every agent flies the
// same way, near 0 for random headings. Stationary agents are skipped.
func Polarization(velocities []field.VelocityTexel) float64 {
	var sum r3.Vec
	moving := 0
	for _, v := range velocities {
		u := kernel.Normalize(v.Vel)
		if u == (r3.Vec{}) {
			continue
		}
		sum = r3.Add(sum, u)
		moving++
	}
	if moving == 0 {
		return 0
	}
	return r3.Norm(sum) / float64(moving)
}

// Centroid returns the mean position.
func Centroid(positions []field.PositionTexel) r3.Vec {
	if len(positions) == 0 {
		return r3.Vec{}
	}
	xs := make([]float64, len(positions))
	ys := make([]float64, len(positions))
	zs := make([]float64, len(positions))
	for i, p := range positions {
		xs[i], ys[i], zs[i] = p.Pos.X, p.Pos.Y, p.Pos.Z
	}
	return r3.Vec{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)}
}

// FrameSample holds the per-frame terms a Collector accumulates.
type FrameSample struct {
	SpeedMax       float64
	Polarization   float64
	TargetDistance float64
}

// ComputeFrameSample computes the linear-time per-frame terms of a snapshot.
func ComputeFrameSample(s Snapshot) FrameSample {
	if len(s.Positions) == 0 {
		return FrameSample{}
	}
	var speedMax float64
	for _, v := range s.Velocities {
		speedMax = math.Max(speedMax, r3.Norm(v.Vel))
	}
	return FrameSample{
		SpeedMax:       speedMax,
		Polarization:   Polarization(s.Velocities),
		TargetDistance: r3.Norm(r3.Sub(s.Target, Centroid(s.Positions))),
	}
}

// ComputeFlockStats computes the instantaneous statistics of one snapshot.
// Window fields (frames, averages, max speed) are left to the Collector.
func ComputeFlockStats(s Snapshot) FlockStats {
	n := len(s.Positions)
	out := FlockStats{
		WindowEndFrame: s.Frame,
		SimTimeSec:     s.Time,
		Agents:         n,
	}
	if n == 0 {
		return out
	}

	speeds := make([]float64, len(s.Velocities))
	for i, v := range s.Velocities {
		speeds[i] = r3.Norm(v.Vel)
	}
	out.SpeedMean, out.SpeedStd, out.SpeedP10, out.SpeedP50, out.SpeedP90 = ComputeSpeedStats(speeds)
	out.SpeedMax = maxOf(speeds)

	out.Polarization = Polarization(s.Velocities)

	centroid := Centroid(s.Positions)
	var spread float64
	for _, p := range s.Positions {
		spread += r3.Norm(r3.Sub(p.Pos, centroid))
	}
	out.Spread = spread / float64(n)
	out.TargetDistance = r3.Norm(r3.Sub(s.Target, centroid))

	// Same brute-force predicates as the kernels
	var neighbors int
	for i := range s.Positions {
		for j := range s.Positions {
			if r3.Norm(r3.Sub(s.Positions[i].Pos, s.Positions[j].Pos)) < s.ZoneRadius {
				neighbors++
			}
		}
		if _, d := kernel.PredatorOffset(s.Positions[i].Pos, s.Predator); d < kernel.PreyRadius {
			out.NearPredator++
		}
	}
	out.MeanNeighbors = float64(neighbors) / float64(n)

	out.PolarizationAvg = out.Polarization
	out.TargetDistanceAvg = out.TargetDistance
	return out
}

func maxOf(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		m = math.Max(m, v)
	}
	if math.IsInf(m, -1) {
		return 0
	}
	return m
}

// LogValue implements slog.LogValuer for structured logging.
func (s FlockStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartFrame),
		slog.Uint64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("frames", s.Frames),
		slog.Int("agents", s.Agents),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("polarization", s.Polarization),
		slog.Float64("spread", s.Spread),
		slog.Float64("target_distance", s.TargetDistance),
		slog.Float64("mean_neighbors", s.MeanNeighbors),
		slog.Int("near_predator", s.NearPredator),
		slog.Float64("polarization_avg", s.PolarizationAvg),
		slog.Float64("target_distance_avg", s.TargetDistanceAvg),
	)
}

// LogStats logs the window stats using slog.
func (s FlockStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"frames", s.Frames,
		"agents", s.Agents,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_max", s.SpeedMax,
		"polarization", s.Polarization,
		"spread", s.Spread,
		"target_distance", s.TargetDistance,
		"mean_neighbors", s.MeanNeighbors,
		"near_predator", s.NearPredator,
	)
}
