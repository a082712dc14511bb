package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/game"
	"github.com/pthm-cable/murmur/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxFrames   uint64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	fixedDelta  float64

	mu          sync.Mutex
	lastQuality Quality // from the most recent Evaluate call
}

// Quality is the seed-averaged flock shape behind one fitness value.
type Quality struct {
	TargetDistance float64
	Polarization   float64
}

// Skip the first windows while the random initial velocities settle.
const warmupWindows = 2

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxFrames uint64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxFrames:   maxFrames,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 2.0,
		fixedDelta:  1.0 / 60,
	}
}

// LastQuality returns the flock shape from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() Quality {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Seeds run in parallel; the result is their mean.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	quality := make([]Quality, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows := fe.runSimulation(x, s)
			fitness[idx], quality[idx] = computeFitness(windows)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var q Quality
	for i := range fitness {
		total += fitness[i]
		q.TargetDistance += quality[i].TargetDistance
		q.Polarization += quality[i].Polarization
	}
	n := float64(len(fe.seeds))
	q.TargetDistance /= n
	q.Polarization /= n

	fe.mu.Lock()
	fe.lastQuality = q
	fe.mu.Unlock()

	return total / n
}

// runSimulation executes a single fixed-delta headless run and returns
// its closed stats windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) []telemetry.FlockStats {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		FixedDelta:     fe.fixedDelta,
	})
	if err != nil {
		slog.Warn("run rejected", "seed", seed, "error", err)
		return nil
	}
	defer g.Unload()

	var windows []telemetry.FlockStats
	g.SetStatsCallback(func(s telemetry.FlockStats) {
		windows = append(windows, s)
	})
	for g.FrameNumber() < fe.maxFrames {
		g.UpdateHeadless()
	}
	return windows
}

// computeFitness scores one run: mean centroid-to-target distance scaled
// by (2 - polarization), over the windows after warmup. A run with no
// usable window scores +Inf.
func computeFitness(windows []telemetry.FlockStats) (float64, Quality) {
	if len(windows) > warmupWindows {
		windows = windows[warmupWindows:]
	}
	if len(windows) == 0 {
		return math.Inf(1), Quality{}
	}

	var q Quality
	for _, w := range windows {
		q.TargetDistance += w.TargetDistanceAvg
		q.Polarization += w.PolarizationAvg
	}
	n := float64(len(windows))
	q.TargetDistance /= n
	q.Polarization /= n

	return q.TargetDistance * (2 - q.Polarization), q
}
