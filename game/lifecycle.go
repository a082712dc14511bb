package game

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/sim"
	"github.com/pthm-cable/murmur/telemetry"
)

// newDriver builds a driver from the config and the current seed.
// ErrBackendUnavailable is logged, not returned: the inert driver still
// publishes the initial fields for the viewer.
func (g *Game) newDriver() error {
	opts := sim.OptionsFromConfig(g.cfg, g.seed)
	if g.opts.FixedDelta > 0 {
		opts.FixedDelta = g.opts.FixedDelta
	}

	d, err := sim.New(opts)
	if d == nil {
		return err
	}
	if errors.Is(err, sim.ErrBackendUnavailable) {
		slog.Error("compute backend unavailable, flock is inert", "error", err)
	}

	g.driver = d
	g.frame = d.Last()
	return nil
}

// spawnBirds creates one entity per field slot.
func (g *Game) spawnBirds() {
	side := g.frame.Positions.Side()
	for i := 0; i < g.driver.Count(); i++ {
		agent := components.Agent{Index: i, GridX: i % side, GridY: i / side}
		pose := components.Pose{}
		g.birdMapper.NewEntity(&agent, &pose)
	}
	slog.Info("flock spawned", "birds", g.driver.Count(), "seed", g.seed)
}

// reseed replaces the driver with a freshly randomized one. The live
// parameters carry over; the grid side, and so the entities, do not change.
func (g *Game) reseed() {
	old := g.driver
	params := old.Params()
	g.seed++

	if err := g.newDriver(); err != nil {
		g.seed--
		slog.Error("reseed failed, keeping the current flock", "error", err)
		return
	}
	old.Close()
	if err := g.driver.SetParams(params); err != nil {
		slog.Warn("could not carry parameters over", "error", err)
	}

	g.collector = telemetry.NewCollector(g.opts.StatsWindowSec)
	g.syncPoses()
	slog.Info("flock reseeded", "seed", g.seed)
}
