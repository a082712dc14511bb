package game

import (
	"github.com/pthm-cable/murmur/sim"
	"github.com/pthm-cable/murmur/telemetry"
)

// step advances the driver once and refreshes everything that reads the
// published fields.
func (g *Game) step(in sim.InputSample) {
	g.frame = g.driver.Step(in)
	g.syncPoses()
	g.observe()
}

// syncPoses copies the published fields into each bird's Pose and into the
// flat copies telemetry and the inspector read.
func (g *Game) syncPoses() {
	positions, velocities := g.frame.Positions, g.frame.Velocities
	g.positions = positions.CopyInto(g.positions)
	g.velocities = velocities.CopyInto(g.velocities)

	query := g.birdFilter.Query()
	for query.Next() {
		agent, pose := query.Get()
		p := positions.Index(agent.Index)
		pose.Position = p.Pos
		pose.Phase = p.Phase
		pose.Velocity = velocities.Index(agent.Index).Vel
	}
}

// observe feeds the frame to the stats collector.
func (g *Game) observe() {
	stats, closed := g.collector.Observe(telemetry.Snapshot{
		Frame:      g.frame.Number,
		Time:       g.frame.Time,
		Positions:  g.positions,
		Velocities: g.velocities,
		Predator:   g.frame.Predator,
		Target:     g.frame.Target,
		ZoneRadius: g.driver.Params().ZoneRadius(),
	})
	if closed {
		g.flushTelemetry(stats)
	}
}
