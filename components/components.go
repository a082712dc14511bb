// Package components defines the ECS components the viewer mirrors the flock into.
package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Agent links an entity to its slot in the simulation fields.
type Agent struct {
	Index        int // flat field index
	GridX, GridY int
}

// Pose is the viewer's copy of one agent's published state, refreshed
// once per frame after the driver swaps its buffers.
type Pose struct {
	Position r3.Vec
	Velocity r3.Vec
	Phase    float64
}

// Speed returns the velocity magnitude.
func (p Pose) Speed() float64 {
	return r3.Norm(p.Velocity)
}

// Heading returns the yaw (about +Y, from +X toward -Z) and pitch of the
// velocity in radians. A stationary pose faces +X.
func (p Pose) Heading() (yaw, pitch float64) {
	v := p.Velocity
	xz := math.Hypot(v.X, v.Z)
	if xz == 0 && v.Y == 0 {
		return 0, 0
	}
	return math.Atan2(-v.Z, v.X), math.Atan2(v.Y, xz)
}

// Selected marks the agent the HUD reports on.
type Selected struct{}
