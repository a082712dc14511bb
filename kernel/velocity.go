package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/field"
)

// VelocityInput is everything the velocity pass reads. All slices belong to
// the previous frame and are never written during the pass.
type VelocityInput struct {
	Positions  []field.PositionTexel
	Velocities []field.VelocityTexel
	Neighbors  Index
	Params     Params
	Uniforms   Uniforms
}

// Scratch holds per-worker reusable buffers.
type Scratch struct {
	Neighbors []int
}

// NewScratch allocates a scratch buffer sized for count agents.
func NewScratch(count int) *Scratch {
	return &Scratch{Neighbors: make([]int, 0, min(count, 64))}
}

// Velocity computes agent i's new velocity: predator avoidance, flocking,
// target seeking, then the speed clamp.
func Velocity(in *VelocityInput, i int, scratch *Scratch) field.VelocityTexel {
	p := in.Positions[i].Pos
	v := in.Velocities[i].Vel
	dt := in.Uniforms.Delta

	v = r3.Add(v, PredatorAvoidance(p, in.Uniforms.Predator, dt))

	scratch.Neighbors = in.Neighbors.Neighbors(scratch.Neighbors[:0], p, in.Params.ZoneRadius())
	v = r3.Add(v, Flocking(p, scratch.Neighbors, in.Positions, in.Velocities, dt))

	v = r3.Add(v, SeekTarget(p, in.Uniforms.Target, dt))

	return field.VelocityTexel{Vel: ClampSpeed(v, in.Params.SpeedLimit), Reserved: 1}
}

// PredatorAvoidance returns the planar repulsion from a predator at world
// position predator. The depth component of the offset is dropped, matching
// the plane the pointer drives the predator in.
//
// Inside PreyRadius the scale (dist²/r² - 1) is negative, so the unit
// vector toward the predator is flipped into a push away from it.
func PredatorAvoidance(p, predator r3.Vec, delta float64) r3.Vec {
	dir, dist := PredatorOffset(p, predator)
	if !(dist < PreyRadius) {
		return r3.Vec{}
	}
	distSq := dist * dist
	f := (distSq/(PreyRadius*PreyRadius) - 1.0) * delta * PredatorGain
	return r3.Scale(f, Normalize(dir))
}

// PredatorOffset returns the planar offset from p to the predator and its length.
func PredatorOffset(p, predator r3.Vec) (dir r3.Vec, dist float64) {
	dir = r3.Sub(predator, p)
	dir.Z = 0
	return dir, r3.Norm(dir)
}

// Flocking returns the cohesion and alignment terms for an agent at p given
// the indices of its neighbors (itself included when in range). No
// neighbors means no contribution.
func Flocking(p r3.Vec, neighbors []int, positions []field.PositionTexel, velocities []field.VelocityTexel, delta float64) r3.Vec {
	if len(neighbors) == 0 {
		return r3.Vec{}
	}

	var center, avgVel r3.Vec
	for _, j := range neighbors {
		center = r3.Add(center, positions[j].Pos)
		avgVel = r3.Add(avgVel, velocities[j].Vel)
	}
	n := float64(len(neighbors))
	center = divide(center, n)
	avgVel = divide(avgVel, n)

	steer := r3.Scale(delta*CohesionGain, Normalize(r3.Sub(center, p)))
	align := r3.Scale(delta*AlignmentGain, Normalize(avgVel))
	return r3.Add(steer, align)
}

// SeekTarget returns the constant-magnitude pull toward target.
func SeekTarget(p, target r3.Vec, delta float64) r3.Vec {
	return r3.Scale(delta*TargetGain, Normalize(r3.Sub(target, p)))
}

// ClampSpeed rescales v to limit when it is faster. A non-finite v collapses
// to zero rather than leaking NaN into the next frame.
func ClampSpeed(v r3.Vec, limit float64) r3.Vec {
	speed := r3.Norm(v)
	if speed <= limit {
		return v
	}
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return r3.Vec{}
	}
	return r3.Scale(limit, Normalize(v))
}

func divide(v r3.Vec, n float64) r3.Vec {
	return r3.Vec{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}
