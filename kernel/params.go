// Package kernel implements the two per-agent update passes.
//
// Both kernels are pure functions of explicit inputs: the velocity kernel
// reads the previous frame's fields and writes one new velocity, the
// position kernel integrates the freshly written velocity. Neither touches
// another agent's output, so a pass may be split across goroutines freely.
package kernel

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Constants of the update rule.
const (
	PreyRadius        = 150.0
	PredatorGain      = 100.0
	CohesionGain      = 1.2
	AlignmentGain     = 1.5
	TargetGain        = 1.0
	PositionScale     = 15.0
	PhaseModulus      = 2 * math.Pi * 10
	DefaultSpeedLimit = 5.0
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid flocking parameters")

// Params is the tunable parameter set read by the velocity kernel.
type Params struct {
	SeparationDistance float64
	AlignmentDistance  float64
	CohesionDistance   float64

	// FreedomFactor is accepted and stored but no kernel reads it.
	FreedomFactor float64

	SpeedLimit float64
}

// DefaultParams returns the stock parameter set.
func DefaultParams() Params {
	return Params{
		SeparationDistance: 20,
		AlignmentDistance:  30,
		CohesionDistance:   20,
		FreedomFactor:      0.1,
		SpeedLimit:         DefaultSpeedLimit,
	}
}

// ZoneRadius is the single neighbor-inclusion distance.
func (p Params) ZoneRadius() float64 {
	return p.SeparationDistance + p.AlignmentDistance + p.CohesionDistance
}

// Validate rejects negative distances and non-positive speed limits.
func (p Params) Validate() error {
	for _, d := range []float64{p.SeparationDistance, p.AlignmentDistance, p.CohesionDistance} {
		if d < 0 || math.IsNaN(d) {
			return ErrInvalidParams
		}
	}
	if !(p.SpeedLimit > 0) {
		return ErrInvalidParams
	}
	return nil
}

// Uniforms are the per-frame values shared by every agent in a pass.
type Uniforms struct {
	Delta    float64
	Predator r3.Vec // world units
	Target   r3.Vec
}

// Normalize returns the unit vector of v, or the zero vector when v has
// zero or non-finite length.
func Normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}
