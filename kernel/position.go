package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/field"
)

// Position integrates prev with the velocity written earlier in the same
// frame and advances the wing-beat phase. Phase runs faster with horizontal
// speed and with climbing; it wraps at PhaseModulus.
func Position(prev field.PositionTexel, vel r3.Vec, delta float64) field.PositionTexel {
	horizontal := math.Sqrt(vel.X*vel.X + vel.Z*vel.Z)
	phase := prev.Phase + delta + horizontal*delta*3 + math.Max(vel.Y, 0)*delta*6

	return field.PositionTexel{
		Pos:   r3.Add(prev.Pos, r3.Scale(PositionScale, r3.Scale(delta, vel))),
		Phase: WrapPhase(phase),
	}
}

// WrapPhase maps phase into [0, PhaseModulus) using floored modulo, so a
// negative phase wraps up rather than staying negative.
func WrapPhase(phase float64) float64 {
	r := phase - PhaseModulus*math.Floor(phase/PhaseModulus)
	if !(r >= 0 && r < PhaseModulus) {
		r = 0
	}
	return r
}
