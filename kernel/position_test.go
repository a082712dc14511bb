package kernel

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/field"
)

func TestPositionIntegratesVelocity(t *testing.T) {
	prev := field.PositionTexel{Pos: r3.Vec{X: 1, Y: 2, Z: 3}, Phase: 0}
	vel := r3.Vec{X: 2, Y: 0, Z: 0}
	delta := 0.5

	got := Position(prev, vel, delta)

	// p + v*delta*15
	if got.Pos != (r3.Vec{X: 16, Y: 2, Z: 3}) {
		t.Errorf("expected (16,2,3), got %+v", got.Pos)
	}
	// phase + delta + |v.xz|*delta*3 = 0 + 0.5 + 2*0.5*3
	if math.Abs(got.Phase-3.5) > 1e-12 {
		t.Errorf("expected phase 3.5, got %v", got.Phase)
	}
}

func TestPositionPhaseClimbOnly(t *testing.T) {
	prev := field.PositionTexel{Phase: 1}
	delta := 0.25

	up := Position(prev, r3.Vec{Y: 4}, delta)
	// 1 + 0.25 + 0 + 4*0.25*6
	if math.Abs(up.Phase-7.25) > 1e-12 {
		t.Errorf("expected phase 7.25 when climbing, got %v", up.Phase)
	}

	down := Position(prev, r3.Vec{Y: -4}, delta)
	// descending adds nothing beyond delta
	if math.Abs(down.Phase-1.25) > 1e-12 {
		t.Errorf("expected phase 1.25 when descending, got %v", down.Phase)
	}
}

func TestPhaseWrapsOverFrames(t *testing.T) {
	vel := r3.Vec{X: 3, Y: 2, Z: 4}
	delta := 0.05
	texel := field.PositionTexel{Phase: 1}

	increment := delta + 5*delta*3 + 2*delta*6
	sum := 1.0
	for k := 0; k < 500; k++ {
		texel = Position(texel, vel, delta)
		sum += increment

		if texel.Phase < 0 || texel.Phase >= PhaseModulus {
			t.Fatalf("frame %d: phase %v outside [0, %v)", k, texel.Phase, PhaseModulus)
		}
		want := math.Mod(sum, PhaseModulus)
		diff := math.Abs(texel.Phase - want)
		// Wrap boundaries may land on either side by rounding
		if diff > 1e-9 && math.Abs(diff-PhaseModulus) > 1e-9 {
			t.Fatalf("frame %d: phase %v, want %v", k, texel.Phase, want)
		}
	}
}

func TestWrapPhase(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{PhaseModulus, 0},
		{PhaseModulus + 2, 2},
		{-1, PhaseModulus - 1},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		got := WrapPhase(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapPhase(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if math.Abs(PhaseModulus-62.83) > 0.01 {
		t.Errorf("phase modulus drifted from 2π·10: %v", PhaseModulus)
	}
}
