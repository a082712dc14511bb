package components

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestPoseHeading(t *testing.T) {
	tests := []struct {
		name       string
		vel        r3.Vec
		yaw, pitch float64
	}{
		{"still", r3.Vec{}, 0, 0},
		{"+x", r3.Vec{X: 2}, 0, 0},
		{"-z", r3.Vec{Z: -1}, math.Pi / 2, 0},
		{"straight up", r3.Vec{Y: 3}, 0, math.Pi / 2},
		{"climbing +x", r3.Vec{X: 1, Y: 1}, 0, math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaw, pitch := Pose{Velocity: tt.vel}.Heading()
			if math.Abs(yaw-tt.yaw) > 1e-12 || math.Abs(pitch-tt.pitch) > 1e-12 {
				t.Errorf("Heading() = (%v, %v), want (%v, %v)", yaw, pitch, tt.yaw, tt.pitch)
			}
		})
	}
}

func TestPoseSpeed(t *testing.T) {
	if s := (Pose{Velocity: r3.Vec{X: 3, Y: 4}}).Speed(); s != 5 {
		t.Errorf("expected speed 5, got %v", s)
	}
}
