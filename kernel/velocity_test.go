package kernel

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/field"
)

func TestNormalizeZeroVector(t *testing.T) {
	got := Normalize(r3.Vec{})
	if got != (r3.Vec{}) {
		t.Errorf("expected zero vector, got %+v", got)
	}

	inf := Normalize(r3.Vec{X: math.Inf(1)})
	if inf != (r3.Vec{}) {
		t.Errorf("expected zero vector for infinite input, got %+v", inf)
	}

	unit := Normalize(r3.Vec{X: 3, Y: 4})
	if math.Abs(r3.Norm(unit)-1) > 1e-12 {
		t.Errorf("expected unit length, got %v", r3.Norm(unit))
	}
}

func TestPredatorAvoidanceLocality(t *testing.T) {
	const eps = 1e-6
	predator := r3.Vec{X: 100, Y: 50, Z: 0}
	delta := 0.1

	outside := r3.Vec{X: predator.X - (PreyRadius + eps), Y: predator.Y}
	if got := PredatorAvoidance(outside, predator, delta); got != (r3.Vec{}) {
		t.Errorf("expected no force just outside prey radius, got %+v", got)
	}

	exact := r3.Vec{X: predator.X - PreyRadius, Y: predator.Y}
	if got := PredatorAvoidance(exact, predator, delta); got != (r3.Vec{}) {
		t.Errorf("expected no force exactly at prey radius, got %+v", got)
	}

	inside := r3.Vec{X: predator.X - (PreyRadius - 1), Y: predator.Y}
	force := PredatorAvoidance(inside, predator, delta)
	if force == (r3.Vec{}) {
		t.Fatal("expected a force just inside prey radius")
	}
	toPredator := r3.Sub(predator, inside)
	if r3.Dot(force, toPredator) >= 0 {
		t.Errorf("expected repulsion (force away from predator), got %+v", force)
	}
}

func TestPredatorAvoidanceIsPlanar(t *testing.T) {
	// Depth offset is ignored: an agent far away in Z still feels the predator.
	p := r3.Vec{X: 10, Y: 0, Z: 5000}
	force := PredatorAvoidance(p, r3.Vec{}, 0.5)
	if force.Z != 0 {
		t.Errorf("expected zero depth component, got %v", force.Z)
	}
	if force.X <= 0 {
		t.Errorf("expected push toward +X (away from predator at origin), got %+v", force)
	}

	// dist = 10, f = (100/22500 - 1) * 0.5 * 100
	wantMag := (100.0/(PreyRadius*PreyRadius) - 1.0) * 0.5 * PredatorGain
	if math.Abs(force.X+wantMag) > 1e-12 {
		t.Errorf("expected X component %v, got %v", -wantMag, force.X)
	}
}

func TestPredatorOnTopOfAgent(t *testing.T) {
	p := r3.Vec{X: 3, Y: 4, Z: 7}
	force := PredatorAvoidance(p, r3.Vec{X: 3, Y: 4, Z: -100}, 1)
	if force != (r3.Vec{}) {
		t.Errorf("expected zero force at zero planar distance, got %+v", force)
	}
}

func TestFlockingNoNeighbors(t *testing.T) {
	if got := Flocking(r3.Vec{X: 1}, nil, nil, nil, 0.5); got != (r3.Vec{}) {
		t.Errorf("expected no contribution, got %+v", got)
	}
}

func TestFlockingSelfOnly(t *testing.T) {
	positions := []field.PositionTexel{{Pos: r3.Vec{X: 5, Y: 5, Z: 5}}}
	velocities := []field.VelocityTexel{{Vel: r3.Vec{X: 0, Y: 2, Z: 0}, Reserved: 1}}

	delta := 0.1
	got := Flocking(positions[0].Pos, []int{0}, positions, velocities, delta)
	// Centering vanishes (center == p); alignment follows own heading.
	want := r3.Scale(delta*AlignmentGain, r3.Vec{Y: 1})
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestFlockingCohesionAndAlignment(t *testing.T) {
	positions := []field.PositionTexel{
		{Pos: r3.Vec{X: 0}},
		{Pos: r3.Vec{X: 10}},
	}
	velocities := []field.VelocityTexel{
		{Vel: r3.Vec{Z: 1}},
		{Vel: r3.Vec{Z: 3}},
	}

	got := Flocking(positions[0].Pos, []int{0, 1}, positions, velocities, 1)
	// center (5,0,0) -> +X * 1.2; avg vel (0,0,2) -> +Z * 1.5
	want := r3.Vec{X: CohesionGain, Z: AlignmentGain}
	if math.Abs(got.X-want.X) > 1e-12 || got.Y != 0 || math.Abs(got.Z-want.Z) > 1e-12 {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestSeekTarget(t *testing.T) {
	got := SeekTarget(r3.Vec{}, r3.Vec{Y: 200}, 0.25)
	if got.X != 0 || got.Z != 0 || math.Abs(got.Y-0.25) > 1e-15 {
		t.Errorf("expected (0,0.25,0), got %+v", got)
	}
	if got := SeekTarget(r3.Vec{X: 1}, r3.Vec{X: 1}, 0.25); got != (r3.Vec{}) {
		t.Errorf("expected zero pull at the target, got %+v", got)
	}
}

func TestClampSpeed(t *testing.T) {
	slow := r3.Vec{X: 1, Y: 1}
	if got := ClampSpeed(slow, 5); got != slow {
		t.Errorf("slow vector changed: %+v", got)
	}

	fast := ClampSpeed(r3.Vec{X: 30, Y: 40}, 5)
	if math.Abs(r3.Norm(fast)-5) > 1e-12 {
		t.Errorf("expected speed 5, got %v", r3.Norm(fast))
	}
	if math.Abs(fast.X-3) > 1e-12 || math.Abs(fast.Y-4) > 1e-12 {
		t.Errorf("direction not preserved: %+v", fast)
	}

	if got := ClampSpeed(r3.Vec{X: math.NaN()}, 5); got != (r3.Vec{}) {
		t.Errorf("expected NaN velocity to collapse to zero, got %+v", got)
	}
	if got := ClampSpeed(r3.Vec{Y: math.Inf(-1)}, 5); got != (r3.Vec{}) {
		t.Errorf("expected infinite velocity to collapse to zero, got %+v", got)
	}
}

func randomInput(rng *rand.Rand, n int, spread, speed float64) *VelocityInput {
	positions := make([]field.PositionTexel, n)
	velocities := make([]field.VelocityTexel, n)
	for i := range positions {
		positions[i].Pos = r3.Vec{
			X: (rng.Float64()*2 - 1) * spread,
			Y: (rng.Float64()*2 - 1) * spread,
			Z: (rng.Float64()*2 - 1) * spread,
		}
		velocities[i] = field.VelocityTexel{
			Vel: r3.Vec{
				X: (rng.Float64()*2 - 1) * speed,
				Y: (rng.Float64()*2 - 1) * speed,
				Z: (rng.Float64()*2 - 1) * speed,
			},
			Reserved: 1,
		}
	}
	in := &VelocityInput{
		Positions:  positions,
		Velocities: velocities,
		Neighbors:  &BruteForce{},
		Params:     DefaultParams(),
		Uniforms: Uniforms{
			Delta:    rng.Float64(),
			Predator: r3.Vec{X: (rng.Float64()*2 - 1) * 400, Y: (rng.Float64()*2 - 1) * 400},
			Target:   r3.Vec{X: 500, Y: 200},
		},
	}
	in.Neighbors.Rebuild(positions, in.Params.ZoneRadius())
	return in
}

func TestVelocityNeverExceedsSpeedLimit(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	scratch := NewScratch(64)

	for trial := 0; trial < 50; trial++ {
		// Wide range of speeds, including far above the limit
		in := randomInput(rng, 64, 200, math.Pow(10, float64(trial%6)))
		for i := range in.Positions {
			out := Velocity(in, i, scratch)
			if speed := r3.Norm(out.Vel); speed > in.Params.SpeedLimit*(1+1e-12) {
				t.Fatalf("trial %d agent %d: speed %v exceeds limit", trial, i, speed)
			}
			if out.Reserved != 1 {
				t.Fatalf("reserved slot must be 1, got %v", out.Reserved)
			}
		}
	}
}

func TestVelocityZeroZoneRadiusSkipsFlocking(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	in := randomInput(rng, 16, 50, 2)
	in.Params.SeparationDistance = 0
	in.Params.AlignmentDistance = 0
	in.Params.CohesionDistance = 0
	in.Neighbors.Rebuild(in.Positions, 0)

	scratch := NewScratch(16)
	for i := range in.Positions {
		p := in.Positions[i].Pos
		v := in.Velocities[i].Vel
		v = r3.Add(v, PredatorAvoidance(p, in.Uniforms.Predator, in.Uniforms.Delta))
		v = r3.Add(v, SeekTarget(p, in.Uniforms.Target, in.Uniforms.Delta))
		want := ClampSpeed(v, in.Params.SpeedLimit)

		got := Velocity(in, i, scratch)
		if got.Vel != want {
			t.Errorf("agent %d: expected %+v, got %+v", i, want, got.Vel)
		}
	}
}

func TestVelocityIgnoresFreedomFactor(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	in := randomInput(rng, 9, 60, 3)
	scratch := NewScratch(9)

	before := Velocity(in, 4, scratch)
	in.Params.FreedomFactor = 0.9
	after := Velocity(in, 4, scratch)
	if before != after {
		t.Errorf("freedom factor changed output: %+v vs %+v", before, after)
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if DefaultParams().ZoneRadius() != 70 {
		t.Errorf("expected zone radius 70, got %v", DefaultParams().ZoneRadius())
	}

	bad := DefaultParams()
	bad.CohesionDistance = -1
	if err := bad.Validate(); err == nil {
		t.Error("expected negative distance to fail")
	}
	bad = DefaultParams()
	bad.SpeedLimit = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected zero speed limit to fail")
	}
}

func BenchmarkVelocityBrute(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	in := randomInput(rng, 1024, 400, 3)
	scratch := NewScratch(1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Velocity(in, i%1024, scratch)
	}
}

func BenchmarkVelocityGrid(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	in := randomInput(rng, 1024, 400, 3)
	in.Neighbors = NewHashGrid(1024)
	in.Neighbors.Rebuild(in.Positions, in.Params.ZoneRadius())
	scratch := NewScratch(1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Velocity(in, i%1024, scratch)
	}
}
