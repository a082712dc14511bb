package renderer

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/components"
)

func nose(tris [3]Triangle) r3.Vec { return tris[0][2] }

func TestBirdNoseFollowsVelocity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		vel := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		pos := r3.Vec{X: rng.Float64() * 100, Y: rng.Float64() * 100, Z: rng.Float64() * 100}
		tris := BirdTriangles(components.Pose{Position: pos, Velocity: vel})

		// Nose sits 30·0.2 ahead of the position along the heading
		want := r3.Add(pos, r3.Scale(30*BirdScale/r3.Norm(vel), vel))
		if d := r3.Norm(r3.Sub(nose(tris), want)); d > 1e-9 {
			t.Fatalf("vel %+v: nose %+v, want %+v", vel, nose(tris), want)
		}
	}
}

func TestBirdStraightUp(t *testing.T) {
	tris := BirdTriangles(components.Pose{Velocity: r3.Vec{Y: 2}})
	got := nose(tris)
	if math.Abs(got.Y-6) > 1e-9 || math.Abs(got.X) > 1e-9 || math.Abs(got.Z) > 1e-9 {
		t.Errorf("expected nose straight up at (0,6,0), got %+v", got)
	}
	for _, tri := range tris {
		for _, v := range tri {
			if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) {
				t.Fatal("NaN vertex for vertical velocity")
			}
		}
	}
}

func TestWingFlap(t *testing.T) {
	level := components.Pose{Velocity: r3.Vec{X: 1}}

	rest := BirdTriangles(level)
	if rest[1][1].Y != 0 || rest[2][1].Y != 0 {
		t.Errorf("expected wings level at phase 0, got %v %v", rest[1][1].Y, rest[2][1].Y)
	}

	level.Phase = math.Pi / 2
	up := BirdTriangles(level)
	if math.Abs(up[1][1].Y-FlapAmplitude) > 1e-12 || math.Abs(up[2][1].Y-FlapAmplitude) > 1e-12 {
		t.Errorf("expected wing tips at %v, got %v %v", FlapAmplitude, up[1][1].Y, up[2][1].Y)
	}
	// Wing span is across the heading: ±4 on Z when flying +X
	if math.Abs(math.Abs(up[1][1].Z)-WingSpan*BirdScale) > 1e-12 {
		t.Errorf("expected wing tip at |z| = %v, got %+v", WingSpan*BirdScale, up[1][1])
	}
}

func TestShade(t *testing.T) {
	if got := Shade(1000, 0.5); got != uint8(math.Round(0.2*255)) {
		t.Errorf("expected base gray at z=1000, got %d", got)
	}
	if got := Shade(-5000, 1); got != 255 {
		t.Errorf("expected clamp to white, got %d", got)
	}
	if got := Shade(100000, 1); got != 0 {
		t.Errorf("expected clamp to black, got %d", got)
	}
	if BirdBase(0, 9) >= BirdBase(8, 9) {
		t.Error("expected later birds to have a lighter base")
	}
}
