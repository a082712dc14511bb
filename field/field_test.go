package field

import (
	"errors"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewRandomizedRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s, err := New(16, 800, rng)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if s.Count() != 256 {
		t.Fatalf("expected 256 agents, got %d", s.Count())
	}

	pos := s.CurrentPosition()
	vel := s.CurrentVelocity()
	for i := 0; i < s.Count(); i++ {
		p := pos.Index(i)
		for _, c := range []float64{p.Pos.X, p.Pos.Y, p.Pos.Z} {
			if c < -800 || c > 800 {
				t.Fatalf("agent %d position component %v outside [-800, 800]", i, c)
			}
		}
		if p.Phase != 1 {
			t.Errorf("agent %d: expected initial phase 1, got %v", i, p.Phase)
		}

		v := vel.Index(i)
		for _, c := range []float64{v.Vel.X, v.Vel.Y, v.Vel.Z} {
			if c < -2.5 || c > 2.5 {
				t.Fatalf("agent %d velocity component %v outside [-2.5, 2.5]", i, c)
			}
		}
		if v.Reserved != 1 {
			t.Errorf("agent %d: expected reserved 1, got %v", i, v.Reserved)
		}
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := New(0, 800, rng); !errors.Is(err, ErrInvalidSide) {
		t.Errorf("expected ErrInvalidSide, got %v", err)
	}
	if _, err := New(3, 0, rng); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}
	if _, err := NewUniform(-1, r3.Vec{}, r3.Vec{}); !errors.Is(err, ErrInvalidSide) {
		t.Errorf("expected ErrInvalidSide, got %v", err)
	}
}

func TestSwapPromotesBothFields(t *testing.T) {
	s, err := NewUniform(2, r3.Vec{X: 1}, r3.Vec{Y: 1})
	if err != nil {
		t.Fatal(err)
	}

	_, _, velOut := s.VelocityPass()
	for i := range velOut {
		velOut[i] = VelocityTexel{Vel: r3.Vec{Z: 9}, Reserved: 1}
	}
	_, newVel, posOut := s.PositionPass()
	if newVel[0].Vel.Z != 9 {
		t.Fatalf("position pass should read the freshly written velocities, got %+v", newVel[0])
	}
	for i := range posOut {
		posOut[i] = PositionTexel{Pos: r3.Vec{X: 42}, Phase: 2}
	}

	// Nothing visible before the swap
	if got := s.CurrentPosition().Index(0).Pos.X; got != 1 {
		t.Errorf("current position changed before swap: %v", got)
	}
	if got := s.CurrentVelocity().Index(0).Vel.Y; got != 1 {
		t.Errorf("current velocity changed before swap: %v", got)
	}

	s.Swap()

	if got := s.CurrentPosition().Index(3).Pos.X; got != 42 {
		t.Errorf("expected swapped position 42, got %v", got)
	}
	if got := s.CurrentVelocity().Index(3).Vel.Z; got != 9 {
		t.Errorf("expected swapped velocity 9, got %v", got)
	}
	if s.Count() != 4 {
		t.Errorf("field resized: %d", s.Count())
	}
}

func TestIndexCoordRoundtrip(t *testing.T) {
	s, _ := NewUniform(5, r3.Vec{}, r3.Vec{})
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			gx, gy := s.Coord(s.Index(x, y))
			if gx != x || gy != y {
				t.Errorf("(%d,%d) -> %d -> (%d,%d)", x, y, s.Index(x, y), gx, gy)
			}
		}
	}
}

func TestViewAccessors(t *testing.T) {
	s, _ := NewUniform(3, r3.Vec{}, r3.Vec{})
	s.Set(s.Index(2, 1), PositionTexel{Pos: r3.Vec{X: 7}}, VelocityTexel{Vel: r3.Vec{X: 3}, Reserved: 1})

	view := s.CurrentPosition()
	if view.Side() != 3 || view.Len() != 9 {
		t.Fatalf("unexpected view shape side=%d len=%d", view.Side(), view.Len())
	}
	if view.At(2, 1).Pos.X != 7 {
		t.Errorf("At(2,1) = %+v", view.At(2, 1))
	}

	cp := view.CopyInto(nil)
	cp[5].Pos.X = -1
	if view.Index(5).Pos.X != 7 {
		t.Error("CopyInto must not alias the field")
	}

	count := 0
	for range view.All {
		count++
	}
	if count != 9 {
		t.Errorf("expected 9 texels from All, got %d", count)
	}
}

func TestBuffersShareCurrentIndex(t *testing.T) {
	s, err := NewUniform(1, r3.Vec{X: 1}, r3.Vec{Y: 1})
	if err != nil {
		t.Fatal(err)
	}

	s.position.Next()[0] = PositionTexel{Pos: r3.Vec{X: 7}}
	s.velocity.Next()[0] = VelocityTexel{Vel: r3.Vec{Y: 8}}
	if s.position.Current()[0].Pos.X != 1 || s.velocity.Current()[0].Vel.Y != 1 {
		t.Fatal("writing Next leaked into Current")
	}

	_, _, velOut := s.VelocityPass()
	if &velOut[0] != &s.velocity.Next()[0] {
		t.Error("velocity pass should write the velocity buffer's Next half")
	}
	_, newVel, posOut := s.PositionPass()
	if &newVel[0] != &s.velocity.Next()[0] || &posOut[0] != &s.position.Next()[0] {
		t.Error("position pass should read the new velocities and write the position buffer's Next half")
	}

	s.Swap()
	if s.position.Current()[0].Pos.X != 7 || s.velocity.Current()[0].Vel.Y != 8 {
		t.Errorf("both buffers should flip on one Swap, got %+v %+v",
			s.position.Current()[0], s.velocity.Current()[0])
	}
	if s.position.Next()[0].Pos.X != 1 {
		t.Errorf("old current should become next, got %+v", s.position.Next()[0])
	}
}
