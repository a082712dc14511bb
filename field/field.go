// Package field holds the double-buffered Position and Velocity fields.
//
// Each field is a dense N×N grid of texels. Both fields share one
// current/next index, so a swap promotes both at once and no reader can
// observe one field from frame t and the other from frame t-1.
package field

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Initial velocity range per axis is [-InitialSpeedSpread/2, +InitialSpeedSpread/2].
const InitialSpeedSpread = 5.0

// Errors returned by New.
var (
	ErrInvalidSide   = errors.New("grid side must be >= 1")
	ErrInvalidBounds = errors.New("bounds must be positive and finite")
)

// PositionTexel is one agent's entry in the Position field.
type PositionTexel struct {
	Pos   r3.Vec
	Phase float64 // animation angle, wraps at the phase modulus
}

// VelocityTexel is one agent's entry in the Velocity field.
type VelocityTexel struct {
	Vel      r3.Vec
	Reserved float64 // always 1.0
}

// Buffer is a fixed-size pair of slices with a current/next role. The
// current index belongs to the owning Store, so every Buffer of a Store
// flips on the same Swap.
type Buffer[T any] struct {
	bufs    [2][]T
	current *int
}

func newBuffer[T any](n int, current *int) Buffer[T] {
	return Buffer[T]{bufs: [2][]T{make([]T, n), make([]T, n)}, current: current}
}

// Current returns the half readers see this frame.
func (b Buffer[T]) Current() []T { return b.bufs[*b.current] }

// Next returns the half the running pass writes.
func (b Buffer[T]) Next() []T { return b.bufs[1-*b.current] }

// Store owns both fields and decides which half of each buffer is current.
type Store struct {
	side     int
	current  int
	position Buffer[PositionTexel]
	velocity Buffer[VelocityTexel]
}

// New creates a store with randomized initial state: positions uniform in
// [-bounds, +bounds]³ with phase 1, velocities uniform in [-2.5, 2.5]³.
func New(side int, bounds float64, rng *rand.Rand) (*Store, error) {
	if side < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSide, side)
	}
	if !(bounds > 0) || math.IsInf(bounds, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidBounds, bounds)
	}

	s := newStore(side)
	pos := s.position.Current()
	vel := s.velocity.Current()
	for i := range pos {
		pos[i] = PositionTexel{
			Pos: r3.Vec{
				X: (rng.Float64()*2 - 1) * bounds,
				Y: (rng.Float64()*2 - 1) * bounds,
				Z: (rng.Float64()*2 - 1) * bounds,
			},
			Phase: 1,
		}
	}
	for i := range vel {
		vel[i] = VelocityTexel{
			Vel: r3.Vec{
				X: (rng.Float64() - 0.5) * InitialSpeedSpread,
				Y: (rng.Float64() - 0.5) * InitialSpeedSpread,
				Z: (rng.Float64() - 0.5) * InitialSpeedSpread,
			},
			Reserved: 1,
		}
	}
	return s, nil
}

// NewUniform creates a store where every agent starts at pos with velocity vel.
func NewUniform(side int, pos, vel r3.Vec) (*Store, error) {
	if side < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSide, side)
	}
	s := newStore(side)
	for i := range s.position.Current() {
		s.position.Current()[i] = PositionTexel{Pos: pos, Phase: 1}
		s.velocity.Current()[i] = VelocityTexel{Vel: vel, Reserved: 1}
	}
	return s, nil
}

func newStore(side int) *Store {
	n := side * side
	s := &Store{side: side}
	s.position = newBuffer[PositionTexel](n, &s.current)
	s.velocity = newBuffer[VelocityTexel](n, &s.current)
	return s
}

// Side returns the grid side N.
func (s *Store) Side() int { return s.side }

// Count returns the number of agents (N²).
func (s *Store) Count() int { return s.side * s.side }

// Index returns the flat index of grid coordinate (x, y).
func (s *Store) Index(x, y int) int { return y*s.side + x }

// Coord returns the grid coordinate of flat index i.
func (s *Store) Coord(i int) (x, y int) { return i % s.side, i / s.side }

// Set overwrites one agent in the current buffers.
// Only for seeding scenarios before the first frame.
func (s *Store) Set(i int, p PositionTexel, v VelocityTexel) {
	s.position.Current()[i] = p
	s.velocity.Current()[i] = v
}

// VelocityPass returns the frozen current fields and the writable next velocity buffer.
func (s *Store) VelocityPass() (pos []PositionTexel, vel []VelocityTexel, out []VelocityTexel) {
	return s.position.Current(), s.velocity.Current(), s.velocity.Next()
}

// PositionPass returns the current positions, the freshly written next
// velocities and the writable next position buffer.
func (s *Store) PositionPass() (pos []PositionTexel, newVel []VelocityTexel, out []PositionTexel) {
	return s.position.Current(), s.velocity.Next(), s.position.Next()
}

// Swap promotes next to current for both fields.
func (s *Store) Swap() {
	s.current = 1 - s.current
}

// CurrentPosition returns a read-only view of the current Position field.
func (s *Store) CurrentPosition() View[PositionTexel] {
	return View[PositionTexel]{data: s.position.Current(), side: s.side}
}

// CurrentVelocity returns a read-only view of the current Velocity field.
func (s *Store) CurrentVelocity() View[VelocityTexel] {
	return View[VelocityTexel]{data: s.velocity.Current(), side: s.side}
}
