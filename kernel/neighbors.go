package kernel

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/field"
)

// Neighbor index modes.
const (
	IndexBrute = "brute"
	IndexGrid  = "grid"
	IndexAuto  = "auto"
)

// AutoGridThreshold is the agent count above which "auto" picks the hash grid.
const AutoGridThreshold = 256

// ErrUnknownIndex is returned by NewIndex for an unrecognized mode.
var ErrUnknownIndex = errors.New("unknown neighbor index")

// Index answers "which agents are strictly closer than radius to p".
// Results are agent indices in ascending order, so every implementation
// accumulates neighbors in the same order and produces identical sums.
type Index interface {
	// Rebuild snapshots the positions for the coming pass.
	Rebuild(positions []field.PositionTexel, radius float64)
	// Neighbors appends matching indices to dst and returns it.
	Neighbors(dst []int, p r3.Vec, radius float64) []int
}

// NewIndex creates the index for mode over count agents.
func NewIndex(mode string, count int) (Index, error) {
	switch mode {
	case IndexBrute:
		return &BruteForce{}, nil
	case IndexGrid:
		return NewHashGrid(count), nil
	case IndexAuto, "":
		if count > AutoGridThreshold {
			return NewHashGrid(count), nil
		}
		return &BruteForce{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, mode)
	}
}

// inZone is the single distance predicate shared by every index.
func inZone(p, q r3.Vec, radius float64) bool {
	return r3.Norm(r3.Sub(p, q)) < radius
}

// BruteForce scans every agent, the querying agent included.
type BruteForce struct {
	positions []field.PositionTexel
}

// Rebuild stores the position slice; nothing is precomputed.
func (b *BruteForce) Rebuild(positions []field.PositionTexel, _ float64) {
	b.positions = positions
}

// Neighbors scans all agents in index order.
func (b *BruteForce) Neighbors(dst []int, p r3.Vec, radius float64) []int {
	for j := range b.positions {
		if inZone(p, b.positions[j].Pos, radius) {
			dst = append(dst, j)
		}
	}
	return dst
}

// cellKey addresses one cube of the hash grid.
type cellKey struct {
	X, Y, Z int64
}

// cellMargin widens cells slightly so rounding in the cell division can
// never push an in-range neighbor two cells away.
const cellMargin = 1 + 1e-9

// HashGrid buckets agents into cubes one zone radius wide, so a query only
// inspects the 27 cubes around p. Unbounded: agents may fly anywhere.
type HashGrid struct {
	positions []field.PositionTexel
	cellSize  float64
	cells     map[cellKey][]int
	active    []cellKey
}

// NewHashGrid creates an empty grid sized for count agents.
func NewHashGrid(count int) *HashGrid {
	return &HashGrid{
		cells:  make(map[cellKey][]int, count),
		active: make([]cellKey, 0, count),
	}
}

// Rebuild clears the grid and reinserts every finite position.
func (g *HashGrid) Rebuild(positions []field.PositionTexel, radius float64) {
	// Clear
	for _, k := range g.active {
		g.cells[k] = g.cells[k][:0]
	}
	g.active = g.active[:0]

	g.positions = positions
	g.cellSize = radius * cellMargin
	if !(g.cellSize > 0) || math.IsInf(g.cellSize, 0) {
		return
	}

	for i := range positions {
		k, ok := g.key(positions[i].Pos)
		if !ok {
			continue
		}
		bucket := g.cells[k]
		if len(bucket) == 0 {
			g.active = append(g.active, k)
		}
		g.cells[k] = append(bucket, i)
	}
}

// Neighbors checks the 27 surrounding cells, then sorts the hits.
func (g *HashGrid) Neighbors(dst []int, p r3.Vec, radius float64) []int {
	if !(g.cellSize > 0) || radius*cellMargin > g.cellSize {
		// Radius grew since Rebuild; the cells no longer cover it.
		return g.scan(dst, p, radius)
	}
	center, ok := g.key(p)
	if !ok {
		return g.scan(dst, p, radius)
	}

	start := len(dst)
	for dz := int64(-1); dz <= 1; dz++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dx := int64(-1); dx <= 1; dx++ {
				k := cellKey{center.X + dx, center.Y + dy, center.Z + dz}
				for _, j := range g.cells[k] {
					if inZone(p, g.positions[j].Pos, radius) {
						dst = append(dst, j)
					}
				}
			}
		}
	}
	slices.Sort(dst[start:])
	return dst
}

func (g *HashGrid) scan(dst []int, p r3.Vec, radius float64) []int {
	for j := range g.positions {
		if inZone(p, g.positions[j].Pos, radius) {
			dst = append(dst, j)
		}
	}
	return dst
}

// key returns the cell of p, or false for positions the grid cannot place.
func (g *HashGrid) key(p r3.Vec) (cellKey, bool) {
	x, okX := cellCoord(p.X, g.cellSize)
	y, okY := cellCoord(p.Y, g.cellSize)
	z, okZ := cellCoord(p.Z, g.cellSize)
	return cellKey{x, y, z}, okX && okY && okZ
}

func cellCoord(v, size float64) (int64, bool) {
	const limit = 1 << 53
	c := math.Floor(v / size)
	if math.IsNaN(c) || c > limit || c < -limit {
		return 0, false
	}
	return int64(c), true
}
