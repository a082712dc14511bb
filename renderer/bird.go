package renderer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/components"
)

// Bird mesh constants.
const (
	BirdScale     = 0.2
	WingSpan      = 20.0
	FlapAmplitude = 2.5 // wing tip height at sin(phase) = 1, after scaling
)

// Triangle is three world-space vertices.
type Triangle [3]r3.Vec

// birdMesh is the unscaled body and two wings, nose along +Z.
var birdMesh = [3]Triangle{
	{{X: 0, Y: 0, Z: -20}, {X: 0, Y: 4, Z: -20}, {X: 0, Y: 0, Z: 30}},
	{{X: 0, Y: 0, Z: -15}, {X: -WingSpan, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 15}},
	{{X: 0, Y: 0, Z: 15}, {X: WingSpan, Y: 0, Z: 0}, {X: 0, Y: 0, Z: -15}},
}

// BirdTriangles places the bird mesh for one pose: wings flapped by the
// phase, nose along the velocity, centered on the position.
func BirdTriangles(p components.Pose) [3]Triangle {
	orient := newOrientation(p.Velocity)
	flap := math.Sin(p.Phase) * FlapAmplitude

	var out [3]Triangle
	for t, tri := range birdMesh {
		for v, vert := range tri {
			local := r3.Scale(BirdScale, vert)
			if v == 1 && t > 0 {
				// wing tip
				local.Y = flap
			}
			// Model turn: nose from +Z to +X
			local = r3.Vec{X: local.Z, Y: local.Y, Z: -local.X}
			out[t][v] = r3.Add(p.Position, orient.apply(local))
		}
	}
	return out
}

// orientation turns +X onto a velocity direction: pitch about Z, then yaw about Y.
type orientation struct {
	cosYaw, sinYaw     float64
	cosPitch, sinPitch float64
}

func newOrientation(vel r3.Vec) orientation {
	n := r3.Norm(vel)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return orientation{cosYaw: 1, cosPitch: 1}
	}
	u := r3.Scale(1/n, vel)
	u.Z = -u.Z

	o := orientation{
		cosYaw:   1,
		cosPitch: math.Sqrt(math.Max(0, 1-u.Y*u.Y)),
		sinPitch: u.Y,
	}
	if xz := math.Hypot(u.X, u.Z); xz > 0 {
		o.cosYaw = u.X / xz
		o.sinYaw = u.Z / xz
	}
	return o
}

func (o orientation) apply(v r3.Vec) r3.Vec {
	// pitch
	w := r3.Vec{
		X: o.cosPitch*v.X - o.sinPitch*v.Y,
		Y: o.sinPitch*v.X + o.cosPitch*v.Y,
		Z: v.Z,
	}
	// yaw
	return r3.Vec{
		X: o.cosYaw*w.X + o.sinYaw*w.Z,
		Y: w.Y,
		Z: -o.sinYaw*w.X + o.cosYaw*w.Z,
	}
}

// Shade returns the gray level of a bird at world depth z: nearer the
// viewer's side of the domain is brighter. base in [0, 1] varies per bird.
func Shade(z, base float64) uint8 {
	g := 0.2 + (1000-z)/1000*base
	g = math.Max(0, math.Min(1, g))
	return uint8(math.Round(g * 255))
}

// BirdBase spreads base shades from 0.4 to 0.8 over the flock.
func BirdBase(index, count int) float64 {
	if count <= 0 {
		return 0.4
	}
	return 0.4 + 0.4*float64(index)/float64(count)
}
