// Package renderer draws the flock with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/camera"
	"github.com/pthm-cable/murmur/components"
)

// Scene colors
var (
	SkyColor      = rl.NewColor(18, 22, 30, 255)
	BoundsColor   = rl.NewColor(60, 70, 90, 255)
	TargetColor   = rl.NewColor(90, 200, 120, 255)
	PredatorColor = rl.NewColor(230, 70, 50, 255)
	SelectColor   = rl.NewColor(250, 210, 80, 255)
	ZoneColor     = rl.NewColor(250, 210, 80, 90)
)

// Scene renders birds and the two steering markers in 3D.
type Scene struct {
	bounds float64
	culled int
}

// NewScene creates a scene for a domain of the given half-extent.
func NewScene(bounds float64) *Scene {
	return &Scene{bounds: bounds}
}

// Camera3D converts the orbit camera to raylib's camera.
func Camera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec(c.Position()),
		Target:     vec(c.Target),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       float32(c.FovY),
		Projection: rl.CameraPerspective,
	}
}

// Begin clears the frame and enters 3D mode. Pair with End.
func (s *Scene) Begin(c *camera.Camera) {
	rl.ClearBackground(SkyColor)
	rl.BeginMode3D(Camera3D(c))
	s.culled = 0
}

// End leaves 3D mode.
func (s *Scene) End() {
	rl.EndMode3D()
}

// DrawDomain draws the initial-position cube and a ground grid.
func (s *Scene) DrawDomain() {
	side := float32(2 * s.bounds)
	rl.DrawCubeWires(rl.NewVector3(0, 0, 0), side, side, side, BoundsColor)
	rl.DrawGrid(16, side/16)
}

// DrawMarkers draws the predator and the target.
func (s *Scene) DrawMarkers(predator, target r3.Vec) {
	rl.DrawSphereWires(vec(target), 12, 8, 8, TargetColor)
	rl.DrawSphere(vec(predator), 8, PredatorColor)
}

// DrawBird draws one bird. Birds the camera cannot see are skipped.
func (s *Scene) DrawBird(c *camera.Camera, p components.Pose, base float64) {
	if !c.IsVisible(p.Position, WingSpan*BirdScale*2) {
		s.culled++
		return
	}
	g := Shade(p.Position.Z, base)
	col := rl.NewColor(g, g, g, 255)
	for _, tri := range BirdTriangles(p) {
		a, b, cc := vec(tri[0]), vec(tri[1]), vec(tri[2])
		// Both windings: wings are seen from above and below
		rl.DrawTriangle3D(a, b, cc, col)
		rl.DrawTriangle3D(a, cc, b, col)
	}
}

// DrawSelection rings the selected bird and, when zone > 0, draws its
// neighbor zone.
func (s *Scene) DrawSelection(p components.Pose, zone float64) {
	rl.DrawSphereWires(vec(p.Position), float32(WingSpan*BirdScale*1.5), 6, 6, SelectColor)
	if zone > 0 {
		rl.DrawSphereWires(vec(p.Position), float32(zone), 10, 10, ZoneColor)
	}
}

// Culled returns how many birds the last frame skipped.
func (s *Scene) Culled() int { return s.culled }

func vec(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}
