// Package camera provides an orbit camera around the flock.
package camera

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/config"
)

// MaxPitch keeps the camera off the poles, where the up vector degenerates.
const MaxPitch = 1.5

// near is the closest depth WorldToScreen projects.
const near = 0.1

// Camera orbits a target point. Yaw, Pitch and Distance are the goal; the
// rendered view eases toward it with a critically damped spring.
type Camera struct {
	Target r3.Vec

	// Goal placement (radians, world units)
	Yaw, Pitch, Distance float64

	// Vertical field of view in degrees
	FovY float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinDistance, MaxDistance float64

	// Smoothed placement and spring velocities
	yaw, pitch, distance          float64
	yawVel, pitchVel, distanceVel float64
	spring                        harmonica.Spring

	home config.CameraConfig
}

// New creates a camera at the configured home placement, looking at the origin.
// fps is the update rate the smoothing spring is tuned for.
func New(viewportW, viewportH float64, cfg config.CameraConfig, fps int) *Camera {
	if fps < 1 {
		fps = 60
	}
	c := &Camera{
		FovY:        cfg.FovY,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: cfg.MinDistance,
		MaxDistance: cfg.MaxDistance,
		spring:      harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		home:        cfg,
	}
	c.Reset()
	c.Snap()
	return c
}

// Reset returns the goal to the home placement; the view eases back.
func (c *Camera) Reset() {
	c.Target = r3.Vec{}
	c.Yaw = c.home.Yaw
	c.Pitch = clamp(c.home.Pitch, -MaxPitch, MaxPitch)
	c.SetDistance(c.home.Distance)
}

// Snap jumps the view to the goal.
func (c *Camera) Snap() {
	c.yaw, c.pitch, c.distance = c.Yaw, c.Pitch, c.Distance
	c.yawVel, c.pitchVel, c.distanceVel = 0, 0, 0
}

// Update advances the smoothing by one frame.
func (c *Camera) Update() {
	c.yaw, c.yawVel = c.spring.Update(c.yaw, c.yawVel, c.Yaw)
	c.pitch, c.pitchVel = c.spring.Update(c.pitch, c.pitchVel, c.Pitch)
	c.distance, c.distanceVel = c.spring.Update(c.distance, c.distanceVel, c.Distance)
}

// Orbit rotates the goal by the given yaw and pitch deltas in radians.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch = clamp(c.Pitch+dPitch, -MaxPitch, MaxPitch)
}

// SetDistance sets the goal distance, clamped to min/max.
func (c *Camera) SetDistance(d float64) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the goal distance by factor (factor > 1 moves closer).
func (c *Camera) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Position returns the current (smoothed) eye position.
func (c *Camera) Position() r3.Vec {
	cp := math.Cos(c.pitch)
	offset := r3.Vec{
		X: cp * math.Sin(c.yaw),
		Y: math.Sin(c.pitch),
		Z: cp * math.Cos(c.yaw),
	}
	return r3.Add(c.Target, r3.Scale(c.distance, offset))
}

// basis returns the view's forward, right and up unit vectors.
func (c *Camera) basis() (forward, right, up r3.Vec) {
	forward = r3.Unit(r3.Sub(c.Target, c.Position()))
	right = r3.Unit(r3.Cross(forward, r3.Vec{Y: 1}))
	up = r3.Cross(right, forward)
	return forward, right, up
}

// focal returns the projection scale in pixels at unit depth.
func (c *Camera) focal() float64 {
	return (c.ViewportH / 2) / math.Tan(c.FovY*math.Pi/360)
}

// WorldToScreen projects p to screen pixels. ok is false when p is behind
// the camera.
func (c *Camera) WorldToScreen(p r3.Vec) (sx, sy float64, ok bool) {
	forward, right, up := c.basis()
	rel := r3.Sub(p, c.Position())
	depth := r3.Dot(rel, forward)
	if depth < near {
		return 0, 0, false
	}
	f := c.focal() / depth
	sx = c.ViewportW/2 + r3.Dot(rel, right)*f
	sy = c.ViewportH/2 - r3.Dot(rel, up)*f
	return sx, sy, true
}

// IsVisible returns true if a sphere at p with the given radius could be
// on screen (conservative check for culling).
func (c *Camera) IsVisible(p r3.Vec, radius float64) bool {
	forward, _, _ := c.basis()
	depth := r3.Dot(r3.Sub(p, c.Position()), forward)
	if depth < -radius {
		return false
	}
	if depth < near+radius {
		// Straddles the eye plane
		return true
	}
	sx, sy, _ := c.WorldToScreen(p)
	margin := radius * c.focal() / (depth - radius)
	return sx >= -margin && sx <= c.ViewportW+margin &&
		sy >= -margin && sy <= c.ViewportH+margin
}

// NormalizedPointer maps screen pixels to [-1, 1] per axis with +y up,
// clamped at the viewport edges.
func (c *Camera) NormalizedPointer(sx, sy float64) (x, y float64) {
	if c.ViewportW <= 0 || c.ViewportH <= 0 {
		return 0, 0
	}
	x = clamp(sx/c.ViewportW*2-1, -1, 1)
	y = clamp(1-sy/c.ViewportH*2, -1, 1)
	return x, y
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
