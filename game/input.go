package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/murmur/sim"
)

// Camera input rates
const (
	orbitPerPixel = 0.005 // radians per dragged pixel
	orbitPerFrame = 0.03  // radians per frame for arrow keys
	zoomPerNotch  = 0.1
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.tuning.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.reseed()
	}
	for _, key := range g.overlays.Keys() {
		if rl.IsKeyPressed(key) {
			g.overlays.HandleKeyPress(key)
		}
	}

	g.handleCameraInput()
	g.handlePointer()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(float64(w), float64(h))
	g.flockPanel.SetPosition(int32(w)-250, 10)
	g.inspector.SetPosition(int32(w)-250, 300)
	g.tuning.SetPosition(10, h-290)
}

// handleCameraInput orbits with the right mouse button or arrow keys and
// zooms with the wheel or +/-.
func (g *Game) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Orbit(-float64(d.X)*orbitPerPixel, float64(d.Y)*orbitPerPixel)
	}

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Orbit(orbitPerFrame, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Orbit(-orbitPerFrame, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Orbit(0, orbitPerFrame)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Orbit(0, -orbitPerFrame)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + float64(wheel)*zoomPerNotch)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handlePointer samples the predator input and handles selection clicks.
// The pointer holds its last value while it is over the tuning panel.
func (g *Game) handlePointer() {
	mouse := rl.GetMousePosition()
	if g.tuning.Contains(mouse.X, mouse.Y) {
		return
	}

	x, y := g.camera.NormalizedPointer(float64(mouse.X), float64(mouse.Y))
	g.pointer = sim.InputSample{PointerX: x, PointerY: y}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		g.selectAt(float64(mouse.X), float64(mouse.Y))
	}
}
