package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/murmur/renderer"
	"github.com/pthm-cable/murmur/ui"
)

// Draw renders one frame: the 3D scene, then the 2D panels.
func (g *Game) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	g.drawScene()
	g.drawUI()
}

func (g *Game) drawScene() {
	g.scene.Begin(g.camera)
	defer g.scene.End()

	if g.overlays.IsEnabled(ui.OverlayDomain) {
		g.scene.DrawDomain()
	}
	if g.overlays.IsEnabled(ui.OverlayMarkers) {
		g.scene.DrawMarkers(g.frame.Predator, g.frame.Target)
	}

	count := g.driver.Count()
	query := g.birdFilter.Query()
	for query.Next() {
		agent, pose := query.Get()
		g.scene.DrawBird(g.camera, *pose, renderer.BirdBase(agent.Index, count))
	}

	if g.hasSelected {
		zone := 0.0
		if g.overlays.IsEnabled(ui.OverlayNeighbors) {
			zone = g.driver.Params().ZoneRadius()
		}
		g.scene.DrawSelection(*g.poseMap.Get(g.selected), zone)
	}
}

func (g *Game) drawUI() {
	g.hud.Draw(ui.HUDData{
		Title:    "Murmur",
		Agents:   g.driver.Count(),
		Frame:    g.frame.Number,
		SimTime:  g.frame.Time,
		Delta:    g.frame.Delta,
		FPS:      rl.GetFPS(),
		Paused:   g.paused,
		Inert:    g.driver.Inert(),
		Culled:   g.scene.Culled(),
		Predator: g.frame.Predator,
		Target:   g.frame.Target,
	})

	y := int32(100)
	if g.controls.IsVisible() {
		y = g.controls.Draw(g.overlays) + 10
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.SetPosition(10, y)
		g.perfPanel.Draw(g.driver.Perf().Stats())
	}

	if g.overlays.IsEnabled(ui.OverlayFlock) && g.lastStats.Frames > 0 {
		g.flockPanel.Draw(g.lastStats)
	}
	if data, ok := g.inspectorData(); ok {
		g.inspector.Draw(data)
	}

	g.tuning.Draw(g.driver)
	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), ui.ControlsLegend)
}
