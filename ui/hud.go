package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title    string
	Agents   int
	Frame    uint64
	SimTime  float64
	Delta    float64
	FPS      int32
	Paused   bool
	Inert    bool
	Culled   int
	Predator r3.Vec
	Target   r3.Vec
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Birds: %d | Frame: %d | Time: %.1fs | dt: %.3f | FPS: %d",
			data.Agents, data.Frame, data.SimTime, data.Delta, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Predator: %s | Target: %s | Culled: %d",
			formatVec(data.Predator), formatVec(data.Target), data.Culled),
		10, 55, 16, rl.LightGray,
	)

	rl.DrawText(StatusText(data), 10, 75, 16, statusColor(data))
}

// StatusText is the one-word run state shown under the counters.
func StatusText(data HUDData) string {
	switch {
	case data.Inert:
		return "INERT (compute backend unavailable)"
	case data.Paused:
		return "PAUSED"
	default:
		return "Running"
	}
}

func statusColor(data HUDData) rl.Color {
	if data.Inert {
		return rl.Red
	}
	return rl.Yellow
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

func formatVec(v r3.Vec) string {
	return fmt.Sprintf("(%.0f, %.0f, %.0f)", v.X, v.Y, v.Z)
}

// PerfPanel renders the per-phase step timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel in phase order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Step: %s  (%.0f/s)", stats.AvgStep.Round(time.Microsecond), stats.StepsPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-14s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// FlockPanel renders the latest stats window through a descriptor.
type FlockPanel struct {
	renderer *Renderer
	desc     PanelDescriptor
	x, y     int32
}

// NewFlockPanel creates a flock statistics panel. speedLimit sets the
// range of the speed bars.
func NewFlockPanel(x, y, width int32, speedLimit float64) *FlockPanel {
	return &FlockPanel{
		renderer: NewRenderer(),
		desc:     FlockPanelDescriptor(width, speedLimit),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (f *FlockPanel) SetPosition(x, y int32) {
	f.x = x
	f.y = y
}

// Draw renders the panel and returns the Y below it.
func (f *FlockPanel) Draw(stats telemetry.FlockStats) int32 {
	return f.renderer.DrawDescribedPanel(f.x, f.y, f.desc, stats)
}

func flockStats(data any) telemetry.FlockStats {
	s, _ := data.(telemetry.FlockStats)
	return s
}

// FlockPanelDescriptor lays out telemetry.FlockStats.
func FlockPanelDescriptor(width int32, speedLimit float64) PanelDescriptor {
	speed := FieldRange{Min: 0, Max: speedLimit}
	return PanelDescriptor{
		ID:    "flock",
		Title: "Flock",
		Width: width,
		Sections: []SectionDescriptor{
			{
				ID:    "window",
				Title: "Window",
				Fields: []FieldDescriptor{
					{ID: "end", Label: "Frame", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float64 { return float64(flockStats(d).WindowEndFrame) }},
					{ID: "time", Label: "Sim time", Widget: WidgetText, Format: "%.1fs",
						Getter: func(d any) float64 { return flockStats(d).SimTimeSec }},
				},
			},
			{
				ID:    "speed",
				Title: "Speed",
				Fields: []FieldDescriptor{
					{ID: "mean", Label: "Mean", Widget: WidgetBar, Range: speed,
						Getter: func(d any) float64 { return flockStats(d).SpeedMean }},
					{ID: "p90", Label: "P90", Widget: WidgetBar, Range: speed,
						Getter: func(d any) float64 { return flockStats(d).SpeedP90 }},
					{ID: "max", Label: "Max", Widget: WidgetBar, Range: speed,
						Getter: func(d any) float64 { return flockStats(d).SpeedMax }},
				},
			},
			{
				ID:    "shape",
				Title: "Shape",
				Fields: []FieldDescriptor{
					{ID: "polarization", Label: "Polarization", Widget: WidgetBar, Range: DefaultRange(),
						Getter: func(d any) float64 { return flockStats(d).Polarization }},
					{ID: "spread", Label: "Spread", Widget: WidgetText, Format: "%.1f",
						Getter: func(d any) float64 { return flockStats(d).Spread }},
					{ID: "target", Label: "To target", Widget: WidgetText, Format: "%.1f",
						Getter: func(d any) float64 { return flockStats(d).TargetDistance }},
					{ID: "neighbors", Label: "Neighbors", Widget: WidgetText, Format: "%.2f",
						Getter: func(d any) float64 { return flockStats(d).MeanNeighbors }},
					{ID: "near", Label: "Near pred.", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float64 { return float64(flockStats(d).NearPredator) },
						Visible: func(d any) bool { return flockStats(d).NearPredator > 0 }},
				},
			},
		},
	}
}
