package ui

import (
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/murmur/kernel"
)

// ParamTuner is the live parameter interface the panel writes through.
// *sim.Driver implements it.
type ParamTuner interface {
	Params() kernel.Params
	SetParams(p kernel.Params) error
	SetSeparationDistance(v float64) error
	SetAlignmentDistance(v float64) error
	SetCohesionDistance(v float64) error
	SetFreedomFactor(v float64) error
}

// Slider binds one parameter to a slider.
type Slider struct {
	Label    string
	Min, Max float64
	Get      func(kernel.Params) float64
	Set      func(ParamTuner, float64) error
}

// DefaultSliders returns the sliders for the four live-tunable parameters.
func DefaultSliders() []Slider {
	return []Slider{
		{
			Label: "Separation distance", Min: 0, Max: 100,
			Get: func(p kernel.Params) float64 { return p.SeparationDistance },
			Set: ParamTuner.SetSeparationDistance,
		},
		{
			Label: "Alignment distance", Min: 0, Max: 100,
			Get: func(p kernel.Params) float64 { return p.AlignmentDistance },
			Set: ParamTuner.SetAlignmentDistance,
		},
		{
			Label: "Cohesion distance", Min: 0, Max: 100,
			Get: func(p kernel.Params) float64 { return p.CohesionDistance },
			Set: ParamTuner.SetCohesionDistance,
		},
		{
			Label: "Freedom factor (inert)", Min: 0, Max: 1,
			Get: func(p kernel.Params) float64 { return p.FreedomFactor },
			Set: ParamTuner.SetFreedomFactor,
		},
	}
}

// TuningPanel draws raygui sliders bound to a ParamTuner.
type TuningPanel struct {
	renderer *Renderer
	sliders  []Slider
	defaults kernel.Params
	x, y     float32
	width    float32
	visible  bool
}

// NewTuningPanel creates a hidden panel. defaults is what Reset restores.
func NewTuningPanel(x, y, width float32, defaults kernel.Params) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		sliders:  DefaultSliders(),
		defaults: defaults,
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches panel visibility.
func (t *TuningPanel) Toggle() bool {
	t.visible = !t.visible
	return t.visible
}

// IsVisible returns whether the panel is shown.
func (t *TuningPanel) IsVisible() bool {
	return t.visible
}

// SetPosition updates the panel position.
func (t *TuningPanel) SetPosition(x, y float32) {
	t.x = x
	t.y = y
}

// Contains reports whether a screen point is over the visible panel, so the
// host can keep drags on the sliders from orbiting the camera.
func (t *TuningPanel) Contains(px, py float32) bool {
	if !t.visible {
		return false
	}
	return px >= t.x && px <= t.x+t.width && py >= t.y && py <= t.y+t.height()
}

func (t *TuningPanel) height() float32 {
	return float32(len(t.sliders))*40 + 110
}

// Draw renders the sliders and applies any change.
func (t *TuningPanel) Draw(tuner ParamTuner) {
	if !t.visible || tuner == nil {
		return
	}

	r := t.renderer
	r.DrawPanel(int32(t.x), int32(t.y), int32(t.width), int32(t.height()))

	padding := float32(r.Theme.Padding)
	x := t.x + padding
	y := t.y + padding
	sliderWidth := t.width - padding*2 - 60

	rl.DrawText("Flocking Parameters", int32(x), int32(y), 16, rl.White)
	y += 26

	params := tuner.Params()
	for i, s := range t.sliders {
		current := s.Get(params)
		rl.DrawText(s.Label, int32(x), int32(y), 12, rl.LightGray)
		y += 14
		next := gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: sliderWidth, Height: 16},
			"", "",
			float32(current), float32(s.Min), float32(s.Max),
		)
		rl.DrawText(fmt.Sprintf("%.2f", current), int32(x+sliderWidth+8), int32(y+2), 12, rl.LightGray)
		if float64(next) != float64(float32(current)) {
			if err := ApplySlider(tuner, t.sliders[i], float64(next)); err != nil {
				slog.Warn("rejected parameter", "param", s.Label, "value", next, "error", err)
			}
		}
		y += 26
	}

	rl.DrawText(fmt.Sprintf("Zone radius: %.1f", tuner.Params().ZoneRadius()), int32(x), int32(y), 12, rl.Yellow)
	y += 20

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 120, Height: 24}, "Reset Params") {
		if err := tuner.SetParams(t.defaults); err != nil {
			slog.Warn("reset parameters failed", "error", err)
		}
	}
}

// ApplySlider clamps value to the slider range and writes it.
func ApplySlider(tuner ParamTuner, s Slider, value float64) error {
	if value < s.Min {
		value = s.Min
	}
	if value > s.Max {
		value = s.Max
	}
	return s.Set(tuner, value)
}
