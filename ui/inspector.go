package ui

import (
	"fmt"
	"math"

	"github.com/pthm-cable/murmur/components"
)

// InspectorData holds what the inspector shows about the selected bird.
type InspectorData struct {
	Agent      components.Agent
	Pose       components.Pose
	Neighbors  int     // agents within the zone radius, self included
	ToPredator float64 // planar distance used by predator avoidance
	ToTarget   float64
}

// Inspector renders the selected bird's state.
type Inspector struct {
	renderer *Renderer
	desc     PanelDescriptor
	x, y     int32
}

// NewInspector creates an inspector panel. speedLimit sets the speed bar range.
func NewInspector(x, y, width int32, speedLimit float64) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		desc:     InspectorDescriptor(width, speedLimit),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel and returns the Y below it.
func (ins *Inspector) Draw(data InspectorData) int32 {
	return ins.renderer.DrawDescribedPanel(ins.x, ins.y, ins.desc, data)
}

func inspected(d any) InspectorData {
	data, _ := d.(InspectorData)
	return data
}

// InspectorDescriptor lays out InspectorData.
func InspectorDescriptor(width int32, speedLimit float64) PanelDescriptor {
	degrees := func(rad float64) float64 { return rad * 180 / math.Pi }
	return PanelDescriptor{
		ID:    "inspector",
		Title: "Bird",
		Width: width,
		Sections: []SectionDescriptor{
			{
				ID: "identity",
				Fields: []FieldDescriptor{
					{ID: "cell", Label: "Cell", Widget: WidgetText,
						TextGetter: func(d any) string {
							a := inspected(d).Agent
							return fmt.Sprintf("#%d (%d, %d)", a.Index, a.GridX, a.GridY)
						}},
					{ID: "position", Label: "Position", Widget: WidgetText,
						TextGetter: func(d any) string { return formatVec(inspected(d).Pose.Position) }},
				},
			},
			{
				ID:    "motion",
				Title: "Motion",
				Fields: []FieldDescriptor{
					{ID: "speed", Label: "Speed", Widget: WidgetBar, Range: FieldRange{Max: speedLimit},
						Getter: func(d any) float64 { return inspected(d).Pose.Speed() }},
					{ID: "yaw", Label: "Yaw", Widget: WidgetText, Format: "%.0f°",
						Getter: func(d any) float64 {
							yaw, _ := inspected(d).Pose.Heading()
							return degrees(yaw)
						}},
					{ID: "pitch", Label: "Pitch", Widget: WidgetCenteredBar, Range: FieldRange{Min: -90, Max: 90},
						Getter: func(d any) float64 {
							_, pitch := inspected(d).Pose.Heading()
							return degrees(pitch)
						}},
					{ID: "wing", Label: "Wing", Widget: WidgetCenteredBar, Range: CenteredRange(),
						Getter: func(d any) float64 { return math.Sin(inspected(d).Pose.Phase) }},
				},
			},
			{
				ID:    "surroundings",
				Title: "Surroundings",
				Fields: []FieldDescriptor{
					{ID: "neighbors", Label: "Neighbors", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float64 { return float64(inspected(d).Neighbors) }},
					{ID: "predator", Label: "Predator", Widget: WidgetText, Format: "%.1f",
						Getter: func(d any) float64 { return inspected(d).ToPredator }},
					{ID: "target", Label: "Target", Widget: WidgetText, Format: "%.1f",
						Getter: func(d any) float64 { return inspected(d).ToTarget }},
				},
			},
		},
	}
}
