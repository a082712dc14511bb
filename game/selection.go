package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/kernel"
	"github.com/pthm-cable/murmur/ui"
)

// pickRadius is the click distance in pixels that still hits a bird.
const pickRadius = 20.0

// screenPoint is a bird projected to the screen.
type screenPoint struct {
	entity ecs.Entity
	x, y   float64
}

// nearestPoint returns the index of the point closest to (mx, my) within
// maxDist pixels.
func nearestPoint(points []screenPoint, mx, my, maxDist float64) (int, bool) {
	best, bestDist := -1, maxDist
	for i, p := range points {
		if d := math.Hypot(p.x-mx, p.y-my); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// selectAt selects the bird under the cursor, or clears the selection when
// the click hits nothing.
func (g *Game) selectAt(mx, my float64) {
	var points []screenPoint
	query := g.birdFilter.Query()
	for query.Next() {
		_, pose := query.Get()
		if sx, sy, ok := g.camera.WorldToScreen(pose.Position); ok {
			points = append(points, screenPoint{entity: query.Entity(), x: sx, y: sy})
		}
	}

	i, ok := nearestPoint(points, mx, my, pickRadius)
	if !ok {
		g.clearSelection()
		return
	}
	g.selectEntity(points[i].entity)
}

// selectEntity moves the Selected marker to e.
func (g *Game) selectEntity(e ecs.Entity) {
	g.clearSelection()
	g.selectedMap.Add(e, &components.Selected{})
	g.selected = e
	g.hasSelected = true
}

func (g *Game) clearSelection() {
	if g.hasSelected && g.selectedMap.Has(g.selected) {
		g.selectedMap.Remove(g.selected)
	}
	g.hasSelected = false
}

// inspectorData describes the selected bird against the last frame.
func (g *Game) inspectorData() (ui.InspectorData, bool) {
	if !g.hasSelected {
		return ui.InspectorData{}, false
	}
	agent := g.agentMap.Get(g.selected)
	pose := g.poseMap.Get(g.selected)

	var index kernel.BruteForce
	zone := g.driver.Params().ZoneRadius()
	index.Rebuild(g.positions, zone)
	neighbors := index.Neighbors(nil, pose.Position, zone)

	_, toPredator := kernel.PredatorOffset(pose.Position, g.frame.Predator)
	return ui.InspectorData{
		Agent:      *agent,
		Pose:       *pose,
		Neighbors:  len(neighbors),
		ToPredator: toPredator,
		ToTarget:   r3.Norm(r3.Sub(g.frame.Target, pose.Position)),
	}, true
}
