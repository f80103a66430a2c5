package layout

import (
	"brainstormer/backend/internal/mindmap"
	"gonum.org/v1/gonum/spatial/r2"
)

// applyLinkForce pulls connected nodes toward their target separation:
// the link's distance override when set, else the default link length.
func (e *Engine) applyLinkForce(graph mindmap.Graph, pos map[string]r2.Vec) {
	for i, link := range graph.Links {
		source, okS := pos[link.Source]
		target, okT := pos[link.Target]
		if !okS || !okT {
			continue
		}

		want := link.Distance
		if want == 0 {
			want = mindmap.LinkDistance
		}

		delta := target.Add(e.vel[link.Target]).Sub(source.Add(e.vel[link.Source]))
		if r2.Norm(delta) < 1e-6 {
			delta = jiggle(i)
		}
		d := r2.Norm(delta)
		pull := (d - want) / d * e.alpha * e.params.LinkStrength

		half := delta.Scale(pull * 0.5)
		e.nudge(link.Target, half.Scale(-1))
		e.nudge(link.Source, half)
	}
}

// applyChargeForce repels every node pair, strength falling off with the
// square of the distance
func (e *Engine) applyChargeForce(graph mindmap.Graph, pos map[string]r2.Vec) {
	nodes := graph.Nodes
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := pos[nodes[i].ID], pos[nodes[j].ID]
			delta := b.Sub(a)
			if r2.Norm(delta) < 1e-6 {
				delta = jiggle(i*len(nodes) + j)
			}
			d2 := r2.Norm2(delta)
			if d2 < 1 {
				d2 = 1
			}
			// negative strength pushes the pair apart
			w := e.params.ChargeStrength * e.alpha / d2
			push := delta.Scale(w)
			e.nudge(nodes[i].ID, push)
			e.nudge(nodes[j].ID, push.Scale(-1))
		}
	}
}

// applyCollideForce resolves overlap inside the fixed minimum separation
func (e *Engine) applyCollideForce(graph mindmap.Graph, pos map[string]r2.Vec) {
	nodes := graph.Nodes
	minSep := collideRadius * 2
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := pos[nodes[i].ID], pos[nodes[j].ID]
			d := dist(a, b)
			if d >= minSep {
				continue
			}
			overlap := (minSep - d) / d * e.params.CollideStrength
			shift := b.Sub(a).Scale(overlap * 0.5)
			e.nudge(nodes[i].ID, shift.Scale(-1))
			e.nudge(nodes[j].ID, shift)
		}
	}
}

// applyGroupForce pulls each node toward the centroid of its sibling
// group. Nodes sharing a ParentID form a group; parentless nodes are one
// group. This keeps expanded clusters visually cohesive as the tree grows.
func (e *Engine) applyGroupForce(graph mindmap.Graph, pos map[string]r2.Vec) {
	groups := make(map[string][]string)
	for _, node := range graph.Nodes {
		key := node.ParentID
		if key == "" {
			key = "root"
		}
		groups[key] = append(groups[key], node.ID)
	}

	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		var centroid r2.Vec
		for _, id := range members {
			centroid = centroid.Add(pos[id])
		}
		centroid = centroid.Scale(1 / float64(len(members)))

		for _, id := range members {
			e.nudge(id, centroid.Sub(pos[id]).Scale(e.alpha*e.params.GroupStrength))
		}
	}
}

// applyCenterForce translates the whole graph toward the canvas center.
// It works on positions directly, after integration, the way d3's center
// force does; pinned nodes are left where the user put them.
func (e *Engine) applyCenterForce(pos map[string]r2.Vec, pinned map[string]bool, out map[string][2]float64) {
	if len(pos) == 0 {
		return
	}
	var centroid r2.Vec
	for _, p := range pos {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Scale(1 / float64(len(pos)))

	center := r2.Vec{X: e.params.Width / 2, Y: e.params.Height / 2}
	shift := center.Sub(centroid).Scale(e.params.CenterStrength)

	for id, p := range pos {
		if pinned[id] {
			continue
		}
		moved := p.Add(shift)
		pos[id] = moved
		out[id] = [2]float64{moved.X, moved.Y}
	}
}
