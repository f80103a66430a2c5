package layout

import (
	"sort"

	"brainstormer/backend/internal/mindmap"
)

// TreeLayout computes a tidy horizontal tree for the graph: depth maps
// to the x axis, leaves are spread evenly down the y axis and every
// internal node sits at the mean of its children. The tree occupies the
// middle 90% of the canvas. Orphaned nodes are treated as children of
// the root.
func TreeLayout(graph mindmap.Graph, width, height float64) map[string][2]float64 {
	positions := make(map[string][2]float64, len(graph.Nodes))
	if len(graph.Nodes) == 0 {
		return positions
	}

	byID := make(map[string]mindmap.Node, len(graph.Nodes))
	children := make(map[string][]string)
	rootID := graph.Nodes[0].ID
	maxDepth := 0

	for _, node := range graph.Nodes {
		byID[node.ID] = node
		if node.Depth > maxDepth {
			maxDepth = node.Depth
		}
	}
	for _, node := range graph.Nodes {
		if node.ID == rootID {
			continue
		}
		parent := node.ParentID
		if _, ok := byID[parent]; !ok {
			parent = rootID
		}
		children[parent] = append(children[parent], node.ID)
	}
	for _, ids := range children {
		sort.Strings(ids)
	}

	marginX := width * 0.05
	marginY := height * 0.05
	usableX := width * 0.9
	usableY := height * 0.9

	columnStep := usableX
	if maxDepth > 0 {
		columnStep = usableX / float64(maxDepth)
	}

	leaves := countLeaves(rootID, children)
	rowStep := usableY
	if leaves > 1 {
		rowStep = usableY / float64(leaves-1)
	}

	nextRow := 0
	var place func(id string) float64
	place = func(id string) float64 {
		node := byID[id]
		x := marginX + float64(node.Depth)*columnStep

		kids := children[id]
		var y float64
		if len(kids) == 0 {
			if leaves == 1 {
				y = marginY + usableY/2
			} else {
				y = marginY + float64(nextRow)*rowStep
			}
			nextRow++
		} else {
			sum := 0.0
			for _, kid := range kids {
				sum += place(kid)
			}
			y = sum / float64(len(kids))
		}

		positions[id] = [2]float64{x, y}
		return y
	}
	place(rootID)

	return positions
}

func countLeaves(id string, children map[string][]string) int {
	kids := children[id]
	if len(kids) == 0 {
		return 1
	}
	total := 0
	for _, kid := range kids {
		total += countLeaves(kid, children)
	}
	return total
}
