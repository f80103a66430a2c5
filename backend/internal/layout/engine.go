package layout

import (
	"math"
	"sync"

	"brainstormer/backend/internal/mindmap"
	"brainstormer/backend/pkg/logger"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// Params are the tunable strengths of the simulation. Changing any of
// them requires a re-heat or the layout stays converged on stale values.
type Params struct {
	LinkStrength    float64 `json:"linkStrength"`
	ChargeStrength  float64 `json:"chargeStrength"`
	CollideStrength float64 `json:"collideStrength"`
	CenterStrength  float64 `json:"centerStrength"`
	GroupStrength   float64 `json:"groupStrength"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
}

// DefaultParams mirrors the canvas defaults
func DefaultParams(width, height float64) Params {
	return Params{
		LinkStrength:    1.0,
		ChargeStrength:  -500,
		CollideStrength: 0.7,
		CenterStrength:  0.1,
		GroupStrength:   0.1,
		Width:           width,
		Height:          height,
	}
}

const (
	alphaMin      = 0.001
	alphaDecay    = 0.0228 // 1 - alphaMin^(1/300)
	velocityDecay = 0.4
	collideRadius = mindmap.NodeDistance / 2
)

// Engine runs the continuous force simulation over the store's current
// snapshot. It reads topology, writes back positions only, and never
// moves pinned nodes.
type Engine struct {
	mu     sync.Mutex
	store  *mindmap.Store
	params Params
	alpha  float64
	vel    map[string]r2.Vec

	// shape of the graph at the last tick, for re-heat detection
	lastNodes int
	lastLinks int

	logger *zap.Logger
}

// NewEngine creates a simulation over the given store
func NewEngine(store *mindmap.Store, params Params) *Engine {
	return &Engine{
		store:  store,
		params: params,
		alpha:  1,
		vel:    make(map[string]r2.Vec),
		logger: logger.Get(),
	}
}

// Params returns the current tunable strengths
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// SetParams applies new strengths and re-heats the simulation
func (e *Engine) SetParams(params Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if params == e.params {
		return
	}
	e.params = params
	e.alpha = 1
	e.logger.Debug("Layout parameters updated",
		zap.Float64("link", params.LinkStrength),
		zap.Float64("charge", params.ChargeStrength),
		zap.Float64("collide", params.CollideStrength),
		zap.Float64("center", params.CenterStrength),
	)
}

// Resize updates the canvas dimensions and re-heats
func (e *Engine) Resize(width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.Width = width
	e.params.Height = height
	e.alpha = 1
}

// Reheat resets the simulation temperature so movement resumes
func (e *Engine) Reheat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.alpha = 1
}

// Active reports whether the simulation still has temperature left
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alpha >= alphaMin
}

// Alpha returns the current simulation temperature
func (e *Engine) Alpha() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alpha
}

// Step advances the simulation one tick: snapshot in, positions out.
// A change in graph shape since the previous tick re-heats automatically,
// so a commit between ticks never leaves the layout frozen.
func (e *Engine) Step() map[string][2]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	graph := e.store.Snapshot()
	if len(graph.Nodes) != e.lastNodes || len(graph.Links) != e.lastLinks {
		e.lastNodes = len(graph.Nodes)
		e.lastLinks = len(graph.Links)
		e.alpha = 1
	}

	if e.alpha < alphaMin || len(graph.Nodes) == 0 {
		return nil
	}

	pos := make(map[string]r2.Vec, len(graph.Nodes))
	pinned := make(map[string]bool, len(graph.Nodes))
	for _, node := range graph.Nodes {
		pos[node.ID] = r2.Vec{X: node.X, Y: node.Y}
		pinned[node.ID] = node.Pinned
		if _, ok := e.vel[node.ID]; !ok {
			e.vel[node.ID] = r2.Vec{}
		}
	}
	// drop velocities for nodes that no longer exist
	for id := range e.vel {
		if _, ok := pos[id]; !ok {
			delete(e.vel, id)
		}
	}

	e.applyLinkForce(graph, pos)
	e.applyChargeForce(graph, pos)
	e.applyCollideForce(graph, pos)
	e.applyGroupForce(graph, pos)

	// integrate velocities; pinned nodes stay anchored but their
	// positions already contributed to every force above. Their velocity
	// is zeroed each tick so releasing a pin mid-simulation does not
	// launch the node with force accumulated while it was held.
	positions := make(map[string][2]float64, len(pos))
	for id, p := range pos {
		if pinned[id] {
			e.vel[id] = r2.Vec{}
			positions[id] = [2]float64{p.X, p.Y}
			continue
		}
		v := e.vel[id].Scale(1 - velocityDecay)
		e.vel[id] = v
		p = p.Add(v)
		pos[id] = p
		positions[id] = [2]float64{p.X, p.Y}
	}

	e.applyCenterForce(pos, pinned, positions)

	e.store.ApplyPositions(positions)
	e.alpha += (0 - e.alpha) * alphaDecay

	return positions
}

// nudge accumulates a velocity contribution for a node
func (e *Engine) nudge(id string, delta r2.Vec) {
	e.vel[id] = e.vel[id].Add(delta)
}

// dist returns the distance between two points, floored to avoid
// division by zero on coincident nodes
func dist(a, b r2.Vec) float64 {
	d := r2.Norm(a.Sub(b))
	if d < 1e-6 {
		return 1e-6
	}
	return d
}

func jiggle(seed int) r2.Vec {
	angle := float64(seed) * 2.399963229728653 // golden angle keeps stacked nodes from jittering in lockstep
	return r2.Vec{X: math.Cos(angle) * 1e-3, Y: math.Sin(angle) * 1e-3}
}
