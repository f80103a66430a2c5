package expand

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"strings"

	"brainstormer/backend/internal/adapter"
	"brainstormer/backend/internal/mindmap"
	"brainstormer/backend/pkg/errors"
	"brainstormer/backend/pkg/logger"
	"go.uber.org/zap"
)

// Generator is the generation collaborator as the orchestrator sees it
type Generator interface {
	Complete(ctx context.Context, req adapter.Request) (string, error)
}

// Orchestrator drives "expand node N" requests: prompt construction,
// suggestion validation, placement and the atomic commit. It is
// stateless between calls; serializing concurrent expansions of the
// same node is the caller's job.
type Orchestrator struct {
	store     *mindmap.Store
	generator Generator
	seedIdea  string
	logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator over the given store and
// generation collaborator
func NewOrchestrator(store *mindmap.Store, generator Generator) *Orchestrator {
	return &Orchestrator{
		store:     store,
		generator: generator,
		logger:    logger.Get(),
	}
}

// suggestion is the shape each element of the generator's JSON array
// must take
type suggestion struct {
	Name string `json:"name"`
}

// GenerateRoot installs the seed idea at the canvas center and grows
// the first ring around it. The previous graph is replaced only once
// the first ring is committed; on any failure it is restored intact.
func (o *Orchestrator) GenerateRoot(ctx context.Context, seedIdea string, width, height float64) (mindmap.Graph, error) {
	seedIdea = strings.TrimSpace(seedIdea)
	if seedIdea == "" {
		return mindmap.Graph{}, errors.NewBaseError(errors.ErrorTypeGraph, "seed idea is empty", nil)
	}

	prior := o.store.Snapshot()
	priorSeed := o.seedIdea

	o.seedIdea = seedIdea
	root := o.store.CreateRoot(seedIdea, width/2, height/2)

	// the first ring spreads evenly around the seed
	firstRing := func(parent mindmap.Node, names []string) []mindmap.NewChild {
		children := make([]mindmap.NewChild, len(names))
		for i, name := range names {
			angle := 2 * math.Pi * float64(i) / 3
			children[i] = mindmap.NewChild{
				Name: name,
				X:    parent.X + mindmap.NodeDistance*math.Cos(angle),
				Y:    parent.Y + mindmap.NodeDistance*math.Sin(angle),
			}
		}
		return children
	}

	if _, err := o.expand(ctx, root.ID, 3, firstRing); err != nil {
		o.store.Restore(prior)
		o.seedIdea = priorSeed
		return mindmap.Graph{}, err
	}
	return o.store.Snapshot(), nil
}

// Expand requests and commits one batch of child suggestions for the
// node. Any failure surfaces immediately and leaves the graph exactly
// as it was.
func (o *Orchestrator) Expand(ctx context.Context, nodeID string) (mindmap.Expansion, error) {
	return o.expand(ctx, nodeID, mindmap.MaxBatch, o.place)
}

// placementFunc computes canvas positions for a batch of accepted names
type placementFunc func(parent mindmap.Node, names []string) []mindmap.NewChild

func (o *Orchestrator) expand(ctx context.Context, nodeID string, limit int, place placementFunc) (mindmap.Expansion, error) {
	node, ok := o.store.Get(nodeID)
	if !ok {
		return mindmap.Expansion{}, errors.NewNodeNotFound(nodeID)
	}
	if !o.store.CanAddNodes(1) {
		return mindmap.Expansion{}, errors.NewCapacityExceeded(o.store.Count(), 1, mindmap.MaxNodes)
	}

	chain := o.store.ParentChain(nodeID)
	clicked := o.store.ClickedNames()
	dedupContext := append(append([]string{}, chain...), clicked...)
	promptContext := append(append([]string{}, dedupContext...), node.Name)

	depth := node.Depth
	if depth < 1 {
		depth = 1
	}

	content, err := o.generator.Complete(ctx, adapter.Request{
		System: suggestionSystemPrompt,
		Messages: []adapter.Message{
			{Content: buildSuggestionPrompt(node.Name, o.seed(), depth, promptContext)},
		},
		MaxTokens: 500,
	})
	if err != nil {
		return mindmap.Expansion{}, err
	}

	names, err := parseSuggestions(content)
	if err != nil {
		return mindmap.Expansion{}, err
	}

	accepted := mindmap.Filter(names, append(dedupContext, node.Name))
	if len(accepted) > limit {
		accepted = accepted[:limit]
	}
	if remaining := mindmap.MaxNodes - o.store.Count(); len(accepted) > remaining {
		accepted = accepted[:remaining]
	}
	if len(accepted) == 0 {
		o.logger.Debug("Expansion filtered to nothing", zap.String("node", nodeID))
		return mindmap.Expansion{}, nil
	}

	children := place(node, accepted)

	result, err := o.store.CommitExpansion(nodeID, children)
	if err != nil {
		return mindmap.Expansion{}, err
	}

	o.logger.Info("Node expanded",
		zap.String("node", nodeID),
		zap.Int("children", len(result.Nodes)),
	)
	return result, nil
}

// place computes the fan of positions for a batch of new children.
// With existing children the fan points away from the current cluster
// and rotates by (2π/3)×(childCount/3) per expansion round so repeated
// expansions never stack; otherwise it starts from a random angle.
// Each sibling sits π/6 further around at a fixed radius.
func (o *Orchestrator) place(parent mindmap.Node, names []string) []mindmap.NewChild {
	childCount := o.store.ChildCount(parent.ID)

	var baseAngle float64
	if first, ok := o.store.FirstChild(parent.ID); ok {
		baseAngle = math.Atan2(first.Y-parent.Y, first.X-parent.X) + math.Pi
	} else {
		baseAngle = rand.Float64() * 2 * math.Pi
	}
	rotation := (2 * math.Pi / 3) * (float64(childCount) / 3)
	startAngle := baseAngle + rotation

	children := make([]mindmap.NewChild, len(names))
	for i, name := range names {
		angle := startAngle + float64(i)*(math.Pi/6)
		children[i] = mindmap.NewChild{
			Name: name,
			X:    parent.X + mindmap.LinkDistance*math.Cos(angle),
			Y:    parent.Y + mindmap.LinkDistance*math.Sin(angle),
		}
	}
	return children
}

// seed returns the session's initial idea, falling back to the root
// node's name when GenerateRoot was bypassed
func (o *Orchestrator) seed() string {
	if o.seedIdea != "" {
		return o.seedIdea
	}
	if root, ok := o.store.Get(mindmap.RootID); ok {
		return root.Name
	}
	return ""
}

// parseSuggestions validates the generator's output against the
// expected JSON shape. Anything else is MalformedSuggestions — no
// fallback parse, the output is untrusted input.
func parseSuggestions(content string) ([]string, error) {
	cleaned := adapter.StripCodeFences(content)

	var parsed []suggestion
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, errors.NewMalformedSuggestions(content, err)
	}

	names := make([]string, 0, len(parsed))
	for _, s := range parsed {
		if strings.TrimSpace(s.Name) == "" {
			return nil, errors.NewMalformedSuggestions(content, nil)
		}
		names = append(names, s.Name)
	}
	return names, nil
}
