package mindmap

import (
	"fmt"
	"sync"

	"brainstormer/backend/pkg/errors"
	"brainstormer/backend/pkg/logger"
	"go.uber.org/zap"
)

// Store owns the node/link collection, id allocation and the depth/parent
// invariants. All mutations go through the store and are atomic with
// respect to layout snapshots.
type Store struct {
	mu     sync.RWMutex
	nodes  map[string]*Node
	order  []string // insertion order, for stable snapshots
	links  []Link
	logger *zap.Logger
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		nodes:  make(map[string]*Node),
		logger: logger.Get(),
	}
}

// CreateRoot clears all prior state and installs the seed node at the
// given canvas position
func (s *Store) CreateRoot(name string, x, y float64) Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*Node)
	s.order = nil
	s.links = nil

	root := &Node{
		ID:    RootID,
		Name:  name,
		Value: RootValue,
		Depth: 0,
		X:     x,
		Y:     y,
	}
	s.nodes[root.ID] = root
	s.order = append(s.order, root.ID)

	s.logger.Info("Mind map reset", zap.String("root", name))
	return *root
}

// CanAddNodes reports whether n more nodes fit under the cap
func (s *Store) CanAddNodes(n int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)+n <= MaxNodes
}

// Count returns the current node count
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Get returns a copy of the node with the given id
func (s *Store) Get(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *node, true
}

// CommitExpansion atomically adds one batch of children under parentID.
// Ids take the form {parentID}_{ordinal} where the ordinal continues from
// the existing child count, so ids stay stable across re-layouts. Names
// that duplicate the parent's ancestor chain or the clicked set are
// dropped here as a defensive re-check; the orchestrator filters first.
func (s *Store) CommitExpansion(parentID string, children []NewChild) (Expansion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.nodes[parentID]
	if !ok {
		return Expansion{}, errors.NewUnknownParent(parentID)
	}

	names := make([]string, len(children))
	for i, child := range children {
		names[i] = child.Name
	}
	accepted := Filter(names, s.contextNamesLocked(parentID))

	if len(s.nodes)+len(accepted) > MaxNodes {
		return Expansion{}, errors.NewCapacityExceeded(len(s.nodes), len(accepted), MaxNodes)
	}

	byName := make(map[string]NewChild, len(children))
	for _, child := range children {
		byName[normalizeName(child.Name)] = child
	}

	ordinal := s.childCountLocked(parentID)
	value := BranchValue
	if parent.Depth >= 1 {
		value = LeafValue
	}

	var result Expansion
	for i, name := range accepted {
		child := byName[normalizeName(name)]
		node := &Node{
			ID:       fmt.Sprintf("%s_%d", parentID, ordinal+i),
			Name:     name,
			Value:    value,
			ParentID: parentID,
			Depth:    parent.Depth + 1,
			X:        child.X,
			Y:        child.Y,
		}
		s.nodes[node.ID] = node
		s.order = append(s.order, node.ID)
		result.Nodes = append(result.Nodes, *node)

		link := Link{Source: parentID, Target: node.ID, Distance: LinkDistance}
		s.links = append(s.links, link)
		result.Links = append(result.Links, link)
	}

	parent.Expanded = true

	s.logger.Debug("Expansion committed",
		zap.String("parent", parentID),
		zap.Int("added", len(result.Nodes)),
		zap.Int("total", len(s.nodes)),
	)

	return result, nil
}

// Pin fixes a node at the given position; the layout engine must not
// move it until unpinned
func (s *Store) Pin(id string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return errors.NewNodeNotFound(id)
	}
	node.Pinned = true
	node.X = x
	node.Y = y
	return nil
}

// Unpin releases a node back to force-driven movement
func (s *Store) Unpin(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return errors.NewNodeNotFound(id)
	}
	node.Pinned = false
	return nil
}

// MarkClicked records a user selection; clicked names join the dedup
// context for every later expansion anywhere in the graph
func (s *Store) MarkClicked(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return errors.NewNodeNotFound(id)
	}
	node.Clicked = true
	return nil
}

// SetPosition writes a node's position. Used by the layout engine for
// unpinned nodes and by drag handling for pinned ones.
func (s *Store) SetPosition(id string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node, ok := s.nodes[id]; ok {
		node.X = x
		node.Y = y
	}
}

// ApplyPositions writes back a batch of positions, skipping pinned nodes.
// Topology is never touched here.
func (s *Store) ApplyPositions(positions map[string][2]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, pos := range positions {
		if node, ok := s.nodes[id]; ok && !node.Pinned {
			node.X = pos[0]
			node.Y = pos[1]
		}
	}
}

// ReplaceAll swaps in a full node/link set, used by tree reorganization.
// Every existing node id must survive with its ParentID and Depth intact.
func (s *Store) ReplaceAll(nodes []Node, links []Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	incoming := make(map[string]*Node, len(nodes))
	order := make([]string, 0, len(nodes))
	for i := range nodes {
		node := nodes[i]
		if _, dup := incoming[node.ID]; dup {
			return errors.NewBaseError(errors.ErrorTypeGraph, fmt.Sprintf("duplicate node id in replacement: %s", node.ID), nil)
		}
		incoming[node.ID] = &node
		order = append(order, node.ID)
	}

	for id, existing := range s.nodes {
		replacement, ok := incoming[id]
		if !ok {
			return errors.NewBaseError(errors.ErrorTypeGraph, fmt.Sprintf("replacement drops node: %s", id), nil)
		}
		if replacement.ParentID != existing.ParentID || replacement.Depth != existing.Depth {
			return errors.NewBaseError(errors.ErrorTypeGraph, fmt.Sprintf("replacement rewires node: %s", id), nil)
		}
	}

	for _, link := range links {
		if _, ok := incoming[link.Source]; !ok {
			return errors.NewBaseError(errors.ErrorTypeGraph, fmt.Sprintf("link source missing: %s", link.Source), nil)
		}
		if _, ok := incoming[link.Target]; !ok {
			return errors.NewBaseError(errors.ErrorTypeGraph, fmt.Sprintf("link target missing: %s", link.Target), nil)
		}
	}

	s.nodes = incoming
	s.order = order
	s.links = append([]Link(nil), links...)
	return nil
}

// Restore loads a previously captured snapshot wholesale, replacing
// whatever the store currently holds. Unlike ReplaceAll it performs no
// validation: the snapshot came from this store and is trusted.
func (s *Store) Restore(graph Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*Node, len(graph.Nodes))
	s.order = make([]string, 0, len(graph.Nodes))
	for i := range graph.Nodes {
		node := graph.Nodes[i]
		s.nodes[node.ID] = &node
		s.order = append(s.order, node.ID)
	}
	s.links = append([]Link(nil), graph.Links...)
}

// Snapshot returns a copy of the whole graph in insertion order
func (s *Store) Snapshot() Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()

	graph := Graph{
		Nodes: make([]Node, 0, len(s.order)),
		Links: append([]Link(nil), s.links...),
	}
	for _, id := range s.order {
		if node, ok := s.nodes[id]; ok {
			graph.Nodes = append(graph.Nodes, *node)
		}
	}
	return graph
}

// ParentChain walks from the node up to the root and returns the ancestor
// names root-first. The node's own name is not included.
func (s *Store) ParentChain(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chain []string
	current, ok := s.nodes[id]
	for ok && current.ParentID != "" {
		parent, found := s.nodes[current.ParentID]
		if !found {
			break
		}
		chain = append([]string{parent.Name}, chain...)
		current, ok = parent, true
	}
	return chain
}

// ClickedNames returns the names of every node the user has selected,
// regardless of branch
func (s *Store) ClickedNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for _, id := range s.order {
		if node, ok := s.nodes[id]; ok && node.Clicked {
			names = append(names, node.Name)
		}
	}
	return names
}

// ChildCount returns the number of existing children of a node
func (s *Store) ChildCount(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.childCountLocked(id)
}

// FirstChild returns the earliest-inserted child of a node
func (s *Store) FirstChild(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, candidate := range s.order {
		if node, ok := s.nodes[candidate]; ok && node.ParentID == id {
			return *node, true
		}
	}
	return Node{}, false
}

func (s *Store) childCountLocked(id string) int {
	count := 0
	for _, node := range s.nodes {
		if node.ParentID == id {
			count++
		}
	}
	return count
}

// contextNamesLocked builds the insertion-validation context: the full
// ancestor chain of parentID (including the parent itself) plus every
// clicked name
func (s *Store) contextNamesLocked(parentID string) []string {
	var names []string
	current, ok := s.nodes[parentID]
	for ok {
		names = append(names, current.Name)
		if current.ParentID == "" {
			break
		}
		current, ok = s.nodes[current.ParentID]
	}
	for _, id := range s.order {
		if node, found := s.nodes[id]; found && node.Clicked {
			names = append(names, node.Name)
		}
	}
	return names
}
