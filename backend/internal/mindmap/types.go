package mindmap

// Node sizing and layout constants. Values are the visual weights the
// canvas renders; distances feed the force simulation.
const (
	// MaxNodes caps the whole graph
	MaxNodes = 32
	// MaxBatch caps a single expansion batch
	MaxBatch = 5

	// RootValue is the visual weight of the seed node
	RootValue = 30.0
	// BranchValue is the visual weight of first-ring nodes
	BranchValue = 20.0
	// LeafValue is the visual weight of deeper nodes
	LeafValue = 15.0

	// NodeDistance is the base separation between connected nodes
	NodeDistance = 100.0
	// LinkDistance is the default link length used for new children
	LinkDistance = NodeDistance * 1.2

	// RootID is the fixed id of the seed node
	RootID = "center"
)

// Node is a single concept on the canvas. The store is the sole owner;
// ParentID is a back-reference, never an ownership pointer.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Value    float64 `json:"val"`
	ParentID string  `json:"parentId,omitempty"`
	Depth    int     `json:"depth"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pinned   bool    `json:"pinned"`
	Clicked  bool    `json:"clicked"`
	Expanded bool    `json:"expanded"`
}

// Link connects two nodes by id. Distance, when non-zero, overrides the
// default link length in the force simulation.
type Link struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Distance float64 `json:"distance,omitempty"`
}

// Graph is a snapshot of the full node/link set
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// NewChild is one accepted suggestion with its computed placement,
// ready to be committed under a parent
type NewChild struct {
	Name string
	X    float64
	Y    float64
}

// Expansion is the set of nodes and links added by one committed batch
type Expansion struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}
