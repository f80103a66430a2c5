package mindmap

import (
	"fmt"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	store.CreateRoot("Eco Delivery", 600, 400)
	return store
}

func batch(names ...string) []NewChild {
	children := make([]NewChild, len(names))
	for i, name := range names {
		children[i] = NewChild{Name: name}
	}
	return children
}

func TestStore_CreateRootClearsState(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.CommitExpansion(RootID, batch("Bikes", "Drones")); err != nil {
		t.Fatalf("CommitExpansion failed: %v", err)
	}
	if store.Count() != 3 {
		t.Fatalf("Expected 3 nodes, got %d", store.Count())
	}

	root := store.CreateRoot("Fresh Start", 600, 400)
	if root.Depth != 0 || root.ParentID != "" {
		t.Errorf("Root must have depth 0 and no parent, got depth=%d parent=%q", root.Depth, root.ParentID)
	}
	if root.Value != RootValue {
		t.Errorf("Expected root value %v, got %v", RootValue, root.Value)
	}
	if store.Count() != 1 {
		t.Errorf("Expected reset store to hold only the root, got %d nodes", store.Count())
	}
	if len(store.Snapshot().Links) != 0 {
		t.Errorf("Expected reset store to hold no links")
	}
}

func TestStore_CommitExpansion(t *testing.T) {
	store := newTestStore(t)

	result, err := store.CommitExpansion(RootID, batch("A", "B", "C"))
	if err != nil {
		t.Fatalf("CommitExpansion failed: %v", err)
	}

	if len(result.Nodes) != 3 {
		t.Fatalf("Expected 3 new nodes, got %d", len(result.Nodes))
	}
	if len(result.Links) != 3 {
		t.Fatalf("Expected 3 new links, got %d", len(result.Links))
	}
	for i, node := range result.Nodes {
		expectedID := fmt.Sprintf("%s_%d", RootID, i)
		if node.ID != expectedID {
			t.Errorf("Expected id %s, got %s", expectedID, node.ID)
		}
		if node.Depth != 1 {
			t.Errorf("Expected depth 1, got %d", node.Depth)
		}
		if node.Value != BranchValue {
			t.Errorf("Expected first-ring value %v, got %v", BranchValue, node.Value)
		}
		if result.Links[i].Source != RootID || result.Links[i].Target != node.ID {
			t.Errorf("Link %d does not point from the expanded node: %+v", i, result.Links[i])
		}
	}
}

func TestStore_CommitExpansion_OrdinalsContinue(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.CommitExpansion(RootID, batch("A", "B", "C")); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	second, err := store.CommitExpansion(RootID, batch("D", "E"))
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}

	if second.Nodes[0].ID != "center_3" || second.Nodes[1].ID != "center_4" {
		t.Errorf("Ordinals must continue from existing child count, got %s, %s",
			second.Nodes[0].ID, second.Nodes[1].ID)
	}
}

func TestStore_CommitExpansion_DeeperValues(t *testing.T) {
	store := newTestStore(t)

	first, err := store.CommitExpansion(RootID, batch("A"))
	if err != nil {
		t.Fatalf("first ring: %v", err)
	}
	second, err := store.CommitExpansion(first.Nodes[0].ID, batch("A1"))
	if err != nil {
		t.Fatalf("second ring: %v", err)
	}

	if second.Nodes[0].Value != LeafValue {
		t.Errorf("Expected deeper value %v, got %v", LeafValue, second.Nodes[0].Value)
	}
	if second.Nodes[0].Depth != 2 {
		t.Errorf("Expected depth 2, got %d", second.Nodes[0].Depth)
	}
}

func TestStore_CommitExpansion_UnknownParent(t *testing.T) {
	store := newTestStore(t)
	before := store.Snapshot()

	_, err := store.CommitExpansion("ghost", batch("A"))
	if err == nil {
		t.Fatal("Expected UnknownParent error")
	}

	after := store.Snapshot()
	if len(after.Nodes) != len(before.Nodes) || len(after.Links) != len(before.Links) {
		t.Errorf("Failed commit must leave node/link counts unchanged")
	}
}

func TestStore_CapacityNeverExceeded(t *testing.T) {
	store := newTestStore(t)

	parent := RootID
	for i := 0; i < 12; i++ {
		result, err := store.CommitExpansion(parent, batch(
			fmt.Sprintf("idea %d-a", i),
			fmt.Sprintf("idea %d-b", i),
			fmt.Sprintf("idea %d-c", i),
		))
		if err != nil {
			break
		}
		if store.Count() > MaxNodes {
			t.Fatalf("Node count %d exceeds cap after batch %d", store.Count(), i)
		}
		if len(result.Nodes) > 0 {
			parent = result.Nodes[0].ID
		}
	}

	if store.CanAddNodes(MaxNodes) {
		t.Errorf("CanAddNodes(%d) should be false on a populated store", MaxNodes)
	}
}

func TestStore_CommitExpansion_FiltersAncestorDuplicates(t *testing.T) {
	store := newTestStore(t)

	result, err := store.CommitExpansion(RootID, batch("eco delivery", "Solar Bikes"))
	if err != nil {
		t.Fatalf("CommitExpansion failed: %v", err)
	}

	if len(result.Nodes) != 1 || result.Nodes[0].Name != "Solar Bikes" {
		t.Errorf("Expected ancestor duplicate to be dropped, got %+v", result.Nodes)
	}
}

func TestStore_PinUnpin(t *testing.T) {
	store := newTestStore(t)

	if err := store.Pin(RootID, 50, 60); err != nil {
		t.Fatalf("Pin failed: %v", err)
	}
	node, _ := store.Get(RootID)
	if !node.Pinned || node.X != 50 || node.Y != 60 {
		t.Errorf("Pin must set the authoritative position, got %+v", node)
	}

	store.ApplyPositions(map[string][2]float64{RootID: {0, 0}})
	node, _ = store.Get(RootID)
	if node.X != 50 || node.Y != 60 {
		t.Errorf("ApplyPositions must not move a pinned node")
	}

	if err := store.Unpin(RootID); err != nil {
		t.Fatalf("Unpin failed: %v", err)
	}
	store.ApplyPositions(map[string][2]float64{RootID: {10, 20}})
	node, _ = store.Get(RootID)
	if node.X != 10 || node.Y != 20 {
		t.Errorf("ApplyPositions must move an unpinned node")
	}

	if err := store.Pin("ghost", 0, 0); err == nil {
		t.Error("Pin on an unknown node must fail")
	}
}

func TestStore_ParentChainAndClicked(t *testing.T) {
	store := newTestStore(t)

	first, _ := store.CommitExpansion(RootID, batch("Bikes"))
	second, _ := store.CommitExpansion(first.Nodes[0].ID, batch("Cargo Trikes"))
	leaf := second.Nodes[0]

	chain := store.ParentChain(leaf.ID)
	if len(chain) != 2 || chain[0] != "Eco Delivery" || chain[1] != "Bikes" {
		t.Errorf("Expected root-first ancestor chain, got %v", chain)
	}

	if err := store.MarkClicked(leaf.ID); err != nil {
		t.Fatalf("MarkClicked failed: %v", err)
	}
	clicked := store.ClickedNames()
	if len(clicked) != 1 || clicked[0] != "Cargo Trikes" {
		t.Errorf("Expected clicked names [Cargo Trikes], got %v", clicked)
	}
}

func TestStore_ReplaceAll(t *testing.T) {
	store := newTestStore(t)
	first, _ := store.CommitExpansion(RootID, batch("A", "B"))

	snapshot := store.Snapshot()
	for i := range snapshot.Nodes {
		snapshot.Nodes[i].X = float64(i * 100)
		snapshot.Nodes[i].Y = 42
		snapshot.Nodes[i].Pinned = true
	}

	if err := store.ReplaceAll(snapshot.Nodes, snapshot.Links); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	node, ok := store.Get(first.Nodes[1].ID)
	if !ok {
		t.Fatal("ReplaceAll must preserve existing ids")
	}
	if node.ParentID != RootID || node.Depth != 1 {
		t.Errorf("ReplaceAll must preserve parent and depth, got %+v", node)
	}

	// Dropping a node is rejected
	if err := store.ReplaceAll(snapshot.Nodes[:1], nil); err == nil {
		t.Error("ReplaceAll dropping nodes must fail")
	}

	// Dangling links are rejected
	badLinks := append([]Link(nil), snapshot.Links...)
	badLinks = append(badLinks, Link{Source: RootID, Target: "ghost"})
	if err := store.ReplaceAll(snapshot.Nodes, badLinks); err == nil {
		t.Error("ReplaceAll with a dangling link must fail")
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := newTestStore(t)
	snapshot := store.Snapshot()
	snapshot.Nodes[0].Name = "mutated"

	node, _ := store.Get(RootID)
	if node.Name != "Eco Delivery" {
		t.Error("Mutating a snapshot must not affect the store")
	}
}

func TestRestoreBringsBackACapturedSnapshot(t *testing.T) {
	store := NewStore()
	store.CreateRoot("Original", 600, 400)
	if _, err := store.CommitExpansion(RootID, []NewChild{{Name: "Keeper", X: 700, Y: 400}}); err != nil {
		t.Fatalf("CommitExpansion failed: %v", err)
	}
	saved := store.Snapshot()

	store.CreateRoot("Replacement", 600, 400)
	if store.Count() != 1 {
		t.Fatalf("Reset expected, got %d nodes", store.Count())
	}

	store.Restore(saved)

	if store.Count() != 2 {
		t.Fatalf("Expected the saved graph back, got %d nodes", store.Count())
	}
	root, _ := store.Get(RootID)
	if root.Name != "Original" {
		t.Errorf("Root name = %q, want Original", root.Name)
	}
	if _, ok := store.Get("center_0"); !ok {
		t.Error("Child missing after restore")
	}
	if got := store.Snapshot(); len(got.Links) != 1 {
		t.Errorf("Links = %d, want 1", len(got.Links))
	}

	// the restored graph is a copy, the saved snapshot stays untouched
	store.MarkClicked("center_0")
	if saved.Nodes[1].Clicked {
		t.Error("Restore must not alias the snapshot's nodes")
	}
}
