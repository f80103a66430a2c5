package layout

import (
	"context"
	"testing"
	"time"

	"brainstormer/backend/internal/mindmap"
)

func TestRunner_PublishesPositionBatches(t *testing.T) {
	store := mindmap.NewStore()
	store.CreateRoot("Root", 600, 400)
	if _, err := store.CommitExpansion("center", []mindmap.NewChild{
		{Name: "A", X: 600, Y: 400},
		{Name: "B", X: 600, Y: 400},
	}); err != nil {
		t.Fatalf("CommitExpansion failed: %v", err)
	}

	engine := NewEngine(store, DefaultParams(1200, 800))
	runner := NewRunner(engine, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Start(ctx)

	select {
	case batch := <-runner.Positions():
		if len(batch) == 0 {
			t.Error("Expected a non-empty position batch")
		}
		for id := range batch {
			if _, ok := store.Get(id); !ok {
				t.Errorf("Batch references unknown node %q", id)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("No position batch within 2s of starting a hot simulation")
	}
}

func TestRunner_SlowConsumerGetsTheFreshestBatch(t *testing.T) {
	store := mindmap.NewStore()
	store.CreateRoot("Root", 600, 400)
	if _, err := store.CommitExpansion("center", []mindmap.NewChild{
		{Name: "A", X: 600, Y: 400},
	}); err != nil {
		t.Fatalf("CommitExpansion failed: %v", err)
	}

	engine := NewEngine(store, DefaultParams(1200, 800))
	runner := NewRunner(engine, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Start(ctx)

	// let many ticks pass without reading; the runner must not block
	time.Sleep(50 * time.Millisecond)

	select {
	case <-runner.Positions():
	case <-time.After(2 * time.Second):
		t.Fatal("Runner stalled behind an absent consumer")
	}
}
