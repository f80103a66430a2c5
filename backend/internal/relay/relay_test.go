package relay

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSource plays back a fixed token sequence, optionally ending in an
// error instead of io.EOF
type fakeSource struct {
	tokens []string
	err    error
	next   int
	closed atomic.Bool
}

func (f *fakeSource) Recv() (string, error) {
	if f.next >= len(f.tokens) {
		if f.err != nil {
			return "", f.err
		}
		return "", io.EOF
	}
	token := f.tokens[f.next]
	f.next++
	return token, nil
}

func (f *fakeSource) Close() error {
	f.closed.Store(true)
	return nil
}

func TestOpen_DeliversTokensThenDone(t *testing.T) {
	source := &fakeSource{tokens: []string{"Hello", ", ", "world"}}
	events := Open(context.Background(), source)

	var text string
	var done int
	for event := range events {
		if event.Err != nil {
			t.Fatalf("Unexpected error event: %v", event.Err)
		}
		if event.Done {
			done++
			continue
		}
		text += event.Content
	}

	if text != "Hello, world" {
		t.Errorf("Accumulated text = %q", text)
	}
	if done != 1 {
		t.Errorf("Expected exactly one Done marker, got %d", done)
	}
	if !source.closed.Load() {
		t.Error("Source must be closed after the stream finishes")
	}
}

func TestOpen_AbandonedStreamStopsDelivering(t *testing.T) {
	source := &fakeSource{tokens: []string{"a", "b", "c", "d", "e"}}
	ctx, cancel := context.WithCancel(context.Background())
	events := Open(ctx, source)

	var text string
	for i := 0; i < 2; i++ {
		event := <-events
		text += event.Content
	}
	cancel()

	// the relay goroutine must wind down and close the channel without
	// delivering anything further
	var late int
	for event := range events {
		if event.Content != "" || event.Done || event.Err != nil {
			late++
		}
	}
	if late > 1 {
		t.Errorf("Received %d events after abandoning the stream", late)
	}
	if text != "ab" {
		t.Errorf("Accumulated text = %q, want the two delivered events only", text)
	}

	deadline := time.Now().Add(time.Second)
	for !source.closed.Load() {
		if time.Now().After(deadline) {
			t.Fatal("Underlying source never closed after cancellation")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestOpen_ErrorIsTerminalAndPartialContentKept(t *testing.T) {
	source := &fakeSource{tokens: []string{"partial "}, err: errors.New("quota exceeded")}
	events := Open(context.Background(), source)

	text, err := Collect(context.Background(), events)
	if err == nil {
		t.Fatal("Expected terminal error")
	}
	if text != "partial " {
		t.Errorf("Partial content must be retained, got %q", text)
	}
}

func TestCollect_FullStream(t *testing.T) {
	source := &fakeSource{tokens: []string{"one", " two"}}
	text, err := Collect(context.Background(), Open(context.Background(), source))
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if text != "one two" {
		t.Errorf("Collect = %q", text)
	}
}
