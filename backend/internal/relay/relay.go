package relay

import (
	"context"
	"io"

	"brainstormer/backend/internal/adapter"
	"brainstormer/backend/pkg/logger"
	"go.uber.org/zap"
)

// Event is one element of a relayed stream: a partial-content delta, the
// single terminal Done marker, or a distinguished terminal error. The
// consumer reconstructs the full text by concatenating Content payloads;
// partial content already delivered is never rolled back.
type Event struct {
	Content string
	Done    bool
	Err     error
}

// Open proxies a token source to the caller as an ordered event channel.
// The sequence is lazy, finite and non-restartable: content events in
// arrival order, then exactly one Done (or Err) event, then the channel
// closes. Cancelling the context abandons the source; no further events
// are delivered.
func Open(ctx context.Context, source adapter.TokenSource) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)
		defer source.Close()

		log := logger.Get()
		for {
			token, err := source.Recv()
			if err == io.EOF {
				deliver(ctx, events, Event{Done: true})
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					// consumer walked away; stay silent
					return
				}
				log.Warn("Stream relay terminated early", zap.Error(err))
				deliver(ctx, events, Event{Err: err})
				return
			}
			if !deliver(ctx, events, Event{Content: token}) {
				return
			}
		}
	}()

	return events
}

// deliver sends one event unless the consumer is gone
func deliver(ctx context.Context, events chan<- Event, event Event) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// Collect drains a stream into the accumulated text. It returns whatever
// content arrived before the terminal event, plus the terminal error if
// the stream ended abnormally.
func Collect(ctx context.Context, events <-chan Event) (string, error) {
	var text string
	for event := range events {
		switch {
		case event.Err != nil:
			return text, event.Err
		case event.Done:
			return text, nil
		default:
			text += event.Content
		}
	}
	return text, ctx.Err()
}
