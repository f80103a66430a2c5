package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"brainstormer/backend/internal/adapter"
	"brainstormer/backend/internal/search"
)

type staticSource struct {
	tokens []string
	pos    int
}

func (s *staticSource) Recv() (string, error) {
	if s.pos >= len(s.tokens) {
		return "", io.EOF
	}
	token := s.tokens[s.pos]
	s.pos++
	return token, nil
}

func (s *staticSource) Close() error { return nil }

type fakeStreamer struct {
	lastReq adapter.Request
	tokens  []string
}

func (f *fakeStreamer) Stream(_ context.Context, req adapter.Request) (adapter.TokenSource, error) {
	f.lastReq = req
	return &staticSource{tokens: f.tokens}, nil
}

type fakeSearcher struct {
	results []search.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]search.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func TestStream_RecordsUserTurnAndBuildsRequest(t *testing.T) {
	streamer := &fakeStreamer{tokens: []string{"hi"}}
	svc := NewService(NewSessionStore(), streamer, nil)

	session, source, err := svc.Stream(context.Background(), "", "What about pet tech?", false)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer source.Close()

	if streamer.lastReq.System == "" || !streamer.lastReq.Fast {
		t.Errorf("Chat turns must use the fast model with a system prompt, got %+v", streamer.lastReq)
	}
	msgs := streamer.lastReq.Messages
	if len(msgs) != 1 || msgs[0].Content != "What about pet tech?" {
		t.Fatalf("Unexpected messages: %+v", msgs)
	}

	history := session.History()
	if len(history) != 1 || history[0].Role != adapter.RoleUser {
		t.Errorf("User turn must be on the transcript, got %+v", history)
	}
}

func TestStream_HistoryCarriesAcrossTurns(t *testing.T) {
	streamer := &fakeStreamer{tokens: []string{"ok"}}
	svc := NewService(NewSessionStore(), streamer, nil)

	session, source, err := svc.Stream(context.Background(), "", "first", false)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	source.Close()
	svc.Record(session, "reply one")

	_, source, err = svc.Stream(context.Background(), session.ID, "second", false)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	source.Close()

	msgs := streamer.lastReq.Messages
	want := []string{"first", "reply one", "second"}
	if len(msgs) != len(want) {
		t.Fatalf("Expected %d messages, got %+v", len(want), msgs)
	}
	for i, content := range want {
		if msgs[i].Content != content {
			t.Errorf("Message %d = %q, want %q", i, msgs[i].Content, content)
		}
	}
	if msgs[1].Role != adapter.RoleAssistant {
		t.Errorf("Recorded reply must be an assistant turn, got %q", msgs[1].Role)
	}
}

func TestStream_UnknownSessionGetsAFreshOne(t *testing.T) {
	svc := NewService(NewSessionStore(), &fakeStreamer{}, nil)

	session, source, err := svc.Stream(context.Background(), "no-such-session", "hello", false)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	source.Close()
	if session.ID == "no-such-session" || session.ID == "" {
		t.Errorf("Expected a fresh session ID, got %q", session.ID)
	}
}

func TestStream_SearchResultsJoinTheTurn(t *testing.T) {
	streamer := &fakeStreamer{}
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Pet Tech 2026", Content: "wearables are growing"},
		{Title: "Market report", Content: "subscriptions dominate"},
	}}
	svc := NewService(NewSessionStore(), streamer, searcher)

	_, source, err := svc.Stream(context.Background(), "", "pet wearables?", true)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	source.Close()

	if len(searcher.queries) != 1 || searcher.queries[0] != "pet wearables?" {
		t.Errorf("The user message is the search query, got %v", searcher.queries)
	}
	msgs := streamer.lastReq.Messages
	if len(msgs) != 2 {
		t.Fatalf("Expected search context plus the user message, got %+v", msgs)
	}
	if !strings.HasPrefix(msgs[0].Content, "Here are some relevant search results:\n") {
		t.Errorf("Unexpected search context message: %q", msgs[0].Content)
	}
	if !strings.Contains(msgs[0].Content, "Pet Tech 2026: wearables are growing") {
		t.Errorf("Results must be title: content lines, got %q", msgs[0].Content)
	}
	if msgs[1].Content != "pet wearables?" {
		t.Errorf("User message must come last, got %q", msgs[1].Content)
	}
}

func TestStream_SearchFailureDoesNotBlockTheTurn(t *testing.T) {
	streamer := &fakeStreamer{tokens: []string{"still here"}}
	searcher := &fakeSearcher{err: fmt.Errorf("quota exceeded")}
	svc := NewService(NewSessionStore(), streamer, searcher)

	_, source, err := svc.Stream(context.Background(), "", "hello", true)
	if err != nil {
		t.Fatalf("A failed search must not fail the chat turn: %v", err)
	}
	source.Close()

	msgs := streamer.lastReq.Messages
	if len(msgs) != 1 || msgs[0].Content != "hello" {
		t.Errorf("Expected only the user message, got %+v", msgs)
	}
}
