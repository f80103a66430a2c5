package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"brainstormer/backend/internal/adapter"
	"brainstormer/backend/internal/search"
	"brainstormer/backend/pkg/logger"
)

const systemPrompt = "You are a helpful AI assistant for brainstorming business ideas. Be concise."

// Streamer is the generation collaborator as the chat service sees it
type Streamer interface {
	Stream(ctx context.Context, req adapter.Request) (adapter.TokenSource, error)
}

// Searcher supplies web results when a chat turn asks for them
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Service answers chat turns over a server-side transcript
type Service struct {
	sessions *SessionStore
	streamer Streamer
	searcher Searcher
	logger   *zap.Logger
}

func NewService(sessions *SessionStore, streamer Streamer, searcher Searcher) *Service {
	return &Service{
		sessions: sessions,
		streamer: streamer,
		searcher: searcher,
		logger:   logger.Get(),
	}
}

// Stream answers one chat turn. The user message is recorded on the
// session up front; the caller records the assistant reply with Record
// once the stream has drained. When useSearch is set, web results for
// the message are injected as an extra user message before the turn.
func (s *Service) Stream(ctx context.Context, sessionID, message string, useSearch bool) (*Session, adapter.TokenSource, error) {
	session := s.sessions.GetOrCreate(sessionID)

	messages := session.History()

	if useSearch && s.searcher != nil {
		results, err := s.searcher.Search(ctx, message)
		if err != nil {
			// search is an enrichment, the turn still goes through
			s.logger.Warn("Chat search failed, answering without results",
				zap.String("session", session.ID),
				zap.Error(err),
			)
		} else if len(results) > 0 {
			messages = append(messages, adapter.Message{
				Role:    adapter.RoleUser,
				Content: "Here are some relevant search results:\n" + formatResults(results),
			})
		}
	}

	messages = append(messages, adapter.Message{Role: adapter.RoleUser, Content: message})

	source, err := s.streamer.Stream(ctx, adapter.Request{
		System:   systemPrompt,
		Messages: messages,
		Fast:     true,
	})
	if err != nil {
		return nil, nil, err
	}

	session.AppendUser(message)
	return session, source, nil
}

// Record stores a completed assistant reply on the session
func (s *Service) Record(session *Session, reply string) {
	session.AppendAI(reply)
}

func formatResults(results []search.Result) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.Title + ": " + r.Content
	}
	return strings.Join(lines, "\n")
}
