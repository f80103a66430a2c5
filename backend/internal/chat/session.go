package chat

import (
	"sync"

	"github.com/google/uuid"

	"brainstormer/backend/internal/adapter"
)

// Session is one conversation transcript. The transcript lives on the
// server so reconnecting clients keep their context.
type Session struct {
	ID string

	mu       sync.Mutex
	messages []adapter.Message
}

// AppendUser records a user turn
func (s *Session) AppendUser(content string) {
	s.append(adapter.RoleUser, content)
}

// AppendAI records a completed assistant turn
func (s *Session) AppendAI(content string) {
	s.append(adapter.RoleAssistant, content)
}

func (s *Session) append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, adapter.Message{Role: role, Content: content})
}

// History returns a copy of the transcript in order
func (s *Session) History() []adapter.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]adapter.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SessionStore holds the live sessions, keyed by ID
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create registers a new empty session
func (st *SessionStore) Create() *Session {
	session := &Session{ID: uuid.NewString()}
	st.mu.Lock()
	st.sessions[session.ID] = session
	st.mu.Unlock()
	return session
}

// Get looks a session up by ID
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	session, ok := st.sessions[id]
	return session, ok
}

// GetOrCreate returns the session for the ID, or a fresh one when the
// ID is unknown or empty
func (st *SessionStore) GetOrCreate(id string) *Session {
	if id != "" {
		if session, ok := st.Get(id); ok {
			return session
		}
	}
	return st.Create()
}
