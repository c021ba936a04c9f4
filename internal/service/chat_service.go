package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ChlorophyllA/skin2/internal/adapter"
	"github.com/ChlorophyllA/skin2/internal/model"
)

const (
	// MaxHistory is how many messages (user and assistant) a session keeps.
	MaxHistory = 20
	// SessionIdleTTL is how long an untouched session survives.
	SessionIdleTTL = 24 * time.Hour
)

var (
	ErrSessionNotInitialized = errors.New("session not initialized")
	ErrEmptyQuestion         = errors.New("empty question")
)

// ChatService runs multi-turn consultations keyed by session id.
type ChatService interface {
	NewSession() string
	Ask(ctx context.Context, sessionID, question string) (string, error)
	History(sessionID string) []model.ChatMessage
}

type chatSession struct {
	history  []model.ChatMessage
	lastSeen time.Time
}

type chatServiceImpl struct {
	replier adapter.Replier
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*chatSession
}

func NewChatService(replier adapter.Replier) ChatService {
	return newChatService(replier, time.Now)
}

func newChatService(replier adapter.Replier, now func() time.Time) *chatServiceImpl {
	return &chatServiceImpl{
		replier:  replier,
		now:      now,
		sessions: make(map[string]*chatSession),
	}
}

// NewSession issues a fresh session id and evicts idle sessions.
func (s *chatServiceImpl) NewSession() string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	s.sessions[id] = &chatSession{lastSeen: s.now()}
	return id
}

// Ask answers question in the context of the session's history. An id that
// is unknown (for example after a restart) starts an empty history.
func (s *chatServiceImpl) Ask(ctx context.Context, sessionID, question string) (string, error) {
	if sessionID == "" {
		return "", ErrSessionNotInitialized
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	history := s.History(sessionID)
	reply, err := s.replier.Reply(ctx, history, question)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessionLocked(sessionID)
	sess.history = append(sess.history,
		model.ChatMessage{Role: "user", Content: question},
		model.ChatMessage{Role: "assistant", Content: reply},
	)
	if n := len(sess.history); n > MaxHistory {
		sess.history = append([]model.ChatMessage(nil), sess.history[n-MaxHistory:]...)
	}
	return reply, nil
}

// History returns a copy of the session's messages.
func (s *chatServiceImpl) History(sessionID string) []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessionLocked(sessionID)
	return append([]model.ChatMessage(nil), sess.history...)
}

func (s *chatServiceImpl) sessionLocked(id string) *chatSession {
	sess, ok := s.sessions[id]
	if !ok {
		sess = &chatSession{}
		s.sessions[id] = sess
	}
	sess.lastSeen = s.now()
	return sess
}

func (s *chatServiceImpl) evictLocked() {
	cutoff := s.now().Add(-SessionIdleTTL)
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
