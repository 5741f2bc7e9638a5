package session

import (
	"sync"
	"time"

	"github.com/avtopoisk/vin-parts-bridge/internal/decode"
)

// Phase is where a conversation currently stands.
type Phase int

const (
	PhaseNew Phase = iota
	PhaseAwaitingVIN
	PhaseAwaitingConfirm
	PhaseAwaitingPartQuery
	PhasePresentedOptions
	PhaseSelected
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "new"
	case PhaseAwaitingVIN:
		return "awaiting_vin"
	case PhaseAwaitingConfirm:
		return "awaiting_confirm"
	case PhaseAwaitingPartQuery:
		return "awaiting_part_query"
	case PhasePresentedOptions:
		return "presented_options"
	case PhaseSelected:
		return "selected"
	}
	return "unknown"
}

// Session is the per-user conversation state. Mutated only by the
// conversation engine; the dispatcher guarantees one event at a time per
// chat, so no field needs its own locking.
type Session struct {
	VIN             string
	Vehicle         *decode.Vehicle
	Phase           Phase
	PendingQuery    string
	SelectedArticle string
	UpdatedAt       time.Time
}

// Store keeps sessions for the lifetime of the process. Entries are created
// lazily on first access and never expire.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns the session for a chat, creating an empty one if absent.
func (s *Store) Get(chatID int64) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[chatID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[chatID]; ok {
		return sess
	}
	sess = &Session{Phase: PhaseNew, UpdatedAt: time.Now()}
	s.sessions[chatID] = sess
	return sess
}

// Put replaces the session for a chat.
func (s *Store) Put(chatID int64, sess *Session) {
	sess.UpdatedAt = time.Now()
	s.mu.Lock()
	s.sessions[chatID] = sess
	s.mu.Unlock()
}

// Clear resets a chat back to a fresh session awaiting a VIN.
func (s *Store) Clear(chatID int64) {
	s.mu.Lock()
	s.sessions[chatID] = &Session{Phase: PhaseAwaitingVIN, UpdatedAt: time.Now()}
	s.mu.Unlock()
}

// Len reports how many sessions exist (monitoring only).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
