package adminbot

import (
	"sync"

	"github.com/mahdighaemi123/ActCastBot/internal/broadcast"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
	"github.com/mahdighaemi123/ActCastBot/internal/survey"
)

// State is the wizard step an operator session sits in.
type State string

const (
	StateIdle State = "idle"
	// Broadcast flow.
	StateAwaitRange  State = "await_range"
	StateAwaitManual State = "await_manual"
	StateCollecting  State = "collecting"
	StateConfirm     State = "confirm"
	// Survey flow.
	StateSurveyQuestion State = "survey_question"
	StateSurveyOptions  State = "survey_options"
	// Cast flow.
	StateCastName    State = "cast_name"
	StateCastContent State = "cast_content"
	StateCastDelete  State = "cast_delete"
)

// Session holds one operator's wizard progress. Updates are serialized
// by the global lock middleware, so sessions need no lock of their own.
type Session struct {
	State State

	// Broadcast flow.
	Selection  broadcast.Selection
	Recipients []int64
	Collector  *broadcast.Collector
	Bundle     []storage.MessageRef

	// Survey flow.
	SurveyBuilder *survey.Builder

	// Cast flow.
	CastName string
}

// Sessions is the per-operator session registry. All current callers
// run under the global lock; the map keeps its own mutex so a future
// detached caller cannot corrupt it silently.
type Sessions struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[int64]*Session)}
}

// Get returns the session for the operator, creating an idle one on
// first use.
func (s *Sessions) Get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{State: StateIdle}
		s.sessions[userID] = sess
	}
	return sess
}

// Reset drops the operator back to a fresh idle session.
func (s *Sessions) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = &Session{State: StateIdle}
}
