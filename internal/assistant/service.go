package assistant

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rubiogarciadental/iadental/internal/assistant/models"
)

// reapInterval is how often the registry sweeps for idle sessions.
const reapInterval = time.Minute

// Service owns the live sessions. Sessions are fully independent of each
// other: a failure or teardown in one never affects another.
type Service struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	responder Responder
	timeout   time.Duration
	window    int
	ttl       time.Duration
	listener  func(Event)
	now       func() time.Time
}

// NewService creates the session registry. The listener, when non-nil, is
// attached to every session it creates; the surface uses it to stream events
// to open chat tabs. Sessions idle longer than ttl are reaped in the
// background; ttl <= 0 disables reaping.
func NewService(responder Responder, timeout time.Duration, window int, ttl time.Duration, listener func(Event)) *Service {
	s := &Service{
		sessions:  make(map[string]*Session),
		responder: responder,
		timeout:   timeout,
		window:    window,
		ttl:       ttl,
		listener:  listener,
		now:       time.Now,
	}

	if ttl > 0 {
		go func() {
			ticker := time.NewTicker(reapInterval)
			defer ticker.Stop()
			for range ticker.C {
				s.reapIdle()
			}
		}()
	}

	return s
}

// Create opens a new empty session in the given mode. The mode is fixed for
// the session's lifetime.
func (s *Service) Create(mode models.Mode) *Session {
	sess := NewSession(uuid.New().String(), mode, s.responder, s.timeout, s.window)
	if s.listener != nil {
		sess.SetListener(s.listener)
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	log.Info().
		Str("session_id", sess.ID()).
		Str("mode", string(mode)).
		Msg("Assistant session created")

	return sess
}

// Get returns the live session with the given id.
func (s *Service) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Close tears down and forgets the session with the given id. It reports
// whether a session existed.
func (s *Service) Close(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	sess.Close()

	log.Info().Str("session_id", id).Msg("Assistant session closed")
	return true
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// reapIdle closes every session whose last activity is older than the ttl and
// returns how many were reaped. Abandoned tabs otherwise accumulate forever;
// the surface cookie lapses on its own, this is the server-side counterpart.
func (s *Service) reapIdle() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.RLock()
	var stale []*Session
	for _, sess := range s.sessions {
		if sess.LastActive().Before(cutoff) {
			stale = append(stale, sess)
		}
	}
	s.mu.RUnlock()

	for _, sess := range stale {
		s.mu.Lock()
		delete(s.sessions, sess.ID())
		s.mu.Unlock()
		sess.Close()

		log.Info().
			Str("session_id", sess.ID()).
			Time("last_active", sess.LastActive()).
			Msg("Idle assistant session reaped")
	}
	return len(stale)
}
