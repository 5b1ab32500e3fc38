package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rubiogarciadental/iadental/internal/assistant/models"
)

// Responder is the assistant backend boundary. Exactly one outcome, success
// or error, is expected per call; the per-dispatch context carries the
// timeout and is cancelled when the session closes.
type Responder interface {
	Respond(ctx context.Context, history []models.Message, mode models.Mode) (string, error)
}

// Event is delivered to the session listener on every observable change:
// a state transition, optionally accompanied by the message that caused it.
type Event struct {
	SessionID string          `json:"session_id"`
	State     models.State    `json:"state"`
	Cause     string          `json:"cause,omitempty"`
	Message   *models.Message `json:"message,omitempty"`
}

// Session drives one conversation: an append-only transcript, a three-state
// dispatch gate and a single-flight pipeline to the backend. All methods are
// safe for concurrent use. The awaiting gate guarantees at most one backend
// request in flight, so responses are always applied in submission order.
type Session struct {
	mu sync.Mutex

	id        string
	policy    models.Policy
	store     *MessageStore
	responder Responder
	timeout   time.Duration
	window    int

	state        models.State
	cause        string
	pendingInput string

	generation int                // one per dispatch; stale completions are dropped
	cancel     context.CancelFunc // cancels the in-flight request, nil outside awaiting
	closed     bool
	lastActive time.Time

	listener func(Event)
	now      func() time.Time
}

func NewSession(id string, mode models.Mode, responder Responder, timeout time.Duration, window int) *Session {
	return &Session{
		id:         id,
		policy:     models.PolicyFor(mode),
		store:      NewMessageStore(),
		responder:  responder,
		timeout:    timeout,
		window:     window,
		state:      models.StateIdle,
		lastActive: time.Now(),
		now:        time.Now,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Mode() models.Mode {
	return s.policy.Mode()
}

// State returns the current dispatch state and, when faulted, the retained
// failure cause.
func (s *Session) State() (models.State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.cause
}

// Messages returns the transcript in insertion order.
func (s *Session) Messages() []models.Message {
	return s.store.All()
}

// PendingInput returns the text currently being composed.
func (s *Session) PendingInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingInput
}

// LastActive returns when the session last saw a submission, a completed
// dispatch or an input update. The registry's idle reaper reads it.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SetPendingInput records the not-yet-submitted text being composed on the
// surface. It is cleared on successful submission.
func (s *Session) SetPendingInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pendingInput = text
	s.lastActive = s.now()
}

// SetListener registers the observer for session events. One listener per
// session; the surface fans out to its own connections.
func (s *Session) SetListener(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
}

// Submit runs the dispatch pipeline for one user input. Preconditions: the
// trimmed input is non-empty and the session accepts submissions (idle or
// faulted). Violating either is a no-op, mirroring a disabled send button.
//
// On acceptance the user message is appended verbatim, pending input is
// cleared, the session transitions to awaiting and the backend is invoked on
// its own goroutine. Completion is observed through state transitions, not a
// return value.
func (s *Session) Submit(rawInput string) {
	s.mu.Lock()
	if s.closed || strings.TrimSpace(rawInput) == "" || !s.state.AcceptsSubmit() {
		s.mu.Unlock()
		return
	}

	userMsg := models.Message{
		ID:        uuid.New().String(),
		Sender:    models.SenderUser,
		Text:      rawInput,
		CreatedAt: s.now(),
	}
	s.store.Append(userMsg)
	s.pendingInput = ""
	s.state = models.StateAwaiting
	s.lastActive = userMsg.CreatedAt
	s.generation++
	gen := s.generation

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.cancel = cancel

	history := s.store.Tail(s.window)
	mode := s.policy.Mode()
	s.mu.Unlock()

	s.emit(Event{SessionID: s.id, State: models.StateAwaiting, Message: &userMsg})

	log.Debug().
		Str("session_id", s.id).
		Str("mode", string(mode)).
		Int("history_len", len(history)).
		Msg("Dispatching message to assistant backend")

	go func() {
		defer cancel()

		text, err := s.responder.Respond(ctx, history, mode)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("assistant timed out after %s", s.timeout)
			}
			s.reject(gen, err)
			return
		}
		s.resolve(gen, text)
	}()
}

// resolve applies a successful backend outcome: the response is classified
// under the session policy and appended as one assistant message, and the
// session returns to idle.
func (s *Session) resolve(gen int, text string) {
	blocks := Classify(text, s.policy)

	s.mu.Lock()
	if s.closed || gen != s.generation || s.state != models.StateAwaiting {
		s.mu.Unlock()
		return
	}
	msg := models.Message{
		ID:        uuid.New().String(),
		Sender:    models.SenderAssistant,
		Text:      text,
		Blocks:    blocks,
		CreatedAt: s.now(),
	}
	s.store.Append(msg)
	s.state = models.StateIdle
	s.cause = ""
	s.cancel = nil
	s.lastActive = msg.CreatedAt
	s.mu.Unlock()

	s.emit(Event{SessionID: s.id, State: models.StateIdle, Message: &msg})
}

// reject applies a failed backend outcome: no assistant message is appended
// and the session faults, retaining the cause until the next successful
// submission supersedes it.
func (s *Session) reject(gen int, cause error) {
	s.mu.Lock()
	if s.closed || gen != s.generation || s.state != models.StateAwaiting {
		s.mu.Unlock()
		return
	}
	s.state = models.StateFaulted
	s.cause = cause.Error()
	s.cancel = nil
	s.lastActive = s.now()
	s.mu.Unlock()

	log.Warn().
		Str("session_id", s.id).
		Err(cause).
		Msg("Assistant dispatch failed")

	s.emit(Event{SessionID: s.id, State: models.StateFaulted, Cause: cause.Error()})
}

// Close tears the session down. Any in-flight request is cancelled and late
// completions are dropped, so nothing ever resolves into a closed session.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	fn := s.listener
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}
