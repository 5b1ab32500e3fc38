package assistant

import (
	"sync"

	"github.com/rubiogarciadental/iadental/internal/assistant/models"
)

// MessageStore is the append-only transcript of one session. Append is the
// only mutator; there is no edit or delete, so the full exchange history
// survives for audit.
type MessageStore struct {
	mu       sync.RWMutex
	messages []models.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

// Append adds a message to the end of the log. Insertion order is the sole
// ordering key.
func (s *MessageStore) Append(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// All returns the messages in insertion order. The returned slice is a copy;
// callers cannot mutate the log through it.
func (s *MessageStore) All() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Tail returns the last n messages in insertion order, or all of them when
// n <= 0 or the log is shorter than n.
func (s *MessageStore) Tail(n int) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if n > 0 && len(s.messages) > n {
		start = len(s.messages) - n
	}
	out := make([]models.Message, len(s.messages)-start)
	copy(out, s.messages[start:])
	return out
}

// Len returns the number of messages appended so far.
func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
