package assistant

import (
	"fmt"
	"testing"
	"time"

	"github.com/rubiogarciadental/iadental/internal/assistant/models"
)

func TestMessageStoreAppendOrder(t *testing.T) {
	store := NewMessageStore()

	for i := 0; i < 5; i++ {
		store.Append(models.Message{
			ID:        fmt.Sprintf("msg-%d", i),
			Sender:    models.SenderUser,
			Text:      fmt.Sprintf("message %d", i),
			CreatedAt: time.Now(),
		})
	}

	all := store.All()
	if len(all) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(all))
	}
	for i, msg := range all {
		if msg.ID != fmt.Sprintf("msg-%d", i) {
			t.Errorf("message %d out of order: got id %s", i, msg.ID)
		}
	}
}

func TestMessageStoreAllReturnsCopy(t *testing.T) {
	store := NewMessageStore()
	store.Append(models.Message{ID: "a", Sender: models.SenderUser, Text: "hola"})

	all := store.All()
	all[0].Text = "mutated"

	if got := store.All()[0].Text; got != "hola" {
		t.Errorf("store was mutated through All(): got %q", got)
	}
}

func TestMessageStoreTail(t *testing.T) {
	store := NewMessageStore()
	for i := 0; i < 4; i++ {
		store.Append(models.Message{ID: fmt.Sprintf("msg-%d", i)})
	}

	tests := []struct {
		name    string
		n       int
		wantLen int
		wantIDs []string
	}{
		{"window smaller than log", 2, 2, []string{"msg-2", "msg-3"}},
		{"window larger than log", 10, 4, nil},
		{"zero means all", 0, 4, nil},
		{"negative means all", -1, 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.Tail(tt.n)
			if len(got) != tt.wantLen {
				t.Fatalf("Tail(%d) returned %d messages, want %d", tt.n, len(got), tt.wantLen)
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("Tail(%d)[%d] = %s, want %s", tt.n, i, got[i].ID, id)
				}
			}
		})
	}
}
