package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rubiogarciadental/iadental/internal/assistant/models"
)

type fakeResponder struct {
	mu      sync.Mutex
	calls   int
	handler func(ctx context.Context, history []models.Message, mode models.Mode) (string, error)
}

func (f *fakeResponder) Respond(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
	f.mu.Lock()
	f.calls++
	handler := f.handler
	f.mu.Unlock()
	return handler(ctx, history, mode)
}

func (f *fakeResponder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeResponder) SetHandler(h func(ctx context.Context, history []models.Message, mode models.Mode) (string, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

func newTestSession(mode models.Mode, responder *fakeResponder) (*Session, chan Event) {
	events := make(chan Event, 32)
	sess := NewSession("test-session", mode, responder, time.Second, 20)
	sess.SetListener(func(ev Event) { events <- ev })
	return sess, events
}

func waitForState(t *testing.T, events chan Event, want models.State) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.State == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
		}
	}
}

func TestSubmitResolvesToIdle(t *testing.T) {
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		return "Count: 42", nil
	}}
	sess, events := newTestSession(models.ModeAdmin, responder)

	sess.Submit("how many patients today?")

	ev := waitForState(t, events, models.StateAwaiting)
	if ev.Message == nil || ev.Message.Sender != models.SenderUser {
		t.Fatalf("awaiting event should carry the user message, got %+v", ev)
	}

	ev = waitForState(t, events, models.StateIdle)
	if ev.Message == nil || ev.Message.Sender != models.SenderAssistant {
		t.Fatalf("idle event should carry the assistant message, got %+v", ev)
	}

	msgs := sess.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender != models.SenderUser || msgs[0].Text != "how many patients today?" {
		t.Errorf("unexpected user message %+v", msgs[0])
	}
	if msgs[1].Sender != models.SenderAssistant {
		t.Errorf("unexpected assistant message %+v", msgs[1])
	}
	if len(msgs[1].Blocks) != 1 || msgs[1].Blocks[0].Kind != models.BlockPlain || msgs[1].Blocks[0].Text != "Count: 42" {
		t.Errorf("unexpected blocks %+v", msgs[1].Blocks)
	}

	if state, _ := sess.State(); state != models.StateIdle {
		t.Errorf("expected idle state, got %s", state)
	}
}

func TestPatientResponseNeverStructured(t *testing.T) {
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		return "Tus citas:\n```table\n| Fecha | Hora |\n| --- | --- |\n```", nil
	}}
	sess, events := newTestSession(models.ModePatient, responder)

	sess.Submit("¿cuándo es mi cita?")
	waitForState(t, events, models.StateIdle)

	msgs := sess.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	for i, b := range msgs[1].Blocks {
		if b.Kind != models.BlockPlain {
			t.Errorf("block %d: patient session rendered a %s block", i, b.Kind)
		}
	}
}

func TestSubmitWhileAwaitingIsNoop(t *testing.T) {
	release := make(chan struct{})
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		<-release
		return "done", nil
	}}
	sess, events := newTestSession(models.ModeAdmin, responder)

	sess.Submit("primera")
	waitForState(t, events, models.StateAwaiting)

	sess.Submit("segunda")

	if got := len(sess.Messages()); got != 1 {
		t.Errorf("second submit changed the store: %d messages", got)
	}
	if responder.Calls() != 1 {
		t.Errorf("expected a single backend request, got %d", responder.Calls())
	}

	close(release)
	waitForState(t, events, models.StateIdle)

	if got := len(sess.Messages()); got != 2 {
		t.Errorf("expected 2 messages after resolution, got %d", got)
	}
}

func TestRejectFaultsAndRetrySucceeds(t *testing.T) {
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		return "", errors.New("network timeout")
	}}
	sess, events := newTestSession(models.ModeAdmin, responder)

	sess.Submit("hola")

	ev := waitForState(t, events, models.StateFaulted)
	if !strings.Contains(ev.Cause, "network timeout") {
		t.Errorf("expected cause to mention the failure, got %q", ev.Cause)
	}
	if got := len(sess.Messages()); got != 1 {
		t.Errorf("rejected dispatch should leave only the user message, got %d", got)
	}

	state, cause := sess.State()
	if state != models.StateFaulted || cause == "" {
		t.Errorf("expected retained faulted cause, got %s %q", state, cause)
	}

	// Retry is accepted from faulted and supersedes the cause.
	responder.SetHandler(func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		return "todo bien", nil
	})
	sess.Submit("hola otra vez")
	waitForState(t, events, models.StateIdle)

	if got := len(sess.Messages()); got != 3 {
		t.Errorf("expected 3 messages after retry, got %d", got)
	}
	if _, cause := sess.State(); cause != "" {
		t.Errorf("cause should clear on success, got %q", cause)
	}
}

func TestBlankSubmitIsNoop(t *testing.T) {
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		return "nunca", nil
	}}
	sess, _ := newTestSession(models.ModeAdmin, responder)

	sess.Submit("")
	sess.Submit("   \n\t ")

	if responder.Calls() != 0 {
		t.Errorf("blank submissions reached the backend %d times", responder.Calls())
	}
	if got := len(sess.Messages()); got != 0 {
		t.Errorf("blank submissions were stored: %d messages", got)
	}
	if state, _ := sess.State(); state != models.StateIdle {
		t.Errorf("expected idle, got %s", state)
	}
}

func TestOrderingAcrossSubmissions(t *testing.T) {
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		// Echo the latest user message so ordering is visible.
		return "re: " + history[len(history)-1].Text, nil
	}}
	sess, events := newTestSession(models.ModeAdmin, responder)

	for i := 0; i < 3; i++ {
		sess.Submit(fmt.Sprintf("pregunta %d", i))
		waitForState(t, events, models.StateIdle)
	}

	msgs := sess.Messages()
	if len(msgs) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(msgs))
	}
	for i := 0; i < 3; i++ {
		user, reply := msgs[2*i], msgs[2*i+1]
		if user.Text != fmt.Sprintf("pregunta %d", i) {
			t.Errorf("pair %d: unexpected user text %q", i, user.Text)
		}
		if reply.Text != "re: "+user.Text {
			t.Errorf("pair %d: reply %q does not match %q", i, reply.Text, user.Text)
		}
	}
}

func TestDispatchTimeout(t *testing.T) {
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	events := make(chan Event, 32)
	sess := NewSession("timeout-session", models.ModeAdmin, responder, 30*time.Millisecond, 20)
	sess.SetListener(func(ev Event) { events <- ev })

	sess.Submit("lenta")

	ev := waitForState(t, events, models.StateFaulted)
	if !strings.Contains(ev.Cause, "timed out") {
		t.Errorf("expected timeout cause, got %q", ev.Cause)
	}
	if got := len(sess.Messages()); got != 1 {
		t.Errorf("timed-out dispatch appended an assistant message: %d messages", got)
	}
}

func TestCloseCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}}
	sess, events := newTestSession(models.ModeAdmin, responder)

	sess.Submit("hola")
	waitForState(t, events, models.StateAwaiting)
	<-started

	sess.Close()

	// The cancelled request must not fault or mutate the closed session.
	select {
	case ev := <-events:
		if ev.State == models.StateFaulted {
			t.Errorf("closed session emitted a faulted event: %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
	if got := len(sess.Messages()); got != 1 {
		t.Errorf("closed session transcript changed: %d messages", got)
	}
}

func TestPendingInputClearedOnSubmit(t *testing.T) {
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		return "ok", nil
	}}
	sess, events := newTestSession(models.ModePatient, responder)

	sess.SetPendingInput("¿me dolerá?")
	sess.Submit(sess.PendingInput())

	if got := sess.PendingInput(); got != "" {
		t.Errorf("pending input not cleared on submission: %q", got)
	}
	waitForState(t, events, models.StateIdle)
}
