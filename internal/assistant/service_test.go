package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rubiogarciadental/iadental/internal/assistant/models"
)

func TestServiceSessionsAreIndependent(t *testing.T) {
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		if mode == models.ModeAdmin {
			return "", errors.New("backend down")
		}
		return "hola", nil
	}}
	svc := NewService(responder, time.Second, 20, 0, nil)

	admin := svc.Create(models.ModeAdmin)
	patient := svc.Create(models.ModePatient)

	if admin.ID() == patient.ID() {
		t.Fatal("sessions share an id")
	}
	if svc.Count() != 2 {
		t.Fatalf("expected 2 sessions, got %d", svc.Count())
	}

	adminEvents := make(chan Event, 8)
	patientEvents := make(chan Event, 8)
	admin.SetListener(func(ev Event) { adminEvents <- ev })
	patient.SetListener(func(ev Event) { patientEvents <- ev })

	admin.Submit("consulta")
	patient.Submit("hola")

	waitForState(t, adminEvents, models.StateFaulted)
	waitForState(t, patientEvents, models.StateIdle)

	// The admin fault never leaks into the patient session.
	if state, _ := patient.State(); state != models.StateIdle {
		t.Errorf("patient session affected by admin failure: %s", state)
	}
}

func TestServiceGetAndClose(t *testing.T) {
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		return "ok", nil
	}}
	svc := NewService(responder, time.Second, 20, 0, nil)

	sess := svc.Create(models.ModePatient)

	if got, ok := svc.Get(sess.ID()); !ok || got != sess {
		t.Fatal("Get did not return the created session")
	}

	if !svc.Close(sess.ID()) {
		t.Error("Close reported no session")
	}
	if _, ok := svc.Get(sess.ID()); ok {
		t.Error("session still retrievable after Close")
	}
	if svc.Close(sess.ID()) {
		t.Error("double Close reported a session")
	}
}

func TestServiceReapsIdleSessions(t *testing.T) {
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		return "ok", nil
	}}
	svc := NewService(responder, time.Second, 20, time.Hour, nil)

	stale := svc.Create(models.ModeAdmin)
	fresh := svc.Create(models.ModePatient)

	stale.mu.Lock()
	stale.lastActive = time.Now().Add(-2 * time.Hour)
	stale.mu.Unlock()

	if got := svc.reapIdle(); got != 1 {
		t.Fatalf("expected 1 reaped session, got %d", got)
	}
	if _, ok := svc.Get(stale.ID()); ok {
		t.Error("stale session still retrievable after reap")
	}
	if _, ok := svc.Get(fresh.ID()); !ok {
		t.Error("fresh session was reaped")
	}

	// A reaped session behaves like a closed one.
	stale.Submit("hola")
	if got := len(stale.Messages()); got != 0 {
		t.Errorf("reaped session accepted a submission: %d messages", got)
	}
}

func TestActivityDefersReaping(t *testing.T) {
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		return "ok", nil
	}}
	svc := NewService(responder, time.Second, 20, time.Hour, nil)

	events := make(chan Event, 8)
	sess := svc.Create(models.ModeAdmin)
	sess.SetListener(func(ev Event) { events <- ev })

	sess.mu.Lock()
	sess.lastActive = time.Now().Add(-2 * time.Hour)
	sess.mu.Unlock()

	// A submission refreshes the activity stamp before the next sweep.
	sess.Submit("sigo aquí")
	waitForState(t, events, models.StateIdle)

	if got := svc.reapIdle(); got != 0 {
		t.Errorf("active session was reaped: %d", got)
	}
}

func TestServiceListenerAttached(t *testing.T) {
	events := make(chan Event, 8)
	responder := &fakeResponder{handler: func(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
		return "ok", nil
	}}
	svc := NewService(responder, time.Second, 20, 0, func(ev Event) { events <- ev })

	sess := svc.Create(models.ModePatient)
	sess.Submit("hola")

	ev := waitForState(t, events, models.StateIdle)
	if ev.SessionID != sess.ID() {
		t.Errorf("event carries wrong session id: %s", ev.SessionID)
	}
}
