package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Status tracks a scheduled message through its delivery lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// maxAttempts is how many delivery tries a scheduled message gets before it
// is marked failed.
const maxAttempts = 3

// workerConnected is the Sender status that permits delivery.
const workerConnected = "connected"

// ScheduledMessage is one queued automated message and its retry state.
type ScheduledMessage struct {
	ID             string      `json:"id"`
	TemplateID     string      `json:"template_id,omitempty"`
	RecipientPhone string      `json:"recipient_phone"`
	RecipientName  string      `json:"recipient_name"`
	Content        string      `json:"content"`
	Type           MessageType `json:"type"`
	ScheduledFor   time.Time   `json:"scheduled_for"`
	Status         Status      `json:"status"`
	Attempts       int         `json:"attempts"`
	LastAttempt    time.Time   `json:"last_attempt,omitempty"`
	Error          string      `json:"error,omitempty"`
}

// Sender is the delivery boundary, implemented by the WhatsApp worker client.
type Sender interface {
	Status(ctx context.Context) (string, error)
	Send(ctx context.Context, to, message string) (string, error)
}

// Service queues templated reminders and follow-ups and delivers them when
// due. Delivery is best-effort with a bounded retry; a worker outage fails a
// message only after maxAttempts sweeps.
type Service struct {
	mu       sync.Mutex
	sender   Sender
	queue    []*ScheduledMessage
	interval time.Duration
	stop     chan struct{}
	now      func() time.Time
}

func NewService(sender Sender, interval time.Duration) *Service {
	return &Service{
		sender:   sender,
		interval: interval,
		now:      time.Now,
	}
}

// Send delivers one message immediately, outside the queue.
func (s *Service) Send(ctx context.Context, phone, content string) (string, error) {
	return s.sender.Send(ctx, phone, content)
}

// SendTemplate renders a template and delivers it immediately.
func (s *Service) SendTemplate(ctx context.Context, templateID, phone string, variables map[string]string) (string, error) {
	tmpl, ok := GetTemplate(templateID)
	if !ok {
		return "", fmt.Errorf("unknown template %q", templateID)
	}
	return s.Send(ctx, phone, tmpl.Render(variables))
}

// Schedule queues a message for future delivery.
func (s *Service) Schedule(phone, name, content string, msgType MessageType, at time.Time) *ScheduledMessage {
	msg := &ScheduledMessage{
		ID:             uuid.New().String(),
		RecipientPhone: phone,
		RecipientName:  name,
		Content:        content,
		Type:           msgType,
		ScheduledFor:   at,
		Status:         StatusPending,
	}

	s.mu.Lock()
	s.queue = append(s.queue, msg)
	s.mu.Unlock()

	log.Info().
		Str("message_id", msg.ID).
		Str("type", string(msgType)).
		Time("scheduled_for", at).
		Msg("Message scheduled")

	return msg
}

// ScheduleTemplate renders a template and queues it for future delivery.
func (s *Service) ScheduleTemplate(templateID, phone, name string, variables map[string]string, at time.Time) (*ScheduledMessage, error) {
	tmpl, ok := GetTemplate(templateID)
	if !ok {
		return nil, fmt.Errorf("unknown template %q", templateID)
	}

	msg := s.Schedule(phone, name, tmpl.Render(variables), tmpl.Type, at)
	msg.TemplateID = templateID
	return msg, nil
}

// ScheduleAppointmentReminder queues the appointment reminder template,
// hoursBefore the appointment. Reminders whose send time already passed are
// refused rather than sent late.
func (s *Service) ScheduleAppointmentReminder(phone, name string, appointment time.Time, hour, doctor, treatment string, hoursBefore int) (*ScheduledMessage, error) {
	at := appointment.Add(-time.Duration(hoursBefore) * time.Hour)
	if at.Before(s.now()) {
		return nil, fmt.Errorf("reminder time already passed")
	}

	templateID := "reminder-24h"
	if hoursBefore <= 2 {
		templateID = "reminder-1h"
	}

	return s.ScheduleTemplate(templateID, phone, name, map[string]string{
		"NOMBRE":      name,
		"FECHA_CITA":  appointment.Format("02/01/2006"),
		"HORA_CITA":   hour,
		"DOCTOR":      doctor,
		"TRATAMIENTO": treatment,
	}, at)
}

// ScheduleFollowup queues the post-treatment follow-up template, hoursAfter
// the treatment.
func (s *Service) ScheduleFollowup(phone, name, treatment string, treated time.Time, hoursAfter int) (*ScheduledMessage, error) {
	return s.ScheduleTemplate("followup-48h", phone, name, map[string]string{
		"NOMBRE":      name,
		"TRATAMIENTO": treatment,
	}, treated.Add(time.Duration(hoursAfter)*time.Hour))
}

// Cancel withdraws a still-pending message. It reports whether the message
// existed and was pending; sent or failed messages cannot be cancelled.
func (s *Service) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range s.queue {
		if msg.ID == id && msg.Status == StatusPending {
			msg.Status = StatusCancelled
			return true
		}
	}
	return false
}

// Pending returns copies of the messages still waiting for delivery.
func (s *Service) Pending() []ScheduledMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ScheduledMessage
	for _, msg := range s.queue {
		if msg.Status == StatusPending {
			out = append(out, *msg)
		}
	}
	return out
}

// All returns copies of every queued message, whatever its status.
func (s *Service) All() []ScheduledMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScheduledMessage, len(s.queue))
	for i, msg := range s.queue {
		out[i] = *msg
	}
	return out
}

// Start launches the background queue processor.
func (s *Service) Start() {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	log.Info().Dur("interval", s.interval).Msg("Message queue processor started")

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.processQueue(context.Background())
			}
		}
	}()
}

// Stop halts the background processor. Queued messages stay put.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// processQueue delivers every due pending message once. A disconnected
// worker counts as a failed attempt, so a long outage eventually fails the
// message instead of retrying forever.
func (s *Service) processQueue(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var due []*ScheduledMessage
	for _, msg := range s.queue {
		if msg.Status == StatusPending && !msg.ScheduledFor.After(now) {
			due = append(due, msg)
		}
	}
	s.mu.Unlock()

	if len(due) == 0 {
		return
	}

	status, err := s.sender.Status(ctx)
	if err != nil || status != workerConnected {
		log.Warn().Err(err).Str("status", status).Msg("WhatsApp worker unavailable, deferring due messages")
		s.mu.Lock()
		for _, msg := range due {
			s.recordFailure(msg, "worker not connected")
		}
		s.mu.Unlock()
		return
	}

	for _, msg := range due {
		_, err := s.sender.Send(ctx, msg.RecipientPhone, msg.Content)

		s.mu.Lock()
		if err != nil {
			s.recordFailure(msg, err.Error())
			s.mu.Unlock()
			log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to deliver scheduled message")
			continue
		}
		msg.Status = StatusSent
		msg.Attempts++
		msg.LastAttempt = s.now()
		s.mu.Unlock()

		log.Info().Str("message_id", msg.ID).Str("type", string(msg.Type)).Msg("Scheduled message delivered")
	}
}

// recordFailure counts an attempt; the message fails for good once the retry
// budget is spent. Caller holds the lock.
func (s *Service) recordFailure(msg *ScheduledMessage, cause string) {
	msg.Attempts++
	msg.LastAttempt = s.now()
	msg.Error = cause
	if msg.Attempts >= maxAttempts {
		msg.Status = StatusFailed
	}
}
