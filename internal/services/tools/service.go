package tools

import (
	"encoding/json"
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/rubiogarciadental/iadental/internal/infrastructure/clinicdb"
	"github.com/rubiogarciadental/iadental/internal/services/messaging"
)

// Service holds the tool definitions offered to the assistant backend. Tools
// are only attached to admin-mode requests; the mode policy decides that at
// dispatch time.
type Service struct {
	mu       sync.RWMutex
	tools    []openai.Tool
	executor *Executor
}

func NewService(clinicDB *clinicdb.Service, messenger *messaging.Service) *Service {
	var tools []openai.Tool

	// The SQL tool is only offered when the GELITE mirror is reachable.
	if clinicDB != nil {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "execute_sql",
				Description: "Run a single read-only SQL SELECT against the GELITE clinic database. Returns the result set as a markdown table.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"query": {
							"type": "string",
							"description": "A single SQL SELECT statement"
						}
					},
					"required": ["query"]
				}`),
			},
		})
	}

	// Likewise the reminder tool needs the WhatsApp worker.
	if messenger != nil {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "schedule_reminder",
				Description: "Schedule a WhatsApp appointment reminder for a patient. The reminder is sent automatically before the appointment.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"phone": {
							"type": "string",
							"description": "Patient phone number in international format"
						},
						"patient_name": {
							"type": "string",
							"description": "Patient full name"
						},
						"appointment_date": {
							"type": "string",
							"description": "Appointment date, YYYY-MM-DD"
						},
						"appointment_time": {
							"type": "string",
							"description": "Appointment time, HH:MM"
						},
						"doctor": {
							"type": "string",
							"description": "Doctor attending the appointment"
						},
						"treatment": {
							"type": "string",
							"description": "Treatment the appointment is for"
						},
						"hours_before": {
							"type": "integer",
							"description": "How many hours before the appointment to send the reminder, default 24"
						}
					},
					"required": ["phone", "patient_name", "appointment_date", "appointment_time", "doctor", "treatment"]
				}`),
			},
		})
	}

	return &Service{
		tools:    tools,
		executor: NewExecutor(clinicDB, messenger),
	}
}

func (s *Service) GetTools() []openai.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tools
}

func (s *Service) GetExecutor() *Executor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.executor
}
