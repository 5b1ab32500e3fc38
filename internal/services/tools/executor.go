package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/rubiogarciadental/iadental/internal/infrastructure/clinicdb"
	"github.com/rubiogarciadental/iadental/internal/services/messaging"
)

// Executor runs tool calls issued by the assistant backend.
type Executor struct {
	clinicDB  *clinicdb.Service
	messenger *messaging.Service
}

// SQLParams represents the parameters of the execute_sql tool.
type SQLParams struct {
	Query string `json:"query"`
}

// ReminderParams represents the parameters of the schedule_reminder tool.
type ReminderParams struct {
	Phone           string `json:"phone"`
	PatientName     string `json:"patient_name"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Doctor          string `json:"doctor"`
	Treatment       string `json:"treatment"`
	HoursBefore     int    `json:"hours_before"`
}

func NewExecutor(clinicDB *clinicdb.Service, messenger *messaging.Service) *Executor {
	return &Executor{clinicDB: clinicDB, messenger: messenger}
}

func (e *Executor) ExecuteToolCall(ctx context.Context, tool openai.ToolCall) (string, error) {
	log.Info().Str("tool", tool.Function.Name).Msg("Executing tool call")

	if tool.Type != openai.ToolTypeFunction {
		return "", fmt.Errorf("unsupported tool type %q", tool.Type)
	}

	switch tool.Function.Name {
	case "execute_sql":
		var params SQLParams
		if err := json.Unmarshal([]byte(tool.Function.Arguments), &params); err != nil {
			log.Error().Err(err).Msg("Failed to parse SQL tool parameters")
			return "", fmt.Errorf("invalid parameters: %w", err)
		}

		if e.clinicDB == nil {
			return "", fmt.Errorf("clinic database is not configured")
		}

		result, err := e.clinicDB.Query(ctx, params.Query)
		if err != nil {
			// The model gets the failure as content so it can rephrase the
			// query or apologise, instead of faulting the whole dispatch.
			log.Warn().Err(err).Str("query", params.Query).Msg("Clinic database query failed")
			return fmt.Sprintf("La consulta falló: %v", err), nil
		}

		table := MarkdownTable(result)
		log.Debug().Int("rows", len(result.Rows)).Msg("SQL tool returned result set")
		return table, nil

	case "schedule_reminder":
		var params ReminderParams
		if err := json.Unmarshal([]byte(tool.Function.Arguments), &params); err != nil {
			log.Error().Err(err).Msg("Failed to parse reminder tool parameters")
			return "", fmt.Errorf("invalid parameters: %w", err)
		}

		if e.messenger == nil {
			return "", fmt.Errorf("messaging is not configured")
		}

		appointment, err := time.ParseInLocation("2006-01-02 15:04", params.AppointmentDate+" "+params.AppointmentTime, time.Local)
		if err != nil {
			return fmt.Sprintf("Fecha u hora de cita no válida: %v", err), nil
		}

		hoursBefore := params.HoursBefore
		if hoursBefore <= 0 {
			hoursBefore = 24
		}

		msg, err := e.messenger.ScheduleAppointmentReminder(
			params.Phone, params.PatientName, appointment,
			params.AppointmentTime, params.Doctor, params.Treatment, hoursBefore,
		)
		if err != nil {
			// Model-visible outcome, like a failed query: the assistant
			// explains it instead of faulting the dispatch.
			return fmt.Sprintf("No se pudo programar el recordatorio: %v", err), nil
		}

		log.Info().Str("message_id", msg.ID).Msg("Reminder scheduled via assistant tool")
		return fmt.Sprintf("Recordatorio programado para %s, envío el %s.",
			params.PatientName, msg.ScheduledFor.Format("02/01/2006 15:04")), nil

	default:
		return "", fmt.Errorf("unknown function: %s", tool.Function.Name)
	}
}
