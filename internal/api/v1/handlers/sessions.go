package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/rubiogarciadental/iadental/internal/api/v1/middleware"
	"github.com/rubiogarciadental/iadental/internal/assistant"
	"github.com/rubiogarciadental/iadental/internal/assistant/models"
	sessionsvc "github.com/rubiogarciadental/iadental/internal/services/session"
	"github.com/rubiogarciadental/iadental/pkg/httpext"
)

// CreateSessionRequest opens a chat surface in a fixed mode.
type CreateSessionRequest struct {
	Mode string `json:"mode" validate:"required,oneof=admin patient"`
}

// SubmitMessageRequest carries one submission. Text may be empty, in which
// case the session's pending input is submitted instead.
type SubmitMessageRequest struct {
	Text string `json:"text" validate:"max=4000"`
}

// UpdateInputRequest mirrors the surface's input field as it is typed.
type UpdateInputRequest struct {
	Text string `json:"text" validate:"max=4000"`
}

// SessionResponse is the read-only view the surface observes.
type SessionResponse struct {
	ID           string `json:"id"`
	Mode         string `json:"mode"`
	State        string `json:"state"`
	Cause        string `json:"cause,omitempty"`
	PendingInput string `json:"pending_input"`
}

func sessionResponse(sess *assistant.Session) SessionResponse {
	state, cause := sess.State()
	return SessionResponse{
		ID:           sess.ID(),
		Mode:         string(sess.Mode()),
		State:        string(state),
		Cause:        cause,
		PendingInput: sess.PendingInput(),
	}
}

// HandleCreateSession opens a new assistant session and binds it to a fresh
// surface cookie.
func HandleCreateSession(assistantService *assistant.Service, sessionService *sessionsvc.Service, w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		httpext.JsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := assistantService.Create(mode)

	if err := sessionService.CreateSession(w, sess.ID(), mode); err != nil {
		log.Error().Err(err).Msg("Failed to create surface session")
		assistantService.Close(sess.ID())
		httpext.JsonError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(sessionResponse(sess)); err != nil {
		log.Error().Err(err).Msg("Failed to encode session response")
	}
}

// HandleGetSession returns the session's observable state.
func HandleGetSession(assistantService *assistant.Service, w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(assistantService, r)
	if !ok {
		httpext.JsonError(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sessionResponse(sess)); err != nil {
		log.Error().Err(err).Msg("Failed to encode session response")
	}
}

// HandleListMessages returns the transcript in insertion order, blocks
// included.
func HandleListMessages(assistantService *assistant.Service, w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(assistantService, r)
	if !ok {
		httpext.JsonError(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(struct {
		Messages []models.Message `json:"messages"`
	}{Messages: sess.Messages()}); err != nil {
		log.Error().Err(err).Msg("Failed to encode messages response")
	}
}

// HandleSubmitMessage runs the dispatch pipeline. Completion is observed via
// the session state, so the response is 202 with the state at acceptance
// time; a gated or empty submission is a silent no-op, like a disabled send
// button.
func HandleSubmitMessage(assistantService *assistant.Service, w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(assistantService, r)
	if !ok {
		httpext.JsonError(w, "Session not found", http.StatusNotFound)
		return
	}

	var req SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	text := req.Text
	if text == "" {
		text = sess.PendingInput()
	}
	sess.Submit(text)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(sessionResponse(sess)); err != nil {
		log.Error().Err(err).Msg("Failed to encode session response")
	}
}

// HandleUpdateInput records the text being composed on the surface.
func HandleUpdateInput(assistantService *assistant.Service, w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(assistantService, r)
	if !ok {
		httpext.JsonError(w, "Session not found", http.StatusNotFound)
		return
	}

	var req UpdateInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	sess.SetPendingInput(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

// HandleCloseSession tears the assistant session down and clears the surface
// cookie. Closing cancels any in-flight dispatch.
func HandleCloseSession(assistantService *assistant.Service, sessionService *sessionsvc.Service, w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims != nil {
		assistantService.Close(claims.AssistantID)
	}
	sessionService.ClearSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func currentSession(assistantService *assistant.Service, r *http.Request) (*assistant.Session, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return nil, false
	}
	return assistantService.Get(claims.AssistantID)
}
