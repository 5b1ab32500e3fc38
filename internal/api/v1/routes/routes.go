package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rubiogarciadental/iadental/internal/api/v1/handlers"
	wshandler "github.com/rubiogarciadental/iadental/internal/api/v1/handlers/websocket"
	"github.com/rubiogarciadental/iadental/internal/api/v1/middleware"
	"github.com/rubiogarciadental/iadental/internal/assistant"
	"github.com/rubiogarciadental/iadental/internal/connections"
	sessionsvc "github.com/rubiogarciadental/iadental/internal/services/session"
)

// NewRouter builds the /v1 chat surface API. Everything below
// /v1/sessions/current requires a valid surface cookie.
func NewRouter(assistantService *assistant.Service, sessionService *sessionsvc.Service, manager *connections.Manager) *mux.Router {
	r := mux.NewRouter()

	authed := middleware.RequireSession(sessionService)

	r.Handle("/v1/sessions",
		middleware.RateLimit("session_create")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlers.HandleCreateSession(assistantService, sessionService, w, r)
		}))).Methods(http.MethodPost)

	r.Handle("/v1/sessions/current",
		authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlers.HandleGetSession(assistantService, w, r)
		}))).Methods(http.MethodGet)

	r.Handle("/v1/sessions/current",
		authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlers.HandleCloseSession(assistantService, sessionService, w, r)
		}))).Methods(http.MethodDelete)

	r.Handle("/v1/sessions/current/messages",
		authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlers.HandleListMessages(assistantService, w, r)
		}))).Methods(http.MethodGet)

	r.Handle("/v1/sessions/current/messages",
		authed(middleware.RateLimit("message_submit")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlers.HandleSubmitMessage(assistantService, w, r)
		})))).Methods(http.MethodPost)

	r.Handle("/v1/sessions/current/input",
		authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlers.HandleUpdateInput(assistantService, w, r)
		}))).Methods(http.MethodPut)

	r.Handle("/v1/sessions/current/events",
		authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wshandler.HandleSessionEvents(manager, assistantService, w, r)
		}))).Methods(http.MethodGet)

	return r
}
