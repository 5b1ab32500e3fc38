package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rubiogarciadental/iadental/internal/api/v1/middleware"
	"github.com/rubiogarciadental/iadental/internal/assistant"
	"github.com/rubiogarciadental/iadental/internal/connections"
	"github.com/rubiogarciadental/iadental/pkg/httpext"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The back office serves the surface from the same origin.
		return true
	},
}

// HandleSessionEvents streams session events (state transitions and appended
// messages) to an open chat tab. The surface sends nothing on this
// connection; reads exist only to service pong frames and detect closure.
func HandleSessionEvents(manager *connections.Manager, assistantService *assistant.Service, w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sess, ok := assistantService.Get(claims.AssistantID)
	if !ok {
		httpext.JsonError(w, "Session not found", http.StatusNotFound)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	timeouts := manager.GetTimeouts()
	conn := connections.NewConn(ws)
	manager.Add(sess.ID(), conn)

	defer func() {
		manager.Remove(sess.ID(), conn)
		ws.Close()
	}()

	// Snapshot first, so a (re)connecting tab paints the current state
	// before any live event arrives.
	state, cause := sess.State()
	if err := conn.WriteJSON(assistant.Event{SessionID: sess.ID(), State: state, Cause: cause}, timeouts.WriteWait); err != nil {
		return
	}

	_ = ws.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(timeouts.PingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.Ping(timeouts.WriteWait); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("session_id", sess.ID()).Msg("Event stream closed unexpectedly")
			}
			break
		}
	}
	close(done)
}
