package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkerStub(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("WHATSAPP_WORKER_URL", server.URL)
	svc := NewService()
	require.NotNil(t, svc)
	return svc
}

func TestNewServiceUnconfigured(t *testing.T) {
	t.Setenv("WHATSAPP_WORKER_URL", "")
	assert.Nil(t, NewService())
}

func TestStatus(t *testing.T) {
	svc := newWorkerStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"whatsapp": map[string]string{"status": "connected"},
		})
	})

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "connected", status)
}

func TestSend(t *testing.T) {
	svc := newWorkerStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req struct {
			To      string `json:"to"`
			Message string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "+34600111222", req.To)
		assert.Equal(t, "hola", req.Message)

		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "messageId": "ABC123"})
	})

	id, err := svc.Send(context.Background(), "+34600111222", "hola")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", id)
}

func TestSendWorkerFailure(t *testing.T) {
	svc := newWorkerStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "number not on WhatsApp"})
	})

	_, err := svc.Send(context.Background(), "+34600111222", "hola")
	assert.ErrorContains(t, err, "number not on WhatsApp")
}

func TestSendWorkerHTTPError(t *testing.T) {
	svc := newWorkerStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := svc.Send(context.Background(), "+34600111222", "hola")
	assert.ErrorContains(t, err, "status 500")
}
