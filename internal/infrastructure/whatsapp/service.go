package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rubiogarciadental/iadental/internal/config"
)

// Service is the HTTP client for the WhatsApp worker process, which holds the
// actual WhatsApp session and exposes send/status endpoints.
type Service struct {
	mu      sync.RWMutex
	client  *http.Client
	baseURL string
}

type statusResponse struct {
	WhatsApp struct {
		Status string `json:"status"`
	} `json:"whatsapp"`
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type sendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Error     string `json:"error"`
}

func NewService() *Service {
	baseURL := config.GetWhatsAppWorkerURL()

	if baseURL == "" {
		log.Warn().Msg("WhatsApp worker not configured - automated messaging will be unavailable")
		return nil
	}

	return &Service{
		client:  &http.Client{},
		baseURL: baseURL,
	}
}

// Status returns the worker's connection state.
func (s *Service) Status(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/status", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach worker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("worker returned status %d", resp.StatusCode)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", fmt.Errorf("failed to decode status: %w", err)
	}
	return status.WhatsApp.Status, nil
}

// Send delivers one message through the worker and returns the provider
// message id.
func (s *Service) Send(ctx context.Context, to, message string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jsonData, err := json.Marshal(sendRequest{To: to, Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach worker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("worker returned status %d: %s", resp.StatusCode, string(body))
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.Success {
		return "", fmt.Errorf("send failed: %s", result.Error)
	}
	return result.MessageID, nil
}
