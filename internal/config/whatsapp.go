package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

// GetWhatsAppWorkerURL returns the base URL of the WhatsApp worker process,
// or empty when automated messaging is disabled.
func GetWhatsAppWorkerURL() string {
	return GetEnvOrDefault("WHATSAPP_WORKER_URL", "")
}

// GetMessagingQueueInterval returns how often the scheduled-message queue is
// swept for due messages.
func GetMessagingQueueInterval() time.Duration {
	val := GetEnvOrDefault("MESSAGING_QUEUE_INTERVAL", "30s")
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		log.Warn().Str("value", val).Msg("Invalid MESSAGING_QUEUE_INTERVAL, using 30s")
		return 30 * time.Second
	}
	return d
}
