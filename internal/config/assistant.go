package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

// GetAssistantTimeout returns how long a single backend dispatch may run
// before it is force-rejected with a timeout cause.
func GetAssistantTimeout() time.Duration {
	val := GetEnvOrDefault("ASSISTANT_TIMEOUT", "60s")
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		log.Warn().Str("value", val).Msg("Invalid ASSISTANT_TIMEOUT, using 60s")
		return 60 * time.Second
	}
	return d
}

// GetAssistantHistoryWindow returns how many trailing messages are sent to
// the backend per dispatch. The full transcript stays in the store.
func GetAssistantHistoryWindow() int {
	return parseEnvInt("ASSISTANT_HISTORY_WINDOW", 20)
}

// GetAssistantSessionTTL returns how long a session may sit idle before the
// registry reaps it. The default matches the surface cookie lifetime, so a
// session outlives its cookie by at most one sweep.
func GetAssistantSessionTTL() time.Duration {
	val := GetEnvOrDefault("ASSISTANT_SESSION_TTL", "8h")
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		log.Warn().Str("value", val).Msg("Invalid ASSISTANT_SESSION_TTL, using 8h")
		return 8 * time.Hour
	}
	return d
}
