package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
}

// GetRateLimitConfig returns the limiter settings for a named endpoint group.
func GetRateLimitConfig(key string) RateLimitConfig {
	enabled := GetEnvOrDefault("RATELIMIT_ENABLED", "false") == "true"

	configs := map[string]RateLimitConfig{
		"global": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_GLOBAL", 600), // 600 requests per minute globally
			Window:  time.Minute,
		},
		"session_create": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_SESSION_CREATE", 30), // 30 new sessions per minute
			Window:  time.Minute,
		},
		"message_submit": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_MESSAGE_SUBMIT", 60), // 60 submissions per minute
			Window:  time.Minute,
		},
	}

	if config, exists := configs[key]; exists {
		return config
	}

	log.Warn().Str("key", key).Msg("No rate limit config found for key")
	return RateLimitConfig{Enabled: false}
}
