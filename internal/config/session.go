package config

import (
	"crypto/rand"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	// SessionCookieName is the name of the surface session cookie.
	SessionCookieName = GetEnvOrDefault("SESSION_COOKIE_NAME", "iadental_session")

	jwtSecretOnce sync.Once
	jwtSecret     []byte
)

// GetSessionCookieName returns the configured session cookie name.
func GetSessionCookieName() string {
	return SessionCookieName
}

// SetSessionCookieName temporarily changes the session cookie name and
// returns a function to restore it. This is primarily used for testing.
func SetSessionCookieName(name string) func() {
	previous := SessionCookieName
	SessionCookieName = name

	return func() {
		SessionCookieName = previous
	}
}

// GetJWTSecret returns the key used to sign surface session cookies. When
// JWT_SECRET is unset an ephemeral key is generated once per process, which
// invalidates cookies across restarts.
func GetJWTSecret() []byte {
	jwtSecretOnce.Do(func() {
		if v := GetEnvOrDefault("JWT_SECRET", ""); v != "" {
			jwtSecret = []byte(v)
			return
		}

		jwtSecret = make([]byte, 32)
		if _, err := rand.Read(jwtSecret); err != nil {
			log.Fatal().Err(err).Msg("Failed to generate ephemeral JWT secret")
		}
		log.Warn().Msg("JWT_SECRET not set - using ephemeral secret, sessions will not survive restarts")
	})
	return jwtSecret
}
