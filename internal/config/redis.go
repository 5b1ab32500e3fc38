package config

// GetRedisURL returns the Redis address for the surface session store, or
// empty when the in-memory store should be used.
func GetRedisURL() string {
	return GetEnvOrDefault("REDIS_URL", "")
}

// GetRedisPassword returns the Redis password, or empty for none.
func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}
