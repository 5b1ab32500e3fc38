package config

// GetOpenAIKey returns the OpenAI API key, or empty when not configured.
func GetOpenAIKey() string {
	return GetEnvOrDefault("OPENAI_KEY", "")
}

// GetOpenAIModel returns the completion model used for both chat modes.
func GetOpenAIModel() string {
	return GetEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini")
}
