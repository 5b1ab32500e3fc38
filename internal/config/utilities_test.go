package config

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue string
		want         string
	}{
		{"set variable wins", "IADENTAL_TEST_SET", "custom", "fallback", "custom"},
		{"unset falls back", "IADENTAL_TEST_UNSET", "", "fallback", "fallback"},
		{"empty default", "IADENTAL_TEST_EMPTY", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}
			if got := GetEnvOrDefault(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("GetEnvOrDefault(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestParseEnvInt(t *testing.T) {
	t.Setenv("IADENTAL_TEST_INT", "15")
	if got := parseEnvInt("IADENTAL_TEST_INT", 20); got != 15 {
		t.Errorf("parseEnvInt = %d, want 15", got)
	}

	t.Setenv("IADENTAL_TEST_INT", "not a number")
	if got := parseEnvInt("IADENTAL_TEST_INT", 20); got != 20 {
		t.Errorf("parseEnvInt with garbage = %d, want default 20", got)
	}
}

func TestGetAssistantTimeout(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset uses default", "", 60 * time.Second},
		{"custom duration", "90s", 90 * time.Second},
		{"minutes", "2m", 2 * time.Minute},
		{"garbage uses default", "soon", 60 * time.Second},
		{"negative uses default", "-5s", 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("ASSISTANT_TIMEOUT", tt.value)
			}
			if got := GetAssistantTimeout(); got != tt.want {
				t.Errorf("GetAssistantTimeout() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGetAssistantHistoryWindow(t *testing.T) {
	if got := GetAssistantHistoryWindow(); got != 20 {
		t.Errorf("default window = %d, want 20", got)
	}

	t.Setenv("ASSISTANT_HISTORY_WINDOW", "5")
	if got := GetAssistantHistoryWindow(); got != 5 {
		t.Errorf("window = %d, want 5", got)
	}
}
