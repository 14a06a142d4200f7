package domain

import (
	"strings"
	"time"
)

// LogLevel is the severity of an operational log entry
type LogLevel string

const (
	LogDebug   LogLevel = "debug"
	LogInfo    LogLevel = "info"
	LogSuccess LogLevel = "success"
	LogWarn    LogLevel = "warn"
	LogError   LogLevel = "error"
)

// ParseLogLevel normalizes a level string; unknown input yields ""
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogDebug
	case "info":
		return LogInfo
	case "success":
		return LogSuccess
	case "warn", "warning":
		return LogWarn
	case "error":
		return LogError
	}
	return ""
}

// LogEntry is one operational event shown to dashboard users
type LogEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}
