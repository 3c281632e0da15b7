package model

import "time"

// Canonical severity levels used across the log pipeline. The bridge
// logs with loguru-style levels, so "success" is a first-class level
// alongside the usual ones.
const (
	LevelDebug    = "debug"
	LevelInfo     = "info"
	LevelSuccess  = "success"
	LevelWarning  = "warning"
	LevelError    = "error"
	LevelCritical = "critical"
	LevelUnknown  = "unknown"
)

// RawLine is one unparsed line read from a watched log file.
type RawLine struct {
	Text   string
	Source string
}

// LogEvent represents a single parsed log line.
type LogEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"` // originating component or file path
	Level     string    `json:"level"`            // one of the Level* constants
	Message   string    `json:"message"`          // parsed message content
	Raw       string    `json:"raw"`              // original line text, never mutated

	// TimeUnreliable is set when the line carried no parseable
	// timestamp and Timestamp was substituted with the parse time.
	// Sorting stays total either way.
	TimeUnreliable bool `json:"timeUnreliable,omitempty"`
}
