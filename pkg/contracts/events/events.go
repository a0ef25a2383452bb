// Package events contains the event contracts pushed to WebSocket clients
// while sessions change.
package events

import (
	"time"
)

// MessageType defines the type of an event
type MessageType string

const (
	MessageTypeSessionUploaded MessageType = "session:uploaded"
	MessageTypeSessionCleaned  MessageType = "session:cleaned"
	MessageTypeSessionAnalyzed MessageType = "session:analyzed"
	MessageTypeSessionDeleted  MessageType = "session:deleted"
	MessageTypeSessionExpired  MessageType = "session:expired"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// Event is the envelope of every message sent to clients
type Event struct {
	Type      MessageType `json:"type"`
	FileID    string      `json:"file_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// NewEvent stamps an event with the current time
func NewEvent(t MessageType, fileID string, data interface{}) Event {
	return Event{
		Type:      t,
		FileID:    fileID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// UploadedData is the payload of session:uploaded
type UploadedData struct {
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
}

// CleanedData is the payload of session:cleaned
type CleanedData struct {
	Rows      int `json:"rows"`
	Columns   int `json:"columns"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// AnalyzedData is the payload of session:analyzed
type AnalyzedData struct {
	IsCleaned   bool           `json:"is_cleaned"`
	IssuesFound int            `json:"issues_found"`
	BySeverity  map[string]int `json:"by_severity,omitempty"`
}

// ErrorData is the payload of error messages
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
