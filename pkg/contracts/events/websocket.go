// Package events contains event contract definitions for WebSocket communication
// in the order metrics service.
package events

import (
	"time"

	"ordermetrics/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Upload lifecycle messages
	MessageTypeUploadCompleted MessageType = "upload:completed"
	MessageTypeUploadFailed    MessageType = "upload:failed"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// MessageTypeFor maps an upload event status to its message type
func MessageTypeFor(event domain.UploadEvent) MessageType {
	if event.Status == domain.UploadStatusFailed {
		return MessageTypeUploadFailed
	}
	return MessageTypeUploadCompleted
}

// NewUploadMessage wraps an upload event in a WebSocket envelope
func NewUploadMessage(id, traceID string, event domain.UploadEvent) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			ID:        id,
			Type:      MessageTypeFor(event),
			Timestamp: event.Timestamp,
			TraceID:   traceID,
		},
		Data: event,
	}
}

// ConnectionInfo is sent to a client right after it connects
type ConnectionInfo struct {
	ClientID string `json:"client_id"`
	Version  string `json:"version"`
}
