package domain

import "time"

// Ready is emitted once the listener is bound.
type Ready struct {
	Type          string   `json:"type"` // ready
	SchemaVersion int      `json:"schemaVersion"`
	Listen        string   `json:"listen"`
	IDE           string   `json:"ide"`
	Mappings      int      `json:"mappings"`
	Contexts      []string `json:"contexts,omitempty"`
	Timestamp     string   `json:"timestamp"`
}

// NewReady creates a Ready event.
func NewReady(listen, ide string, mappings int, contexts []string, at time.Time) *Ready {
	return &Ready{
		Type:          "ready",
		SchemaVersion: SchemaVersion,
		Listen:        listen,
		IDE:           ide,
		Mappings:      mappings,
		Contexts:      contexts,
		Timestamp:     at.UTC().Format(time.RFC3339),
	}
}

// Warning codes
const (
	WarnIDEUnreachable   = "IDE_UNREACHABLE"
	WarnAcceptFailed     = "ACCEPT_FAILED"
	WarnInvalidPacket    = "INVALID_PACKET"
	WarnMappingsReloaded = "MAPPINGS_RELOADED"
)

// Warning reports a recoverable condition; the relay keeps listening.
type Warning struct {
	Type          string `json:"type"` // warning
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

// NewWarning creates a Warning event.
func NewWarning(code, message string) *Warning {
	return &Warning{Type: "warning", SchemaVersion: SchemaVersion, Code: code, Message: message}
}
