package domain

import "time"

// SchemaVersion is stamped on every status event.
const SchemaVersion = 1

// Session end reasons
const (
	ReasonEngineClosed  = "engine_closed"
	ReasonIDEClosed     = "ide_closed"
	ReasonReplaced      = "replaced"
	ReasonInvalidPacket = "invalid_packet"
	ReasonWriteFailed   = "write_failed"
	ReasonShutdown      = "shutdown"
)

// SessionStart is emitted when an engine connection has been paired with the IDE
type SessionStart struct {
	Type          string `json:"type"`            // "session_start"
	SchemaVersion int    `json:"schemaVersion"`   // 1
	Alert         string `json:"alert,omitempty"` // "SESSION_REPLACED" when a live session was reset for this one
	Session       int    `json:"session"`         // Session number (1, 2, 3...)
	Engine        string `json:"engine"`          // Remote address of the debugger engine
	IDE           string `json:"ide"`             // Address of the IDE
	Timestamp     string `json:"timestamp"`       // ISO8601 timestamp
}

// SessionEnd is emitted when a session is reset
type SessionEnd struct {
	Type          string         `json:"type"`          // "session_end"
	SchemaVersion int            `json:"schemaVersion"` // 1
	Session       int            `json:"session"`       // Session number that ended
	Reason        string         `json:"reason"`        // One of the Reason* constants
	Summary       SessionSummary `json:"summary"`       // Summary of the session
}

// SessionSummary contains statistics about a completed session
type SessionSummary struct {
	Commands        int `json:"commands"`         // IDE commands received
	Breakpoints     int `json:"breakpoints"`      // breakpoint_set commands that fanned out
	Forwarded       int `json:"forwarded"`        // commands written to the engine
	Packets         int `json:"packets"`          // engine packets relayed to the IDE
	Rewrites        int `json:"rewrites"`         // path attributes rewritten
	DurationSeconds int `json:"duration_seconds"` // Session lifetime
}

// NewSessionStart creates a new SessionStart event
func NewSessionStart(session int, engine, ide string, replaced bool, at time.Time) *SessionStart {
	s := &SessionStart{
		Type:          "session_start",
		SchemaVersion: SchemaVersion,
		Session:       session,
		Engine:        engine,
		IDE:           ide,
		Timestamp:     at.UTC().Format(time.RFC3339),
	}
	if replaced {
		s.Alert = "SESSION_REPLACED"
	}
	return s
}

// NewSessionEnd creates a new SessionEnd event
func NewSessionEnd(session int, reason string, summary SessionSummary) *SessionEnd {
	return &SessionEnd{
		Type:          "session_end",
		SchemaVersion: SchemaVersion,
		Session:       session,
		Reason:        reason,
		Summary:       summary,
	}
}
