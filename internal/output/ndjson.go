package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/vburojevic/dbgpmap/internal/domain"
)

// ErrorOutput is the NDJSON shape of a fatal command error
type ErrorOutput struct {
	Type          string `json:"type"` // error
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// NDJSONWriter writes one JSON object per line
type NDJSONWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewNDJSONWriter creates a writer on w
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w)}
}

// Write encodes any value as a single line
func (w *NDJSONWriter) Write(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}

// WriteReady writes the listener ready event
func (w *NDJSONWriter) WriteReady(r *domain.Ready) error { return w.Write(r) }

// WriteSessionStart writes a session start event
func (w *NDJSONWriter) WriteSessionStart(s *domain.SessionStart) error { return w.Write(s) }

// WriteSessionEnd writes a session end event
func (w *NDJSONWriter) WriteSessionEnd(s *domain.SessionEnd) error { return w.Write(s) }

// WriteWarning writes a recoverable warning
func (w *NDJSONWriter) WriteWarning(warn *domain.Warning) error { return w.Write(warn) }

// WriteError writes a fatal error with an optional hint
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	out := ErrorOutput{
		Type:          "error",
		SchemaVersion: domain.SchemaVersion,
		Code:          code,
		Message:       message,
	}
	if len(hint) > 0 {
		out.Hint = hint[0]
	}
	return w.Write(out)
}
