package session

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/vburojevic/dbgpmap/internal/domain"
)

// Tracker numbers relay sessions and keeps per-session traffic counters.
// It belongs to the relay loop and is not safe for concurrent use.
type Tracker struct {
	clock          clock.Clock
	currentSession int
	active         bool
	sessionStart   time.Time
	summary        domain.SessionSummary
}

// NewTracker creates a new session tracker. A nil clock uses wall time.
func NewTracker(clk clock.Clock) *Tracker {
	if clk == nil {
		clk = clock.New()
	}
	return &Tracker{clock: clk}
}

// Start opens the next session and returns its start event
func (t *Tracker) Start(engine, ide string, replaced bool) *domain.SessionStart {
	t.currentSession++
	t.active = true
	t.sessionStart = t.clock.Now()
	t.summary = domain.SessionSummary{}

	return domain.NewSessionStart(t.currentSession, engine, ide, replaced, t.sessionStart)
}

// End closes the current session. It returns nil when no session is open.
func (t *Tracker) End(reason string) *domain.SessionEnd {
	if !t.active {
		return nil
	}
	t.active = false

	summary := t.summary
	summary.DurationSeconds = int(t.clock.Since(t.sessionStart).Seconds())
	return domain.NewSessionEnd(t.currentSession, reason, summary)
}

// RecordCommand counts one IDE command that was written to the engine as
// forwarded commands.
func (t *Tracker) RecordCommand(forwarded int) {
	t.summary.Commands++
	t.summary.Forwarded += forwarded
	if forwarded > 1 {
		t.summary.Breakpoints++
	}
}

// RecordPacket counts one engine packet with the given number of rewritten paths
func (t *Tracker) RecordPacket(rewrites int) {
	t.summary.Packets++
	t.summary.Rewrites += rewrites
}
