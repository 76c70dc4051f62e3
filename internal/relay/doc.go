// Package relay pairs one debugger engine connection at a time with an
// outbound IDE connection and rewrites the paths the two exchange.
//
// A single loop goroutine owns the session, its framers, and the mapping
// table. Listener and socket readers only post tagged events to it:
//
//	listener ──listenerReady──┐
//	engine   ──engineReady────┼──> loop ──> rewrite ──> write to the peer
//	IDE      ──ideReady───────┘
//
// Session states are Idle, Accepting (engine accepted, dialing the IDE) and
// Active. Any EOF, read or write error, or unparsable engine packet returns
// the loop to Idle; a new engine connection replaces the live session.
package relay
