package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/vburojevic/dbgpmap/internal/dbgp"
	"github.com/vburojevic/dbgpmap/internal/domain"
	"github.com/vburojevic/dbgpmap/internal/mapping"
	"github.com/vburojevic/dbgpmap/internal/output"
	"github.com/vburojevic/dbgpmap/internal/session"
	"go.uber.org/zap"
)

// ErrListen wraps every failure to set up the listening socket.
var ErrListen = errors.New("failed to listen")

const (
	defaultDialTimeout    = 5 * time.Second
	defaultReadBufferSize = 4096
	acceptRetryDelay      = 50 * time.Millisecond
)

// Config holds the addresses the relay connects.
type Config struct {
	ListenAddr     string
	IDEAddr        string
	DialTimeout    time.Duration
	ReadBufferSize int
}

// Reporter receives the status events of the relay.
type Reporter interface {
	WriteReady(*domain.Ready) error
	WriteSessionStart(*domain.SessionStart) error
	WriteSessionEnd(*domain.SessionEnd) error
	WriteWarning(*domain.Warning) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the debug logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithReporter sets where status events go.
func WithReporter(r Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithClock sets the clock used for session timing.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

type state int

const (
	stateIdle state = iota
	stateAccepting
	stateActive
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAccepting:
		return "accepting"
	case stateActive:
		return "active"
	}
	return "unknown"
}

// Engine is the relay's event loop.
type Engine struct {
	cfg      Config
	mapper   *mapping.Mapper
	log      *zap.Logger
	reporter Reporter
	clock    clock.Clock
	tracker  *session.Tracker

	listener net.Listener
	events   chan event

	// Owned by the loop goroutine.
	state   state
	sess    *Session
	pending []mapping.Entry
	reload  bool
}

// New creates an engine. mapper must not be used elsewhere while the engine runs.
func New(cfg Config, mapper *mapping.Mapper, opts ...Option) *Engine {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = defaultReadBufferSize
	}
	if mapper == nil {
		mapper = mapping.NewMapper(nil, nil)
	}
	e := &Engine{
		cfg:      cfg,
		mapper:   mapper,
		log:      zap.NewNop(),
		reporter: output.Discard{},
		clock:    clock.New(),
		events:   make(chan event, 16),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.tracker = session.NewTracker(e.clock)
	return e
}

// Listen binds the listening socket. Its errors are fatal for the process.
func (e *Engine) Listen() error {
	lc := net.ListenConfig{Control: reuseAddr}
	l, err := lc.Listen(context.Background(), "tcp", e.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("%w on %s: %w", ErrListen, e.cfg.ListenAddr, err)
	}
	e.listener = l
	return nil
}

// Addr returns the bound listener address, nil before Listen.
func (e *Engine) Addr() net.Addr {
	if e.listener == nil {
		return nil
	}
	return e.listener.Addr()
}

// Run listens and serves until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Listen(); err != nil {
		return err
	}
	return e.Serve(ctx)
}

// Serve relays sessions until ctx is cancelled, then closes every socket.
func (e *Engine) Serve(ctx context.Context) error {
	if e.listener == nil {
		return fmt.Errorf("%w: not bound", ErrListen)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer e.shutdown()

	e.report(e.reporter.WriteReady(domain.NewReady(
		e.listener.Addr().String(), e.cfg.IDEAddr, e.mapper.Len(), e.mapper.Contexts(), e.clock.Now())))
	e.log.Debug("listening", zap.String("listen", e.listener.Addr().String()), zap.String("ide", e.cfg.IDEAddr))

	go e.acceptLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-e.events:
			e.dispatch(ctx, ev)
		}
	}
}

// ReloadMappings replaces the loaded mapping entries. A live session keeps
// its table until it ends.
func (e *Engine) ReloadMappings(ctx context.Context, entries []mapping.Entry) {
	e.post(ctx, event{kind: mappingsReloaded, entries: entries})
}

func (e *Engine) dispatch(ctx context.Context, ev event) {
	switch ev.kind {
	case listenerReady:
		e.handleAccept(ctx, ev)
	case engineReady, ideReady:
		if e.sess == nil || ev.session != e.sess.id {
			// Reader of a session that was already reset.
			return
		}
		if ev.kind == engineReady {
			e.handleEngine(ev)
		} else {
			e.handleIDE(ev)
		}
	case mappingsReloaded:
		e.pending, e.reload = ev.entries, true
		if e.sess == nil {
			e.applyPendingMappings()
		}
	}
}

func (e *Engine) handleAccept(ctx context.Context, ev event) {
	if ev.err != nil {
		e.warn(domain.WarnAcceptFailed, fmt.Sprintf("Failed to accept connection: %v", ev.err))
		return
	}

	replaced := e.sess != nil
	if replaced {
		e.endSession(domain.ReasonReplaced)
	}
	e.setState(stateAccepting)

	engineConn := ev.conn
	dialCtx, cancel := context.WithTimeout(ctx, e.cfg.DialTimeout)
	var d net.Dialer
	ideConn, err := d.DialContext(dialCtx, "tcp", e.cfg.IDEAddr)
	cancel()
	if err != nil {
		e.log.Debug("dial IDE failed", zap.String("ide", e.cfg.IDEAddr), zap.Error(err))
		engineConn.Close()
		e.warn(domain.WarnIDEUnreachable, fmt.Sprintf("Unable to contact the IDE at %s", e.cfg.IDEAddr))
		e.setState(stateIdle)
		return
	}

	start := e.tracker.Start(engineConn.RemoteAddr().String(), e.cfg.IDEAddr, replaced)
	e.sess = newSession(start.Session, engineConn, ideConn)
	e.setState(stateActive)
	e.report(e.reporter.WriteSessionStart(start))

	go e.pump(ctx, e.sess.id, engineReady, engineConn)
	go e.pump(ctx, e.sess.id, ideReady, ideConn)
}

func (e *Engine) handleIDE(ev event) {
	s := e.sess
	if len(ev.data) > 0 {
		var out []byte
		for _, line := range s.commands.Feed(ev.data) {
			cmds := dbgp.ExpandCommand(line, e.mapper)
			e.tracker.RecordCommand(len(cmds))
			for _, c := range cmds {
				e.log.Debug("ide->engine", zap.Int("session", s.id), zap.String("command", c))
				out = append(out, dbgp.EncodeCommand(c)...)
			}
		}
		if len(out) > 0 {
			if _, err := s.engine.Write(out); err != nil {
				e.log.Debug("write to engine failed", zap.Int("session", s.id), zap.Error(err))
				e.endSession(domain.ReasonWriteFailed)
				return
			}
		}
	}
	if ev.err != nil {
		e.log.Debug("ide connection ended", zap.Int("session", s.id), zap.Error(ev.err))
		e.endSession(domain.ReasonIDEClosed)
	}
}

func (e *Engine) handleEngine(ev event) {
	s := e.sess
	if len(ev.data) > 0 {
		var out []byte
		for _, payload := range s.packets.Feed(ev.data) {
			rewritten, n, err := dbgp.RewriteResponse(payload, e.mapper)
			if err != nil {
				e.log.Debug("dropping engine packet", zap.Int("session", s.id), zap.ByteString("payload", payload), zap.Error(err))
				// Packets completed before the bad one still reach the IDE.
				if len(out) > 0 {
					if _, werr := s.ide.Write(out); werr != nil {
						e.log.Debug("write to IDE failed", zap.Int("session", s.id), zap.Error(werr))
					}
				}
				e.warn(domain.WarnInvalidPacket, err.Error())
				e.endSession(domain.ReasonInvalidPacket)
				return
			}
			e.tracker.RecordPacket(n)
			e.log.Debug("engine->ide", zap.Int("session", s.id), zap.Int("rewrites", n), zap.ByteString("payload", rewritten))
			out = append(out, dbgp.EncodePacket(rewritten)...)
		}
		if len(out) > 0 {
			if _, err := s.ide.Write(out); err != nil {
				e.log.Debug("write to IDE failed", zap.Int("session", s.id), zap.Error(err))
				e.endSession(domain.ReasonWriteFailed)
				return
			}
		}
	}
	if ev.err != nil {
		e.log.Debug("engine connection ended", zap.Int("session", s.id), zap.Error(ev.err))
		e.endSession(domain.ReasonEngineClosed)
	}
}

// endSession closes both session sockets and returns to Idle.
func (e *Engine) endSession(reason string) {
	s := e.sess
	if s == nil {
		return
	}
	e.sess = nil
	s.close()
	e.setState(stateIdle)
	if end := e.tracker.End(reason); end != nil {
		e.report(e.reporter.WriteSessionEnd(end))
	}
	e.applyPendingMappings()
}

func (e *Engine) applyPendingMappings() {
	if !e.reload {
		return
	}
	e.mapper.Reload(e.pending)
	e.pending, e.reload = nil, false
	e.log.Debug("mappings reloaded", zap.Int("entries", e.mapper.Len()))
	e.warn(domain.WarnMappingsReloaded, fmt.Sprintf("Mappings reloaded (%d entries)", e.mapper.Len()))
}

func (e *Engine) shutdown() {
	e.endSession(domain.ReasonShutdown)
	if err := e.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		e.log.Debug("closing listener", zap.Error(err))
	}
}

func (e *Engine) setState(s state) {
	if e.state != s {
		e.log.Debug("state", zap.Stringer("from", e.state), zap.Stringer("to", s))
	}
	e.state = s
}

func (e *Engine) warn(code, message string) {
	e.report(e.reporter.WriteWarning(domain.NewWarning(code, message)))
}

func (e *Engine) report(err error) {
	if err != nil {
		e.log.Debug("status output failed", zap.Error(err))
	}
}
