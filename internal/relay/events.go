package relay

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/vburojevic/dbgpmap/internal/mapping"
)

type eventKind int

const (
	listenerReady eventKind = iota
	engineReady
	ideReady
	mappingsReloaded
)

// event is what a reader goroutine hands to the loop. Data and err may both
// be set: data read before the connection failed is processed first.
type event struct {
	kind    eventKind
	session int
	conn    net.Conn
	data    []byte
	err     error
	entries []mapping.Entry
}

func (e *Engine) post(ctx context.Context, ev event) bool {
	select {
	case e.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *Engine) acceptLoop(ctx context.Context) {
	for {
		conn, err := e.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			if !e.post(ctx, event{kind: listenerReady, err: err}) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(acceptRetryDelay):
			}
			continue
		}
		if !e.post(ctx, event{kind: listenerReady, conn: conn}) {
			conn.Close()
			return
		}
	}
}

// pump reads conn until it fails, tagging every read with the session it belongs to.
func (e *Engine) pump(ctx context.Context, id int, kind eventKind, conn net.Conn) {
	buf := make([]byte, e.cfg.ReadBufferSize)
	for {
		n, err := conn.Read(buf)
		ev := event{kind: kind, session: id, err: err}
		if n > 0 {
			ev.data = append([]byte(nil), buf[:n]...)
		}
		if !e.post(ctx, ev) || err != nil {
			return
		}
	}
}
