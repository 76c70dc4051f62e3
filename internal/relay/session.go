package relay

import (
	"net"

	"github.com/vburojevic/dbgpmap/internal/dbgp"
)

// Session is one engine connection paired with its IDE connection.
type Session struct {
	id       int
	engine   net.Conn
	ide      net.Conn
	commands dbgp.CommandFramer
	packets  dbgp.PacketFramer
}

func newSession(id int, engine, ide net.Conn) *Session {
	return &Session{id: id, engine: engine, ide: ide}
}

func (s *Session) close() {
	s.engine.Close()
	s.ide.Close()
	s.commands.Reset()
	s.packets.Reset()
}
