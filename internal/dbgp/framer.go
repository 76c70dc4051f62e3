package dbgp

import (
	"bytes"
	"strconv"
)

// CommandFramer splits the IDE's byte stream into NUL terminated commands.
type CommandFramer struct {
	buf []byte
}

// Feed appends data and returns every command it completed. Empty commands
// are dropped; an unterminated tail is kept for the next call.
func (f *CommandFramer) Feed(data []byte) []string {
	f.buf = append(f.buf, data...)
	end := bytes.LastIndexByte(f.buf, 0)
	if end < 0 {
		return nil
	}

	var cmds []string
	for _, seg := range bytes.Split(f.buf[:end], []byte{0}) {
		if len(seg) > 0 {
			cmds = append(cmds, string(seg))
		}
	}
	f.buf = append(f.buf[:0:0], f.buf[end+1:]...)
	return cmds
}

// Buffered returns the number of bytes waiting for a terminator.
func (f *CommandFramer) Buffered() int { return len(f.buf) }

// Reset drops any partial command.
func (f *CommandFramer) Reset() { f.buf = nil }

// PacketFramer reassembles the engine's `length\0payload\0` packets.
type PacketFramer struct {
	buf []byte
	// lengthSize is the byte length of the current packet's length field
	// including its NUL, 0 while that NUL has not been seen.
	lengthSize int
}

// Feed appends data and returns the payloads of every packet it completed,
// trimmed of surrounding whitespace.
func (f *PacketFramer) Feed(data []byte) [][]byte {
	f.buf = append(f.buf, data...)

	var payloads [][]byte
	for {
		if f.lengthSize == 0 {
			pos := bytes.IndexByte(f.buf, 0)
			if pos < 0 {
				return payloads
			}
			f.lengthSize = pos + 1
		}

		start := f.lengthSize
		end := bytes.IndexByte(f.buf[start:], 0)
		if end < 0 {
			return payloads
		}
		end += start

		payload := bytes.TrimSpace(f.buf[start:end])
		payloads = append(payloads, append([]byte(nil), payload...))

		f.buf = append(f.buf[:0:0], f.buf[end+1:]...)
		f.lengthSize = 0
	}
}

// Pending reports whether a packet's length field has been read but its
// payload is not yet complete.
func (f *PacketFramer) Pending() bool { return f.lengthSize != 0 }

// Buffered returns the number of bytes held for the next packet.
func (f *PacketFramer) Buffered() int { return len(f.buf) }

// Reset drops any partial packet.
func (f *PacketFramer) Reset() {
	f.buf = nil
	f.lengthSize = 0
}

// EncodePacket frames an engine payload for the IDE.
func EncodePacket(payload []byte) []byte {
	n := strconv.Itoa(len(payload))
	out := make([]byte, 0, len(n)+len(payload)+2)
	out = append(out, n...)
	out = append(out, 0)
	out = append(out, payload...)
	return append(out, 0)
}

// EncodeCommand NUL terminates a command for the engine.
func EncodeCommand(cmd string) []byte {
	return append([]byte(cmd), 0)
}
