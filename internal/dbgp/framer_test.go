package dbgp

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunk splits data at random boundaries, including empty chunks.
func chunk(rng *rand.Rand, data []byte) [][]byte {
	var out [][]byte
	for len(data) > 0 {
		n := rng.Intn(len(data) + 1)
		out = append(out, data[:n])
		data = data[n:]
	}
	return out
}

func TestCommandFramer(t *testing.T) {
	t.Run("single command", func(t *testing.T) {
		var f CommandFramer
		assert.Equal(t, []string{"status -i 1"}, f.Feed([]byte("status -i 1\x00")))
		assert.Zero(t, f.Buffered())
	})

	t.Run("split across reads", func(t *testing.T) {
		var f CommandFramer
		assert.Empty(t, f.Feed([]byte("run -")))
		assert.Empty(t, f.Feed([]byte("i 2")))
		assert.Equal(t, []string{"run -i 2"}, f.Feed([]byte("\x00step_into")))
		assert.Equal(t, len("step_into"), f.Buffered())
	})

	t.Run("several in one read and empty segments dropped", func(t *testing.T) {
		var f CommandFramer
		got := f.Feed([]byte("a -i 1\x00\x00b -i 2\x00c"))
		assert.Equal(t, []string{"a -i 1", "b -i 2"}, got)
		assert.Equal(t, []string{"c -i 3"}, f.Feed([]byte(" -i 3\x00")))
	})

	t.Run("reset drops partial command", func(t *testing.T) {
		var f CommandFramer
		f.Feed([]byte("partial"))
		f.Reset()
		assert.Equal(t, []string{"next"}, f.Feed([]byte("next\x00")))
	})
}

func TestCommandFramerRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var want []string
	var stream bytes.Buffer
	for i := 0; i < 50; i++ {
		cmd := fmt.Sprintf(`breakpoint_set -i %d -t line -f "/src/file %d.php" -n %d`, i, i, i*3)
		want = append(want, cmd)
		stream.Write(EncodeCommand(cmd))
	}

	for round := 0; round < 20; round++ {
		var f CommandFramer
		var got []string
		for _, c := range chunk(rng, stream.Bytes()) {
			got = append(got, f.Feed(c)...)
		}
		require.Equal(t, want, got)
		require.Zero(t, f.Buffered())
	}
}

func TestPacketFramer(t *testing.T) {
	t.Run("whole packet", func(t *testing.T) {
		var f PacketFramer
		got := f.Feed(EncodePacket([]byte("<response/>")))
		assert.Equal(t, [][]byte{[]byte("<response/>")}, got)
		assert.False(t, f.Pending())
	})

	t.Run("length boundary kept between reads", func(t *testing.T) {
		var f PacketFramer
		assert.Empty(t, f.Feed([]byte("11")))
		assert.False(t, f.Pending())
		assert.Empty(t, f.Feed([]byte("\x00<resp")))
		assert.True(t, f.Pending())
		assert.Empty(t, f.Feed([]byte("onse/")))
		got := f.Feed([]byte(">\x0012\x00<x"))
		assert.Equal(t, [][]byte{[]byte("<response/>")}, got)
		assert.True(t, f.Pending())
	})

	t.Run("payload is trimmed", func(t *testing.T) {
		var f PacketFramer
		got := f.Feed([]byte("14\x00\n <init/> \n\x00"))
		assert.Equal(t, [][]byte{[]byte("<init/>")}, got)
	})

	t.Run("several packets in one read", func(t *testing.T) {
		var f PacketFramer
		data := append(EncodePacket([]byte("<a/>")), EncodePacket([]byte("<b/>"))...)
		got := f.Feed(data)
		assert.Equal(t, [][]byte{[]byte("<a/>"), []byte("<b/>")}, got)
		assert.Zero(t, f.Buffered())
	})

	t.Run("reset clears boundary", func(t *testing.T) {
		var f PacketFramer
		f.Feed([]byte("5\x00<a"))
		require.True(t, f.Pending())
		f.Reset()
		assert.False(t, f.Pending())
		assert.Equal(t, [][]byte{[]byte("<b/>")}, f.Feed(EncodePacket([]byte("<b/>"))))
	})
}

func TestPacketFramerRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var want [][]byte
	var stream bytes.Buffer
	for i := 0; i < 40; i++ {
		payload := []byte(fmt.Sprintf(`<response command="step_into" transaction_id="%d"><stack filename="file:///var/www/%d.php" lineno="%d"/></response>`, i, i, i))
		want = append(want, payload)
		stream.Write(EncodePacket(payload))
	}

	for round := 0; round < 20; round++ {
		var f PacketFramer
		var got [][]byte
		for _, c := range chunk(rng, stream.Bytes()) {
			got = append(got, f.Feed(c)...)
		}
		require.Equal(t, want, got)
		require.Zero(t, f.Buffered())
		require.False(t, f.Pending())
	}
}

func TestEncodePacket(t *testing.T) {
	payload := []byte("<init fileuri=\"é\"/>")
	got := EncodePacket(payload)
	assert.Equal(t, fmt.Sprintf("%d\x00%s\x00", len(payload), payload), string(got))
}
