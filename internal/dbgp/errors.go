package dbgp

import "errors"

var (
	// ErrMalformedCommand is returned for a command line the tokenizer cannot split.
	ErrMalformedCommand = errors.New("malformed command")

	// ErrMalformedPacket is returned when an engine payload is not well-formed XML.
	ErrMalformedPacket = errors.New("malformed packet")
)
