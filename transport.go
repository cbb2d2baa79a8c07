// transport.go - the loom connection abstraction
//
// Both the TCP (gen 4, and gen 1-3 over a network dongle) and serial
// (gen 1-3 over RS-232) transports are put into non-blocking mode and read
// one chunk at a time from the engine's select loop, in the same style the
// teacher's TerminalHost polls stdin.

package main

import "io"

// Transport is a non-blocking byte stream to the loom. Read returns
// (0, nil) rather than blocking when no data is currently available;
// callers poll it alongside other event sources.
type Transport interface {
	io.ReadWriteCloser

	// Fd exposes the underlying file descriptor for select/poll-based
	// multiplexing.
	Fd() int
}
