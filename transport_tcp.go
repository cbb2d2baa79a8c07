// transport_tcp.go - network loom connection (generation 4, or a
// gen 1-3 dongle bridged over ethernet)

package main

import (
	"fmt"
	"net"
	"time"
)

type tcpTransport struct {
	conn *net.TCPConn
}

// DialLoomTCP connects to a loom at addr:port with a short timeout, matching
// the original driver's assumption that a misconfigured --loomAddress fails
// fast rather than hanging the whole program.
func DialLoomTCP(addr string, port int) (Transport, error) {
	raddr := &net.TCPAddr{IP: net.ParseIP(addr), Port: port}
	if raddr.IP == nil {
		resolved, err := net.ResolveTCPAddr("tcp", fmt.Sprintf("%s:%d", addr, port))
		if err != nil {
			return nil, fmt.Errorf("resolving loom address %s: %w", addr, err)
		}
		raddr = resolved
	}
	conn, err := net.DialTimeout("tcp", raddr.String(), 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connecting to loom at %s: %w", raddr, err)
	}
	tcpConn := conn.(*net.TCPConn)
	tcpConn.SetNoDelay(true)
	return &tcpTransport{conn: tcpConn}, nil
}

func (t *tcpTransport) Read(p []byte) (int, error) {
	t.conn.SetReadDeadline(time.Now().Add(5 * time.Millisecond))
	n, err := t.conn.Read(p)
	if err, ok := err.(interface{ Timeout() bool }); ok && err.Timeout() {
		return n, nil
	}
	return n, err
}

func (t *tcpTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *tcpTransport) Close() error                { return t.conn.Close() }

func (t *tcpTransport) Fd() int {
	// net.TCPConn doesn't expose its fd directly without SyscallConn; the
	// engine uses Fd() only for the write-side poll after EAGAIN, and -1
	// leaves the loom out of that poll. Reads rely on Read's own deadline.
	return -1
}
