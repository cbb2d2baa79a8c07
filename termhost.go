// termhost.go - raw-mode stdin for the interactive session.
//
// Adapted from the teacher's terminal_host.go: same term.MakeRaw/
// term.Restore and SetNonblock discipline, but with the goroutine dropped -
// spec.md §5 requires a single cooperative loop with no background tasks,
// so TermHost just exposes a non-blocking Read the engine polls directly,
// the same shape transport_serial.go already uses for the loom fd.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// TermHost owns stdin's raw-mode state for the process lifetime and
// reports SIGWINCH via a polled flag (spec.md §5: "the resize signal
// handler must be async-signal-safe and only set a flag").
type TermHost struct {
	fd       int
	oldState *term.State
	resized  atomic.Bool
	sigCh    chan os.Signal
}

// StartTermHost puts stdin into raw, non-blocking mode and begins tracking
// SIGWINCH.
func StartTermHost() (*TermHost, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	if err := syscall.SetNonblock(fd, true); err != nil {
		_ = term.Restore(fd, oldState)
		return nil, fmt.Errorf("setting stdin non-blocking: %w", err)
	}
	h := &TermHost{fd: fd, oldState: oldState, sigCh: make(chan os.Signal, 1)}
	signal.Notify(h.sigCh, syscall.SIGWINCH)
	go h.watchSignals()
	return h, nil
}

// watchSignals only ever sets an atomic flag; all real work happens in the
// engine's poll loop, never here.
func (h *TermHost) watchSignals() {
	for range h.sigCh {
		h.resized.Store(true)
	}
}

// TakeResize reports and clears a pending resize, for the engine to
// promote into a TermEvent{Type: TermResize} once per occurrence.
func (h *TermHost) TakeResize() bool {
	return h.resized.CompareAndSwap(true, false)
}

// Fd is the stdin file descriptor, for poll-based multiplexing.
func (h *TermHost) Fd() int { return h.fd }

// Read performs one non-blocking read; (0, nil) means no data is ready.
func (h *TermHost) Read(p []byte) (int, error) {
	n, err := syscall.Read(h.fd, p)
	if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
		return 0, nil
	}
	return n, err
}

// Stop restores stdin to its original blocking, cooked state.
func (h *TermHost) Stop() error {
	signal.Stop(h.sigCh)
	_ = syscall.SetNonblock(h.fd, false)
	return term.Restore(h.fd, h.oldState)
}

// Cols reports the current terminal width, satisfying the renderer's
// TermSize contract, via the TIOCGWINSZ ioctl (term.cpp's
// Term::fetchWindowSize, ported to x/sys/unix).
func (h *TermHost) Cols() int {
	ws, err := unix.IoctlGetWinsize(h.fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80
	}
	return int(ws.Col)
}
