// logfile.go - the optional wire-protocol transcript (spec.md §6 "Log
// file"), written under the OS temp directory when --log is set.
//
// Plain fmt/os, like every diagnostic in the teacher (see DESIGN.md); there
// is no structured-logging library anywhere in the retrieval pack's five
// repos to reach for instead.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Logger appends a byte-level transcript of the loom conversation, grouped
// into "loom: " / "drawboy: " sections whenever the direction changes.
type Logger struct {
	f      *os.File
	binary bool // gen 1-3: log as 0xNN; gen 4: printable ASCII with escapes
	lastIn bool // true if the previous write was "loom:"
	first  bool
}

// NewLogger creates "drawboy_YYYY-MM-DD-HH:MM:SS.log" under os.TempDir.
func NewLogger(binary bool, now time.Time) (*Logger, error) {
	name := fmt.Sprintf("drawboy_%s.log", now.Format("2006-01-02-15:04:05"))
	path := filepath.Join(os.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating log file %s: %w", path, err)
	}
	return &Logger{f: f, binary: binary, first: true}, nil
}

// LogLoom records bytes received from the loom.
func (l *Logger) LogLoom(data []byte) { l.log(true, data) }

// LogHost records bytes sent to the loom.
func (l *Logger) LogHost(data []byte) { l.log(false, data) }

func (l *Logger) log(fromLoom bool, data []byte) {
	if l == nil || l.f == nil || len(data) == 0 {
		return
	}
	if l.first || fromLoom != l.lastIn {
		header := "\ndrawboy: "
		if fromLoom {
			header = "\nloom: "
		}
		fmt.Fprint(l.f, header)
		l.lastIn = fromLoom
		l.first = false
	}
	if l.binary {
		for _, b := range data {
			fmt.Fprintf(l.f, "0x%02X ", b)
		}
		return
	}
	fmt.Fprint(l.f, escapeLogText(data))
}

// escapeLogText renders gen 4's text frames as printable ASCII, escaping
// \r, \n, \\ and any other non-printable byte as \xNN.
func escapeLogText(data []byte) string {
	out := make([]byte, 0, len(data)+4)
	for _, b := range data {
		switch b {
		case '\r':
			out = append(out, '\\', 'r')
		case '\n':
			out = append(out, '\\', 'n')
		case '\\':
			out = append(out, '\\', '\\')
		default:
			if b < 0x20 || b >= 0x7f {
				out = append(out, []byte(fmt.Sprintf("\\x%02X", b))...)
			} else {
				out = append(out, b)
			}
		}
	}
	return string(out)
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	return l.f.Close()
}
