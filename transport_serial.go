// transport_serial.go - RS-232 loom connection (generations 1-3)
//
// Compu-Dobby I is 1200 baud 7E2; Compu-Dobby II and III are 9600 baud 8N1.
// There's no well-maintained, dependency-light serial port package in the
// retrieval pack (daedaluz/goserial pulls in two further unfetchable vanity
// modules - see DESIGN.md), so the port is configured directly with
// golang.org/x/sys/unix termios ioctls, in the same raw-syscall,
// non-blocking-read style the teacher's terminal_host.go already uses for
// stdin.

package main

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

type serialTransport struct {
	f  *os.File
	fd int
}

// SerialConfig describes the line discipline for one Compu-Dobby
// generation.
type SerialConfig struct {
	Baud     uint32
	CharSize uint32 // unix.CS7 or unix.CS8
	Parity   bool
	TwoStop  bool
}

// SerialConfigForGeneration returns the wire settings for gen 1-3.
func SerialConfigForGeneration(gen int) (SerialConfig, error) {
	switch gen {
	case 1:
		return SerialConfig{Baud: unix.B1200, CharSize: unix.CS7, Parity: true, TwoStop: true}, nil
	case 2, 3:
		return SerialConfig{Baud: unix.B9600, CharSize: unix.CS8, Parity: false, TwoStop: false}, nil
	default:
		return SerialConfig{}, fmt.Errorf("generation %d has no serial dialect", gen)
	}
}

// OpenSerialLoom opens and configures path as the loom's RS-232 connection.
func OpenSerialLoom(path string, cfg SerialConfig) (Transport, error) {
	f, err := os.OpenFile(path, os.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("opening loom device %s: %w", path, err)
	}
	fd := int(f.Fd())

	term, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading terminal attributes for %s: %w", path, err)
	}

	term.Cflag &^= unix.CSIZE | unix.PARENB | unix.PARODD | unix.CSTOPB | unix.CRTSCTS
	term.Cflag |= cfg.CharSize | unix.CLOCAL | unix.CREAD
	if cfg.Parity {
		term.Cflag |= unix.PARENB
	}
	if cfg.TwoStop {
		term.Cflag |= unix.CSTOPB
	}
	term.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	term.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHONL | unix.ISIG | unix.IEXTEN
	term.Oflag &^= unix.OPOST
	term.Cc[unix.VMIN] = 0
	term.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, term); err != nil {
		f.Close()
		return nil, fmt.Errorf("setting terminal attributes for %s: %w", path, err)
	}
	if err := setBaud(fd, term, cfg.Baud); err != nil {
		f.Close()
		return nil, err
	}
	if err := syscall.SetNonblock(fd, true); err != nil {
		f.Close()
		return nil, fmt.Errorf("setting %s non-blocking: %w", path, err)
	}

	return &serialTransport{f: f, fd: fd}, nil
}

func setBaud(fd int, term *unix.Termios, baud uint32) error {
	term.Ispeed = baud
	term.Ospeed = baud
	return unix.IoctlSetTermios(fd, unix.TCSETS, term)
}

func (s *serialTransport) Read(p []byte) (int, error) {
	n, err := syscall.Read(s.fd, p)
	if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
		return 0, nil
	}
	return n, err
}

func (s *serialTransport) Write(p []byte) (int, error) {
	n, err := syscall.Write(s.fd, p)
	if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
		return 0, nil
	}
	return n, err
}

func (s *serialTransport) Close() error { return s.f.Close() }
func (s *serialTransport) Fd() int      { return s.fd }
