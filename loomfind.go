// loomfind.go - `--findloom` device enumeration: lists /dev character
// devices that look like a serial loom. Ported from args.cpp's
// enumSerial/checkForSerial.

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// FindLoom prints every /dev character device that opens successfully in
// raw non-blocking mode and answers TIOCMGET, skipping any path listed on
// stdin (one per line) when stdin isn't a terminal - the same exclusion
// list the original tool reads when piped, e.g. from a previous run.
func FindLoom(stdin *os.File, stdout *os.File) error {
	exclude := map[string]bool{}
	if fi, err := stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				exclude[line] = true
			}
		}
	}

	entries, err := os.ReadDir("/dev")
	if err != nil {
		return fmt.Errorf("reading /dev: %w", err)
	}
	for _, entry := range entries {
		if entry.Type()&os.ModeCharDevice == 0 {
			continue
		}
		path := filepath.Join("/dev", entry.Name())
		if exclude[path] {
			continue
		}
		if looksLikeSerialLoom(path) {
			fmt.Fprintln(stdout, path)
		}
	}
	return nil
}

func looksLikeSerialLoom(path string) bool {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return false
	}
	defer unix.Close(fd)
	if _, err := unix.IoctlGetInt(fd, unix.TIOCMGET); err != nil {
		return false
	}
	return true
}
