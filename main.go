// main.go - entry point: parses flags, loads the draft, opens the loom,
// and runs the engine until the weaver quits (spec.md §7's exit-code
// contract: 0 success, 4 runtime/system error, 5 unexpected exception).

package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Unexpected error: %v\n", r)
			exitCode = 5
		}
	}()

	for _, a := range argv {
		if a == "--findloom" {
			if err := FindLoom(os.Stdin, os.Stdout); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 4
			}
			return 0
		}
	}

	opts, err := ParseOptions(argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 4
	}

	draft, err := loadDraft(opts.DraftPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 4
	}

	if opts.Check {
		fmt.Printf("%s: OK (%d ends, %d picks, %d shafts)\n",
			opts.DraftPath, draft.Ends(), draft.Picks(), draft.MaxShafts)
		return 0
	}

	picks, err := CompilePickList(opts.PickList, draft.Picks(), opts.TabbyPattern, opts.TreadleThreading)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 4
	}

	startPick, err := resolveStartPick(opts.StartPick)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 4
	}

	dialect, err := DialectForGeneration(opts.DobbyGeneration)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 4
	}

	transport, err := openTransport(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 4
	}
	defer transport.Close()

	var logger *Logger
	if opts.Log {
		logger, err = NewLogger(opts.DobbyGeneration != 4, time.Now())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 4
		}
	}
	defer logger.Close()

	term, err := StartTermHost()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 4
	}
	defer term.Stop()

	renderer := Renderer(NewTerminalRenderer(term))

	view := NewView(draft, opts, opts.TabbyPattern, picks, startPick)
	engine := NewEngine(opts, draft, view, dialect, transport, term, renderer, logger)

	if audio, err := NewAudioAlert(); err == nil {
		engine.SetAudioAlert(audio)
		defer audio.Close()
	}

	if err := engine.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 4
	}
	return 0
}

// loadDraft dispatches on the draft file's extension, generalizing the
// original driver's WIF-only assumption to the DTX format this spec adds.
func loadDraft(path string) (*Draft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening draft file %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".dtx":
		return LoadDTX(f)
	default:
		return LoadWIF(f)
	}
}

// resolveStartPick turns --pick's three forms into a concrete 1-based
// pick number, reading $HOME/.drawboypick for "last"/"last+N".
func resolveStartPick(sp StartingPick) (int, error) {
	if sp.Explicit {
		return sp.Pick, nil
	}
	last, err := ReadLastPick()
	if err != nil {
		return 0, err
	}
	return last + sp.LastPlus, nil
}

// openTransport opens the serial or TCP loom connection, whichever
// --loomDevice/--loomAddress selected (ParseOptions already enforces
// exactly one is set).
func openTransport(opts *Options) (Transport, error) {
	if opts.LoomDevice != "" {
		cfg, err := SerialConfigForGeneration(opts.DobbyGeneration)
		if err != nil {
			return nil, err
		}
		return OpenSerialLoom(opts.LoomDevice, cfg)
	}
	host, port := splitHostPort(opts.LoomAddress)
	return DialLoomTCP(host, port)
}

// splitHostPort parses "host" or "host:port", defaulting to the gen 4
// loom's telnet-style control port.
func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 23
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 23
	}
	return host, port
}
