// protocol.go - shared types for the loom wire protocol
//
// Two physical dialects exist (binary for Compu-Dobby generations 1-3, text
// for generation 4); both are driven through the same Dialect interface so
// the engine's state machine never has to know which one it's talking to.

package main

import "fmt"

// ArmState is the observable state of the loom's shed mechanism.
type ArmState int

const (
	ArmUnknown ArmState = iota
	ArmUp                // shed closing / closed
	ArmDown               // shed open, safe to drive solenoids
)

func (a ArmState) String() string {
	switch a {
	case ArmUp:
		return "up"
	case ArmDown:
		return "down"
	default:
		return "unknown"
	}
}

// EngineState is the top-level loom-protocol state machine.
type EngineState int

const (
	StateWaitReset EngineState = iota
	StateNeedPassword
	StateReady
	StateQuit
)

// LoomEventKind classifies a decoded, complete message from the loom.
type LoomEventKind int

const (
	LoomUnknown LoomEventKind = iota
	LoomSolenoidReset
	LoomArmsUp
	LoomArmsDown
	LoomArmNull
	LoomGreeting // gen 4 only
	LoomReady    // gen 4 only
	LoomPasswordPrompt
	LoomProtocolConfusion // gen 4 "<what>"
	LoomError
)

// LoomEvent is a dialect-decoded, protocol-level message from the loom.
type LoomEvent struct {
	Kind    LoomEventKind
	Shafts  int    // gen 4 greeting: shaft count claimed by the loom
	Negative bool  // gen 4 greeting: "neg dobby"
	Text    string // raw text, for errors/diagnostics
}

// Dialect encodes outbound commands and decodes inbound frames for one of
// the two loom wire protocols.
type Dialect interface {
	// ResetPing is the periodic handshake ping sent while WaitReset.
	ResetPing() []byte

	// ScanFrame looks for one complete terminated frame at the front of buf.
	// It returns the frame (the binary dialect drops its ETX terminator; the
	// text dialect keeps the closing '>' of its "<...>" message), the number
	// of bytes of buf consumed (including the terminator), and whether a
	// frame was found at all.
	ScanFrame(buf []byte) (frame []byte, consumed int, ok bool)

	// Interpret classifies one already-framed message.
	Interpret(frame []byte) LoomEvent

	// Pick encodes the shaft pattern for one pick: the gen 1-3 nibble
	// stream, or the gen 4 "pick n1,n2,...\r" text command.
	Pick(lift uint64, maxShafts int) []byte

	// Password replies to a gen 4 "<password:>" prompt; nil for gen 1-3.
	Password() []byte

	// Clear drops all shafts (gen 4 "clear"); nil for gen 1-3, which has no
	// equivalent (a zero-lift pick serves the same purpose there).
	Clear() []byte

	// Close politely ends the session (gen 4 "close"); nil for gen 1-3.
	Close() []byte

	// NeedsReadyAck reports whether Pick/Clear must wait for an
	// explicit <ready> acknowledgement before the next command can be sent
	// (true for gen 4, false for the fire-and-forget gen 1-3 binary wire).
	NeedsReadyAck() bool
}

// DialectForGeneration returns the wire dialect for a Compu-Dobby generation
// (1-4).
func DialectForGeneration(gen int) (Dialect, error) {
	switch gen {
	case 1, 2, 3:
		return &binaryDialect{}, nil
	case 4:
		return &textDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported dobby generation %d", gen)
	}
}
