// protocol_text.go - Compu-Dobby generation 4 text wire dialect
//
// Line-oriented over a telnet-style TCP session. Frames terminate with '>'.
// Input is normalized to lowercase with \r and \n stripped before matching,
// per the loom's own telnet-ish quoting.

package main

import (
	"fmt"
	"strconv"
	"strings"
)

type textDialect struct{}

func (textDialect) ResetPing() []byte { return []byte("reset\r") }

func (textDialect) ScanFrame(buf []byte) (frame []byte, consumed int, ok bool) {
	for i, b := range buf {
		if b == '>' {
			return buf[:i+1], i + 1, true
		}
	}
	return nil, 0, false
}

func normalizeFrame(frame []byte) string {
	s := strings.ToLower(string(frame))
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.TrimSpace(s)
}

func (textDialect) Interpret(frame []byte) LoomEvent {
	text := normalizeFrame(frame)
	switch {
	case strings.HasPrefix(text, "<compu-dobby"):
		shafts, negative := parseGreeting(text)
		return LoomEvent{Kind: LoomGreeting, Shafts: shafts, Negative: negative, Text: text}
	case strings.HasPrefix(text, "<password:"):
		return LoomEvent{Kind: LoomPasswordPrompt, Text: text}
	case text == "<ready>":
		return LoomEvent{Kind: LoomReady, Text: text}
	case text == "<down>":
		return LoomEvent{Kind: LoomArmsDown, Text: text}
	case text == "<up>":
		return LoomEvent{Kind: LoomArmsUp, Text: text}
	case text == "<arm null>":
		return LoomEvent{Kind: LoomArmNull, Text: text}
	case text == "<what>":
		return LoomEvent{Kind: LoomProtocolConfusion, Text: text}
	case strings.HasPrefix(text, "<error"):
		return LoomEvent{Kind: LoomError, Text: text}
	default:
		return LoomEvent{Kind: LoomUnknown, Text: text}
	}
}

// parseGreeting extracts the shaft count and polarity word from
// "<compu-dobby iv, NN...neg dobby|pos dobby...>"-shaped text.
func parseGreeting(text string) (shafts int, negative bool) {
	negative = strings.Contains(text, "neg dobby")
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '.'
	}) {
		if n, err := strconv.Atoi(field); err == nil {
			shafts = n
			break
		}
	}
	return shafts, negative
}

// Pick renders "pick n1,n2,...\r" for the shafts set in lift.
func (textDialect) Pick(lift uint64, maxShafts int) []byte {
	var shafts []string
	for i := 0; i < maxShafts; i++ {
		if lift&(1<<uint(i)) != 0 {
			shafts = append(shafts, strconv.Itoa(i+1))
		}
	}
	return []byte(fmt.Sprintf("pick %s\r", strings.Join(shafts, ",")))
}

func (textDialect) Password() []byte    { return []byte("chico\r") }
func (textDialect) Clear() []byte       { return []byte("clear\r") }
func (textDialect) Close() []byte       { return []byte("close\r") }
func (textDialect) NeedsReadyAck() bool { return true }
