// protocol_binary.go - Compu-Dobby generations 1-3 binary wire dialect
//
// Frames are terminated with ETX (0x03). Shaft patterns are sent as a run
// of nibble bytes terminated with BEL (0x07), not ETX - Pick's output is
// not itself a "frame" in the ScanFrame sense, it's fire-and-forget.
// Ported from the original driver's View::sendPick/View::run in driver.cpp.

package main

type binaryDialect struct{}

func (binaryDialect) ResetPing() []byte { return []byte{0x0f, 0x07} }

func (binaryDialect) ScanFrame(buf []byte) (frame []byte, consumed int, ok bool) {
	for i, b := range buf {
		if b == 0x03 {
			return buf[:i], i + 1, true
		}
	}
	return nil, 0, false
}

func (binaryDialect) Interpret(frame []byte) LoomEvent {
	switch string(frame) {
	case "\x7f":
		return LoomEvent{Kind: LoomSolenoidReset}
	case "\x61": // "a"
		return LoomEvent{Kind: LoomArmsUp}
	case "\x62": // "b"
		return LoomEvent{Kind: LoomArmsDown}
	default:
		return LoomEvent{Kind: LoomUnknown, Text: string(frame)}
	}
}

// Pick emits one nibble byte per 4 shafts: byte = 0x10*(i/4+1) |
// (lift>>i)&0xF, terminated with BEL.
func (binaryDialect) Pick(lift uint64, maxShafts int) []byte {
	cmd := make([]byte, 0, maxShafts/4+2)
	shaftCmd := byte(0x10)
	for shaft := 0; shaft < maxShafts; shaft += 4 {
		cmd = append(cmd, shaftCmd|byte(lift&0xf))
		shaftCmd += 0x10
		lift >>= 4
	}
	cmd = append(cmd, 0x07)
	return cmd
}

func (binaryDialect) Password() []byte      { return nil }
func (binaryDialect) Clear() []byte         { return nil }
func (binaryDialect) Close() []byte         { return nil }
func (binaryDialect) NeedsReadyAck() bool   { return false }
