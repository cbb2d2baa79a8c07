package main

import (
	"reflect"
	"testing"
)

func TestBinaryDialectPick(t *testing.T) {
	tests := []struct {
		name      string
		lift      uint64
		maxShafts int
		want      []byte
	}{
		{"8 shafts, shafts 1 and 5", 0b00010001, 8, []byte{0x11, 0x21, 0x07}},
		{"no shafts", 0, 4, []byte{0x10, 0x07}},
		{"all 4 shafts in first nibble", 0xf, 4, []byte{0x1f, 0x07}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := binaryDialect{}.Pick(tc.lift, tc.maxShafts)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Pick(%b, %d) = %v, want %v", tc.lift, tc.maxShafts, got, tc.want)
			}
		})
	}
}

func TestBinaryDialectScanFrame(t *testing.T) {
	frame, consumed, ok := binaryDialect{}.ScanFrame([]byte{0x61, 0x03, 0x99})
	if !ok || consumed != 2 || !reflect.DeepEqual(frame, []byte{0x61}) {
		t.Errorf("ScanFrame = (%v, %d, %v), want ([0x61], 2, true)", frame, consumed, ok)
	}
	if _, _, ok := (binaryDialect{}).ScanFrame([]byte{0x61, 0x62}); ok {
		t.Error("ScanFrame should report ok=false with no ETX present")
	}
}

func TestBinaryDialectInterpret(t *testing.T) {
	tests := []struct {
		frame []byte
		want  LoomEventKind
	}{
		{[]byte("\x7f"), LoomSolenoidReset},
		{[]byte("\x61"), LoomArmsUp},
		{[]byte("\x62"), LoomArmsDown},
		{[]byte("\x99"), LoomUnknown},
	}
	for _, tc := range tests {
		if got := (binaryDialect{}).Interpret(tc.frame).Kind; got != tc.want {
			t.Errorf("Interpret(%v).Kind = %v, want %v", tc.frame, got, tc.want)
		}
	}
}

func TestTextDialectPick(t *testing.T) {
	got := textDialect{}.Pick(0b101, 4)
	want := []byte("pick 1,3\r")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Pick(0b101, 4) = %q, want %q", got, want)
	}
	got = textDialect{}.Pick(0, 4)
	want = []byte("pick \r")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Pick(0, 4) = %q, want %q", got, want)
	}
}

func TestTextDialectScanFrame(t *testing.T) {
	frame, consumed, ok := textDialect{}.ScanFrame([]byte("<down>rest"))
	if !ok || consumed != 6 || string(frame) != "<down>" {
		t.Errorf("ScanFrame = (%q, %d, %v), want (\"<down>\", 6, true)", frame, consumed, ok)
	}
}

func TestTextDialectInterpret(t *testing.T) {
	tests := []struct {
		frame []byte
		want  LoomEventKind
	}{
		{[]byte("<DOWN>\r\n"), LoomArmsDown},
		{[]byte("<up>"), LoomArmsUp},
		{[]byte("<arm null>"), LoomArmNull},
		{[]byte("<ready>"), LoomReady},
		{[]byte("<password:"), LoomPasswordPrompt},
		{[]byte("<what>"), LoomProtocolConfusion},
		{[]byte("<error something>"), LoomError},
		{[]byte("<compu-dobby iv, 16 shafts, neg dobby>"), LoomGreeting},
		{[]byte("garbage"), LoomUnknown},
	}
	for _, tc := range tests {
		got := textDialect{}.Interpret(tc.frame)
		if got.Kind != tc.want {
			t.Errorf("Interpret(%q).Kind = %v, want %v", tc.frame, got.Kind, tc.want)
		}
	}
}

func TestParseGreeting(t *testing.T) {
	shafts, negative := parseGreeting("<compu-dobby iv, 24 shafts, neg dobby>")
	if shafts != 24 || !negative {
		t.Errorf("parseGreeting = (%d, %v), want (24, true)", shafts, negative)
	}
	shafts, negative = parseGreeting("<compu-dobby iv, 8 shafts, pos dobby>")
	if shafts != 8 || negative {
		t.Errorf("parseGreeting = (%d, %v), want (8, false)", shafts, negative)
	}
}

func TestTextDialectNeedsReadyAck(t *testing.T) {
	if !(textDialect{}.NeedsReadyAck()) {
		t.Error("textDialect should need a ready ack")
	}
	if (binaryDialect{}).NeedsReadyAck() {
		t.Error("binaryDialect should not need a ready ack")
	}
}
