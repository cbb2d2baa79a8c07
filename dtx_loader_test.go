package main

import (
	"strings"
	"testing"
)

const minimalDTX = `@@StartDTX

@@Contents
Info
Liftplan
Threading

@@Info
%%shafts 4
%%treadles 4
%%ends 4
%%picks 4

@@Threading
1
2
3
4

@@Liftplan
1000
0100
0010
0001
`

func TestLoadDTXMinimalDraft(t *testing.T) {
	d, err := LoadDTX(strings.NewReader(minimalDTX))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.MaxShafts != 4 || d.MaxTreadles != 4 {
		t.Fatalf("MaxShafts=%d MaxTreadles=%d, want 4,4", d.MaxShafts, d.MaxTreadles)
	}
	if !d.RisingShed {
		t.Errorf("RisingShed should default to true with no %q marker", "%%%%sinking")
	}
	if d.Ends() != 4 || d.Picks() != 4 {
		t.Fatalf("Ends()=%d Picks()=%d, want 4,4", d.Ends(), d.Picks())
	}
	for i := 1; i <= 4; i++ {
		if d.Threading[i] != 1<<uint(i-1) {
			t.Errorf("Threading[%d] = %b, want shaft %d alone", i, d.Threading[i], i)
		}
		if d.Liftplan[i] != 1<<uint(i-1) {
			t.Errorf("Liftplan[%d] = %b, want shaft %d alone", i, d.Liftplan[i], i)
		}
	}
	// no Color Palet section: warp defaults to white, weft to blue.
	white, _ := NewColorRange(255, 255, 255, 0, 255)
	if !d.WarpColor[1].Equal(white) {
		t.Errorf("WarpColor[1] = %+v, want white", d.WarpColor[1])
	}
}

func TestLoadDTXMissingContentsErrors(t *testing.T) {
	if _, err := LoadDTX(strings.NewReader("@@StartDTX\n")); err == nil {
		t.Error("expected error for missing Contents section")
	}
}

func TestLoadDTXSinkingShed(t *testing.T) {
	sinking := strings.Replace(minimalDTX, "@@Liftplan\n1000", "@@Liftplan\n%%%%sinking\n1000", 1)
	d, err := LoadDTX(strings.NewReader(sinking))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.RisingShed {
		t.Errorf("RisingShed should be false after a %q marker", "%%%%sinking")
	}
}
