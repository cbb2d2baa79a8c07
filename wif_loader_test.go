package main

import (
	"strings"
	"testing"
)

const minimalWIF = `[WIF]
Version=1.1

[CONTENTS]
WEAVING=yes
WARP=yes
WEFT=yes
TIEUP=yes
TREADLING=yes
THREADING=yes

[WEAVING]
Rising Shed=yes
Shafts=4
Treadles=4

[WARP]
Threads=4
Color=1

[WEFT]
Threads=4
Color=2

[COLOR PALETTE]
Entries=2
Range=0,255

[COLOR TABLE]
1=255,255,255
2=0,0,255

[THREADING]
1=1
2=2
3=3
4=4

[TIEUP]
1=1
2=2
3=3
4=4

[TREADLING]
1=1
2=2
3=3
4=4
`

func TestLoadWIFMinimalDraft(t *testing.T) {
	d, err := LoadWIF(strings.NewReader(minimalWIF))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.MaxShafts != 4 || d.MaxTreadles != 4 {
		t.Fatalf("MaxShafts=%d MaxTreadles=%d, want 4,4", d.MaxShafts, d.MaxTreadles)
	}
	if !d.RisingShed {
		t.Error("RisingShed should be true")
	}
	if d.Ends() != 4 || d.Picks() != 4 {
		t.Fatalf("Ends()=%d Picks()=%d, want 4,4", d.Ends(), d.Picks())
	}
	for i := 1; i <= 4; i++ {
		if d.Threading[i] != 1<<uint(i-1) {
			t.Errorf("Threading[%d] = %b, want shaft %d alone", i, d.Threading[i], i)
		}
		if d.Liftplan[i] != 1<<uint(i-1) {
			t.Errorf("Liftplan[%d] = %b, want shaft %d alone (straight draw through tieup+treadling)", i, d.Liftplan[i], i)
		}
	}
}

func TestLoadWIFMissingContentsErrors(t *testing.T) {
	if _, err := LoadWIF(strings.NewReader("[WIF]\n")); err == nil {
		t.Error("expected error for missing CONTENTS section")
	}
}

func TestLoadWIFMissingShaftsErrors(t *testing.T) {
	bad := strings.Replace(minimalWIF, "[WEAVING]\nRising Shed=yes\nShafts=4\nTreadles=4\n",
		"[WEAVING]\nRising Shed=yes\nTreadles=4\n", 1)
	if _, err := LoadWIF(strings.NewReader(bad)); err == nil {
		t.Error("expected error for missing Shafts key")
	}
}
