package main

import "testing"

func testDraft(picks int) *Draft {
	liftplan := make([]uint64, picks+1)
	for i := range liftplan {
		liftplan[i] = uint64(i)
	}
	return &Draft{MaxShafts: 8, Liftplan: liftplan}
}

func sequentialPicks(n int) []int {
	picks := make([]int, n)
	for i := range picks {
		picks[i] = i + 1
	}
	return picks
}

func TestNewViewStartsAtRequestedPick(t *testing.T) {
	draft := testDraft(5)
	opts := &Options{}
	v := NewView(draft, opts, TabbyXAYB, sequentialPicks(5), 3)
	if v.CurrentResolved() != 3 {
		t.Errorf("CurrentResolved() = %d, want 3", v.CurrentResolved())
	}
	if v.NextResolved() != 3 {
		t.Errorf("NextResolved() = %d, want 3", v.NextResolved())
	}
}

func TestAdvanceWeaveForward(t *testing.T) {
	draft := testDraft(3)
	v := NewView(draft, &Options{}, TabbyXAYB, sequentialPicks(3), 1)
	v.advance(true)
	if v.NextResolved() != 2 {
		t.Errorf("after advance(true), NextResolved() = %d, want 2", v.NextResolved())
	}
	v.advance(true)
	v.advance(true)
	if v.NextResolved() != 1 {
		t.Errorf("after wrapping past the end, NextResolved() = %d, want 1", v.NextResolved())
	}
}

func TestAdvanceNMatchesAdvanceDirection(t *testing.T) {
	draft := testDraft(5)
	v1 := NewView(draft, &Options{}, TabbyXAYB, sequentialPicks(5), 1)
	v2 := NewView(draft, &Options{}, TabbyXAYB, sequentialPicks(5), 1)

	v1.advance(true)
	v2.AdvanceN(1)
	if v1.NextResolved() != v2.NextResolved() {
		t.Errorf("AdvanceN(1) = %d, advance(true) = %d, want equal", v2.NextResolved(), v1.NextResolved())
	}

	v1.advance(false)
	v2.AdvanceN(-1)
	if v1.NextResolved() != v2.NextResolved() {
		t.Errorf("AdvanceN(-1) = %d, advance(false) = %d, want equal", v2.NextResolved(), v1.NextResolved())
	}
}

func TestAdvanceNTabbyModeTogglesOnOddOnly(t *testing.T) {
	draft := testDraft(3)
	v := NewView(draft, &Options{}, TabbyXAYB, sequentialPicks(3), 1)
	v.EnterTabby()
	start := v.NextPick
	v.AdvanceN(2)
	if v.NextPick != start {
		t.Errorf("AdvanceN(2) in tabby mode changed cursor from %v to %v, want unchanged", start, v.NextPick)
	}
	v.AdvanceN(1)
	if v.NextPick == start {
		t.Error("AdvanceN(1) in tabby mode should toggle the sentinel")
	}
}

func TestEnterExitTabby(t *testing.T) {
	draft := testDraft(3)
	v := NewView(draft, &Options{}, TabbyXAYB, sequentialPicks(3), 2)
	v.NextPick = 1 // pretend the weaver had advanced to index 1 (pick 2)
	v.EnterTabby()
	if v.Mode != ModeTabby {
		t.Fatalf("Mode = %v, want ModeTabby", v.Mode)
	}
	if v.NextPick != TabbyA {
		t.Errorf("NextPick = %d, want TabbyA (weaving forward)", v.NextPick)
	}
	v.ExitToLiftplan()
	if v.Mode != ModeWeave {
		t.Fatalf("Mode = %v, want ModeWeave", v.Mode)
	}
	if v.NextPick != 1 {
		t.Errorf("NextPick = %d, want restored index 1", v.NextPick)
	}
}

// TestReverseFlipsDirectionAndAdvances covers spec.md §8 scenario 2: pressing
// "r" while weaving forward must land on the pick one before the current one
// in the new (backward) direction, not one after.
func TestReverseFlipsDirectionAndAdvances(t *testing.T) {
	draft := testDraft(3)
	v := NewView(draft, &Options{}, TabbyXAYB, sequentialPicks(3), 2)
	before := v.NextResolved()
	if before != 2 {
		t.Fatalf("before Reverse(): NextResolved() = %d, want 2", before)
	}
	v.Reverse()
	if v.WeaveForward {
		t.Error("Reverse() should have flipped WeaveForward to false")
	}
	if got := v.NextResolved(); got != 1 {
		t.Errorf("Reverse() landed on pick %d, want 1 (one before pick 2, weaving backward)", got)
	}
}

func TestShouldBell(t *testing.T) {
	v := &View{}
	red := Color{Red: 1}
	blue := Color{Blue: 1}

	v.PushWeftColor(red)
	if v.ShouldBell(ColorAlertSimple, false) {
		t.Error("ShouldBell should be false with only one color pushed")
	}

	v.PushWeftColor(blue)
	if !v.ShouldBell(ColorAlertSimple, false) {
		t.Error("ShouldBell(Simple) should fire on a color change")
	}
	if v.ShouldBell(ColorAlertPulse, true) {
		t.Error("ShouldBell(Pulse) should not re-fire immediately after belling")
	}
	if !v.ShouldBell(ColorAlertNone, false) == false {
		// ColorAlertNone never fires regardless of ring state.
	}
	if v.ShouldBell(ColorAlertNone, false) {
		t.Error("ShouldBell(None) should never fire")
	}
}

func TestEnqueueMergesAdvancePick(t *testing.T) {
	v := &View{}
	v.Enqueue(Command{Kind: CmdAdvancePick, N: 1})
	v.Enqueue(Command{Kind: CmdAdvancePick, N: 2})
	v.Enqueue(Command{Kind: CmdReverse})

	queued := v.DrainQueue()
	if len(queued) != 2 {
		t.Fatalf("DrainQueue() = %v, want 2 entries", queued)
	}
	if queued[0].Kind != CmdAdvancePick || queued[0].N != 3 {
		t.Errorf("first queued command = %+v, want merged AdvancePick N=3", queued[0])
	}
	if queued[1].Kind != CmdReverse {
		t.Errorf("second queued command = %+v, want CmdReverse", queued[1])
	}
}

func TestPickEntryBuffer(t *testing.T) {
	v := &View{}
	v.BeginPickListEntry()
	for _, r := range "1,(2" {
		v.AppendEntryRune(r)
	}
	if v.EntryText() != "1,(2" {
		t.Errorf("EntryText() = %q, want %q", v.EntryText(), "1,(2")
	}
	if v.entryParenDepth != 1 {
		t.Errorf("entryParenDepth = %d, want 1", v.entryParenDepth)
	}
	v.BackspaceEntry()
	if v.EntryText() != "1,(" {
		t.Errorf("EntryText() after backspace = %q, want %q", v.EntryText(), "1,(")
	}
	v.CancelEntry()
	if v.Mode != ModeWeave {
		t.Errorf("Mode after CancelEntry() = %v, want ModeWeave", v.Mode)
	}
}

func TestSetPickOutOfRange(t *testing.T) {
	draft := testDraft(3)
	v := NewView(draft, &Options{}, TabbyXAYB, sequentialPicks(3), 1)
	if err := v.SetPick(9); err == nil {
		t.Error("SetPick(9) with 3 picks should return an error")
	}
	if err := v.SetPick(2); err != nil {
		t.Errorf("SetPick(2): unexpected error: %v", err)
	}
	if v.NextResolved() != 2 {
		t.Errorf("NextResolved() after SetPick(2) = %d, want 2", v.NextResolved())
	}
}
