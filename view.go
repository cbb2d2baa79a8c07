// view.go - the weaving view model: current/next pick, mode, direction, and
// the command queue the engine drains on every loom "arms down" transition.
//
// Mirrors the shape of the teacher's debug_monitor.go command dispatch (a
// small tagged-union Command type processed one at a time) but the queue
// here is driven by loom state, not a REPL prompt.

package main

import "fmt"

// Mode is the weaving view's top-level mode.
type Mode int

const (
	ModeWeave Mode = iota
	ModeTabby
	ModePickEntry
	ModePickListEntry
	ModeQuit
)

func (m Mode) String() string {
	switch m {
	case ModeWeave:
		return "weave"
	case ModeTabby:
		return "tabby"
	case ModePickEntry:
		return "pick entry"
	case ModePickListEntry:
		return "pick-list entry"
	case ModeQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// CommandKind tags the queued user commands (spec.md §4.5 "Command queueing").
type CommandKind int

const (
	CmdTabby CommandKind = iota
	CmdLiftplan
	CmdReverse
	CmdAdvancePick
	CmdSetPick
	CmdSetPickList
	CmdDoSetPick
	CmdDoSetPickList
	CmdQuit
)

// Command is one user-issued action, possibly deferred until the loom's
// shed next opens.
type Command struct {
	Kind CommandKind
	N    int    // CmdAdvancePick step, CmdDoSetPick target pick
	Text string // CmdDoSetPickList pick-list expression
}

// View is the weaving cursor and mode machine. The engine owns one for the
// life of the process; draft and options are borrowed, not owned (spec.md
// §9 "Cyclic references").
type View struct {
	draft   *Draft
	opts    *Options
	pattern TabbyPattern

	picks []int // compiled pick sequence (spec.md §3 "Pick sequence")

	CurrentPick int // index into picks in ModeWeave, TabbyA/TabbyB sentinel in ModeTabby
	NextPick    int // same convention as CurrentPick

	Mode         Mode
	WeaveForward bool
	LoomArms     ArmState
	PickSent     bool

	savedMode     Mode
	savedNextPick int // remembers the Weave index across a Tabby excursion

	weftRing   [4]Color
	ringFilled int

	queue []Command // prepended; flushed FIFO from the front

	entryBuf        string
	entryParenDepth int
}

// NewView builds the initial view for a freshly loaded draft and compiled
// pick list, starting at startPick (1-based, as from --pick or the
// persisted-state file).
func NewView(draft *Draft, opts *Options, pattern TabbyPattern, picks []int, startPick int) *View {
	v := &View{
		draft:        draft,
		opts:         opts,
		pattern:      pattern,
		picks:        picks,
		WeaveForward: true,
		LoomArms:     ArmUnknown,
	}
	idx := indexOfPick(picks, startPick)
	v.CurrentPick = idx
	v.NextPick = idx
	return v
}

// indexOfPick finds the first compiled-sequence index whose resolved pick
// number is target, or 0 if none matches (start of sequence).
func indexOfPick(picks []int, target int) int {
	for i, p := range picks {
		if p == target {
			return i
		}
	}
	return 0
}

// CurrentResolved returns the draft pick number or tabby sentinel currently
// woven (meaningless immediately after a DoSetPickList, per spec.md §4.5).
func (v *View) CurrentResolved() int {
	return v.resolve(v.CurrentPick)
}

// NextResolved returns the draft pick number or tabby sentinel queued for
// the next open shed.
func (v *View) NextResolved() int {
	return v.resolve(v.NextPick)
}

func (v *View) resolve(cursor int) int {
	if v.Mode == ModeTabby {
		return cursor
	}
	if len(v.picks) == 0 {
		return 0
	}
	n := ((cursor % len(v.picks)) + len(v.picks)) % len(v.picks)
	return v.picks[n]
}

// advance moves NextPick one step. forward is the direction of the physical
// motion requested (e.g. beater travel); it is compared against
// WeaveForward to decide whether the cursor increments or decrements
// (spec.md §4.5 "Pick-cursor arithmetic").
func (v *View) advance(forward bool) {
	if v.Mode == ModeTabby {
		if v.NextPick == TabbyA {
			v.NextPick = TabbyB
		} else {
			v.NextPick = TabbyA
		}
		return
	}
	step := 1
	if forward != v.WeaveForward {
		step = -1
	}
	v.advanceBy(step)
}

// advanceBy steps NextPick by n compiled-sequence positions, applying the
// same wraparound the spec's "hard cap" rule describes: once the raw
// accumulator would print as an ugly number, fold it back into range by
// subtracting (NextPick/len(picks))*len(picks) before the final modulo
// normalizes it.
func (v *View) advanceBy(n int) {
	total := len(v.picks)
	if total == 0 {
		return
	}
	v.NextPick += n
	if v.NextPick >= 9999 {
		v.NextPick -= (v.NextPick / total) * total
	}
	for v.NextPick < 0 {
		v.NextPick += total
	}
	v.NextPick %= total
}

// AdvanceN applies a CmdAdvancePick step of n: in ModeTabby an odd n
// toggles the sentinel, an even n is a no-op; otherwise n is walked through
// advanceBy in the direction "nextPick" (n>0) or "prevPick" (n<0) keys mean,
// relative to the current weaving direction.
func (v *View) AdvanceN(n int) {
	if v.Mode == ModeTabby {
		if n%2 != 0 {
			if v.NextPick == TabbyA {
				v.NextPick = TabbyB
			} else {
				v.NextPick = TabbyA
			}
		}
		return
	}
	step := 1
	if !v.WeaveForward {
		step = -1
	}
	v.advanceBy(n * step)
}

// EnterTabby switches to ModeTabby, remembering the Weave cursor so
// Liftplan can restore it. The initial tabby letter is chosen by current
// direction: A if weaving forward, else B (spec.md §9 open question).
func (v *View) EnterTabby() {
	if v.Mode == ModeTabby {
		return
	}
	v.savedMode = v.Mode
	v.savedNextPick = v.NextPick
	v.Mode = ModeTabby
	if v.WeaveForward {
		v.NextPick = TabbyA
	} else {
		v.NextPick = TabbyB
	}
}

// ExitToLiftplan restores Weave mode and the cursor position saved by
// EnterTabby.
func (v *View) ExitToLiftplan() {
	if v.Mode != ModeTabby {
		return
	}
	v.Mode = ModeWeave
	v.NextPick = v.savedNextPick
}

// Reverse flips the weaving direction and advances once more so the
// displayed pick actually changes (spec.md §4.5 "Reverse"). The advance call
// always passes the physical-motion direction "forward" (true): compared
// against the just-flipped WeaveForward, that resolves to -1 once weaving
// backward, +1 once weaving forward again, matching the original driver's
// nextPick() = pick + (weaveForward ? 1 : -1).
func (v *View) Reverse() {
	v.WeaveForward = !v.WeaveForward
	v.advance(true)
}

// PushWeftColor records a newly-woven weft color into the 4-deep ring used
// for color-alert bell detection (spec.md §4.4).
func (v *View) PushWeftColor(c Color) {
	copy(v.weftRing[1:], v.weftRing[:3])
	v.weftRing[0] = c
	if v.ringFilled < len(v.weftRing) {
		v.ringFilled++
	}
}

// ShouldBell reports whether the color-alert mode fires on this pick, given
// the ring state just pushed.
func (v *View) ShouldBell(mode ColorAlertMode, lastBelled bool) bool {
	switch mode {
	case ColorAlertNone:
		return false
	case ColorAlertSimple:
		if v.ringFilled < 2 {
			return false
		}
		return !v.weftRing[0].Equal(v.weftRing[1])
	case ColorAlertPulse:
		if v.ringFilled < 2 {
			return false
		}
		differs := !v.weftRing[0].Equal(v.weftRing[1])
		return differs && !lastBelled
	case ColorAlertAlternating:
		if v.ringFilled < 3 {
			return false
		}
		return !v.weftRing[0].Equal(v.weftRing[2])
	default:
		return false
	}
}

// Enqueue pushes a command to the front of the pending queue; an
// AdvancePick merges into the head entry instead when that entry is also an
// AdvancePick (spec.md §4.5 "Consecutive AdvancePick commands ... merge").
func (v *View) Enqueue(cmd Command) {
	if cmd.Kind == CmdAdvancePick && len(v.queue) > 0 && v.queue[0].Kind == CmdAdvancePick {
		v.queue[0].N += cmd.N
		return
	}
	v.queue = append([]Command{cmd}, v.queue...)
}

// DrainQueue removes and returns the queue in FIFO execution order (oldest
// enqueued command first).
func (v *View) DrainQueue() []Command {
	n := len(v.queue)
	out := make([]Command, n)
	for i := 0; i < n; i++ {
		out[i] = v.queue[n-1-i]
	}
	v.queue = nil
	return out
}

// BeginPickEntry switches to ModePickEntry (the "s" command), clearing the
// text-entry buffer.
func (v *View) BeginPickEntry() {
	v.savedMode = v.Mode
	v.Mode = ModePickEntry
	v.entryBuf = ""
}

// BeginPickListEntry switches to ModePickListEntry (the "P" command).
func (v *View) BeginPickListEntry() {
	v.savedMode = v.Mode
	v.Mode = ModePickListEntry
	v.entryBuf = ""
	v.entryParenDepth = 0
}

// CancelEntry restores the mode active before BeginPickEntry/
// BeginPickListEntry (Esc during text entry).
func (v *View) CancelEntry() {
	if v.Mode != ModePickEntry && v.Mode != ModePickListEntry {
		return
	}
	v.Mode = v.savedMode
	v.entryBuf = ""
}

// AppendEntryRune appends one rune to the text-entry buffer, tracking paren
// depth for pick-list entry so the prompt can show balance.
func (v *View) AppendEntryRune(r rune) {
	v.entryBuf += string(r)
	if v.Mode == ModePickListEntry {
		switch r {
		case '(':
			v.entryParenDepth++
		case ')':
			v.entryParenDepth--
		}
	}
}

// BackspaceEntry removes the last rune from the text-entry buffer, if any.
func (v *View) BackspaceEntry() {
	if len(v.entryBuf) == 0 {
		return
	}
	runes := []rune(v.entryBuf)
	last := runes[len(runes)-1]
	v.entryBuf = string(runes[:len(runes)-1])
	if v.Mode == ModePickListEntry {
		switch last {
		case '(':
			v.entryParenDepth--
		case ')':
			v.entryParenDepth++
		}
	}
}

// EntryText returns the text-entry buffer's current contents.
func (v *View) EntryText() string { return v.entryBuf }

// SetPick commits a typed pick number (DoSetPick), resolving it to a
// compiled-sequence index.
func (v *View) SetPick(n int) error {
	if n < 1 || n > v.draft.Picks() {
		return fmt.Errorf("pick %d is out of range 1-%d", n, v.draft.Picks())
	}
	idx := indexOfPick(v.picks, n)
	v.Mode = v.savedMode
	v.NextPick = idx
	return nil
}

// SetPickList recompiles the pick list (DoSetPickList). On success the
// cursor resets to the start of the new sequence and CurrentPick becomes
// meaningless until the next <up> commits a real value (spec.md §4.5).
func (v *View) SetPickList(expr string) error {
	picks, err := CompilePickList(expr, v.draft.Picks(), v.pattern, v.opts.TreadleThreading)
	if err != nil {
		return err
	}
	v.picks = picks
	v.Mode = v.savedMode
	v.NextPick = 0
	v.CurrentPick = -1
	return nil
}
