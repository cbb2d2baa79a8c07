// engine.go - the loom protocol engine: the single cooperative event loop
// that multiplexes stdin, the loom connection, and the 3-second handshake
// timeout (spec.md §4.5, §5).
//
// Grounded on the original driver's View::run (driver.cpp): a select loop
// over stdin and the loom fd with a 3-second timeout, byte-at-a-time frame
// accumulation, and displayPick/displayPrompt after every state change.
// The gen 4 dialect, the <ready>-gated write sequencing, and the deferred
// command queue are this spec's own extension of that loop; nothing in the
// original goes further than the gen 1-3 binary protocol.

package main

import (
	"fmt"
	"os"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// InputSource is the terminal-side input the engine polls. TermHost
// implements it for interactive use; any other reader with a pollable Fd
// can stand in for it.
type InputSource interface {
	Read(p []byte) (int, error)
	Fd() int
	TakeResize() bool
	Cols() int
}

// Engine drives one weaving session: handshake, pick scheduling, and the
// command queue. It owns no goroutines (spec.md §5 "single-threaded
// cooperative").
type Engine struct {
	opts      *Options
	draft     *Draft
	view      *View
	dialect   Dialect
	transport Transport
	term      InputSource
	renderer  Renderer
	logger    *Logger

	state     EngineState
	maxShafts int
	dobbyType DobbyType

	loomBuf []byte
	termBuf []byte

	lastPing   time.Time
	lastBelled bool
	audio      *AudioAlert // optional; nil means terminal BEL only

	pendingSend [][]byte // gen 4 clear/pick pairs awaiting sequential <ready> acks
}

// NewEngine wires together one weaving session. maxShafts/dobbyType start
// from opts and may be overwritten by a gen 4 greeting.
func NewEngine(opts *Options, draft *Draft, view *View, dialect Dialect, transport Transport, term InputSource, renderer Renderer, logger *Logger) *Engine {
	return &Engine{
		opts:      opts,
		draft:     draft,
		view:      view,
		dialect:   dialect,
		transport: transport,
		term:      term,
		renderer:  renderer,
		logger:    logger,
		state:     StateWaitReset,
		maxShafts: opts.Shafts,
		dobbyType: opts.DobbyType,
	}
}

// SetAudioAlert attaches an optional audible color-alert tone, played
// alongside (not instead of) the renderer's BEL.
func (e *Engine) SetAudioAlert(a *AudioAlert) { e.audio = a }

// Run executes the event loop until the view's mode becomes ModeQuit or a
// fatal error occurs. It always performs the shutdown handshake before
// returning, even on error.
func (e *Engine) Run() error {
	e.lastPing = time.Now()
	if err := e.send(e.dialect.ResetPing()); err != nil {
		e.shutdown()
		return err
	}

	var runErr error
	for e.view.Mode != ModeQuit {
		timeout := e.pollTimeout()

		ready, err := pollReadable(e.term.Fd(), timeout)
		if err != nil {
			runErr = err
			break
		}
		if ready {
			if err := e.drainTerminal(); err != nil {
				runErr = err
				break
			}
		}
		if e.term.TakeResize() {
			e.handleTermEvent(TermEvent{Type: TermResize})
		}

		if err := e.pollLoom(); err != nil {
			runErr = err
			break
		}

		if e.state == StateWaitReset && time.Since(e.lastPing) >= 3*time.Second {
			if err := e.send(e.dialect.ResetPing()); err != nil {
				runErr = err
				break
			}
			e.lastPing = time.Now()
		}
	}

	e.shutdown()
	return runErr
}

// pollTimeout is 0 when there is already buffered, undecoded input to
// process, otherwise the 3-second handshake/idle period (spec.md §4.5
// "Input multiplexing").
func (e *Engine) pollTimeout() time.Duration {
	if len(e.termBuf) > 0 || len(e.loomBuf) > 0 {
		return 0
	}
	return 3 * time.Second
}

func pollReadable(fd int, timeout time.Duration) (bool, error) {
	if fd < 0 {
		return true, nil
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}
	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}

func pollWritable(loomFd, stdinFd int, timeout time.Duration) {
	fds := []unix.PollFd{{Fd: int32(loomFd), Events: unix.POLLOUT}}
	if stdinFd >= 0 {
		fds = append(fds, unix.PollFd{Fd: int32(stdinFd), Events: unix.POLLIN})
	}
	_, _ = unix.Poll(fds, int(timeout/time.Millisecond))
}

func isRetryable(err error) bool {
	return err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || err == syscall.EINTR
}

// send writes data to the loom, re-polling for writability (and stdin, so
// the UI keeps responding) on EAGAIN, converting EPIPE into a plain
// "connection closed" error (spec.md §4.5, §7 kind 4).
func (e *Engine) send(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	e.logger.LogHost(data)
	for len(data) > 0 {
		n, err := e.transport.Write(data)
		if err != nil {
			if err == syscall.EPIPE {
				return fmt.Errorf("connection closed")
			}
			if isRetryable(err) {
				pollWritable(e.transport.Fd(), e.term.Fd(), 3*time.Second)
				continue
			}
			return err
		}
		if n == 0 {
			// serialTransport reports a would-block write as (0, nil)
			pollWritable(e.transport.Fd(), e.term.Fd(), 3*time.Second)
			continue
		}
		data = data[n:]
	}
	return nil
}

// drainTerminal reads available stdin bytes and dispatches every complete
// event found.
func (e *Engine) drainTerminal() error {
	buf := make([]byte, 256)
	n, err := e.term.Read(buf)
	if err != nil {
		return fmt.Errorf("reading terminal input: %w", err)
	}
	if n > 0 {
		e.termBuf = append(e.termBuf, buf[:n]...)
	}
	for {
		ev, consumed := DecodeTermEvent(e.termBuf)
		if consumed == 0 {
			break
		}
		e.termBuf = e.termBuf[consumed:]
		if ev.Type != TermNone {
			e.handleTermEvent(ev)
		}
	}
	return nil
}

// pollLoom reads whatever is currently available from the loom and
// interprets every complete frame found.
func (e *Engine) pollLoom() error {
	buf := make([]byte, 512)
	n, err := e.transport.Read(buf)
	if err != nil {
		return fmt.Errorf("reading from loom: %w", err)
	}
	if n > 0 {
		e.loomBuf = append(e.loomBuf, buf[:n]...)
		e.logger.LogLoom(buf[:n])
	}
	for {
		frame, consumed, ok := e.dialect.ScanFrame(e.loomBuf)
		if !ok {
			break
		}
		e.loomBuf = e.loomBuf[consumed:]
		if err := e.handleLoomEvent(e.dialect.Interpret(frame)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) handleLoomEvent(ev LoomEvent) error {
	switch e.state {
	case StateWaitReset:
		switch ev.Kind {
		case LoomSolenoidReset:
			e.state = StateReady
			e.sendCurrentNextPick()
		case LoomGreeting:
			if ev.Shafts < 1 || ev.Shafts > 40 {
				return fmt.Errorf("illegal shaft count %d from loom greeting", ev.Shafts)
			}
			e.maxShafts = ev.Shafts
			if ev.Negative {
				e.dobbyType = DobbyNegative
			} else {
				e.dobbyType = DobbyPositive
			}
			e.state = StateNeedPassword
		default:
			fmt.Fprintf(os.Stderr, "warning: unexpected frame while waiting for loom reset: %q\n", ev.Text)
		}
	case StateNeedPassword:
		if ev.Kind == LoomPasswordPrompt {
			if err := e.send(e.dialect.Password()); err != nil {
				return err
			}
			e.state = StateReady
			e.sendCurrentNextPick()
		}
	case StateReady:
		return e.handleReadyEvent(ev)
	}
	return nil
}

func (e *Engine) handleReadyEvent(ev LoomEvent) error {
	switch ev.Kind {
	case LoomArmsDown:
		if e.view.LoomArms != ArmDown {
			e.onArmsDown()
		}
		e.view.LoomArms = ArmDown
	case LoomArmsUp:
		if e.view.LoomArms != ArmUp {
			e.onArmsUp()
		}
		e.view.LoomArms = ArmUp
	case LoomArmNull:
		e.view.LoomArms = ArmUnknown
		e.renderer.DrawPrompt(e.view)
	case LoomReady:
		e.sendNextPending()
	case LoomProtocolConfusion:
		fmt.Fprintln(os.Stderr, "warning: loom reported protocol confusion")
	case LoomError:
		return fmt.Errorf("loom error: %s", ev.Text)
	}
	return nil
}

// onArmsDown implements spec.md §4.5 "On each <down> transition".
func (e *Engine) onArmsDown() {
	cmds := e.view.DrainQueue()
	if len(cmds) == 0 {
		if e.view.PickSent {
			// advance's forward-vs-WeaveForward comparison needs the physical
			// motion direction, not WeaveForward itself (which would always
			// compare equal to itself and only ever step +1); true is "the
			// loom moved forward", matching the original's unconditional
			// nextPick() step per beater cycle.
			e.view.advance(true)
		}
	} else {
		for _, cmd := range cmds {
			e.applyCommand(cmd)
		}
	}
	e.sendCurrentNextPick()
}

// onArmsUp implements spec.md §4.5 "On each <up> transition".
func (e *Engine) onArmsUp() {
	e.view.CurrentPick = e.view.NextPick
	_, weftColor := e.liftAndColorFor(e.view.CurrentPick)
	e.view.PushWeftColor(weftColor)
	belled := e.view.ShouldBell(e.opts.ColorAlert, e.lastBelled)
	if belled {
		e.renderer.Bell()
		if e.audio != nil {
			e.audio.Play()
		}
	}
	e.lastBelled = belled
	e.renderPick(false, false)
	e.renderer.DrawPrompt(e.view)
}

// handleCommand applies a user command, immediately if the shed is already
// open (arms down, safe to drive solenoids), or enqueues it for the next
// <down> transition otherwise (spec.md §4.5 "Command queueing"). Quit
// always takes effect immediately regardless of loom state.
func (e *Engine) handleCommand(cmd Command) {
	if cmd.Kind == CmdQuit {
		e.view.Mode = ModeQuit
		return
	}
	if e.view.LoomArms == ArmDown {
		e.applyCommand(cmd)
		e.sendCurrentNextPick()
	} else {
		e.view.Enqueue(cmd)
		e.renderer.DrawPrompt(e.view)
	}
}

func (e *Engine) applyCommand(cmd Command) {
	switch cmd.Kind {
	case CmdTabby:
		e.view.EnterTabby()
	case CmdLiftplan:
		e.view.ExitToLiftplan()
	case CmdReverse:
		e.view.Reverse()
	case CmdAdvancePick:
		e.view.AdvanceN(cmd.N)
	case CmdSetPick:
		e.view.BeginPickEntry()
	case CmdSetPickList:
		e.view.BeginPickListEntry()
	case CmdDoSetPick:
		if err := e.view.SetPick(cmd.N); err != nil {
			fmt.Fprintf(os.Stdout, "\a%v\r\n", err)
		}
	case CmdDoSetPickList:
		if err := e.view.SetPickList(cmd.Text); err != nil {
			fmt.Fprintf(os.Stdout, "\a%v\r\n", err)
		}
	case CmdQuit:
		e.view.Mode = ModeQuit
	}
}

// sendCurrentNextPick encodes and transmits the shaft pattern for
// NextPick. On the gen 4 dialect it first sends "clear" (and waits for
// <ready>) iff a pick was already sent earlier this session.
func (e *Engine) sendCurrentNextPick() {
	if e.view.Mode == ModeQuit {
		return
	}
	lift, _ := e.liftAndColorFor(e.view.NextPick)
	pickCmd := e.dialect.Pick(lift, e.maxShafts)

	e.renderPick(true, false)

	if e.dialect.NeedsReadyAck() {
		var seq [][]byte
		if e.view.PickSent {
			seq = append(seq, e.dialect.Clear())
		}
		seq = append(seq, pickCmd)
		e.pendingSend = seq
		e.sendNextPending()
	} else {
		_ = e.send(pickCmd)
	}
	e.view.PickSent = true
}

func (e *Engine) sendNextPending() {
	if len(e.pendingSend) == 0 {
		return
	}
	next := e.pendingSend[0]
	e.pendingSend = e.pendingSend[1:]
	_ = e.send(next)
}

// liftAndColorFor resolves a view cursor (NextPick/CurrentPick) into the
// dobby-polarity-corrected shaft mask and the weft color to paint it with.
func (e *Engine) liftAndColorFor(cursor int) (uint64, Color) {
	resolved := e.view.resolve(cursor)
	if resolved == TabbyA {
		return e.opts.TabbySpec[0], e.opts.TabbyColor
	}
	if resolved == TabbyB {
		return e.opts.TabbySpec[1], e.opts.TabbyColor
	}
	if resolved < 1 || resolved > e.draft.Picks() {
		return 0, Color{}
	}
	lift := e.draft.Liftplan[resolved]
	color := e.draft.WeftColor[resolved]
	liftMask := uint64(1)<<uint(e.maxShafts) - 1
	if (e.dobbyType == DobbyNegative && e.draft.RisingShed) ||
		(e.dobbyType == DobbyPositive && !e.draft.RisingShed) {
		lift ^= liftMask
	}
	return lift, color
}

// renderPick draws the drawdown for NextPick (or CurrentPick when
// committing on <up>); pending/sent just control the trailing status text.
func (e *Engine) renderPick(pending, sent bool) {
	lift, weftColor := e.liftAndColorFor(e.view.NextPick)
	resolved := e.view.resolve(e.view.NextPick)
	p := RenderPick{
		Lift:         lift,
		WeftColor:    weftColor,
		WeaveForward: e.view.WeaveForward,
		Pending:      pending,
		Sent:         sent,
	}
	if resolved == TabbyA {
		p.TabbyLetter = 'A'
	} else if resolved == TabbyB {
		p.TabbyLetter = 'B'
	} else {
		p.PickNumber = resolved
	}
	e.renderer.DrawPick(e.draft, e.opts, p)
}

func (e *Engine) redraw() {
	e.renderPick(false, e.view.PickSent)
	e.renderer.DrawPrompt(e.view)
}

// handleTermEvent is the global input dispatcher: Ctrl-C/Ctrl-L/Esc first,
// then the per-mode handler (spec.md §4.5 "Input multiplexing").
func (e *Engine) handleTermEvent(ev TermEvent) {
	if e.handleGlobalEvent(ev) {
		return
	}
	switch e.view.Mode {
	case ModeWeave, ModeTabby:
		e.handlePickModeEvent(ev)
	case ModePickEntry:
		e.handlePickEntryEvent(ev)
	case ModePickListEntry:
		e.handlePickListEntryEvent(ev)
	}
}

func (e *Engine) handleGlobalEvent(ev TermEvent) bool {
	switch ev.Type {
	case TermChar:
		switch ev.Character {
		case 0x03: // Ctrl-C
			e.view.Mode = ModeQuit
			return true
		case 0x0c: // Ctrl-L
			e.redraw()
			return true
		case 0x1b: // Esc
			e.view.CancelEntry()
			e.renderer.DrawPrompt(e.view)
			return true
		}
	case TermResize:
		e.redraw()
		return true
	}
	return false
}

func (e *Engine) handlePickModeEvent(ev TermEvent) {
	if ev.Type == TermChar {
		switch ev.Character {
		case 't', 'T':
			e.handleCommand(Command{Kind: CmdTabby})
			return
		case 'l', 'L':
			e.handleCommand(Command{Kind: CmdLiftplan})
			return
		case 'q', 'Q':
			e.handleCommand(Command{Kind: CmdQuit})
			return
		case 'r', 'R':
			e.handleCommand(Command{Kind: CmdReverse})
			return
		case 's', 'S':
			e.view.BeginPickEntry()
			e.renderer.DrawPrompt(e.view)
			return
		case 'p', 'P':
			e.view.BeginPickListEntry()
			e.renderer.DrawPrompt(e.view)
			return
		case 'y', 'Y':
			YankText(strconv.Itoa(e.view.NextResolved()))
			return
		}
		return
	}
	if ev.Type == TermKey {
		switch ev.Key {
		case KeyUp, KeyLeft:
			e.handleCommand(Command{Kind: CmdAdvancePick, N: -1})
		case KeyDown, KeyRight:
			e.handleCommand(Command{Kind: CmdAdvancePick, N: 1})
		}
	}
}

func (e *Engine) handlePickEntryEvent(ev TermEvent) {
	if ev.Type != TermChar {
		return
	}
	switch {
	case ev.Character >= '0' && ev.Character <= '9':
		if e.view.EntryText() == "" && ev.Character == '0' {
			return
		}
		e.view.AppendEntryRune(rune(ev.Character))
		fmt.Printf("%c", ev.Character)
	case ev.Character == 0x08 || ev.Character == 0x7f:
		if e.view.EntryText() == "" {
			fmt.Print("\a")
		} else {
			e.view.BackspaceEntry()
			e.renderer.DrawPrompt(e.view)
		}
	case ev.Character == '\r':
		text := e.view.EntryText()
		if text == "" {
			e.view.CancelEntry()
		} else if n, err := strconv.Atoi(text); err != nil || n < 1 || n > 9999 {
			fmt.Print("\a")
		} else {
			e.handleCommand(Command{Kind: CmdDoSetPick, N: n})
		}
		e.renderer.DrawPrompt(e.view)
	}
}

const pickListEntryChars = "0123456789ABab-,()x~"

func (e *Engine) handlePickListEntryEvent(ev TermEvent) {
	if ev.Type != TermChar {
		return
	}
	switch {
	case containsByte(pickListEntryChars, ev.Character):
		e.view.AppendEntryRune(rune(ev.Character))
		fmt.Printf("%c", ev.Character)
	case ev.Character == 0x08 || ev.Character == 0x7f:
		if e.view.EntryText() == "" {
			fmt.Print("\a")
		} else {
			e.view.BackspaceEntry()
			e.renderer.DrawPrompt(e.view)
		}
	case ev.Character == '\r':
		text := e.view.EntryText()
		e.handleCommand(Command{Kind: CmdDoSetPickList, Text: text})
		e.renderer.DrawPrompt(e.view)
	}
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// shutdown drains the loom's shafts, closes the session politely, persists
// the next pick (if one was ever sent), and releases the transport and log
// file (spec.md §4.5 "Quit", §6 "Persisted state").
func (e *Engine) shutdown() {
	switch e.dialect.(type) {
	case *binaryDialect:
		_ = e.send(e.dialect.ResetPing())
	case *textDialect:
		if e.dobbyType == DobbyPositive {
			_ = e.send(e.dialect.Clear())
		} else {
			allRaised := uint64(1)<<uint(e.maxShafts) - 1
			_ = e.send(e.dialect.Pick(allRaised, e.maxShafts))
		}
		_ = e.send(e.dialect.Close())
	}

	if e.view.PickSent {
		next := e.view.NextResolved()
		if next < 0 {
			next = e.view.draft.Picks()
		}
		if err := WriteLastPick(next); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not persist next pick: %v\n", err)
		}
	}

	_ = e.transport.Close()
	_ = e.logger.Close()
	time.Sleep(1 * time.Second)
}
