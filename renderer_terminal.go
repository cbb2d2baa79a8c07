// renderer_terminal.go - the terminal drawdown/prompt renderer.
//
// Ported from the original driver's Term::colorToStyle and
// View::displayPick/displayPrompt (term.cpp, driver.cpp): right-to-left
// drawdown row, direction arrow, pick number or tabby letter, shaft-mask
// gutter, with ANSI styling degrading from truecolor to a 6x6x6 cube plus
// grayscale ramp to plain ASCII.

package main

import (
	"fmt"
	"os"
	"strings"
)

const styleReset = "\x1b[0m"
const styleBold = "\x1b[1m"

// TermSize is the subset of the terminal-abstraction layer's window-size
// contract the renderer needs; spec.md §1 keeps the rest (raw mode, key
// decoding, resize signal plumbing) out of the core.
type TermSize interface {
	Cols() int
}

// TerminalRenderer draws to stdout using the ANSI styling rules described
// above. It holds no loom or protocol state; it's pure presentation.
type TerminalRenderer struct {
	term       TermSize
	lastBelled bool
}

// NewTerminalRenderer builds a renderer against the given terminal size
// source.
func NewTerminalRenderer(term TermSize) *TerminalRenderer {
	return &TerminalRenderer{term: term}
}

// colorToStyle renders the background-color escape for one drawdown cell,
// matching Term::colorToStyle's degradation from truecolor to a 6x6x6 cube
// plus a 24-step grayscale ramp.
func colorToStyle(c Color, mode AnsiMode) string {
	fg := "0;30"
	if c.UseWhiteText() {
		fg = "1;37"
	}
	if mode == AnsiTruecolor {
		r, g, b := c.Convert(256)
		return fmt.Sprintf("\x1b[%s;48;2;%d;%d;%dm", fg, r, g, b)
	}
	r, g, b := c.Convert(6)
	gray := c.ConvertGray(24)
	bg := gray + 232
	if gray < 0 {
		bg = r*36 + g*6 + b + 16
	}
	return fmt.Sprintf("\x1b[%s;48;5;%dm", fg, bg)
}

// drawdownWidth applies spec.md §4.4's width formula.
func drawdownWidth(cols, maxShafts, ends int) int {
	w := cols - maxShafts - 24
	if w > ends {
		w = ends
	}
	if w < 10 {
		w = 10
	}
	return w
}

func (r *TerminalRenderer) DrawPick(d *Draft, opts *Options, p RenderPick) {
	var sb strings.Builder
	sb.WriteByte('\r')

	cols := 80
	if r.term != nil {
		cols = r.term.Cols()
	}
	width := drawdownWidth(cols, d.MaxShafts, d.Ends())
	liftMask := uint64(1)<<uint(d.MaxShafts) - 1
	emptyLift := p.Lift&liftMask == 0 || p.Lift&liftMask == liftMask
	weftColor := p.WeftColor
	if emptyLift {
		weftColor = Color{}
	}

	for i := width; i >= 1; i-- {
		var end int
		if i <= d.Ends() {
			end = i
		}
		raised := end != 0 && d.Threading[end]&p.Lift != 0
		if opts.Ansi != AnsiNo {
			c := weftColor
			if raised {
				c = d.WarpColor[end]
			}
			sb.WriteString(colorToStyle(c, opts.Ansi))
		}
		if opts.ASCII {
			if raised {
				sb.WriteByte('|')
			} else {
				sb.WriteByte('-')
			}
		} else if raised {
			sb.WriteString("║")
		} else {
			sb.WriteString("═")
		}
	}

	if opts.Ansi != AnsiNo {
		sb.WriteString(colorToStyle(weftColor, opts.Ansi))
	}
	leftArrow, rightArrow := "", ""
	if p.WeaveForward {
		if opts.ASCII {
			rightArrow = " --> "
		} else {
			rightArrow = " ⮕  "
		}
	} else {
		if opts.ASCII {
			leftArrow = " <-- "
		} else {
			leftArrow = " ⬅  "
		}
	}
	if p.TabbyLetter != 0 {
		fmt.Fprintf(&sb, " %s   %c%s |", leftArrow, p.TabbyLetter, rightArrow)
	} else {
		fmt.Fprintf(&sb, " %s%4d%s |", leftArrow, p.PickNumber, rightArrow)
	}

	for shaft := 0; shaft < d.MaxShafts; shaft++ {
		if p.Lift&(1<<uint(shaft)) != 0 {
			if opts.ASCII {
				sb.WriteByte('*')
			} else {
				sb.WriteString("■")
			}
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte('|')
	if opts.Ansi != AnsiNo {
		sb.WriteString(styleReset)
	}
	if emptyLift {
		sb.WriteString(" EMPTY")
	}
	if p.Pending {
		if opts.Ansi == AnsiNo {
			sb.WriteString(" PENDING")
		} else {
			sb.WriteString(" " + styleBold + "PENDING" + styleReset)
		}
	}
	if p.Sent {
		if opts.Ansi == AnsiNo {
			sb.WriteString(" SENT")
		} else {
			sb.WriteString(" " + styleBold + "SENT" + styleReset)
		}
	}

	sb.WriteString("\x1b[0K\r\n")
	fmt.Fprint(os.Stdout, sb.String())
}

var modePrompt = map[Mode]string{
	ModeWeave:         "Weaving",
	ModeTabby:         "Tabby",
	ModePickEntry:     "Select pick",
	ModePickListEntry: "Enter pick list",
	ModeQuit:          "Quitting",
}

func (r *TerminalRenderer) DrawPrompt(v *View) {
	switch v.Mode {
	case ModePickEntry:
		fmt.Printf("\rEnter the new pick number: %s", v.EntryText())
	case ModePickListEntry:
		fmt.Printf("\rEnter the new pick list: %s", v.EntryText())
	case ModeTabby:
		letter := byte('A')
		if v.NextPick == TabbyB {
			letter = 'B'
		}
		fmt.Printf("\r[%s:%c]  t)abby mode  l)iftplan mode  r)everse  s)elect next pick  P)ick list  q)uit   ",
			modePrompt[v.Mode], letter)
	default:
		resolved := v.NextResolved()
		if resolved < 0 {
			letter := byte('A')
			if resolved == TabbyB {
				letter = 'B'
			}
			fmt.Printf("\r[%s:%c]  t)abby mode  l)iftplan mode  r)everse  s)elect next pick  P)ick list  q)uit   ",
				modePrompt[v.Mode], letter)
		} else {
			fmt.Printf("\r[%s:%d]  t)abby mode  l)iftplan mode  r)everse  s)elect next pick  P)ick list  q)uit   ",
				modePrompt[v.Mode], resolved)
		}
	}
	fmt.Print("\x1b[0K")
}

func (r *TerminalRenderer) Bell() {
	fmt.Print("\a")
}

func (r *TerminalRenderer) Close() error { return nil }
