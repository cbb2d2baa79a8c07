// renderer.go - the Renderer contract shared by the terminal and optional
// GUI drawdown previews (spec.md §4.4).
//
// The engine only depends on this interface, never on a concrete terminal
// or window; spec.md §1 keeps the real terminal-abstraction layer (raw
// mode, cursor motion, ANSI generation, key decoding) out of the core's
// scope, so any type with these methods can stand in for the real one.

package main

// RenderPick is what the renderer needs to draw one drawdown row plus its
// pick/shaft-mask gutter.
type RenderPick struct {
	Lift         uint64 // shafts raised on this pick, already dobby-polarity-corrected
	WeftColor    Color
	PickNumber   int  // 1-based draft pick, or 0 for a tabby pick
	TabbyLetter  byte // 'A', 'B', or 0 if not a tabby pick
	WeaveForward bool
	Pending      bool // true while the pick is queued but not yet sent
	Sent         bool // true on a redraw once the pick has been sent to the loom
}

// Renderer draws the running drawdown and the mode-dependent command
// prompt. Implementations decide how much of the row actually fits.
type Renderer interface {
	// DrawPick renders one drawdown row for the given draft and pick.
	DrawPick(d *Draft, opts *Options, p RenderPick)

	// DrawPrompt renders the mode-dependent command line below the
	// drawdown.
	DrawPrompt(v *View)

	// Bell signals the color-alert condition (spec.md §4.4).
	Bell()

	// Close releases any resources (restores terminal state, closes a
	// window, ...).
	Close() error
}
