// clipboard.go - "y" (yank) command: copies the next pick's number to the
// system clipboard. Parallel to the clipboard paste path in the
// teacher's video_backend_ebiten.go (handleClipboardPaste), but write
// instead of read.

package main

import (
	"sync"

	"golang.design/x/clipboard"
)

var (
	clipboardOnce sync.Once
	clipboardOK   bool
)

// YankText copies text to the system clipboard, initializing the backend
// lazily and silently doing nothing if it's unavailable (headless CI,
// missing X11/Wayland clipboard, ...).
func YankText(text string) {
	clipboardOnce.Do(func() {
		clipboardOK = clipboard.Init() == nil
	})
	if !clipboardOK {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
}
