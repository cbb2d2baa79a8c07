//go:build headless

// renderer_gui_headless.go - stub GUIRenderer for builds without a display,
// parallel to the teacher's audio_backend_headless.go/video_backend_headless.go.

package main

type GUIRenderer struct{}

func NewGUIRenderer() (*GUIRenderer, error) {
	return &GUIRenderer{}, nil
}

func (g *GUIRenderer) DrawPick(d *Draft, opts *Options, p RenderPick) {}
func (g *GUIRenderer) DrawPrompt(v *View)                            {}
func (g *GUIRenderer) Bell()                                         {}
func (g *GUIRenderer) Close() error                                  { return nil }
