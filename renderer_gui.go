//go:build !headless

// renderer_gui.go - optional windowed drawdown preview, a second Renderer
// backend parallel to the terminal one (spec.md §4.4 is terminal-first;
// this is the supplemental GUI the teacher's video_backend_ebiten.go shows
// the shape for: an ebiten.Game driving its own window loop alongside the
// program's real event loop).

package main

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	guiCellWidth  = 10
	guiCellHeight = 14
	guiMaxEnds    = 200 // cap on the cells drawn per row; the window does not scroll
)

var (
	guiBackground = color.RGBA{20, 20, 24, 255}
	guiShaftDown  = color.RGBA{60, 60, 68, 255}
	guiTextColor  = color.RGBA{230, 230, 230, 255}
)

// GUIRenderer shows the current pick in an ebiten window: its shaft mask
// (one cell per shaft), the pick label and the prompt. It does not draw the
// warp/weft drawdown row that TerminalRenderer prints.
type GUIRenderer struct {
	mu       sync.Mutex
	draft    *Draft
	pick     RenderPick
	prompt   string
	started  bool
	closeErr error
}

// NewGUIRenderer opens the preview window. ebiten owns its own game loop
// in a background goroutine; DrawPick/DrawPrompt/Bell only ever touch
// shared state under mu, never the window directly, matching the
// teacher's EbitenOutput frameBuffer/bufferMutex split.
func NewGUIRenderer() (*GUIRenderer, error) {
	g := &GUIRenderer{started: true}
	ebiten.SetWindowSize(guiMaxEnds*guiCellWidth, 200)
	ebiten.SetWindowTitle("DrawBoy")
	ebiten.SetWindowResizable(true)
	go func() {
		if err := ebiten.RunGame(g); err != nil {
			g.mu.Lock()
			g.closeErr = err
			g.mu.Unlock()
		}
	}()
	return g, nil
}

func (g *GUIRenderer) DrawPick(d *Draft, opts *Options, p RenderPick) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.draft = d
	g.pick = p
}

func (g *GUIRenderer) DrawPrompt(v *View) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompt = fmt.Sprintf("%s  pick %d", v.Mode, v.NextResolved())
}

// Bell has no separate GUI treatment; the terminal BEL and/or alert_audio.go
// already cover it, so this is a no-op to satisfy the Renderer contract.
func (g *GUIRenderer) Bell() {}

func (g *GUIRenderer) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.started = false
	return g.closeErr
}

// Update satisfies ebiten.Game; the window has no input of its own beyond
// being closeable.
func (g *GUIRenderer) Update() error {
	g.mu.Lock()
	started := g.started
	g.mu.Unlock()
	if !started || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	return nil
}

func (g *GUIRenderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func (g *GUIRenderer) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	draft, pick, prompt := g.draft, g.pick, g.prompt
	g.mu.Unlock()

	screen.Fill(guiBackground)
	if draft == nil {
		return
	}

	cols := screen.Bounds().Dx() / guiCellWidth
	if cols > guiMaxEnds {
		cols = guiMaxEnds
	}
	for col := 0; col < cols && col < draft.MaxShafts; col++ {
		c := guiShaftDown
		if pick.Lift&(1<<uint(col)) != 0 {
			c = colorToRGBA(pick.WeftColor)
		}
		fillCell(screen, col, c)
	}

	label := fmt.Sprintf("pick %d", pick.PickNumber)
	if pick.TabbyLetter != 0 {
		label = fmt.Sprintf("tabby %c", pick.TabbyLetter)
	}
	drawGUIText(screen, label, 4, guiCellHeight+16)
	drawGUIText(screen, prompt, 4, guiCellHeight+34)
}

func fillCell(screen *ebiten.Image, col int, c color.RGBA) {
	cell := ebiten.NewImage(guiCellWidth-1, guiCellHeight-1)
	cell.Fill(c)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(col*guiCellWidth), 0)
	screen.DrawImage(cell, op)
}

// drawGUIText rasterizes text with x/image/font's basic 7x13 bitmap face,
// the same role the teacher's topazRawFont plays for its own terminal
// device, then blits the result as one ebiten image.
func drawGUIText(screen *ebiten.Image, text string, x, y int) {
	dst := image.NewRGBA(image.Rect(0, 0, len(text)*7+8, 16))
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(guiTextColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(0, 12),
	}
	d.DrawString(text)
	img := ebiten.NewImageFromImage(dst)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(img, op)
}

func colorToRGBA(c Color) color.RGBA {
	r, g, b := c.Convert(256)
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}
