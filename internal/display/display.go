// Package display implements the external display back-end and event
// source: an ebiten.Game that blits the core's 160x144 frame buffer to a
// scaled window and reports the quit signal the driver polls between
// frames.
package display

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Yogesh9000/gbcore/internal/ppu"
)

const (
	screenW = 160
	screenH = 144
)

// Config configures the window title and pixel scale.
type Config struct {
	Title string
	Scale int
}

func (c *Config) defaults() {
	if c.Title == "" {
		c.Title = "gbcore"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
}

// Machine is the subset of machine.Machine the display drives: step one
// frame, then read it back to present.
type Machine interface {
	StepFrame()
	Frame() [144][160]ppu.RGBA
}

// Game implements ebiten.Game, stepping the machine once per Update and
// blitting its frame buffer in Draw. Quit is observed by polling
// ebiten.IsWindowBeingClosed.
type Game struct {
	cfg Config
	m   Machine
	tex *ebiten.Image
	pix []byte // scratch RGBA buffer reused across frames
}

// NewGame wires a Game to the machine it will step and sets the window
// title and size; Run opens the window.
func NewGame(cfg Config, m Machine) *Game {
	cfg.defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(screenW*cfg.Scale, screenH*cfg.Scale)
	return &Game{cfg: cfg, m: m, pix: make([]byte, screenW*screenH*4)}
}

// Run starts ebiten's event loop, returning when the window closes or the
// loop otherwise terminates.
func (g *Game) Run() error {
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// Update steps one machine frame and signals termination once the window
// close button has been pressed, mirroring ebiten.Game's documented quit
// contract.
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	g.m.StepFrame()
	return nil
}

// Draw blits the machine's most recent frame into the window.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.tex == nil {
		g.tex = ebiten.NewImage(screenW, screenH)
	}
	frame := g.m.Frame()
	for y := 0; y < screenH; y++ {
		for x := 0; x < screenW; x++ {
			c := frame[y][x]
			i := (y*screenW + x) * 4
			g.pix[i+0] = c.R
			g.pix[i+1] = c.G
			g.pix[i+2] = c.B
			g.pix[i+3] = c.A
		}
	}
	g.tex.WritePixels(g.pix)
	screen.DrawImage(g.tex, nil)
}

// Layout fixes the logical screen size to the native 160x144 resolution;
// ebiten handles the window-to-logical-pixel scaling.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}
