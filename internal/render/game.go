// SPDX-License-Identifier: MIT
/*
Package render hosts the engine in an ebiten window.

The Game ticks the engine once per ebiten update and renders it once per
draw. The screen is never cleared between frames; the engine's wash fades
the previous frame instead.
*/
package render

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"ringviz/internal/config"
	"ringviz/internal/engine"
	"ringviz/internal/log"
)

const audioUnavailableStatus = "Audio unavailable"

// Resumer starts audio capture after the user gesture.
type Resumer interface {
	Resume() error
}

// input is the per-frame user input the game reacts to.
type input interface {
	Clicked() bool
	Quit() bool
}

type ebitenInput struct{}

func (ebitenInput) Clicked() bool {
	return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
		inpututil.IsKeyJustPressed(ebiten.KeySpace)
}

func (ebitenInput) Quit() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ)
}

type Game struct {
	engine  *engine.Engine
	source  engine.Source
	capture Resumer
	screen  *Screen
	input   input
	done    <-chan struct{}

	width, height int
}

var _ ebiten.Game = (*Game)(nil)

// NewGame wires the engine to its audio source. capture may be nil when
// there is nothing to resume.
func NewGame(e *engine.Engine, source engine.Source, capture Resumer, vc config.VisualConfig, screen *Screen) *Game {
	return &Game{
		engine:  e,
		source:  source,
		capture: capture,
		screen:  screen,
		input:   ebitenInput{},
		width:   vc.Width,
		height:  vc.Height,
	}
}

func (g *Game) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}
	if g.input.Quit() {
		return ebiten.Termination
	}

	signals := g.engine.Signals()
	if g.input.Clicked() {
		signals.RequestResume()
	}
	if signals.TakeResume() && g.capture != nil {
		if err := g.capture.Resume(); err != nil {
			log.Errorf("Render: Failed to resume audio: %v", err)
			signals.SetStatus(audioUnavailableStatus)
		}
	}

	return g.engine.Tick(g.source)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.screen.Bind(screen)
	g.engine.Render(g.screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Run opens the window and blocks until it is closed, the game ends or ctx
// is cancelled. Quitting from the keyboard is not an error.
func Run(ctx context.Context, g *Game, title string) error {
	g.done = ctx.Done()
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetScreenClearedEveryFrame(false)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
