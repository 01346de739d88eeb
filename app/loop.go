package app

import (
	"context"
	"fmt"

	"desk-scene/core"
)

const burgerSpin = 0.1 // radians per second

// Window is what Run needs from the platform window.
type Window interface {
	ShouldClose() bool
	PollEvents()
	SwapBuffers()
	SetTitle(title string)
}

// Tick advances one frame: run queued load completions, advance time,
// spin the burger, update the controls and render.
func (a *App) Tick() error {
	a.dispatch.Drain()

	elapsed := a.clock.Elapsed()
	delta := elapsed - a.previous
	if !a.started {
		delta = elapsed
		a.started = true
	}
	if delta < 0 {
		delta = 0
	}
	a.previous = elapsed

	if a.Mixer != nil {
		a.Mixer.Update(delta)
	}

	if burger := a.Burger.Node(); burger != nil {
		burger.Transform.Rotation[1] += float32(burgerSpin * delta)
	}

	a.Camera.Controls.Update()

	if err := a.renderer.Render(a.Scene, a.Camera.Node); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// HandleInput routes this frame's input to the debug panel and the orbit
// controls.
func (a *App) HandleInput(im *core.InputManager, viewportHeight int) {
	a.Panel.HandleInput(im)
	a.Camera.Controls.HandleInput(im, viewportHeight)
}

// Run ticks once per presented frame until the window closes or ctx is
// cancelled. input may be nil.
func (a *App) Run(ctx context.Context, win Window, input *core.InputManager, title string) error {
	a.log.Info("render loop started")
	defer a.log.Info("render loop stopped")

	for !win.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		win.PollEvents()

		if input != nil {
			input.Update()
			_, h := a.viewportSize()
			a.HandleInput(input, h)
		}

		if err := a.Tick(); err != nil {
			return err
		}
		win.SetTitle(a.Panel.Title(title))

		if input != nil {
			input.EndFrame()
		}
		win.SwapBuffers()
	}
	return nil
}
