// Package debug provides a small keyboard-driven panel of numeric
// controls bound to live scene values.
package debug

import (
	"fmt"
	"log/slog"
	"math"

	"desk-scene/core"
)

// Control binds a named float32 field to a bounded range.
type Control struct {
	Name string
	Min  float64
	Max  float64
	Step float64

	target *float32
}

func (c *Control) Value() float64 {
	return float64(*c.target)
}

// Set clamps v to [Min, Max] and writes it to the bound field. Values
// inside the range are written as given.
func (c *Control) Set(v float64) {
	if v < c.Min {
		v = c.Min
	}
	if v > c.Max {
		v = c.Max
	}
	*c.target = float32(v)
}

// Nudge moves the value by n steps.
func (c *Control) Nudge(n int) {
	c.Set(c.Value() + float64(n)*c.Step)
}

func (c *Control) String() string {
	return fmt.Sprintf("%s: %.*f", c.Name, decimals(c.Step), c.Value())
}

func decimals(step float64) int {
	if step <= 0 || step >= 1 {
		return 0
	}
	return int(math.Round(-math.Log10(step)))
}

// Panel holds the controls and which one keyboard input drives.
type Panel struct {
	Visible  bool
	controls []*Control
	selected int
	log      *slog.Logger
	overlay  Overlay
}

func NewPanel(log *slog.Logger) *Panel {
	return &Panel{
		Visible: true,
		log:     log.With("component", "debug"),
	}
}

// Add registers a control bound to target. Controls are listed in the
// order they were added.
func (p *Panel) Add(name string, target *float32, min, max, step float64) *Control {
	c := &Control{Name: name, Min: min, Max: max, Step: step, target: target}
	p.controls = append(p.controls, c)
	p.log.Debug("control added", "name", name, "min", min, "max", max, "step", step)
	return c
}

func (p *Panel) Controls() []*Control {
	return p.controls
}

// Control returns the control with the given name, or nil.
func (p *Panel) Control(name string) *Control {
	for _, c := range p.controls {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (p *Panel) Selected() *Control {
	if len(p.controls) == 0 {
		return nil
	}
	return p.controls[p.selected]
}

// Select moves the selection by delta, wrapping around.
func (p *Panel) Select(delta int) {
	n := len(p.controls)
	if n == 0 {
		return
	}
	p.selected = ((p.selected+delta)%n + n) % n
}

// HandleInput applies this frame's key presses: H toggles the panel,
// Up/Down select, Left/Right step (x10 with shift). It reports whether a
// value changed.
func (p *Panel) HandleInput(im *core.InputManager) bool {
	if im.IsKeyPressed(core.KeyH) {
		p.Visible = !p.Visible
	}
	if !p.Visible {
		return false
	}
	if im.IsKeyPressed(core.KeyUp) {
		p.Select(-1)
	}
	if im.IsKeyPressed(core.KeyDown) {
		p.Select(1)
	}

	c := p.Selected()
	if c == nil {
		return false
	}
	steps := 0
	if im.IsKeyPressed(core.KeyRight) {
		steps++
	}
	if im.IsKeyPressed(core.KeyLeft) {
		steps--
	}
	if steps == 0 {
		return false
	}
	if im.ShiftDown {
		steps *= 10
	}
	before := c.Value()
	c.Nudge(steps)
	if c.Value() == before {
		return false
	}
	p.log.Info("control changed", "name", c.Name, "value", c.Value())
	return true
}

// Title is the one-line summary shown in the window title.
func (p *Panel) Title(base string) string {
	c := p.Selected()
	if !p.Visible || c == nil {
		return base
	}
	return fmt.Sprintf("%s | %s", base, c)
}

// Text lists every control, marking the selected one.
func (p *Panel) Text() string {
	p.overlay.Clear()
	for i, c := range p.controls {
		mark := " "
		if i == p.selected {
			mark = ">"
		}
		p.overlay.AddLine("%s %s [%g, %g]", mark, c, c.Min, c.Max)
	}
	return p.overlay.GetText()
}
