package debug

import (
	"io"
	"log/slog"
	"testing"

	"desk-scene/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPanel() *Panel {
	return NewPanel(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestControlSetClampsButKeepsExactValues(t *testing.T) {
	v := float32(1.8)
	c := newPanel().Add("intensity", &v, 0, 10, 0.01)

	c.Set(3.14159)
	assert.Equal(t, float32(3.14159), v)

	c.Set(-1)
	assert.Equal(t, float32(0), v)
	c.Set(11)
	assert.Equal(t, float32(10), v)
}

func TestControlNudge(t *testing.T) {
	y := float32(1.67)
	c := newPanel().Add("plate height", &y, 1.2, 2.0, 0.001)

	c.Nudge(1)
	assert.InDelta(t, 1.671, y, 1e-6)
	c.Nudge(-1000)
	assert.Equal(t, float32(1.2), y)
	assert.Equal(t, "plate height: 1.200", c.String())
}

type keys struct {
	down  map[int]bool
	shift bool
}

func (k *keys) GetCursorPos() (float64, float64) { return 0, 0 }
func (k *keys) IsMouseButtonPressed(int) bool { return false }
func (k *keys) IsKeyPressed(key int) bool {
	if key == core.KeyLeftShift {
		return k.shift
	}
	return k.down[key]
}
func (k *keys) SetScrollCallback(core.ScrollCallback) {}

// press runs one frame with key held, then one frame with it released.
func press(im *core.InputManager, k *keys, p *Panel, key int) bool {
	k.down = map[int]bool{key: true}
	im.Update()
	changed := p.HandleInput(im)
	k.down = nil
	im.Update()
	return changed
}

func TestPanelKeyboard(t *testing.T) {
	intensity := float32(1.8)
	height := float32(1.67)
	p := newPanel()
	p.Add("intensity", &intensity, 0, 10, 0.01)
	p.Add("plate height", &height, 1.2, 2.0, 0.001)

	k := &keys{}
	im := core.NewInputManager(k)
	im.Update()

	require.Equal(t, "intensity", p.Selected().Name)
	assert.True(t, press(im, k, p, core.KeyRight))
	assert.InDelta(t, 1.81, intensity, 1e-6)

	k.shift = true
	assert.True(t, press(im, k, p, core.KeyLeft))
	assert.InDelta(t, 1.71, intensity, 1e-5)
	k.shift = false

	press(im, k, p, core.KeyDown)
	assert.Equal(t, "plate height", p.Selected().Name)
	press(im, k, p, core.KeyDown)
	assert.Equal(t, "intensity", p.Selected().Name)
	press(im, k, p, core.KeyUp)
	assert.Equal(t, "plate height", p.Selected().Name)

	assert.Contains(t, p.Title("Desk Scene"), "plate height: 1.670")
	assert.Contains(t, p.Text(), "> plate height")

	press(im, k, p, core.KeyH)
	assert.False(t, p.Visible)
	assert.Equal(t, "Desk Scene", p.Title("Desk Scene"))
	assert.False(t, press(im, k, p, core.KeyRight))
	assert.InDelta(t, 1.67, height, 1e-6)
}

func TestPanelAtLimitReportsNoChange(t *testing.T) {
	v := float32(10)
	p := newPanel()
	p.Add("intensity", &v, 0, 10, 0.01)

	k := &keys{}
	im := core.NewInputManager(k)
	im.Update()
	assert.False(t, press(im, k, p, core.KeyRight))
}

func TestEmptyPanel(t *testing.T) {
	p := newPanel()
	assert.Nil(t, p.Selected())
	assert.Nil(t, p.Control("intensity"))
	p.Select(1)
	assert.Equal(t, "base", p.Title("base"))
	assert.Empty(t, p.Text())
}

func TestOverlay(t *testing.T) {
	var o Overlay
	assert.Empty(t, o.GetText())
	o.AddLine("fps %d", 60)
	o.AddLine("draws %d", 9)
	assert.Equal(t, "fps 60\ndraws 9\n", o.GetText())
	o.Clear()
	assert.Empty(t, o.GetText())
}
