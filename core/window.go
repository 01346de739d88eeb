package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and the GL context must stay on the main OS thread.
	runtime.LockOSThread()
}

// ResizeCallback receives the new window size in screen coordinates and
// the current device pixel ratio.
type ResizeCallback func(width, height int, pixelRatio float32)

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	onResize []ResizeCallback
	scroll   []ScrollCallback
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     1280,
		Height:    720,
		Title:     "Desk Scene",
		Resizable: true,
		VSync:     true,
	}
}

type windowHint struct {
	hint  glfw.Hint
	value int
}

// windowHints lists the context and framebuffer hints for config. The
// default framebuffer is single-sample; antialiasing happens offscreen.
func windowHints(config WindowConfig) []windowHint {
	return []windowHint{
		{glfw.ContextVersionMajor, 4},
		{glfw.ContextVersionMinor, 1},
		{glfw.OpenGLProfile, glfw.OpenGLCoreProfile},
		{glfw.OpenGLForwardCompatible, glfw.True},
		{glfw.Resizable, boolToInt(config.Resizable)},
		{glfw.Samples, 0},
	}
}

// NewWindow creates a window with a current OpenGL 4.1 core context.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	for _, h := range windowHints(config) {
		glfw.WindowHint(h.hint, h.value)
	}

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}

	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
		window.emitResize()
	})
	handle.SetContentScaleCallback(func(w *glfw.Window, x, y float32) {
		window.emitResize()
	})
	handle.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		for _, cb := range window.scroll {
			cb(xoff, yoff)
		}
	})

	return window, nil
}

// OnResize registers a handler that runs synchronously inside PollEvents
// whenever the window size or content scale changes.
func (w *Window) OnResize(cb ResizeCallback) {
	w.onResize = append(w.onResize, cb)
}

func (w *Window) emitResize() {
	ratio := w.PixelRatio()
	for _, cb := range w.onResize {
		cb(w.Width, w.Height, ratio)
	}
}

// PixelRatio reports the device pixel ratio of the monitor the window is on.
func (w *Window) PixelRatio() float32 {
	x, _ := w.Handle.GetContentScale()
	if x <= 0 {
		return 1
	}
	return x
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) SetTitle(title string) {
	if title == w.Title {
		return
	}
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) IsMouseButtonPressed(button int) bool {
	return w.Handle.GetMouseButton(glfw.MouseButton(button)) == glfw.Press
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

// ScrollCallback is the type for scroll event handlers
type ScrollCallback func(xoff, yoff float64)

func (w *Window) SetScrollCallback(cb ScrollCallback) {
	w.scroll = append(w.scroll, cb)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	KeyEscape       = int(glfw.KeyEscape)
	KeyRight        = int(glfw.KeyRight)
	KeyLeft         = int(glfw.KeyLeft)
	KeyDown         = int(glfw.KeyDown)
	KeyUp           = int(glfw.KeyUp)
	KeyLeftShift    = int(glfw.KeyLeftShift)
	KeyLeftControl  = int(glfw.KeyLeftControl)
	KeyLeftAlt      = int(glfw.KeyLeftAlt)
	KeyRightShift   = int(glfw.KeyRightShift)
	KeyRightControl = int(glfw.KeyRightControl)
	KeyRightAlt     = int(glfw.KeyRightAlt)
	KeyH            = int(glfw.KeyH)
)
