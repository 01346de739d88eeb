package core

// InputSource is the polling surface InputManager reads each frame.
// *Window implements it.
type InputSource interface {
	GetCursorPos() (float64, float64)
	IsMouseButtonPressed(button int) bool
	IsKeyPressed(key int) bool
	SetScrollCallback(cb ScrollCallback)
}

// InputManager tracks mouse and keyboard state between frames
type InputManager struct {
	// Mouse state
	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64
	ScrollDelta              float64

	// Button states
	mouseButtons     [8]bool
	mouseButtonsPrev [8]bool

	// Key states
	keys     [512]bool
	keysPrev [512]bool

	// Modifiers
	ShiftDown bool
	CtrlDown  bool
	AltDown   bool

	source     InputSource
	firstFrame bool
}

// Mouse button constants
const (
	MouseLeft   = 0
	MouseRight  = 1
	MouseMiddle = 2
)

var polledKeys = []int{KeyEscape, KeyUp, KeyDown, KeyLeft, KeyRight, KeyH}

// NewInputManager creates a new input manager with scroll callback
func NewInputManager(source InputSource) *InputManager {
	im := &InputManager{
		source:     source,
		firstFrame: true,
	}

	source.SetScrollCallback(func(xoff, yoff float64) {
		im.ScrollDelta += yoff
	})

	return im
}

// Update should be called once per frame, after PollEvents
func (im *InputManager) Update() {
	x, y := im.source.GetCursorPos()
	if im.firstFrame {
		im.lastMouseX = x
		im.lastMouseY = y
		im.firstFrame = false
	}
	im.MouseDeltaX = x - im.lastMouseX
	im.MouseDeltaY = y - im.lastMouseY
	im.lastMouseX = x
	im.lastMouseY = y
	im.MouseX = x
	im.MouseY = y

	copy(im.mouseButtonsPrev[:], im.mouseButtons[:])
	copy(im.keysPrev[:], im.keys[:])

	for _, b := range []int{MouseLeft, MouseRight, MouseMiddle} {
		im.mouseButtons[b] = im.source.IsMouseButtonPressed(b)
	}

	im.ShiftDown = im.source.IsKeyPressed(KeyLeftShift) || im.source.IsKeyPressed(KeyRightShift)
	im.CtrlDown = im.source.IsKeyPressed(KeyLeftControl) || im.source.IsKeyPressed(KeyRightControl)
	im.AltDown = im.source.IsKeyPressed(KeyLeftAlt) || im.source.IsKeyPressed(KeyRightAlt)

	for _, k := range polledKeys {
		if k >= 0 && k < len(im.keys) {
			im.keys[k] = im.source.IsKeyPressed(k)
		}
	}
}

// EndFrame clears per-frame state
func (im *InputManager) EndFrame() {
	im.ScrollDelta = 0
}

func (im *InputManager) IsMouseDown(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button]
}

func (im *InputManager) IsMousePressed(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button] && !im.mouseButtonsPrev[button]
}

func (im *InputManager) IsKeyDown(key int) bool {
	if key < 0 || key >= len(im.keys) {
		return false
	}
	return im.keys[key]
}

// IsKeyPressed reports a key that went down this frame.
func (im *InputManager) IsKeyPressed(key int) bool {
	if key < 0 || key >= len(im.keys) {
		return false
	}
	return im.keys[key] && !im.keysPrev[key]
}
