package app

const maxPixelRatio = 2

// Resize applies a new window size and device pixel ratio. Zero-area
// sizes, as reported for a minimised window, are ignored.
func (a *App) Resize(width, height int, pixelRatio float32) {
	if width <= 0 || height <= 0 {
		return
	}
	a.width, a.height = width, height

	a.Camera.Camera.Aspect = float32(width) / float32(height)
	a.Camera.Camera.UpdateProjectionMatrix()

	a.renderer.SetSize(width, height)
	a.renderer.SetPixelRatio(min(pixelRatio, maxPixelRatio))
}

func (a *App) viewportSize() (int, int) {
	return a.width, a.height
}
