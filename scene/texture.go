package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Wrapping int

const (
	ClampToEdgeWrapping Wrapping = iota
	RepeatWrapping
	MirroredRepeatWrapping
)

type ColorSpace int

const (
	LinearColorSpace ColorSpace = iota
	SRGBColorSpace
)

// Texture holds CPU-side pixel data for a 2D texture plus how it is
// sampled. Pixels may arrive after the texture is bound to a material;
// until then the texture is treated as absent.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte

	Repeat     mgl32.Vec2
	WrapS      Wrapping
	WrapT      Wrapping
	ColorSpace ColorSpace
	// FlipY puts the first pixel row at v=1.
	FlipY bool

	// Version increments every time pixels are replaced.
	Version int

	GLID      uint32
	GLVersion int
}

func NewTexture(name string) *Texture {
	return &Texture{
		Name:   name,
		Repeat: mgl32.Vec2{1, 1},
	}
}

// SetPixels publishes RGBA8 pixels. Call from the main goroutine only.
func (t *Texture) SetPixels(width, height int, pixels []byte) {
	t.Width = width
	t.Height = height
	t.Pixels = pixels
	t.Version++
}

// Ready reports whether the texture has pixel data to sample.
func (t *Texture) Ready() bool {
	return t != nil && len(t.Pixels) > 0 && len(t.Pixels) == t.Width*t.Height*4
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	t := NewTexture(name)
	t.SetPixels(1, 1, []byte{r, g, b, a})
	return t
}
