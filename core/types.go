package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// ColorHex converts a 0xRRGGBB value into an opaque Color.
func ColorHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xff) / 255,
		G: float32((hex>>8)&0xff) / 255,
		B: float32(hex&0xff) / 255,
		A: 1,
	}
}

// Scale returns the color with RGB multiplied by s; alpha is kept.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A}
}

// Vertex is the interleaved layout uploaded to the GPU. Field order is
// part of the vertex attribute contract in internal/opengl.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	UV        mgl32.Vec2
	Color     Color
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// Transform is a TRS transform. Rotation holds Euler angles in radians,
// applied in XYZ order (R = Rx * Ry * Rz).
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Scale: mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) RotationMatrix() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(t.Rotation[0]).
		Mul4(mgl32.HomogRotate3DY(t.Rotation[1])).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation[2]))
}

func (t Transform) GetMatrix() mgl32.Mat4 {
	translation := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	scale := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return translation.Mul4(t.RotationMatrix()).Mul4(scale)
}

// SetUniformScale sets the same scale factor on all three axes.
func (t *Transform) SetUniformScale(s float32) {
	t.Scale = mgl32.Vec3{s, s, s}
}

// EulerFromMatrix extracts XYZ-order Euler angles from the rotation part of
// m. The inverse of RotationMatrix for angles within the principal range.
func EulerFromMatrix(m mgl32.Mat4) mgl32.Vec3 {
	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m22, m23 := m.At(1, 1), m.At(1, 2)
	m32, m33 := m.At(2, 1), m.At(2, 2)

	var e mgl32.Vec3
	e[1] = float32(asin(mgl32.Clamp(m13, -1, 1)))
	if abs32(m13) < 0.9999999 {
		e[0] = atan2(-m23, m33)
		e[2] = atan2(-m12, m11)
	} else {
		e[0] = atan2(m32, m22)
		e[2] = 0
	}
	return e
}

type Viewport struct {
	Width, Height int
	PixelRatio    float32
}

// DrawingBufferSize is the viewport size in device pixels.
func (v Viewport) DrawingBufferSize() (int, int) {
	return int(float32(v.Width) * v.PixelRatio), int(float32(v.Height) * v.PixelRatio)
}
