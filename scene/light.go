package scene

import (
	"desk-scene/core"

	"github.com/go-gl/mathgl/mgl32"
)

type LightType int

const (
	LightAmbient LightType = iota
	LightDirectional
)

// ShadowConfig describes the orthographic shadow camera of a directional
// light, in light space.
type ShadowConfig struct {
	MapSize                  int
	Left, Right, Top, Bottom float32
	Near, Far                float32
	// Bias is subtracted from the receiver depth before comparison.
	Bias float32
}

func DefaultShadowConfig() ShadowConfig {
	return ShadowConfig{
		MapSize: 512,
		Left:    -5, Right: 5, Top: 5, Bottom: -5,
		Near: 0.5, Far: 500,
		Bias: 0.0015,
	}
}

// Light is attached to a Node; a directional light shines from the node's
// world position towards Target.
type Light struct {
	Type      LightType
	Color     core.Color
	Intensity float32

	Target     mgl32.Vec3
	CastShadow bool
	Shadow     ShadowConfig
}

func NewAmbientLight(color core.Color, intensity float32) *Light {
	return &Light{Type: LightAmbient, Color: color, Intensity: intensity}
}

func NewDirectionalLight(color core.Color, intensity float32) *Light {
	return &Light{
		Type:      LightDirectional,
		Color:     color,
		Intensity: intensity,
		Shadow:    DefaultShadowConfig(),
	}
}

// Direction is the unit vector the light travels along.
func (l *Light) Direction(position mgl32.Vec3) mgl32.Vec3 {
	d := l.Target.Sub(position)
	if d.LenSqr() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

// ShadowMatrix is projection * view of the light's shadow camera placed at
// position.
func (l *Light) ShadowMatrix(position mgl32.Vec3) mgl32.Mat4 {
	up := mgl32.Vec3{0, 1, 0}
	if mgl32.Abs(l.Direction(position).Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(position, l.Target, up)
	s := l.Shadow
	proj := mgl32.Ortho(s.Left, s.Right, s.Bottom, s.Top, s.Near, s.Far)
	return proj.Mul4(view)
}
