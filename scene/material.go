package scene

import "desk-scene/core"

// Material is a metallic-roughness standard material. Each map is
// optional; a map whose texture has no pixels yet is ignored.
type Material struct {
	Name        string
	Color       core.Color // multiplied with Map
	Metalness   float32    // multiplied with MetalnessMap.b
	Roughness   float32    // multiplied with RoughnessMap.g
	Opacity     float32
	Transparent bool

	Map          *Texture
	AOMap        *Texture // red channel
	RoughnessMap *Texture // green channel
	MetalnessMap *Texture // blue channel
	NormalMap    *Texture // tangent space, OpenGL convention

	DisplacementMap   *Texture
	DisplacementScale float32
	DisplacementBias  float32

	AOMapIntensity float32
	DoubleSided    bool
}

// NewStandardMaterial returns a white dielectric with full roughness.
func NewStandardMaterial(name string) *Material {
	return &Material{
		Name:              name,
		Color:             core.ColorWhite,
		Metalness:         0,
		Roughness:         1,
		Opacity:           1,
		DisplacementScale: 1,
		AOMapIntensity:    1,
	}
}

// DefaultMaterial is used for meshes without a material.
func DefaultMaterial() *Material {
	return NewStandardMaterial("Default")
}

// Textures lists the non-nil maps.
func (m *Material) Textures() []*Texture {
	var out []*Texture
	for _, t := range []*Texture{m.Map, m.AOMap, m.RoughnessMap, m.MetalnessMap, m.NormalMap, m.DisplacementMap} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}
