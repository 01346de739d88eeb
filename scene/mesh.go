package scene

import (
	"desk-scene/core"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *Material

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	GPUData interface{}
}

func NewMesh(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
}

// IndexCount is the number of indices drawn, or the vertex count for
// non-indexed meshes.
func (m *Mesh) IndexCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices)
	}
	return len(m.Vertices)
}

// Bounds returns the local-space AABB corners.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min = m.Vertices[0].Position
	max = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < min[i] {
				min[i] = v.Position[i]
			}
			if v.Position[i] > max[i] {
				max[i] = v.Position[i]
			}
		}
	}
	return min, max
}

// CreatePlane builds a width x height plane in the XY plane facing +Z,
// split into segments x segments quads. UV (0,0) is the bottom-left
// corner.
func CreatePlane(width, height float32, segments int) *Mesh {
	if segments < 1 {
		segments = 1
	}

	var vertices []core.Vertex
	var indices []uint32

	halfW := width / 2
	halfH := height / 2
	row := segments + 1

	for iy := 0; iy <= segments; iy++ {
		for ix := 0; ix <= segments; ix++ {
			u := float32(ix) / float32(segments)
			v := float32(iy) / float32(segments)
			vertices = append(vertices, core.Vertex{
				Position: mgl32.Vec3{-halfW + u*width, halfH - v*height, 0},
				Normal:   mgl32.Vec3{0, 0, 1},
				UV:       mgl32.Vec2{u, 1 - v},
				Color:    core.ColorWhite,
			})
		}
	}

	for iy := 0; iy < segments; iy++ {
		for ix := 0; ix < segments; ix++ {
			a := uint32(iy*row + ix)
			b := a + uint32(row)
			c := b + 1
			d := a + 1
			indices = append(indices, a, b, d)
			indices = append(indices, b, c, d)
		}
	}

	m := NewMesh("Plane", vertices, indices)
	ComputeTangents(m)
	return m
}
