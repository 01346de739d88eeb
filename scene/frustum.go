package scene

import "github.com/go-gl/mathgl/mgl32"

// Plane is the half-space Normal·p + D >= 0.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

func (p Plane) DistanceTo(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds six inward-facing clip planes: left, right, bottom, top,
// near, far.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts normalized planes from a view-projection
// matrix (Gribb/Hartmann).
func FrustumFromMatrix(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)
	return Frustum{Planes: [6]Plane{
		normalizePlane(r3.Add(r0)),
		normalizePlane(r3.Sub(r0)),
		normalizePlane(r3.Add(r1)),
		normalizePlane(r3.Sub(r1)),
		normalizePlane(r3.Add(r2)),
		normalizePlane(r3.Sub(r2)),
	}}
}

func normalizePlane(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v[3] / l}
}

type AABB struct {
	Min, Max mgl32.Vec3
}

// Intersects reports false only when box lies entirely outside one plane.
func (f *Frustum) Intersects(box AABB) bool {
	for _, p := range f.Planes {
		corner := box.Max
		for i := 0; i < 3; i++ {
			if p.Normal[i] < 0 {
				corner[i] = box.Min[i]
			}
		}
		if p.DistanceTo(corner) < 0 {
			return false
		}
	}
	return true
}

// WorldBounds is the world-space box around the node's mesh.
func (n *Node) WorldBounds() AABB {
	lo, hi := n.Mesh.Bounds()
	m := n.GetWorldMatrix()

	var out AABB
	for i := 0; i < 8; i++ {
		c := lo
		if i&1 != 0 {
			c[0] = hi[0]
		}
		if i&2 != 0 {
			c[1] = hi[1]
		}
		if i&4 != 0 {
			c[2] = hi[2]
		}
		wp := mgl32.TransformCoordinate(c, m)
		if i == 0 {
			out = AABB{Min: wp, Max: wp}
			continue
		}
		for k := 0; k < 3; k++ {
			if wp[k] < out.Min[k] {
				out.Min[k] = wp[k]
			}
			if wp[k] > out.Max[k] {
				out.Max[k] = wp[k]
			}
		}
	}
	return out
}
