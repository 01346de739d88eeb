package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective projection attached to a Node; the node supplies
// the pose.
type Camera struct {
	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	projection mgl32.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float32) *Camera {
	c := &Camera{FOV: fov, Aspect: aspect, Near: near, Far: far}
	c.UpdateProjectionMatrix()
	return c
}

// UpdateProjectionMatrix must be called after changing FOV, Aspect, Near
// or Far.
func (c *Camera) UpdateProjectionMatrix() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return c.projection
}

// NewCameraNode wraps cam in a node.
func NewCameraNode(name string, cam *Camera) *Node {
	n := NewNode(name)
	n.Camera = cam
	return n
}

// ViewMatrix is the inverse of the node's world matrix.
func ViewMatrix(node *Node) mgl32.Mat4 {
	return node.GetWorldMatrix().Inv()
}
