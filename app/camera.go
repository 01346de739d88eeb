package app

import (
	"desk-scene/scene"

	"github.com/go-gl/mathgl/mgl32"
)

type CameraRig struct {
	Node     *scene.Node
	Camera   *scene.Camera
	Controls *scene.OrbitControls
}

// NewCameraRig places a 75 degree perspective camera at (3,3,1) orbiting
// (0,1,0) with damping.
func NewCameraRig(width, height int) *CameraRig {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	cam := scene.NewPerspectiveCamera(75, aspect, 0.1, 100)
	node := scene.NewCameraNode("camera", cam)
	node.SetPosition(mgl32.Vec3{3, 3, 1})

	controls := scene.NewOrbitControls(node, mgl32.Vec3{0, 1, 0})
	controls.EnableDamping = true

	return &CameraRig{Node: node, Camera: cam, Controls: controls}
}
