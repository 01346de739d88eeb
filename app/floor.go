package app

import (
	"math"

	"desk-scene/scene"

	"github.com/go-gl/mathgl/mgl32"
)

const floorSize = 12

// NewFloor builds the 12x12 floor plane lying in the XZ plane.
func NewFloor(t FloorTextures) *scene.Node {
	mat := scene.NewStandardMaterial("floor")
	mat.Transparent = true
	mat.Map = t.Color
	mat.AOMap = t.ARM
	mat.RoughnessMap = t.ARM
	mat.MetalnessMap = t.ARM
	mat.NormalMap = t.Normal
	mat.DisplacementMap = t.Displacement

	mesh := scene.CreatePlane(floorSize, floorSize, 1)
	mesh.Material = mat

	node := scene.NewNode("floor")
	node.Mesh = mesh
	node.ReceiveShadow = true
	node.SetRotation(mgl32.Vec3{-math.Pi / 2, 0, -math.Pi / 2})
	return node
}
