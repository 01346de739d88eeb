package app

import (
	"desk-scene/core"
	"desk-scene/scene"

	"github.com/go-gl/mathgl/mgl32"
)

type LightingRig struct {
	Ambient     *scene.Node
	Directional *scene.Node
}

// NewLightingRig returns a white ambient light at 0.6 and a white
// shadow-casting directional light at 1.8 shining from (5,5,5) at the
// origin.
func NewLightingRig() *LightingRig {
	ambient := scene.NewNode("ambient light")
	ambient.Light = scene.NewAmbientLight(core.ColorHex(0xffffff), 0.6)

	sun := scene.NewDirectionalLight(core.ColorHex(0xffffff), 1.8)
	sun.CastShadow = true
	sun.Shadow.MapSize = 1024
	sun.Shadow.Far = 15
	sun.Shadow.Near = 0.5
	sun.Shadow.Left = -7
	sun.Shadow.Top = 7
	sun.Shadow.Right = 7
	sun.Shadow.Bottom = -7
	sun.Target = mgl32.Vec3{0, 0, 0}

	directional := scene.NewNode("directional light")
	directional.Light = sun
	directional.SetPosition(mgl32.Vec3{5, 5, 5})

	return &LightingRig{Ambient: ambient, Directional: directional}
}
