package app

import (
	"context"

	"desk-scene/scene"

	"github.com/go-gl/mathgl/mgl32"
)

const floorTextureDir = "textures/laminate_floor/"

// FloorTextures is the laminate floor material set. ARM packs ambient
// occlusion, roughness and metalness in R, G and B.
type FloorTextures struct {
	Color        *scene.Texture
	ARM          *scene.Texture
	Normal       *scene.Texture
	Displacement *scene.Texture
}

// LoadFloorTextures starts the four loads and configures the colour map
// before anything samples it.
func LoadFloorTextures(ctx context.Context, textures TextureLoader, asset func(string) string) FloorTextures {
	set := FloorTextures{
		Color:        textures.Load(ctx, asset(floorTextureDir+"laminate_floor_02_diff_1k.jpg")),
		ARM:          textures.Load(ctx, asset(floorTextureDir+"laminate_floor_02_arm_1k.jpg")),
		Normal:       textures.Load(ctx, asset(floorTextureDir+"laminate_floor_02_nor_gl_1k.jpg")),
		Displacement: textures.Load(ctx, asset(floorTextureDir+"laminate_floor_02_disp_1k.jpg")),
	}

	set.Color.Repeat = mgl32.Vec2{3, 3}
	set.Color.WrapS = scene.RepeatWrapping
	set.Color.WrapT = scene.RepeatWrapping
	set.Color.ColorSpace = scene.SRGBColorSpace
	return set
}
