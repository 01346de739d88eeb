package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"desk-scene/scene"
)

// UploadTexture uploads tex to the GPU, creating the texture object on
// first use, and records the uploaded version. Sampling state (wrap,
// colour space, flip) is taken from the texture at upload time.
func UploadTexture(tex *scene.Texture) error {
	if !tex.Ready() {
		return fmt.Errorf("texture %q has no pixel data", tex.Name)
	}

	if tex.GLID == 0 {
		gl.GenTextures(1, &tex.GLID)
	}
	gl.BindTexture(gl.TEXTURE_2D, tex.GLID)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(tex.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(tex.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	internal := int32(gl.RGBA8)
	if tex.ColorSpace == scene.SRGBColorSpace {
		internal = gl.SRGB8_ALPHA8
	}

	pixels := tex.Pixels
	if tex.FlipY {
		pixels = flipRows(pixels, tex.Width, tex.Height)
	}

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLVersion = tex.Version
	return nil
}

// DeleteTexture frees a previously uploaded GPU texture and zeroes its GLID.
func DeleteTexture(tex *scene.Texture) {
	if tex == nil || tex.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
	tex.GLVersion = 0
}

func wrapMode(w scene.Wrapping) int32 {
	switch w {
	case scene.RepeatWrapping:
		return gl.REPEAT
	case scene.MirroredRepeatWrapping:
		return gl.MIRRORED_REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}

// flipRows returns a copy of RGBA8 pixels with the row order reversed, so
// the first image row lands at t=1.
func flipRows(pixels []byte, width, height int) []byte {
	stride := width * 4
	out := make([]byte, len(pixels))
	for y := 0; y < height; y++ {
		copy(out[(height-1-y)*stride:(height-y)*stride], pixels[y*stride:(y+1)*stride])
	}
	return out
}
