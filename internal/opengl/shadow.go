package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// ShadowMap is a square depth texture attached to its own framebuffer and
// sampled through sampler2DShadow.
type ShadowMap struct {
	FBO      uint32
	DepthTex uint32
	Size     int32
}

func NewShadowMap(size int) (*ShadowMap, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shadow map size %d", size)
	}
	sm := &ShadowMap{Size: int32(size), DepthTex: newDepthTexture(int32(size))}

	gl.GenFramebuffers(1, &sm.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, sm.DepthTex, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		sm.Destroy()
		return nil, fmt.Errorf("shadow framebuffer incomplete: 0x%X", status)
	}
	return sm, nil
}

// newDepthTexture allocates a comparison-mode depth texture. Lookups
// outside the light's frustum hit the border and read as lit.
func newDepthTexture(size int32) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F, size, size, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)

	params := [][2]int32{
		{gl.TEXTURE_MIN_FILTER, gl.LINEAR},
		{gl.TEXTURE_MAG_FILTER, gl.LINEAR},
		{gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER},
		{gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER},
		{gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE},
		{gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL},
	}
	for _, p := range params {
		gl.TexParameteri(gl.TEXTURE_2D, uint32(p[0]), p[1])
	}
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// Bind makes the depth framebuffer the render target and clears it.
func (sm *ShadowMap) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.Viewport(0, 0, sm.Size, sm.Size)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

func (sm *ShadowMap) Destroy() {
	if sm.FBO != 0 {
		gl.DeleteFramebuffers(1, &sm.FBO)
		sm.FBO = 0
	}
	if sm.DepthTex != 0 {
		gl.DeleteTextures(1, &sm.DepthTex)
		sm.DepthTex = 0
	}
}
