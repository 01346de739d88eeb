package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// RenderTarget is the offscreen framebuffer the scene is drawn into at
// drawing-buffer resolution. With Samples > 0 the scene FBO is
// multisampled and EndFrame resolves it into a single-sample FBO of the
// same size before scaling onto the window, which must itself be
// single-sample.
type RenderTarget struct {
	FBO      uint32
	ColorRBO uint32
	DepthRBO uint32

	ResolveFBO uint32
	ResolveRBO uint32

	Width   int32
	Height  int32
	Samples int32
}

// effectiveSamples clamps a requested MSAA sample count to what the
// driver supports. One sample or fewer disables multisampling.
func effectiveSamples(requested, limit int32) int32 {
	if requested <= 1 || limit <= 1 {
		return 0
	}
	return min(requested, limit)
}

func NewRenderTarget(width, height, samples int) (*RenderTarget, error) {
	var limit int32
	gl.GetIntegerv(gl.MAX_SAMPLES, &limit)
	rt := &RenderTarget{Samples: effectiveSamples(int32(samples), limit)}
	if err := rt.alloc(width, height); err != nil {
		return nil, err
	}
	return rt, nil
}

func (rt *RenderTarget) alloc(width, height int) error {
	rt.Width, rt.Height = int32(width), int32(height)

	rt.FBO, rt.ColorRBO = newColorFramebuffer(rt.Samples, rt.Width, rt.Height)
	gl.GenRenderbuffers(1, &rt.DepthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rt.DepthRBO)
	gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, rt.Samples, gl.DEPTH_COMPONENT24, rt.Width, rt.Height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, rt.DepthRBO)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)

	if status == gl.FRAMEBUFFER_COMPLETE && rt.Samples > 0 {
		rt.ResolveFBO, rt.ResolveRBO = newColorFramebuffer(0, rt.Width, rt.Height)
		status = gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	}

	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		rt.free()
		return fmt.Errorf("render target %dx%d (%d samples) incomplete: status=0x%X", width, height, rt.Samples, status)
	}
	return nil
}

// newColorFramebuffer creates and binds an FBO with one RGBA8 colour
// renderbuffer. samples 0 allocates single-sample storage.
func newColorFramebuffer(samples, width, height int32) (fbo, rbo uint32) {
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.GenRenderbuffers(1, &rbo)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rbo)
	gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, samples, gl.RGBA8, width, height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, rbo)
	return fbo, rbo
}

func (rt *RenderTarget) free() {
	fbos := []*uint32{&rt.FBO, &rt.ResolveFBO}
	for _, id := range fbos {
		if *id != 0 {
			gl.DeleteFramebuffers(1, id)
			*id = 0
		}
	}
	rbos := []*uint32{&rt.ColorRBO, &rt.DepthRBO, &rt.ResolveRBO}
	for _, id := range rbos {
		if *id != 0 {
			gl.DeleteRenderbuffers(1, id)
			*id = 0
		}
	}
}

// Resize reallocates the attachments when the size changes.
func (rt *RenderTarget) Resize(width, height int) error {
	if int32(width) == rt.Width && int32(height) == rt.Height {
		return nil
	}
	rt.free()
	return rt.alloc(width, height)
}

// BlitToDefault resolves multisampling if needed, then scales the image
// onto the window framebuffer.
func (rt *RenderTarget) BlitToDefault(windowW, windowH int32) error {
	src := rt.FBO
	if rt.Samples > 0 {
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, rt.FBO)
		gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, rt.ResolveFBO)
		gl.BlitFramebuffer(0, 0, rt.Width, rt.Height, 0, 0, rt.Width, rt.Height, gl.COLOR_BUFFER_BIT, gl.NEAREST)
		src = rt.ResolveFBO
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, rt.Width, rt.Height, 0, 0, windowW, windowH, gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("blit %dx%d to window %dx%d: gl error 0x%X", rt.Width, rt.Height, windowW, windowH, code)
	}
	return nil
}

func (rt *RenderTarget) Destroy() {
	rt.free()
}
