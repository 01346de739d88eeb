package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"desk-scene/core"
	"desk-scene/internal/opengl"
	"desk-scene/scene"
)

var ErrNoCamera = errors.New("render: camera node has no camera")

// backend is the GPU side of a frame. *opengl.Renderer implements it.
type backend interface {
	SetDrawingBufferSize(width, height int) error
	EnableShadows(size int) error
	HasShadowMap() bool
	BeginShadowPass()
	DrawMeshShadow(mesh *scene.Mesh, lightMVP mgl32.Mat4)
	EndShadowPass()
	BeginFrame(clear core.Color, lights opengl.FrameLights, camPos mgl32.Vec3, viewProj mgl32.Mat4)
	BeginTransparent()
	DrawMesh(mesh *scene.Mesh, model mgl32.Mat4, receiveShadow bool)
	EndFrame(windowW, windowH int) error
	Destroy()
}

// Framebuffer reports the window's framebuffer size in device pixels.
type Framebuffer interface {
	GetFramebufferSize() (int, int)
}

// Stats describes the last rendered frame.
type Stats struct {
	Objects       int
	Culled        int
	Transparent   int
	ShadowCasters int
	Triangles     int
}

// RenderEngine draws a scene from a camera node: a shadow pass for the
// first shadow-casting directional light, then opaque and transparent
// passes into a drawing buffer of viewport size times pixel ratio.
type RenderEngine struct {
	gl             backend
	window         Framebuffer
	viewport       core.Viewport
	ShadowsEnabled bool

	// bufferErr holds a drawing-buffer allocation failure until the next
	// Render reports it.
	bufferErr error

	last Stats
	log  *slog.Logger
}

// NewRenderEngine creates the OpenGL backend for window. samples is the
// MSAA sample count of the offscreen drawing buffer; the window's own
// framebuffer is single-sample.
func NewRenderEngine(window *core.Window, samples int, log *slog.Logger) (*RenderEngine, error) {
	glRenderer, err := opengl.NewRenderer(samples, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	re := newRenderEngine(glRenderer, window, log)
	re.SetSize(window.Width, window.Height)
	if err := re.takeBufferErr(); err != nil {
		glRenderer.Destroy()
		return nil, err
	}
	return re, nil
}

func newRenderEngine(b backend, window Framebuffer, log *slog.Logger) *RenderEngine {
	return &RenderEngine{
		gl:             b,
		window:         window,
		viewport:       core.Viewport{PixelRatio: 1},
		ShadowsEnabled: true,
		log:            log.With("component", "renderer"),
	}
}

// SetSize sets the viewport size in screen coordinates.
func (re *RenderEngine) SetSize(width, height int) {
	re.viewport.Width, re.viewport.Height = width, height
	re.resizeBuffer()
}

func (re *RenderEngine) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		ratio = 1
	}
	re.viewport.PixelRatio = ratio
	re.resizeBuffer()
}

func (re *RenderEngine) PixelRatio() float32 {
	return re.viewport.PixelRatio
}

// DrawingBufferSize is the render resolution in device pixels.
func (re *RenderEngine) DrawingBufferSize() (int, int) {
	return re.viewport.DrawingBufferSize()
}

func (re *RenderEngine) resizeBuffer() {
	w, h := re.DrawingBufferSize()
	if w <= 0 || h <= 0 {
		return
	}
	if err := re.gl.SetDrawingBufferSize(w, h); err != nil {
		re.log.Error("drawing buffer resize failed", "width", w, "height", h, "err", err)
		re.bufferErr = fmt.Errorf("drawing buffer %dx%d: %w", w, h, err)
		return
	}
	re.bufferErr = nil
}

func (re *RenderEngine) takeBufferErr() error {
	err := re.bufferErr
	re.bufferErr = nil
	return err
}

func (re *RenderEngine) Stats() Stats {
	return re.last
}

// Render draws one frame of s as seen from camera.
func (re *RenderEngine) Render(s *scene.Scene, camera *scene.Node) error {
	if camera == nil || camera.Camera == nil {
		return ErrNoCamera
	}
	if err := re.takeBufferErr(); err != nil {
		return err
	}

	lights, dirNode := collectLights(s)
	visible := s.GetVisibleNodes()
	stats := Stats{}

	if dirNode != nil && dirNode.Light.CastShadow && re.ShadowsEnabled {
		if err := re.gl.EnableShadows(dirNode.Light.Shadow.MapSize); err != nil {
			re.log.Warn("shadow map unavailable", "err", err)
		}
	}
	if dirNode != nil && dirNode.Light.CastShadow && re.ShadowsEnabled && re.gl.HasShadowMap() {
		lights.Shadows = true
		lights.LightViewProj = dirNode.Light.ShadowMatrix(dirNode.WorldPosition())

		re.gl.BeginShadowPass()
		for _, node := range visible {
			if !node.CastShadow {
				continue
			}
			re.gl.DrawMeshShadow(node.Mesh, lights.LightViewProj.Mul4(node.GetWorldMatrix()))
			stats.ShadowCasters++
		}
		re.gl.EndShadowPass()
	}

	camPos := camera.WorldPosition()
	viewProj := camera.Camera.ProjectionMatrix().Mul4(scene.ViewMatrix(camera))
	re.gl.BeginFrame(s.Background, lights, camPos, viewProj)

	frustum := scene.FrustumFromMatrix(viewProj)
	inView := visible[:0:0]
	for _, node := range visible {
		if frustum.Intersects(node.WorldBounds()) {
			inView = append(inView, node)
		}
	}
	stats.Culled = len(visible) - len(inView)

	opaque, transparent := splitTransparent(inView, camPos)
	for _, node := range opaque {
		re.gl.DrawMesh(node.Mesh, node.GetWorldMatrix(), node.ReceiveShadow)
		stats.Triangles += node.Mesh.IndexCount() / 3
	}
	if len(transparent) > 0 {
		re.gl.BeginTransparent()
		for _, node := range transparent {
			re.gl.DrawMesh(node.Mesh, node.GetWorldMatrix(), node.ReceiveShadow)
			stats.Triangles += node.Mesh.IndexCount() / 3
		}
	}
	stats.Objects = len(inView)
	stats.Transparent = len(transparent)

	fw, fh := re.window.GetFramebufferSize()
	re.last = stats
	if err := re.gl.EndFrame(fw, fh); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	return nil
}

// collectLights sums ambient lights and picks the first directional one.
// Intensities are read fresh every frame.
func collectLights(s *scene.Scene) (opengl.FrameLights, *scene.Node) {
	var fl opengl.FrameLights
	var dir *scene.Node
	fl.LightViewProj = mgl32.Ident4()
	for _, node := range s.Lights() {
		l := node.Light
		switch l.Type {
		case scene.LightAmbient:
			c := l.Color.Scale(l.Intensity)
			fl.Ambient.R += c.R
			fl.Ambient.G += c.G
			fl.Ambient.B += c.B
		case scene.LightDirectional:
			if dir != nil {
				continue
			}
			dir = node
			fl.HasDirectional = true
			fl.Direction = l.Direction(node.WorldPosition())
			fl.Color = l.Color
			fl.Intensity = l.Intensity
			fl.ShadowBias = l.Shadow.Bias
		}
	}
	fl.Ambient.A = 1
	return fl, dir
}

// splitTransparent separates transparent meshes and orders them back to
// front from camPos.
func splitTransparent(nodes []*scene.Node, camPos mgl32.Vec3) (opaque, transparent []*scene.Node) {
	for _, n := range nodes {
		if n.Mesh.Material != nil && n.Mesh.Material.Transparent {
			transparent = append(transparent, n)
		} else {
			opaque = append(opaque, n)
		}
	}
	sort.SliceStable(transparent, func(i, j int) bool {
		di := transparent[i].WorldPosition().Sub(camPos).LenSqr()
		dj := transparent[j].WorldPosition().Sub(camPos).LenSqr()
		return di > dj
	})
	return opaque, transparent
}

func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}
