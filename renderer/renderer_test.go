package renderer

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"desk-scene/core"
	"desk-scene/internal/opengl"
	"desk-scene/scene"
)

type fakeBackend struct {
	bufferW, bufferH int
	shadowSize       int
	shadowDraws      []*scene.Mesh
	draws            []*scene.Mesh
	transparentFrom  int
	lights           opengl.FrameLights
	ended            bool
	bufferErr        error
	presentErr       error
}

func (f *fakeBackend) SetDrawingBufferSize(w, h int) error {
	if f.bufferErr != nil {
		return f.bufferErr
	}
	f.bufferW, f.bufferH = w, h
	return nil
}
func (f *fakeBackend) EnableShadows(size int) error { f.shadowSize = size; return nil }
func (f *fakeBackend) HasShadowMap() bool { return f.shadowSize > 0 }
func (f *fakeBackend) BeginShadowPass() {}
func (f *fakeBackend) DrawMeshShadow(m *scene.Mesh, _ mgl32.Mat4) {
	f.shadowDraws = append(f.shadowDraws, m)
}
func (f *fakeBackend) EndShadowPass() {}
func (f *fakeBackend) BeginFrame(_ core.Color, l opengl.FrameLights, _ mgl32.Vec3, _ mgl32.Mat4) {
	f.lights = l
	f.transparentFrom = -1
}
func (f *fakeBackend) BeginTransparent() { f.transparentFrom = len(f.draws) }
func (f *fakeBackend) DrawMesh(m *scene.Mesh, _ mgl32.Mat4, _ bool) {
	f.draws = append(f.draws, m)
}
func (f *fakeBackend) EndFrame(int, int) error { f.ended = true; return f.presentErr }
func (f *fakeBackend) Destroy() {}

type fakeWindow struct{}

func (fakeWindow) GetFramebufferSize() (int, int) { return 800, 600 }

func newTestEngine() (*RenderEngine, *fakeBackend) {
	b := &fakeBackend{}
	return newRenderEngine(b, fakeWindow{}, slog.New(slog.NewTextHandler(io.Discard, nil))), b
}

func meshNode(name string, transparent bool) *scene.Node {
	n := scene.NewNode(name)
	n.Mesh = scene.CreatePlane(1, 1, 1)
	n.Mesh.Material = scene.NewStandardMaterial(name)
	n.Mesh.Material.Transparent = transparent
	return n
}

func TestDrawingBufferFollowsPixelRatio(t *testing.T) {
	re, b := newTestEngine()
	re.SetSize(800, 600)
	re.SetPixelRatio(2)

	w, h := re.DrawingBufferSize()
	assert.Equal(t, 1600, w)
	assert.Equal(t, 1200, h)
	assert.Equal(t, 1600, b.bufferW)
	assert.Equal(t, 1200, b.bufferH)

	re.SetPixelRatio(0)
	assert.Equal(t, float32(1), re.PixelRatio())
}

func TestRenderRequiresCamera(t *testing.T) {
	re, _ := newTestEngine()
	assert.ErrorIs(t, re.Render(scene.NewScene(), nil), ErrNoCamera)
	assert.ErrorIs(t, re.Render(scene.NewScene(), scene.NewNode("empty")), ErrNoCamera)
}

func TestRenderPasses(t *testing.T) {
	re, b := newTestEngine()
	s := scene.NewScene()

	ambient := scene.NewNode("ambient")
	ambient.Light = scene.NewAmbientLight(core.ColorWhite, 0.6)
	s.Add(ambient)

	sun := scene.NewNode("sun")
	sun.Light = scene.NewDirectionalLight(core.ColorWhite, 1.8)
	sun.Light.CastShadow = true
	sun.Light.Shadow.MapSize = 1024
	sun.SetPosition(mgl32.Vec3{5, 5, 5})
	s.Add(sun)

	caster := meshNode("caster", false)
	caster.CastShadow = true
	s.Add(caster)
	floor := meshNode("floor", true)
	floor.ReceiveShadow = true
	s.Add(floor)

	cam := scene.NewCameraNode("camera", scene.NewPerspectiveCamera(75, 1, 0.1, 100))
	cam.SetPosition(mgl32.Vec3{3, 3, 1})
	cam.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	s.Add(cam)

	require.NoError(t, re.Render(s, cam))

	assert.Equal(t, 1024, b.shadowSize)
	assert.Equal(t, []*scene.Mesh{caster.Mesh}, b.shadowDraws)
	require.Len(t, b.draws, 2)
	assert.Same(t, caster.Mesh, b.draws[0])
	assert.Same(t, floor.Mesh, b.draws[1])
	assert.Equal(t, 1, b.transparentFrom)
	assert.True(t, b.ended)

	assert.InDelta(t, 0.6, b.lights.Ambient.R, 1e-6)
	assert.Equal(t, float32(1.8), b.lights.Intensity)
	assert.True(t, b.lights.Shadows)

	stats := re.Stats()
	assert.Equal(t, 2, stats.Objects)
	assert.Zero(t, stats.Culled)
	assert.Equal(t, 1, stats.Transparent)
	assert.Equal(t, 1, stats.ShadowCasters)
	assert.Equal(t, 4, stats.Triangles)
}

func TestRenderReadsIntensityEachFrame(t *testing.T) {
	re, b := newTestEngine()
	s := scene.NewScene()
	sun := scene.NewNode("sun")
	sun.Light = scene.NewDirectionalLight(core.ColorWhite, 1.8)
	s.Add(sun)
	cam := scene.NewCameraNode("camera", scene.NewPerspectiveCamera(75, 1, 0.1, 100))

	require.NoError(t, re.Render(s, cam))
	assert.Equal(t, float32(1.8), b.lights.Intensity)
	assert.False(t, b.lights.Shadows)

	sun.Light.Intensity = 7.25
	require.NoError(t, re.Render(s, cam))
	assert.Equal(t, float32(7.25), b.lights.Intensity)
}

func TestSplitTransparentSortsBackToFront(t *testing.T) {
	near := meshNode("near", true)
	near.SetPosition(mgl32.Vec3{0, 0, 1})
	far := meshNode("far", true)
	far.SetPosition(mgl32.Vec3{0, 0, 10})
	solid := meshNode("solid", false)

	opaque, transparent := splitTransparent([]*scene.Node{near, solid, far}, mgl32.Vec3{})
	assert.Equal(t, []*scene.Node{solid}, opaque)
	assert.Equal(t, []*scene.Node{far, near}, transparent)
}

func TestRenderCullsOutsideView(t *testing.T) {
	re, b := newTestEngine()
	s := scene.NewScene()
	inside := meshNode("inside", false)
	s.Add(inside)
	outside := meshNode("outside", false)
	outside.SetPosition(mgl32.Vec3{100, 0, 0})
	outside.CastShadow = true
	s.Add(outside)

	cam := scene.NewCameraNode("camera", scene.NewPerspectiveCamera(75, 1, 0.1, 100))
	cam.SetPosition(mgl32.Vec3{0, 0, 5})

	require.NoError(t, re.Render(s, cam))
	assert.Equal(t, []*scene.Mesh{inside.Mesh}, b.draws)
	assert.Equal(t, 1, re.Stats().Culled)
}

func TestRenderReportsDrawingBufferFailureOnce(t *testing.T) {
	re, b := newTestEngine()
	cam := scene.NewCameraNode("camera", scene.NewPerspectiveCamera(75, 1, 0.1, 100))

	oom := errors.New("out of memory")
	b.bufferErr = oom
	re.SetSize(800, 600)

	err := re.Render(scene.NewScene(), cam)
	assert.ErrorIs(t, err, oom)
	assert.False(t, b.ended)
	assert.NoError(t, re.Render(scene.NewScene(), cam))

	b.bufferErr = nil
	re.SetPixelRatio(2)
	assert.Equal(t, 1600, b.bufferW)
	assert.NoError(t, re.Render(scene.NewScene(), cam))
}

func TestRenderReportsPresentFailure(t *testing.T) {
	re, b := newTestEngine()
	cam := scene.NewCameraNode("camera", scene.NewPerspectiveCamera(75, 1, 0.1, 100))
	b.presentErr = errors.New("gl error 0x502")

	err := re.Render(scene.NewScene(), cam)
	assert.ErrorIs(t, err, b.presentErr)
	assert.True(t, b.ended)
}
