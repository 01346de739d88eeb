package scene

import (
	"math"
	"testing"

	"desk-scene/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneAddIsIdempotent(t *testing.T) {
	s := NewScene()
	n := NewNode("burger")

	assert.True(t, s.Add(n))
	assert.False(t, s.Add(n))
	assert.Len(t, s.Children(), 1)
	assert.Same(t, s.Root, n.Parent)
	assert.False(t, s.Add(nil))
}

func TestNodeIDsAreUnique(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestWorldMatrixComposesParents(t *testing.T) {
	parent := NewNode("parent")
	parent.SetPosition(mgl32.Vec3{0, 1, 0})
	parent.SetScale(2)
	child := NewNode("child")
	child.SetPosition(mgl32.Vec3{1, 0, 0})
	parent.AddChild(child)

	assert.True(t, child.WorldPosition().ApproxEqual(mgl32.Vec3{2, 1, 0}))
}

func TestGetVisibleNodesSkipsHiddenSubtrees(t *testing.T) {
	s := NewScene()
	group := NewNode("group")
	leaf := NewNode("leaf")
	leaf.Mesh = CreatePlane(1, 1, 1)
	group.AddChild(leaf)
	s.Add(group)

	require.Len(t, s.GetVisibleNodes(), 1)
	group.Visible = false
	assert.Empty(t, s.GetVisibleNodes())
}

func TestSetCastShadowMarksMeshNodes(t *testing.T) {
	group := NewNode("model")
	mesh := NewNode("mesh")
	mesh.Mesh = CreatePlane(1, 1, 1)
	group.AddChild(mesh)

	group.SetCastShadow(true)
	assert.True(t, mesh.CastShadow)
	assert.False(t, group.CastShadow)
}

func TestCreatePlane(t *testing.T) {
	m := CreatePlane(12, 12, 2)
	assert.Len(t, m.Vertices, 9)
	assert.Len(t, m.Indices, 24)

	min, max := m.Bounds()
	assert.Equal(t, mgl32.Vec3{-6, -6, 0}, min)
	assert.Equal(t, mgl32.Vec3{6, 6, 0}, max)

	for _, v := range m.Vertices {
		assert.Equal(t, mgl32.Vec3{0, 0, 1}, v.Normal)
		assert.InDelta(t, 1, v.Tangent.Len(), 1e-5)
		assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), 1e-5)
	}
	// Top-left corner maps to v=1.
	assert.Equal(t, mgl32.Vec2{0, 1}, m.Vertices[0].UV)
}

func TestFloorRotationFacesUp(t *testing.T) {
	n := NewNode("floor")
	n.SetRotation(mgl32.Vec3{-math.Pi / 2, 0, -math.Pi / 2})
	normal := n.GetWorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3()
	assert.True(t, normal.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5))
}

func TestTextureReady(t *testing.T) {
	tex := NewTexture("floor")
	assert.False(t, tex.Ready())
	assert.Equal(t, mgl32.Vec2{1, 1}, tex.Repeat)

	tex.SetPixels(1, 1, []byte{1, 2, 3, 4})
	assert.True(t, tex.Ready())
	assert.Equal(t, 1, tex.Version)

	var missing *Texture
	assert.False(t, missing.Ready())
}

func TestMaterialTextures(t *testing.T) {
	arm := NewTexture("arm")
	m := NewStandardMaterial("floor")
	m.AOMap, m.RoughnessMap, m.MetalnessMap = arm, arm, arm
	assert.Len(t, m.Textures(), 3)
	assert.Equal(t, float32(1), m.Opacity)
}

func TestLightShadowMatrixCentresTarget(t *testing.T) {
	l := NewDirectionalLight(core.ColorWhite, 1.8)
	l.Shadow.Left, l.Shadow.Bottom = -7, -7
	l.Shadow.Right, l.Shadow.Top = 7, 7
	l.Shadow.Far = 15

	pos := mgl32.Vec3{5, 5, 5}
	clip := l.ShadowMatrix(pos).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip[0], 1e-5)
	assert.InDelta(t, 0, clip[1], 1e-5)
	assert.True(t, clip[2] > -1 && clip[2] < 1)

	d := l.Direction(pos)
	assert.InDelta(t, 1, d.Len(), 1e-6)
}

func TestCameraProjection(t *testing.T) {
	c := NewPerspectiveCamera(75, 800.0/600.0, 0.1, 100)
	want := mgl32.Perspective(mgl32.DegToRad(75), 800.0/600.0, 0.1, 100)
	assert.True(t, c.ProjectionMatrix().ApproxEqual(want))

	c.Aspect = 2
	c.UpdateProjectionMatrix()
	assert.False(t, c.ProjectionMatrix().ApproxEqual(want))
}

func TestLookAtPointsNegativeZ(t *testing.T) {
	n := NewNode("cam")
	n.SetPosition(mgl32.Vec3{3, 3, 1})
	target := mgl32.Vec3{0, 1, 0}
	n.LookAt(target, mgl32.Vec3{0, 1, 0})

	forward := n.Transform.RotationMatrix().Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	want := target.Sub(n.Transform.Position).Normalize()
	assert.True(t, forward.ApproxEqualThreshold(want, 1e-4))
}

func newTestControls() (*Node, *OrbitControls) {
	cam := NewCameraNode("camera", NewPerspectiveCamera(75, 1, 0.1, 100))
	cam.SetPosition(mgl32.Vec3{3, 3, 1})
	c := NewOrbitControls(cam, mgl32.Vec3{0, 1, 0})
	c.EnableDamping = true
	return cam, c
}

func TestOrbitControlsIdleKeepsCamera(t *testing.T) {
	cam, c := newTestControls()
	for i := 0; i < 10; i++ {
		c.Update()
	}
	assert.True(t, cam.Transform.Position.ApproxEqualThreshold(mgl32.Vec3{3, 3, 1}, 1e-4))
	assert.True(t, c.Target().ApproxEqual(mgl32.Vec3{0, 1, 0}))
}

func TestOrbitControlsDampedRotationConverges(t *testing.T) {
	cam, c := newTestControls()
	start := cam.Transform.Position
	radius := start.Sub(c.Target()).Len()

	c.Rotate(0.5, 0)
	c.Update()
	first := cam.Transform.Position
	assert.False(t, first.ApproxEqualThreshold(start, 1e-5))

	for i := 0; i < 300; i++ {
		c.Update()
	}
	settled := cam.Transform.Position
	assert.Greater(t, settled.Sub(start).Len(), first.Sub(start).Len())
	assert.InDelta(t, radius, settled.Sub(c.Target()).Len(), 1e-3)
}

func TestOrbitControlsWithoutDampingJumps(t *testing.T) {
	cam, c := newTestControls()
	c.EnableDamping = false
	c.Zoom(0.5)
	c.Update()
	assert.InDelta(t, mgl32.Vec3{3, 2, 1}.Len()*0.5, cam.Transform.Position.Sub(c.Target()).Len(), 1e-4)
}

func TestOrbitControlsPanMovesTarget(t *testing.T) {
	_, c := newTestControls()
	c.EnableDamping = false
	c.Pan(0.1, 0)
	c.Update()
	assert.False(t, c.Target().ApproxEqual(mgl32.Vec3{0, 1, 0}))
}

type fakeInput struct {
	x, y   float64
	left   bool
	scroll core.ScrollCallback
}

func (f *fakeInput) GetCursorPos() (float64, float64) { return f.x, f.y }
func (f *fakeInput) IsMouseButtonPressed(b int) bool { return b == core.MouseLeft && f.left }
func (f *fakeInput) IsKeyPressed(int) bool { return false }
func (f *fakeInput) SetScrollCallback(cb core.ScrollCallback) { f.scroll = cb }

func TestOrbitControlsHandleInputDragRotates(t *testing.T) {
	cam, c := newTestControls()
	c.EnableDamping = false
	src := &fakeInput{}
	im := core.NewInputManager(src)
	im.Update()

	src.left = true
	src.x = 50
	im.Update()
	c.HandleInput(im, 600)
	c.Update()

	assert.False(t, cam.Transform.Position.ApproxEqualThreshold(mgl32.Vec3{3, 3, 1}, 1e-3))
	assert.True(t, c.Target().ApproxEqual(mgl32.Vec3{0, 1, 0}))
}

func TestClockIsMonotonic(t *testing.T) {
	c := NewClock()
	a := c.Elapsed()
	b := c.Elapsed()
	assert.GreaterOrEqual(t, b, a)
}

func TestFrustumIntersects(t *testing.T) {
	cam := NewPerspectiveCamera(90, 1, 0.1, 10)
	f := FrustumFromMatrix(cam.ProjectionMatrix())

	assert.True(t, f.Intersects(AABB{Min: mgl32.Vec3{-1, -1, -3}, Max: mgl32.Vec3{1, 1, -2}}))
	assert.False(t, f.Intersects(AABB{Min: mgl32.Vec3{-1, -1, 1}, Max: mgl32.Vec3{1, 1, 2}}))
	assert.False(t, f.Intersects(AABB{Min: mgl32.Vec3{-1, -1, -20}, Max: mgl32.Vec3{1, 1, -12}}))
	assert.False(t, f.Intersects(AABB{Min: mgl32.Vec3{50, -1, -3}, Max: mgl32.Vec3{52, 1, -2}}))
}

func TestWorldBounds(t *testing.T) {
	n := NewNode("plane")
	n.Mesh = CreatePlane(2, 2, 1)
	n.SetPosition(mgl32.Vec3{0, 1, 0})
	n.SetRotation(mgl32.Vec3{-math.Pi / 2, 0, 0})

	b := n.WorldBounds()
	assert.True(t, b.Min.ApproxEqualThreshold(mgl32.Vec3{-1, 1, -1}, 1e-5))
	assert.True(t, b.Max.ApproxEqualThreshold(mgl32.Vec3{1, 1, 1}, 1e-5))
}
