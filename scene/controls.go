package scene

import (
	"math"

	"desk-scene/core"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	minPolar = 1e-6
	maxPolar = math.Pi - 1e-6

	springFPS       = 60
	springFrequency = 6.0
	springDamping   = 1.0
)

// dampedValue follows a goal through a critically damped spring.
type dampedValue struct {
	pos, vel, goal float64
	spring         harmonica.Spring
}

func newDampedValue(v float64) dampedValue {
	return dampedValue{
		pos:    v,
		goal:   v,
		spring: harmonica.NewSpring(harmonica.FPS(springFPS), springFrequency, springDamping),
	}
}

func (d *dampedValue) update(damping bool) {
	if !damping {
		d.pos, d.vel = d.goal, 0
		return
	}
	d.pos, d.vel = d.spring.Update(d.pos, d.vel, d.goal)
}

// OrbitControls orbits a camera node around a target point. Input moves
// goal values; Update eases the camera towards them when damping is on.
type OrbitControls struct {
	Camera        *Node
	EnableDamping bool

	RotateSpeed float64
	PanSpeed    float64
	ZoomSpeed   float64
	MinDistance float64
	MaxDistance float64

	radius, azimuth, polar dampedValue
	target                 [3]dampedValue
}

func NewOrbitControls(camera *Node, target mgl32.Vec3) *OrbitControls {
	c := &OrbitControls{
		Camera:      camera,
		RotateSpeed: 1,
		PanSpeed:    1,
		ZoomSpeed:   1,
		MinDistance: 0.01,
		MaxDistance: math.Inf(1),
	}
	c.SetTarget(target)
	return c
}

// SetTarget moves the orbit centre without moving the camera.
func (c *OrbitControls) SetTarget(target mgl32.Vec3) {
	for i := range c.target {
		c.target[i] = newDampedValue(float64(target[i]))
	}
	offset := c.Camera.Transform.Position.Sub(target)
	r := float64(offset.Len())
	var az, pol float64
	if r > 0 {
		az = math.Atan2(float64(offset[0]), float64(offset[2]))
		pol = math.Acos(float64(mgl32.Clamp(offset[1]/float32(r), -1, 1)))
	}
	c.radius = newDampedValue(r)
	c.azimuth = newDampedValue(az)
	c.polar = newDampedValue(pol)
	c.apply()
}

func (c *OrbitControls) Target() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.target[0].pos), float32(c.target[1].pos), float32(c.target[2].pos)}
}

// Rotate turns the camera around the target, angles in radians.
func (c *OrbitControls) Rotate(azimuth, polar float64) {
	c.azimuth.goal += azimuth * c.RotateSpeed
	c.polar.goal = clamp(c.polar.goal+polar*c.RotateSpeed, minPolar, maxPolar)
}

// Pan slides camera and target along the camera's right and up axes.
func (c *OrbitControls) Pan(dx, dy float64) {
	rot := c.Camera.Transform.RotationMatrix()
	right := rot.Col(0).Vec3()
	up := rot.Col(1).Vec3()
	scale := c.radius.goal * c.PanSpeed
	offset := right.Mul(float32(-dx * scale)).Add(up.Mul(float32(dy * scale)))
	for i := range c.target {
		c.target[i].goal += float64(offset[i])
	}
}

// Zoom multiplies the orbit distance by factor.
func (c *OrbitControls) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.radius.goal = clamp(c.radius.goal*factor, c.MinDistance, c.MaxDistance)
}

// HandleInput maps mouse input to orbit actions: left drag rotates, right
// drag or shift+left drag pans, scroll zooms. height is the viewport height
// in screen coordinates.
func (c *OrbitControls) HandleInput(im *core.InputManager, height int) {
	if height <= 0 {
		return
	}
	h := float64(height)
	dx, dy := im.MouseDeltaX, im.MouseDeltaY

	if im.ScrollDelta != 0 {
		c.Zoom(math.Pow(0.95, im.ScrollDelta*c.ZoomSpeed))
	}
	if dx == 0 && dy == 0 {
		return
	}

	left := im.IsMouseDown(core.MouseLeft)
	switch {
	case im.IsMouseDown(core.MouseRight), left && im.ShiftDown:
		c.Pan(dx/h, dy/h)
	case left:
		c.Rotate(-2*math.Pi*dx/h, -2*math.Pi*dy/h)
	}
}

// Update advances the springs and places the camera. Call once per frame.
func (c *OrbitControls) Update() {
	c.radius.update(c.EnableDamping)
	c.azimuth.update(c.EnableDamping)
	c.polar.update(c.EnableDamping)
	for i := range c.target {
		c.target[i].update(c.EnableDamping)
	}
	c.apply()
}

func (c *OrbitControls) apply() {
	r := c.radius.pos
	pol := clamp(c.polar.pos, minPolar, maxPolar)
	az := c.azimuth.pos
	offset := mgl32.Vec3{
		float32(r * math.Sin(pol) * math.Sin(az)),
		float32(r * math.Cos(pol)),
		float32(r * math.Sin(pol) * math.Cos(az)),
	}
	target := c.Target()
	c.Camera.Transform.Position = target.Add(offset)
	c.Camera.LookAt(target, mgl32.Vec3{0, 1, 0})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
