package app

import (
	"context"

	"desk-scene/loader"
	"desk-scene/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Slot holds one named model. It starts empty and is filled at most once.
type Slot struct {
	Name string
	node *scene.Node
}

func (s *Slot) Node() *scene.Node {
	return s.node
}

func (s *Slot) Loaded() bool {
	return s.node != nil
}

// fill stores n unless the slot is already loaded.
func (s *Slot) fill(n *scene.Node) bool {
	if s.node != nil || n == nil {
		return false
	}
	s.node = n
	return true
}

type placement struct {
	slot     *Slot
	path     string
	position mgl32.Vec3
	scale    float32
}

func (a *App) placements() []placement {
	return []placement{
		{slot: a.Burger, path: "models/burger.glb", position: mgl32.Vec3{0, 1.89, 0}, scale: 0.02},
		{slot: a.Desktop, path: "models/desktop.glb", position: mgl32.Vec3{0, 1, 0}, scale: 1},
		{slot: a.Plate, path: "models/plate.glb", position: mgl32.Vec3{0, 1.67, 0}, scale: 0.4},
		{slot: a.Phone, path: "models/phone.glb", position: mgl32.Vec3{0.5, 1.84, 1}, scale: 0.05},
	}
}

// loadModels issues the four loads. Completion order is not fixed.
func (a *App) loadModels(ctx context.Context) {
	for _, p := range a.placements() {
		a.models.Load(ctx, a.asset(p.path)).Then(func(res loader.Result) {
			a.onModelLoaded(p, res)
		})
	}
}

func (a *App) onModelLoaded(p placement, res loader.Result) {
	if res.Err != nil {
		a.log.Error("model unavailable", "model", p.slot.Name, "path", res.Path, "err", res.Err)
		return
	}
	if res.Node == nil {
		a.log.Error("model load returned no node", "model", p.slot.Name, "path", res.Path)
		return
	}
	if !p.slot.fill(res.Node) {
		a.log.Warn("model already loaded", "model", p.slot.Name)
		return
	}

	node := res.Node
	node.Name = p.slot.Name
	node.SetPosition(p.position)
	node.SetScale(p.scale)
	node.SetCastShadow(true)
	a.Scene.Add(node)

	if p.slot == a.Plate {
		a.Panel.Add("plate height", &node.Transform.Position[1], 1.2, 2.0, 0.001)
	}
	a.log.Info("model placed", "model", p.slot.Name, "position", p.position, "scale", p.scale)
}
