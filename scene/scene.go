package scene

import (
	"desk-scene/core"
)

// Scene is the root of everything that gets rendered. Entities are added
// as children of Root and never removed.
type Scene struct {
	Root       *Node
	Background core.Color
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Background: core.ColorBlack,
	}
}

// Add inserts node as a top-level child. Adding a node that is already a
// top-level child does nothing and reports false.
func (s *Scene) Add(node *Node) bool {
	if node == nil || s.Root.HasChild(node) {
		return false
	}
	s.Root.AddChild(node)
	return true
}

func (s *Scene) Children() []*Node {
	return s.Root.Children
}

// GetVisibleNodes returns all nodes with meshes that are visible. A hidden
// node hides its subtree.
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	var walk func(*Node)
	walk = func(node *Node) {
		if !node.Visible {
			return
		}
		if node.Mesh != nil {
			visible = append(visible, node)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(s.Root)
	return visible
}

// Lights returns every light attached to a visible node.
func (s *Scene) Lights() []*Node {
	var lights []*Node
	s.Root.Traverse(func(node *Node) {
		if node.Light != nil && node.Visible {
			lights = append(lights, node)
		}
	})
	return lights
}
