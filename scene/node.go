package scene

import (
	"desk-scene/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Node represents an object in the scene graph
type Node struct {
	Name      string
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Visible   bool
	ID        uuid.UUID

	// Attachments. Any combination may be nil.
	Mesh   *Mesh
	Light  *Light
	Camera *Camera

	CastShadow    bool
	ReceiveShadow bool
}

func NewNode(name string) *Node {
	return &Node{
		Name:      name,
		Transform: core.NewTransform(),
		Children:  make([]*Node, 0),
		Visible:   true,
		ID:        uuid.New(),
	}
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// HasChild reports whether child is a direct child of n.
func (n *Node) HasChild(child *Node) bool {
	for _, c := range n.Children {
		if c == child {
			return true
		}
	}
	return false
}

// GetWorldMatrix composes the local matrices up to the root. Transforms are
// mutated directly by the frame loop and controls, so nothing is cached.
func (n *Node) GetWorldMatrix() mgl32.Mat4 {
	local := n.Transform.GetMatrix()
	if n.Parent != nil {
		return n.Parent.GetWorldMatrix().Mul4(local)
	}
	return local
}

func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.GetWorldMatrix().Col(3).Vec3()
}

func (n *Node) SetPosition(pos mgl32.Vec3) {
	n.Transform.Position = pos
}

func (n *Node) SetRotation(euler mgl32.Vec3) {
	n.Transform.Rotation = euler
}

func (n *Node) SetScale(s float32) {
	n.Transform.SetUniformScale(s)
}

// LookAt orients the node so its local -Z axis points at target.
func (n *Node) LookAt(target, up mgl32.Vec3) {
	eye := n.Transform.Position
	if eye.Sub(target).Len() < 1e-6 {
		return
	}
	view := mgl32.LookAtV(eye, target, up)
	n.Transform.Rotation = core.EulerFromMatrix(view.Inv())
}

// Traverse visits all nodes in the graph
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// SetCastShadow flags every mesh node in the subtree as a shadow caster.
func (n *Node) SetCastShadow(cast bool) {
	n.Traverse(func(node *Node) {
		if node.Mesh != nil {
			node.CastShadow = cast
		}
	})
}
