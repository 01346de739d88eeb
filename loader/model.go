package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"desk-scene/core"
	"desk-scene/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var ErrNoGeometry = errors.New("model has no geometry")

// ModelLoader loads .glb/.gltf files in the background. Results are
// delivered on the dispatcher's goroutine.
type ModelLoader struct {
	decoder  GeometryDecoder
	dispatch *Dispatcher
	log      *slog.Logger
}

func NewModelLoader(decoder GeometryDecoder, dispatch *Dispatcher, log *slog.Logger) (*ModelLoader, error) {
	if decoder == nil {
		return nil, ErrNoDecoder
	}
	return &ModelLoader{
		decoder:  decoder,
		dispatch: dispatch,
		log:      log.With("component", "models"),
	}, nil
}

// Load starts decoding path and returns a future for the result. The load
// is abandoned if ctx is done before decoding starts.
func (l *ModelLoader) Load(ctx context.Context, path string) *Future {
	f := NewFuture()
	go func() {
		var res Result
		if err := ctx.Err(); err != nil {
			res = Result{Path: path, Err: err}
		} else {
			node, err := l.decode(path)
			res = Result{Path: path, Node: node, Err: err}
		}
		l.dispatch.Post(func() {
			if res.Err != nil {
				l.log.Error("model load failed", "path", path, "err", res.Err)
			} else {
				l.log.Info("model loaded", "path", path)
			}
			f.Resolve(res)
		})
	}()
	return f
}

func (l *ModelLoader) decode(path string) (*scene.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	node, err := buildModel(doc, filepath.Dir(path), l.decoder, l.log)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}
	node.Name = filepath.Base(path)
	return node, nil
}

// buildModel converts a glTF document into a group node whose children
// are the default scene's roots.
func buildModel(doc *gltf.Document, dir string, decoder GeometryDecoder, log *slog.Logger) (*scene.Node, error) {
	textures := loadTextures(doc, dir, log)
	materials := make([]*scene.Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		materials[i] = convertMaterial(gm, textures)
	}

	meshes := make([][]*scene.Mesh, len(doc.Meshes))
	count := 0
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadPrimitive(doc, gm.Name, pi, prim, decoder)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			if prim.Material != nil && *prim.Material < len(materials) {
				m.Material = materials[*prim.Material]
			}
			meshes[mi] = append(meshes[mi], m)
			count++
		}
	}
	if count == 0 {
		return nil, ErrNoGeometry
	}

	nodes := make([]*scene.Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := scene.NewNode(name)
		n.Transform = nodeTransform(gn)

		if gn.Mesh != nil && *gn.Mesh < len(meshes) {
			prims := meshes[*gn.Mesh]
			if len(prims) == 1 {
				n.Mesh = prims[0]
			} else {
				for pi, p := range prims {
					child := scene.NewNode(fmt.Sprintf("%s_prim%d", name, pi))
					child.Mesh = p
					n.AddChild(child)
				}
			}
		}
		nodes[i] = n
	}

	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(nodes) {
				nodes[i].AddChild(nodes[c])
			}
		}
	}

	group := scene.NewNode("model")
	for _, root := range rootNodes(doc) {
		if root < len(nodes) {
			group.AddChild(nodes[root])
		}
	}
	return group, nil
}

func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func nodeTransform(gn *gltf.Node) core.Transform {
	t := core.NewTransform()
	m := gn.MatrixOrDefault()
	if m != gltf.DefaultMatrix {
		var mat mgl32.Mat4
		for i := range m {
			mat[i] = float32(m[i])
		}
		sx := mat.Col(0).Vec3().Len()
		sy := mat.Col(1).Vec3().Len()
		sz := mat.Col(2).Vec3().Len()
		t.Position = mat.Col(3).Vec3()
		t.Scale = mgl32.Vec3{sx, sy, sz}
		if sx != 0 && sy != 0 && sz != 0 {
			rot := mgl32.Mat4FromCols(
				mat.Col(0).Mul(1/sx),
				mat.Col(1).Mul(1/sy),
				mat.Col(2).Mul(1/sz),
				mgl32.Vec4{0, 0, 0, 1},
			)
			t.Rotation = core.EulerFromMatrix(rot)
		}
		return t
	}

	p := gn.TranslationOrDefault()
	t.Position = mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
	s := gn.ScaleOrDefault()
	t.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	r := gn.RotationOrDefault() // x, y, z, w
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	t.Rotation = core.EulerFromMatrix(q.Normalize().Mat4())
	return t
}

func loadPrimitive(doc *gltf.Document, meshName string, index int, prim *gltf.Primitive, decoder GeometryDecoder) (*scene.Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, index)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", index)
	}

	if isCompressed(prim) {
		m, err := decoder.DecodePrimitive(doc, prim)
		if err != nil {
			return nil, err
		}
		m.Name = name
		return m, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("%w: no POSITION attribute", ErrNoGeometry)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	return assembleMesh(name, positions, normals, uvs, indices), nil
}

// assembleMesh interleaves per-vertex attributes into a mesh with
// tangents. Missing normals default to +Y.
func assembleMesh(name string, positions, normals [][3]float32, uvs [][2]float32, indices []uint32) *scene.Mesh {
	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Normal:   mgl32.Vec3{0, 1, 0},
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		verts[i] = v
	}
	m := scene.NewMesh(name, verts, indices)
	scene.ComputeTangents(m)
	return m
}

func convertMaterial(gm *gltf.Material, textures []*scene.Texture) *scene.Material {
	mat := scene.NewStandardMaterial(gm.Name)
	tex := func(idx int) *scene.Texture {
		if idx >= 0 && idx < len(textures) {
			return textures[idx]
		}
		return nil
	}

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.Color = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
		mat.Opacity = float32(cf[3])
		mat.Metalness = float32(pbr.MetallicFactorOrDefault())
		mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
		if pbr.BaseColorTexture != nil {
			if t := tex(pbr.BaseColorTexture.Index); t != nil {
				t.ColorSpace = scene.SRGBColorSpace
				mat.Map = t
			}
		}
		if pbr.MetallicRoughnessTexture != nil {
			t := tex(pbr.MetallicRoughnessTexture.Index)
			mat.RoughnessMap = t
			mat.MetalnessMap = t
		}
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		mat.NormalMap = tex(*gm.NormalTexture.Index)
	}
	if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
		mat.AOMap = tex(*gm.OcclusionTexture.Index)
		if gm.OcclusionTexture.Strength != nil {
			mat.AOMapIntensity = float32(*gm.OcclusionTexture.Strength)
		}
	}
	mat.Transparent = gm.AlphaMode == gltf.AlphaBlend
	mat.DoubleSided = gm.DoubleSided
	return mat
}

// loadTextures decodes every texture in the document. Images that fail to
// decode are logged and left blank.
func loadTextures(doc *gltf.Document, dir string, log *slog.Logger) []*scene.Texture {
	out := make([]*scene.Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		t := scene.NewTexture(fmt.Sprintf("gltf_tex_%d", i))
		t.WrapS, t.WrapT = scene.RepeatWrapping, scene.RepeatWrapping
		if gt.Sampler != nil && *gt.Sampler < len(doc.Samplers) {
			s := doc.Samplers[*gt.Sampler]
			t.WrapS = convertWrap(s.WrapS)
			t.WrapT = convertWrap(s.WrapT)
		}
		out[i] = t
		if gt.Source == nil || *gt.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*gt.Source]
		if img.Name != "" {
			t.Name = img.Name
		}

		var w, h int
		var pix []byte
		var err error
		switch {
		case img.BufferView != nil:
			var raw []byte
			raw, err = modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err == nil {
				w, h, pix, err = decodeImageBytes(raw)
			}
		case img.IsEmbeddedResource():
			var raw []byte
			raw, err = img.MarshalData()
			if err == nil {
				w, h, pix, err = decodeImageBytes(raw)
			}
		case img.URI != "":
			w, h, pix, err = decodeImageFile(filepath.Join(dir, img.URI))
		}
		if err != nil {
			log.Warn("gltf image skipped", "image", *gt.Source, "err", err)
			continue
		}
		if pix != nil {
			t.SetPixels(w, h, pix)
		}
	}
	return out
}

func convertWrap(w gltf.WrappingMode) scene.Wrapping {
	switch w {
	case gltf.WrapClampToEdge:
		return scene.ClampToEdgeWrapping
	case gltf.WrapMirroredRepeat:
		return scene.MirroredRepeatWrapping
	default:
		return scene.RepeatWrapping
	}
}
