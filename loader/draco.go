package loader

import (
	"errors"
	"fmt"
	"os"

	"desk-scene/scene"

	"github.com/qmuntal/draco-go/gltf/draco"
	"github.com/qmuntal/gltf"
)

// DracoExtension marks a primitive whose geometry is Draco-compressed.
// Importing gltf/draco registers it, so gltf.Open decodes the extension
// into a *draco.PrimitiveExt.
const DracoExtension = draco.ExtensionName

var (
	// ErrCompressedGeometry is returned for compressed primitives the
	// configured decoder cannot expand.
	ErrCompressedGeometry = errors.New("compressed geometry could not be decoded")
	ErrNoDecoder          = errors.New("no geometry decoder configured")
)

// GeometryDecoder expands compressed primitives into meshes.
type GeometryDecoder interface {
	DecodePrimitive(doc *gltf.Document, prim *gltf.Primitive) (*scene.Mesh, error)
}

// dracoGeometry is a decoded Draco payload: the face indices and the raw
// attribute data keyed by glTF semantic.
type dracoGeometry struct {
	Indices    []uint32
	Attributes map[string]any
}

type dracoDecodeFunc func(doc *gltf.Document, prim *gltf.Primitive, ext *draco.PrimitiveExt) (*dracoGeometry, error)

// DracoDecoder expands KHR_draco_mesh_compression primitives. Path is the
// configured decoder support directory.
type DracoDecoder struct {
	Path string

	decode dracoDecodeFunc
}

// NewDracoDecoder checks that the support directory exists.
func NewDracoDecoder(path string) (*DracoDecoder, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("draco decoder path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("draco decoder path %s: not a directory", path)
	}
	return &DracoDecoder{Path: path, decode: decodeDraco}, nil
}

func (d *DracoDecoder) DecodePrimitive(doc *gltf.Document, prim *gltf.Primitive) (*scene.Mesh, error) {
	raw, ok := prim.Extensions[DracoExtension]
	if !ok {
		return nil, fmt.Errorf("primitive has no %s extension", DracoExtension)
	}
	ext, ok := raw.(*draco.PrimitiveExt)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected %s payload %T", ErrCompressedGeometry, DracoExtension, raw)
	}
	decode := d.decode
	if decode == nil {
		decode = decodeDraco
	}
	geo, err := decode(doc, prim, ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressedGeometry, err)
	}
	m, err := meshFromDraco(geo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressedGeometry, err)
	}
	return m, nil
}

// decodeDraco reads the compressed buffer view and pulls out the
// attributes the renderer uses.
func decodeDraco(doc *gltf.Document, prim *gltf.Primitive, ext *draco.PrimitiveExt) (*dracoGeometry, error) {
	if int(ext.BufferView) >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", ext.BufferView)
	}
	pd, err := draco.UnmarshalMesh(doc, doc.BufferViews[ext.BufferView])
	if err != nil {
		return nil, err
	}

	geo := &dracoGeometry{Attributes: make(map[string]any)}
	if geo.Indices, err = pd.ReadIndices(nil); err != nil {
		return nil, fmt.Errorf("indices: %w", err)
	}
	for _, name := range []string{gltf.POSITION, gltf.NORMAL, gltf.TEXCOORD_0} {
		if _, ok := ext.Attributes[name]; !ok {
			continue
		}
		data, err := pd.ReadAttr(prim, name, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		geo.Attributes[name] = data
	}
	return geo, nil
}

func meshFromDraco(geo *dracoGeometry) (*scene.Mesh, error) {
	data, ok := geo.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("%w: no POSITION attribute", ErrNoGeometry)
	}
	positions, err := vec3Attr(data)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if data, ok := geo.Attributes[gltf.NORMAL]; ok {
		if normals, err = vec3Attr(data); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}
	if data, ok := geo.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = vec2Attr(data); err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
	}
	for _, i := range geo.Indices {
		if int(i) >= len(positions) {
			return nil, fmt.Errorf("index %d out of range for %d vertices", i, len(positions))
		}
	}
	return assembleMesh("", positions, normals, uvs, geo.Indices), nil
}

// vec3Attr accepts tuple or flat float32 attribute data.
func vec3Attr(data any) ([][3]float32, error) {
	switch v := data.(type) {
	case [][3]float32:
		return v, nil
	case []float32:
		if len(v)%3 != 0 {
			return nil, fmt.Errorf("%d floats is not a multiple of 3", len(v))
		}
		out := make([][3]float32, len(v)/3)
		for i := range out {
			out[i] = [3]float32{v[3*i], v[3*i+1], v[3*i+2]}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported attribute data %T", data)
}

func vec2Attr(data any) ([][2]float32, error) {
	switch v := data.(type) {
	case [][2]float32:
		return v, nil
	case []float32:
		if len(v)%2 != 0 {
			return nil, fmt.Errorf("%d floats is not a multiple of 2", len(v))
		}
		out := make([][2]float32, len(v)/2)
		for i := range out {
			out[i] = [2]float32{v[2*i], v[2*i+1]}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported attribute data %T", data)
}

func isCompressed(prim *gltf.Primitive) bool {
	_, ok := prim.Extensions[DracoExtension]
	return ok
}
