package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/draco-go/gltf/draco"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadGeometry() *dracoGeometry {
	return &dracoGeometry{
		Indices: []uint32{0, 1, 2, 0, 2, 3},
		Attributes: map[string]any{
			gltf.POSITION:   []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
			gltf.NORMAL:     [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
			gltf.TEXCOORD_0: [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		},
	}
}

func TestMeshFromDraco(t *testing.T) {
	m, err := meshFromDraco(quadGeometry())
	require.NoError(t, err)
	require.Len(t, m.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)

	v := m.Vertices[2]
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, v.Position)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, v.Normal)
	assert.Equal(t, mgl32.Vec2{1, 1}, v.UV)
	assert.InDelta(t, 1, v.Tangent.X(), 1e-5)
	assert.InDelta(t, 1, v.Bitangent.Y(), 1e-5)
}

func TestMeshFromDracoRejectsBadData(t *testing.T) {
	_, err := meshFromDraco(&dracoGeometry{Attributes: map[string]any{}})
	assert.ErrorIs(t, err, ErrNoGeometry)

	_, err = meshFromDraco(&dracoGeometry{Attributes: map[string]any{
		gltf.POSITION: []float32{0, 0, 0, 1},
	}})
	assert.Error(t, err)

	_, err = meshFromDraco(&dracoGeometry{Attributes: map[string]any{
		gltf.POSITION: []int32{0, 0, 0},
	}})
	assert.Error(t, err)

	geo := quadGeometry()
	geo.Indices = []uint32{0, 1, 9}
	_, err = meshFromDraco(geo)
	assert.Error(t, err)
}

func TestDracoDecoderLoadsCompressedModel(t *testing.T) {
	path := writeTriangleGLB(t, DracoExtension)
	d := NewDispatcher()

	dec, err := NewDracoDecoder(t.TempDir())
	require.NoError(t, err)
	var seen *draco.PrimitiveExt
	dec.decode = func(doc *gltf.Document, prim *gltf.Primitive, ext *draco.PrimitiveExt) (*dracoGeometry, error) {
		seen = ext
		return quadGeometry(), nil
	}

	l, err := NewModelLoader(dec, d, discardLogger())
	require.NoError(t, err)
	res := waitResult(t, d, l.Load(context.Background(), path))
	require.NoError(t, res.Err)

	require.NotNil(t, seen)
	assert.EqualValues(t, 0, seen.BufferView)
	leaf := res.Node.Find("leaf")
	require.NotNil(t, leaf)
	assert.Equal(t, "tri_p0", leaf.Mesh.Name)
	assert.Len(t, leaf.Mesh.Vertices, 4)
	assert.Len(t, leaf.Mesh.Indices, 6)
}

func TestDracoDecoderWrapsDecodeFailure(t *testing.T) {
	dec, err := NewDracoDecoder(t.TempDir())
	require.NoError(t, err)
	dec.decode = func(*gltf.Document, *gltf.Primitive, *draco.PrimitiveExt) (*dracoGeometry, error) {
		return nil, errors.New("corrupt bitstream")
	}

	prim := &gltf.Primitive{Extensions: gltf.Extensions{DracoExtension: &draco.PrimitiveExt{}}}
	_, err = dec.DecodePrimitive(gltf.NewDocument(), prim)
	assert.ErrorIs(t, err, ErrCompressedGeometry)
	assert.ErrorContains(t, err, "corrupt bitstream")

	_, err = dec.DecodePrimitive(gltf.NewDocument(), &gltf.Primitive{})
	assert.Error(t, err)
}
