package loaders

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/math"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/instancing"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

var (
	ErrMissingDescriptor = errors.New("catalog has no descriptor for vertex type")
	ErrNoGeometry        = errors.New("document has no drawable primitive")
)

/**
 * @brief Imports glTF documents into mesh buffers. Every primitive becomes
 * one mesh buffer using the catalog's standard descriptor, or the tangent
 * descriptor when the primitive carries tangents.
 */
type GLTFLoader struct {
	catalog *descriptor.Catalog

	/** @brief Merge identical vertices and remap the indices. */
	Deduplicate bool
	/** @brief Hint applied to every imported buffer. */
	HardwareMappingHint metadata.HardwareMappingHint
}

func NewGLTFLoader(catalog *descriptor.Catalog) *GLTFLoader {
	return &GLTFLoader{
		catalog:             catalog,
		Deduplicate:         true,
		HardwareMappingHint: metadata.HardwareMappingStatic,
	}
}

// Load implements the asset manager loader contract.
func (l *GLTFLoader) Load(path string) (*metadata.Resource, error) {
	m, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return metadata.NewResource(metadata.ResourceTypeModel, path, m), nil
}

// Unload drops the hardware buffers of every mesh buffer in the resource.
func (l *GLTFLoader) Unload(r *metadata.Resource) error {
	m, ok := r.Data.(*mesh.Mesh)
	if !ok {
		return fmt.Errorf("resource %s does not hold a mesh", r.Name)
	}
	for _, mb := range m.MeshBuffers() {
		for slot := 0; slot < mb.VertexBufferCount(); slot++ {
			mb.VertexBuffer(slot).Release()
		}
		mb.IndexBuffer().Release()
	}
	r.Data = nil
	return nil
}

// ReadDocument parses a .gltf or .glb file. It does not touch the catalog and
// can run on any goroutine.
func ReadDocument(path string) (*gltf.Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %s: %w", path, err)
	}
	return doc, nil
}

func (l *GLTFLoader) LoadFile(path string) (*mesh.Mesh, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	m, err := l.LoadDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("import gltf %s: %w", path, err)
	}
	return m, nil
}

func (l *GLTFLoader) LoadDocument(doc *gltf.Document, name string) (*mesh.Mesh, error) {
	standard := l.catalog.GetByVertexType(metadata.VertexTypeStandard)
	tangents := l.catalog.GetByVertexType(metadata.VertexTypeTangents)
	if standard == nil || tangents == nil {
		return nil, ErrMissingDescriptor
	}

	materials := make([]*metadata.Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		materials[i] = convertMaterial(gm, i)
	}

	out := mesh.NewMesh(name)
	for _, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			mb, err := l.importPrimitive(doc, prim, standard, tangents)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, pi, err)
			}
			if mb == nil {
				continue
			}
			if prim.Material != nil && *prim.Material < len(materials) {
				mb.SetMaterial(materials[*prim.Material])
			}
			out.AddMeshBuffer(mb)
		}
	}
	if out.MeshBufferCount() == 0 {
		return nil, ErrNoGeometry
	}
	out.RecalculateBoundingBox()
	core.LogDebug("imported %s: %d mesh buffers", name, out.MeshBufferCount())
	return out, nil
}

type primitiveData struct {
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32
	colors    [][4]uint8
	tangents  [][4]float32
	indices   []uint32
}

func (l *GLTFLoader) importPrimitive(doc *gltf.Document, prim *gltf.Primitive, standard, tangents *descriptor.VertexDescriptor) (*mesh.MeshBuffer, error) {
	pt, ok := primitiveType(prim.Mode)
	if !ok {
		core.LogWarn("skipping glTF primitive with unsupported mode %d", prim.Mode)
		return nil, nil
	}
	data, err := readPrimitive(doc, prim)
	if err != nil {
		return nil, err
	}
	if data == nil {
		core.LogWarn("skipping glTF primitive without positions")
		return nil, nil
	}

	var (
		vb    buffer.VertexBuffer
		desc  *descriptor.VertexDescriptor
		remap []uint32
	)
	if len(data.tangents) > 0 {
		tvb := buffer.NewTypedVertexBuffer[buffer.VertexTangents](metadata.VertexTypeTangents)
		remap = fillVertices(tvb, len(data.positions), l.Deduplicate, func(i int) buffer.VertexTangents {
			v := data.vertex(i)
			t := data.tangents[min(i, len(data.tangents)-1)]
			tangent := mgl32.Vec3{t[0], t[1], t[2]}
			return buffer.VertexTangents{
				Pos: v.Pos, Normal: v.Normal, Color: v.Color, TCoords: v.TCoords,
				Tangent:  tangent,
				Binormal: v.Normal.Cross(tangent).Mul(t[3]),
			}
		})
		vb, desc = tvb, tangents
	} else {
		svb := buffer.NewTypedVertexBuffer[buffer.Vertex](metadata.VertexTypeStandard)
		remap = fillVertices(svb, len(data.positions), l.Deduplicate, data.vertex)
		vb, desc = svb, standard
	}

	indices := data.indices
	if indices == nil {
		indices = make([]uint32, len(data.positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for i, idx := range indices {
		if int(idx) < len(remap) {
			indices[i] = remap[idx]
		}
	}

	indexType := metadata.IndexType32Bit
	if vb.ElementCount() <= 0x10000 {
		indexType = metadata.IndexType16Bit
	}
	mb := mesh.NewWithVertexBuffer(desc, vb, indexType)
	mb.IndexBuffer().SetIndices(indices)
	mb.SetPrimitiveType(pt)
	mb.SetHardwareMappingHint(l.HardwareMappingHint, metadata.BufferTypeVertexAndIndex)
	mb.RecalculateBoundingBox()
	return mb, nil
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*primitiveData, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	var (
		data primitiveData
		err  error
	)
	if data.positions, err = modeler.ReadPosition(doc, doc.Accessors[posIdx], nil); err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if data.normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if data.uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("read texture coordinates: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		if data.colors, err = modeler.ReadColor(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("read colors: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		if data.tangents, err = modeler.ReadTangent(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("read tangents: %w", err)
		}
	}
	if prim.Indices != nil {
		if data.indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	}
	return &data, nil
}

// vertex assembles the standard vertex i. Missing channels default to a zero
// normal, white and zero texture coordinates.
func (d *primitiveData) vertex(i int) buffer.Vertex {
	v := buffer.Vertex{
		Pos:   d.positions[i],
		Color: math.ColorWhite,
	}
	if i < len(d.normals) {
		v.Normal = d.normals[i]
	}
	if i < len(d.uvs) {
		v.TCoords = d.uvs[i]
	}
	if i < len(d.colors) {
		v.Color = math.Color(d.colors[i])
	}
	return v
}

// fillVertices adds count vertices built by build and returns, for every
// source vertex, its index in vb.
func fillVertices[T comparable](vb *buffer.TypedVertexBuffer[T], count int, dedup bool, build func(i int) T) []uint32 {
	vb.Reallocate(count)
	remap := make([]uint32, count)
	for i := 0; i < count; i++ {
		v := build(i)
		if dedup {
			if found := vb.LinearReverseSearch(v); found >= 0 {
				remap[i] = uint32(found)
				continue
			}
		}
		remap[i] = uint32(vb.ElementCount())
		vb.Add(v)
	}
	return remap
}

func primitiveType(mode gltf.PrimitiveMode) (metadata.PrimitiveType, bool) {
	switch mode {
	case gltf.PrimitiveTriangles:
		return metadata.PrimitiveTriangles, true
	case gltf.PrimitiveTriangleStrip:
		return metadata.PrimitiveTriangleStrip, true
	case gltf.PrimitiveTriangleFan:
		return metadata.PrimitiveTriangleFan, true
	case gltf.PrimitiveLines:
		return metadata.PrimitiveLines, true
	case gltf.PrimitiveLineStrip:
		return metadata.PrimitiveLineStrip, true
	case gltf.PrimitiveLineLoop:
		return metadata.PrimitiveLineLoop, true
	case gltf.PrimitivePoints:
		return metadata.PrimitivePoints, true
	}
	return 0, false
}

func convertMaterial(gm *gltf.Material, index int) *metadata.Material {
	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("material_%d", index)
	}
	m := metadata.NewMaterial(name, "")
	color := mgl32.Vec4{1, 1, 1, 1}
	if pbr := gm.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		f := pbr.BaseColorFactor
		color = mgl32.Vec4{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
	}
	m.SetParam(instancing.ParamColor, color)
	m.SetParam(instancing.ParamUVTransform, mgl32.Vec4{1, 1, 0, 0})
	return m
}
