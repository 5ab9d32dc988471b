package instancing

import (
	"fmt"

	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// Buffer slots of an instanced descriptor.
const (
	InstanceSlot  = 1
	TransformSlot = 2
)

/**
 * @brief Turns mesh buffers using one base descriptor into instanced ones by
 * swapping in an extended descriptor and binding two per-instance buffers,
 * and fills those buffers from entity state every frame.
 */
type ShaderInstancing struct {
	catalog *descriptor.Catalog
	variant Variant

	base      *descriptor.VertexDescriptor
	baseGen   uint32
	instanced *descriptor.VertexDescriptor
	lighting  *descriptor.VertexDescriptor
}

// New creates the instancing support for meshes using the catalog's
// descriptor of baseType.
func New(catalog *descriptor.Catalog, variant Variant, baseType metadata.VertexType) (*ShaderInstancing, error) {
	base := catalog.GetByVertexType(baseType)
	if base == nil {
		return nil, fmt.Errorf("instancing %s: no descriptor for vertex type %s", variant.Name(), baseType)
	}
	return &ShaderInstancing{
		catalog: catalog,
		variant: variant,
		base:    base,
		baseGen: base.Generation(),
	}, nil
}

func (s *ShaderInstancing) Variant() Variant {
	return s.variant
}

func (s *ShaderInstancing) BaseDescriptor() *descriptor.VertexDescriptor {
	return s.base
}

// InstancedDescriptor is nil until SetupDescriptorForMesh ran.
func (s *ShaderInstancing) InstancedDescriptor() *descriptor.VertexDescriptor {
	return s.instanced
}

// LightingDescriptor is nil until SetupDescriptorForRenderLighting ran.
func (s *ShaderInstancing) LightingDescriptor() *descriptor.VertexDescriptor {
	return s.lighting
}

// SetupDescriptorForMesh returns the extended descriptor of the variant,
// building it in the catalog the first time: base attributes in slot 0, the
// variant payload in slot 1, world matrix and lighting color in slot 2.
func (s *ShaderInstancing) SetupDescriptorForMesh() *descriptor.VertexDescriptor {
	if s.instanced != nil {
		return s.instanced
	}
	name := fmt.Sprintf("%s_%s_instancing", s.base.Name(), s.variant.Name())
	d, created := s.catalog.Add(name)
	if created {
		s.buildMesh(d)
		core.LogDebug("vertex descriptor %s created (%d/%d/%d bytes)", name, d.VertexSize(0), d.VertexSize(InstanceSlot), d.VertexSize(TransformSlot))
	}
	s.instanced = d
	return d
}

func (s *ShaderInstancing) buildMesh(d *descriptor.VertexDescriptor) {
	d.CopyAttributes(s.base)
	s.variant.AddInstanceAttributes(d, InstanceSlot)
	addWorldAttributes(d)
	d.AddAttribute("inLightingColor", 4, metadata.SemanticCustom, metadata.ElementFloat, TransformSlot)
	markInstanceSlots(d)
}

// SetupDescriptorForRenderLighting returns the descriptor called name,
// building it the first time: base attributes in slot 0, four spherical
// harmonics terms in slot 1 and the world matrix in slot 2. An empty name
// picks one derived from the base descriptor.
func (s *ShaderInstancing) SetupDescriptorForRenderLighting(name string) *descriptor.VertexDescriptor {
	if name == "" {
		name = s.base.Name() + "_lighting_instancing"
	}
	d, created := s.catalog.Add(name)
	if created {
		buildLighting(d, s.base)
		core.LogDebug("vertex descriptor %s created (%d/%d/%d bytes)", name, d.VertexSize(0), d.VertexSize(InstanceSlot), d.VertexSize(TransformSlot))
	}
	s.lighting = d
	return d
}

func buildLighting(d, base *descriptor.VertexDescriptor) {
	d.CopyAttributes(base)
	d.AddAttribute("inSH0", 3, metadata.SemanticLightProbe, metadata.ElementFloat, InstanceSlot)
	for i := 1; i < 4; i++ {
		d.AddAttribute(fmt.Sprintf("inSH%d", i), 3, metadata.SemanticCustom, metadata.ElementFloat, InstanceSlot)
	}
	addWorldAttributes(d)
	markInstanceSlots(d)
}

// Rebuild refreshes the instanced and lighting descriptors in place when the
// base descriptor was rebuilt since they were derived from it. It reports
// whether anything changed. Mesh buffers using them must re-check their
// compatibility afterwards.
func (s *ShaderInstancing) Rebuild() bool {
	if s.base.Generation() == s.baseGen {
		return false
	}
	s.baseGen = s.base.Generation()
	if s.instanced != nil {
		s.instanced.ClearAttribute()
		s.buildMesh(s.instanced)
		core.LogInfo("vertex descriptor %s rebuilt from %s", s.instanced.Name(), s.base.Name())
	}
	if s.lighting != nil {
		s.lighting.ClearAttribute()
		buildLighting(s.lighting, s.base)
		core.LogInfo("vertex descriptor %s rebuilt from %s", s.lighting.Name(), s.base.Name())
	}
	return true
}

func addWorldAttributes(d *descriptor.VertexDescriptor) {
	for i := 0; i < 4; i++ {
		d.AddAttribute(fmt.Sprintf("inWorld%d", i), 4, metadata.SemanticCustom, metadata.ElementFloat, TransformSlot)
	}
}

func markInstanceSlots(d *descriptor.VertexDescriptor) {
	for _, slot := range []uint32{InstanceSlot, TransformSlot} {
		d.SetInstanceDataStepRate(metadata.StepPerInstance, slot)
		d.SetVertexType(slot, metadata.VertexTypeCustom)
	}
}

// IsSupport reports whether mb uses the base descriptor or one of the
// instanced descriptors built from it.
func (s *ShaderInstancing) IsSupport(mb *mesh.MeshBuffer) bool {
	if mb == nil {
		return false
	}
	return s.isKnown(mb.VertexDescriptor())
}

// IsSupportMesh requires every mesh buffer of m to be supported.
func (s *ShaderInstancing) IsSupportMesh(m *mesh.Mesh) bool {
	if m == nil || m.MeshBufferCount() == 0 {
		return false
	}
	for _, mb := range m.MeshBuffers() {
		if !s.IsSupport(mb) {
			return false
		}
	}
	return true
}

func (s *ShaderInstancing) isKnown(d *descriptor.VertexDescriptor) bool {
	return d != nil && (d == s.base || d == s.instanced || d == s.lighting)
}

func (s *ShaderInstancing) isInstanced(d *descriptor.VertexDescriptor) bool {
	return d != nil && (d == s.instanced || d == s.lighting)
}

// ApplyInstancing binds the variant buffers and switches mb to the variant
// descriptor. It returns false, leaving mb untouched, when mb uses a layout
// this instancing does not know.
func (s *ShaderInstancing) ApplyInstancing(mb *mesh.MeshBuffer, instanceBuffer, transformBuffer buffer.VertexBuffer) bool {
	return s.apply(mb, s.SetupDescriptorForMesh(), instanceBuffer, transformBuffer)
}

// ApplyInstancingForRenderLighting binds a lighting and a world transform
// buffer and switches mb to the lighting descriptor, building the default
// one when none was set up.
func (s *ShaderInstancing) ApplyInstancingForRenderLighting(mb *mesh.MeshBuffer, lightingBuffer, transformBuffer buffer.VertexBuffer) bool {
	d := s.lighting
	if d == nil {
		d = s.SetupDescriptorForRenderLighting("")
	}
	return s.apply(mb, d, lightingBuffer, transformBuffer)
}

func (s *ShaderInstancing) apply(mb *mesh.MeshBuffer, d *descriptor.VertexDescriptor, instanceBuffer, transformBuffer buffer.VertexBuffer) bool {
	if !s.IsSupport(mb) || instanceBuffer == nil || transformBuffer == nil {
		return false
	}
	if mb.VertexBufferCount() < 1 {
		return false
	}
	for mb.VertexBufferCount() > TransformSlot+1 {
		mb.RemoveVertexBuffer(mb.VertexBufferCount() - 1)
	}
	mb.SetVertexBuffer(instanceBuffer, InstanceSlot)
	mb.SetVertexBuffer(transformBuffer, TransformSlot)
	mb.SetVertexDescriptor(d)

	if !mb.VertexBufferCompatible() {
		core.LogWarn("instancing %s: buffers do not match descriptor %s", s.variant.Name(), d.Name())
	}
	return mb.VertexBufferCompatible()
}

// ApplyInstancingMesh applies the same instance buffers to every mesh buffer
// of m.
func (s *ShaderInstancing) ApplyInstancingMesh(m *mesh.Mesh, instanceBuffer, transformBuffer buffer.VertexBuffer) bool {
	if !s.IsSupportMesh(m) {
		return false
	}
	ok := true
	for _, mb := range m.MeshBuffers() {
		ok = s.ApplyInstancing(mb, instanceBuffer, transformBuffer) && ok
	}
	return ok
}

func (s *ShaderInstancing) ApplyInstancingMeshForRenderLighting(m *mesh.Mesh, lightingBuffer, transformBuffer buffer.VertexBuffer) bool {
	if !s.IsSupportMesh(m) {
		return false
	}
	ok := true
	for _, mb := range m.MeshBuffers() {
		ok = s.ApplyInstancingForRenderLighting(mb, lightingBuffer, transformBuffer) && ok
	}
	return ok
}

// RemoveInstancing restores the base descriptor and detaches the instance
// slots. Calling it on a buffer that is not instanced does nothing.
func (s *ShaderInstancing) RemoveInstancing(mb *mesh.MeshBuffer) {
	if mb == nil || !s.isInstanced(mb.VertexDescriptor()) {
		return
	}
	for mb.VertexBufferCount() > InstanceSlot {
		mb.RemoveVertexBuffer(mb.VertexBufferCount() - 1)
	}
	mb.SetVertexDescriptor(s.base)
}

func (s *ShaderInstancing) RemoveInstancingMesh(m *mesh.Mesh) {
	if m == nil {
		return
	}
	for _, mb := range m.MeshBuffers() {
		s.RemoveInstancing(mb)
	}
}

// CreateInstancingBuffer returns an empty buffer of the variant payload.
func (s *ShaderInstancing) CreateInstancingBuffer() buffer.VertexBuffer {
	vb := s.variant.NewInstanceBuffer()
	vb.SetHardwareMappingHint(metadata.HardwareMappingStream)
	return vb
}

// CreateTransformBuffer returns an empty world and lighting color buffer for
// the variant descriptor.
func (s *ShaderInstancing) CreateTransformBuffer() buffer.VertexBuffer {
	return streamBuffer[TransformAndLighting]()
}

// CreateWorldTransformBuffer returns an empty world matrix buffer for the
// lighting descriptor.
func (s *ShaderInstancing) CreateWorldTransformBuffer() buffer.VertexBuffer {
	return streamBuffer[WorldTransform]()
}

// CreateIndirectLightingBuffer returns an empty spherical harmonics buffer
// for the lighting descriptor.
func (s *ShaderInstancing) CreateIndirectLightingBuffer() buffer.VertexBuffer {
	return streamBuffer[IndirectLightingSH]()
}

func streamBuffer[T comparable]() *buffer.TypedVertexBuffer[T] {
	vb := buffer.NewTypedVertexBuffer[T](metadata.VertexTypeCustom)
	vb.SetHardwareMappingHint(metadata.HardwareMappingStream)
	return vb
}

// BatchInstancing fills the variant payload buffer.
func (s *ShaderInstancing) BatchInstancing(vb buffer.VertexBuffer, materials []*metadata.Material, entities []RenderEntity, count int) bool {
	return s.variant.BatchInstancing(vb, materials, entities, count)
}
