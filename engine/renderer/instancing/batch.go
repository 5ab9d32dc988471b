package instancing

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
)

// typedTarget downcasts vb to the buffer of per-instance elements T. A wrong
// buffer is a programming error.
func typedTarget[T comparable](vb buffer.VertexBuffer, what string) *buffer.TypedVertexBuffer[T] {
	target, ok := vb.(*buffer.TypedVertexBuffer[T])
	if !ok || target == nil {
		core.Assert(false, "%s: unexpected instance buffer %T", what, vb)
		core.LogError("%s: unexpected instance buffer %T, batch skipped", what, vb)
		return nil
	}
	return target
}

// batchCount limits count to the entities actually given.
func batchCount(count, available int, what string) int {
	if count < 0 {
		return 0
	}
	if count > available {
		core.Assert(false, "%s: count %d exceeds %d entities", what, count, available)
		return available
	}
	return count
}

// BatchTransform writes the world matrix of the first count entities into a
// WorldTransform buffer, in entity order, and marks it dirty once.
func BatchTransform(vb buffer.VertexBuffer, entities []RenderEntity, count int) bool {
	target := typedTarget[WorldTransform](vb, "batch transform")
	if target == nil {
		return false
	}
	count = batchCount(count, len(entities), "batch transform")

	target.SetUsed(count)
	out := target.Elements()
	for i := 0; i < count; i++ {
		out[i].World = entities[i].World
	}
	target.SetDirty()
	return true
}

// BatchTransformAndLighting writes world matrix and indirect lighting color
// into a TransformAndLighting buffer.
func BatchTransformAndLighting(vb buffer.VertexBuffer, entities []RenderEntity, count int) bool {
	target := typedTarget[TransformAndLighting](vb, "batch transform and lighting")
	if target == nil {
		return false
	}
	count = batchCount(count, len(entities), "batch transform and lighting")

	target.SetUsed(count)
	out := target.Elements()
	for i := 0; i < count; i++ {
		out[i] = TransformAndLighting{
			World:    entities[i].World,
			Lighting: entities[i].Lighting.Color(),
		}
	}
	target.SetDirty()
	return true
}

// BatchIndirectLighting writes the spherical harmonics of each entity into
// an IndirectLightingSH buffer. Ambient lit entities store their color in the
// constant band.
func BatchIndirectLighting(vb buffer.VertexBuffer, entities []RenderEntity, count int) bool {
	target := typedTarget[IndirectLightingSH](vb, "batch indirect lighting")
	if target == nil {
		return false
	}
	count = batchCount(count, len(entities), "batch indirect lighting")

	target.SetUsed(count)
	out := target.Elements()
	for i := 0; i < count; i++ {
		l := entities[i].Lighting
		if l.Type == IndirectLightingAmbient {
			out[i] = IndirectLightingSH{SH: [4]mgl32.Vec3{l.Ambient.Vec3()}}
			continue
		}
		out[i].SH = l.SH
	}
	target.SetDirty()
	return true
}
