package descriptor

import (
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// Catalog owns the named vertex descriptors of an engine instance. It is
// populated during initialization and read by mesh buffers and instancing
// afterwards.
type Catalog struct {
	descriptors []*VertexDescriptor
	byName      map[string]*VertexDescriptor
	nextID      uint32
}

func NewCatalog() *Catalog {
	return &Catalog{
		byName: make(map[string]*VertexDescriptor),
	}
}

// Add returns the descriptor called name, creating an empty one when it does
// not exist. created reports which of the two happened.
func (c *Catalog) Add(name string) (d *VertexDescriptor, created bool) {
	if d, ok := c.byName[name]; ok {
		return d, false
	}
	d = NewVertexDescriptor(name, c.nextID)
	c.nextID++
	c.descriptors = append(c.descriptors, d)
	c.byName[name] = d
	return d, true
}

// Get returns the descriptor called name, or nil.
func (c *Catalog) Get(name string) *VertexDescriptor {
	return c.byName[name]
}

// GetByVertexType returns the default descriptor of a built-in vertex shape.
func (c *Catalog) GetByVertexType(vt metadata.VertexType) *VertexDescriptor {
	return c.byName[vt.String()]
}

func (c *Catalog) Count() int {
	return len(c.descriptors)
}

func (c *Catalog) Index(i int) *VertexDescriptor {
	if i < 0 || i >= len(c.descriptors) {
		return nil
	}
	return c.descriptors[i]
}

// Remove forgets the descriptor called name. Mesh buffers still pointing at
// it keep working with their reference.
func (c *Catalog) Remove(name string) bool {
	d, ok := c.byName[name]
	if !ok {
		return false
	}
	delete(c.byName, name)
	for i, other := range c.descriptors {
		if other == d {
			c.descriptors = append(c.descriptors[:i], c.descriptors[i+1:]...)
			break
		}
	}
	return true
}

// RegisterDefaults creates one descriptor per built-in vertex shape, named
// after the shape. The attribute order matches the vertex structs of the
// buffer package byte for byte.
func (c *Catalog) RegisterDefaults() {
	for _, vt := range metadata.BuiltinVertexTypes {
		d, created := c.Add(vt.String())
		if !created {
			continue
		}
		addStandardAttributes(d)
		switch vt {
		case metadata.VertexType2TCoords:
			d.AddAttribute("inTexCoord1", 2, metadata.SemanticTexCoord1, metadata.ElementFloat, 0)
		case metadata.VertexTypeTangents:
			addTangentAttributes(d)
		case metadata.VertexTypeSkin:
			addSkinAttributes(d)
		case metadata.VertexType2TCoordsTangents:
			d.AddAttribute("inTexCoord1", 2, metadata.SemanticTexCoord1, metadata.ElementFloat, 0)
			addTangentAttributes(d)
		case metadata.VertexTypeSkinTangents:
			addTangentAttributes(d)
			addSkinAttributes(d)
		}
		d.SetVertexType(0, vt)
	}
	core.LogDebug("vertex descriptor catalog holds %d descriptors", c.Count())
}

func addStandardAttributes(d *VertexDescriptor) {
	d.AddAttribute("inPosition", 3, metadata.SemanticPosition, metadata.ElementFloat, 0)
	d.AddAttribute("inNormal", 3, metadata.SemanticNormal, metadata.ElementFloat, 0)
	d.AddAttribute("inColor", 4, metadata.SemanticColor, metadata.ElementUByte, 0)
	d.AddAttribute("inTexCoord0", 2, metadata.SemanticTexCoord0, metadata.ElementFloat, 0)
}

func addTangentAttributes(d *VertexDescriptor) {
	d.AddAttribute("inTangent", 3, metadata.SemanticTangent, metadata.ElementFloat, 0)
	d.AddAttribute("inBinormal", 3, metadata.SemanticBinormal, metadata.ElementFloat, 0)
}

func addSkinAttributes(d *VertexDescriptor) {
	d.AddAttribute("inBlendIndices", 4, metadata.SemanticBlendIndices, metadata.ElementFloat, 0)
	d.AddAttribute("inBlendWeights", 4, metadata.SemanticBlendWeights, metadata.ElementFloat, 0)
}
