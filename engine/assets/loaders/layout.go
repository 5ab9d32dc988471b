package loaders

import (
	"fmt"

	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// LayoutLoader applies layout files to a catalog. Loading the same file again
// rebuilds its descriptors in place, so mesh buffers keep their pointers and
// only need UpdateCompatibility.
type LayoutLoader struct {
	catalog *descriptor.Catalog
}

func NewLayoutLoader(catalog *descriptor.Catalog) *LayoutLoader {
	return &LayoutLoader{catalog: catalog}
}

func (l *LayoutLoader) Load(path string) (*metadata.Resource, error) {
	descs, err := l.catalog.LoadLayoutFile(path)
	if err != nil {
		return nil, err
	}
	return metadata.NewResource(metadata.ResourceTypeLayout, path, descs), nil
}

// Unload removes the descriptors the file defined from the catalog.
func (l *LayoutLoader) Unload(r *metadata.Resource) error {
	descs, ok := r.Data.([]*descriptor.VertexDescriptor)
	if !ok {
		return fmt.Errorf("resource %s does not hold vertex descriptors", r.Name)
	}
	for _, d := range descs {
		l.catalog.Remove(d.Name())
	}
	r.Data = nil
	return nil
}
