package metadata

import "path/filepath"

type ResourceType int

/** @brief Resource types the asset manager indexes. */
const (
	/** @brief Not an asset, ignored by the asset manager. */
	ResourceTypeNone ResourceType = iota
	/** @brief Vertex layout file (.layout.toml, .layout.yaml). */
	ResourceTypeLayout
	/** @brief glTF model (.gltf, .glb). */
	ResourceTypeModel
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeLayout:
		return "layout"
	case ResourceTypeModel:
		return "model"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The type of loader which produced this resource. */
	Type ResourceType
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The resource data, owned by the loader until unloaded. */
	Data interface{}
}

// NewResource names the resource after the file it was read from.
func NewResource(rt ResourceType, path string, data interface{}) *Resource {
	return &Resource{
		Type:     rt,
		Name:     filepath.Base(path),
		FullPath: path,
		Data:     data,
	}
}
