package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownSemantic    = errors.New("unknown attribute semantic")
	ErrUnknownElementType = errors.New("unknown attribute element type")
	ErrUnknownFormat      = errors.New("unknown layout file format")
	ErrInvalidLayout      = errors.New("invalid vertex layout")
)

// LayoutFormat is the encoding of a layout file.
type LayoutFormat uint8

const (
	LayoutTOML LayoutFormat = iota
	LayoutYAML
)

// LayoutFormatFromPath picks the format from the file extension.
func LayoutFormatFromPath(path string) (LayoutFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return LayoutTOML, nil
	case ".yaml", ".yml":
		return LayoutYAML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// IsLayoutFile reports whether path names a layout file, e.g.
// "terrain.layout.toml".
func IsLayoutFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.Contains(base, ".layout.") && (strings.HasSuffix(base, ".toml") ||
		strings.HasSuffix(base, ".yaml") || strings.HasSuffix(base, ".yml"))
}

/**
 * @brief On-disk description of a set of vertex descriptors.
 */
type LayoutFile struct {
	Descriptors []LayoutConfig `toml:"descriptor" yaml:"descriptor"`
}

type LayoutConfig struct {
	Name       string            `toml:"name" yaml:"name"`
	VertexType string            `toml:"vertex_type" yaml:"vertex_type"`
	Buffers    []BufferConfig    `toml:"buffer" yaml:"buffer"`
	Attributes []AttributeConfig `toml:"attribute" yaml:"attribute"`
}

type BufferConfig struct {
	Slot       uint32 `toml:"slot" yaml:"slot"`
	StepRate   string `toml:"step_rate" yaml:"step_rate"`
	VertexType string `toml:"vertex_type" yaml:"vertex_type"`
}

type AttributeConfig struct {
	Name     string `toml:"name" yaml:"name"`
	Semantic string `toml:"semantic" yaml:"semantic"`
	Type     string `toml:"type" yaml:"type"`
	Count    uint32 `toml:"count" yaml:"count"`
	Buffer   uint32 `toml:"buffer" yaml:"buffer"`
}

// DecodeLayouts parses a layout file without touching any catalog.
func DecodeLayouts(r io.Reader, format LayoutFormat) (*LayoutFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var lf LayoutFile
	switch format {
	case LayoutTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&lf)
	case LayoutYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&lf)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("decoding layouts: %w", err)
	}
	return &lf, nil
}

// LoadLayouts decodes r and defines the descriptors it declares. An existing
// descriptor with the same name is cleared and rebuilt in place, so mesh
// buffers holding it see the new layout.
func (c *Catalog) LoadLayouts(r io.Reader, format LayoutFormat) ([]*VertexDescriptor, error) {
	lf, err := DecodeLayouts(r, format)
	if err != nil {
		return nil, err
	}

	// Validate everything first so a bad file leaves the catalog untouched.
	for _, cfg := range lf.Descriptors {
		if err := cfg.validate(); err != nil {
			return nil, err
		}
	}

	out := make([]*VertexDescriptor, 0, len(lf.Descriptors))
	for _, cfg := range lf.Descriptors {
		d, created := c.Add(cfg.Name)
		if !created {
			core.LogInfo("rebuilding vertex descriptor %s", cfg.Name)
			d.ClearAttribute()
		}
		cfg.apply(d)
		out = append(out, d)
	}
	return out, nil
}

// LoadLayoutFile loads a TOML or YAML layout file into the catalog.
func (c *Catalog) LoadLayoutFile(path string) ([]*VertexDescriptor, error) {
	format, err := LayoutFormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening layout file: %w", err)
	}
	defer f.Close()

	ds, err := c.LoadLayouts(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func (cfg *LayoutConfig) validate() error {
	if cfg.Name == "" {
		return fmt.Errorf("%w: descriptor without a name", ErrInvalidLayout)
	}
	if _, err := parseVertexType(cfg.VertexType); err != nil {
		return err
	}
	for _, b := range cfg.Buffers {
		if b.Slot >= MaxVertexBuffers {
			return fmt.Errorf("%w: %s buffer slot %d", ErrInvalidLayout, cfg.Name, b.Slot)
		}
		if _, err := metadata.ParseStepRate(b.StepRate); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidLayout, cfg.Name, err)
		}
		if _, err := parseVertexType(b.VertexType); err != nil {
			return err
		}
	}
	for _, a := range cfg.Attributes {
		if a.Name == "" {
			return fmt.Errorf("%w: %s has an attribute without a name", ErrInvalidLayout, cfg.Name)
		}
		if _, err := metadata.ParseSemantic(a.Semantic); err != nil {
			return fmt.Errorf("%w: %s.%s: %q", ErrUnknownSemantic, cfg.Name, a.Name, a.Semantic)
		}
		if _, err := metadata.ParseElementType(a.Type); err != nil {
			return fmt.Errorf("%w: %s.%s: %q", ErrUnknownElementType, cfg.Name, a.Name, a.Type)
		}
		if a.Buffer >= MaxVertexBuffers {
			return fmt.Errorf("%w: %s.%s buffer slot %d", ErrInvalidLayout, cfg.Name, a.Name, a.Buffer)
		}
	}
	return nil
}

// apply assumes validate passed.
func (cfg *LayoutConfig) apply(d *VertexDescriptor) {
	for _, a := range cfg.Attributes {
		s, _ := metadata.ParseSemantic(a.Semantic)
		t, _ := metadata.ParseElementType(a.Type)
		d.AddAttribute(a.Name, a.Count, s, t, a.Buffer)
	}
	vt, _ := parseVertexType(cfg.VertexType)
	d.SetVertexType(0, vt)
	for _, b := range cfg.Buffers {
		rate, _ := metadata.ParseStepRate(b.StepRate)
		d.SetInstanceDataStepRate(rate, b.Slot)
		if b.VertexType != "" {
			bvt, _ := parseVertexType(b.VertexType)
			d.SetVertexType(b.Slot, bvt)
		}
	}
}

func parseVertexType(name string) (metadata.VertexType, error) {
	if name == "" {
		return metadata.VertexTypeUnknown, nil
	}
	vt, err := metadata.ParseVertexType(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return vt, nil
}
