package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/instancing"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// The application name, used in logs.
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`

	Renderer   RendererConfig     `toml:"renderer"`
	Assets     AssetsConfig       `toml:"assets"`
	Instancing []InstancingConfig `toml:"instancing"`
	Testbed    TestbedConfig      `toml:"testbed"`
}

type RendererConfig struct {
	// Backend names the renderer backend. Only "null" runs headless.
	Backend string `toml:"backend"`
	// UploadQueueSize bounds the update requests queued between frames.
	UploadQueueSize int `toml:"upload_queue_size"`
}

type AssetsConfig struct {
	// Dir is indexed for layout and model files. Empty disables the asset
	// manager.
	Dir string `toml:"dir"`
	// Watch reloads layout files when they change on disk.
	Watch bool `toml:"watch"`
	// Layouts are loaded into the catalog at startup, in order.
	Layouts []string `toml:"layouts"`
	// ImportWorkers parse model files off the frame thread.
	ImportWorkers int `toml:"import_workers"`
}

// InstancingConfig declares one ShaderInstancing, reachable by Name.
type InstancingConfig struct {
	Name           string `toml:"name"`
	Variant        string `toml:"variant"`
	BaseVertexType string `toml:"base_vertex_type"`
}

type TestbedConfig struct {
	Frames   int `toml:"frames"`
	GridSize int `toml:"grid_size"`
}

func defaultInstancing() []InstancingConfig {
	return []InstancingConfig{
		{Name: "standard", Variant: "standard", BaseVertexType: "standard"},
		{Name: "tangent", Variant: "tangent", BaseVertexType: "tangents"},
	}
}

func Default() *Config {
	return &Config{
		Name:     "Anima Buffers",
		LogLevel: "info",
		Renderer: RendererConfig{
			Backend:         "null",
			UploadQueueSize: 256,
		},
		Assets: AssetsConfig{
			ImportWorkers: 2,
		},
		Instancing: defaultInstancing(),
		Testbed: TestbedConfig{
			Frames:   120,
			GridSize: 16,
		},
	}
}

// Load reads a TOML file on top of Default. Keys the file leaves out keep
// their default value; an instancing list replaces the default one.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	cfg.Instancing = nil
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Instancing == nil {
		cfg.Instancing = defaultInstancing()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if c.Renderer.Backend == "" {
		return fmt.Errorf("%w: renderer.backend is empty", ErrInvalidConfig)
	}
	if c.Renderer.UploadQueueSize < 1 {
		return fmt.Errorf("%w: renderer.upload_queue_size must be positive", ErrInvalidConfig)
	}
	if c.Assets.ImportWorkers < 1 {
		return fmt.Errorf("%w: assets.import_workers must be positive", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Instancing))
	for _, ic := range c.Instancing {
		if ic.Name == "" || seen[ic.Name] {
			return fmt.Errorf("%w: instancing name %q is empty or repeated", ErrInvalidConfig, ic.Name)
		}
		seen[ic.Name] = true
		if _, err := ic.Resolve(); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
		}
	}
	if c.Testbed.Frames < 0 || c.Testbed.GridSize < 0 {
		return fmt.Errorf("%w: testbed values must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) Level() (core.LogLevel, error) {
	return core.ParseLogLevel(c.LogLevel)
}

// ResolvedInstancing is an InstancingConfig with its names looked up.
type ResolvedInstancing struct {
	Variant  instancing.Variant
	BaseType metadata.VertexType
}

func (ic InstancingConfig) Resolve() (ResolvedInstancing, error) {
	v, ok := instancing.VariantByName(ic.Variant)
	if !ok {
		return ResolvedInstancing{}, fmt.Errorf("instancing %s: unknown variant %q", ic.Name, ic.Variant)
	}
	vt, err := metadata.ParseVertexType(ic.BaseVertexType)
	if err != nil {
		return ResolvedInstancing{}, fmt.Errorf("instancing %s: %w", ic.Name, err)
	}
	return ResolvedInstancing{Variant: v, BaseType: vt}, nil
}
